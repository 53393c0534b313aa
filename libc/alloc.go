package libc

import (
	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
)

func malloc(c *call, stack []uint64) {
	ptr, err := c.heap().Malloc(uint64(uint32(stack[0])))
	if err != nil {
		c.fail(err)
	}
	stack[0] = uint64(ptr)
}

func calloc(c *call, stack []uint64) {
	ptr, err := c.heap().Calloc(uint64(uint32(stack[0])), uint64(uint32(stack[1])))
	if err != nil {
		c.fail(err)
	}
	stack[0] = uint64(ptr)
}

func realloc(c *call, stack []uint64) {
	ptr, err := c.heap().Realloc(uint32(stack[0]), uint64(uint32(stack[1])))
	if err != nil {
		c.fail(err)
	}
	stack[0] = uint64(ptr)
}

func alignedAlloc(c *call, stack []uint64) {
	ptr, err := c.heap().AlignedAlloc(uint64(uint32(stack[0])), uint64(uint32(stack[1])))
	if err != nil {
		c.fail(err)
	}
	stack[0] = uint64(ptr)
}

// posixMemalign reports failure through its result only; errno and *memptr
// are left untouched.
func posixMemalign(c *call, stack []uint64) {
	out := uint32(stack[0])
	ptr, err := c.heap().PosixMemalign(uint64(uint32(stack[1])), uint64(uint32(stack[2])))
	if err != nil {
		code := errno.Of(err)
		if code == 0 {
			code = errno.ENOMEM
		}
		stack[0] = uint64(uint32(code))
		return
	}
	c.writeU32(out, ptr)
	stack[0] = 0
}

func free(c *call, stack []uint64) {
	c.heap().Free(uint32(stack[0]))
}

func freeSized(c *call, stack []uint64) {
	c.released(c.heap().FreeSized(uint32(stack[0]), uint64(uint32(stack[1]))))
}

func freeAlignedSized(c *call, stack []uint64) {
	c.released(c.heap().FreeAlignedSized(uint32(stack[0]), uint64(uint32(stack[1])), uint64(uint32(stack[2]))))
}

// released handles the outcome of a sized free: an impossible layout
// aborts the guest, anything else only sets errno.
func (c *call) released(err error) {
	if errors.IsFatal(err) {
		c.abort(err)
	}
	c.fail(err)
}
