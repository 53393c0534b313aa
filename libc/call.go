package libc

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/heap"
	"github.com/wippyai/wasm-libc/thread"
)

// abortExitCode is the status of a process killed by SIGABRT.
const abortExitCode = 128 + 6

// call is the context of one host function invocation.
type call struct {
	ctx    context.Context
	mod    api.Module
	host   *Host
	proc   *Process
	thread *thread.Thread
}

// memory returns the guest memory. A guest without memory cannot pass
// pointers, so any access traps.
func (c *call) memory() wasmlibc.LinearMemory {
	if c.proc.mem == nil {
		panic(errors.NotInitialized(errors.PhaseMemory, "guest memory"))
	}
	return c.proc.mem
}

func (c *call) heap() *heap.Facade {
	if c.proc.heap == nil {
		panic(errors.NotInitialized(errors.PhaseAlloc, "heap"))
	}
	return c.proc.heap
}

// setErrno records e for the calling thread and mirrors it into the
// guest's errno cell once __errno_location has handed one out.
func (c *call) setErrno(e errno.Errno) {
	c.thread.SetErrno(e)
	if addr := c.thread.ErrnoAddr(); addr != 0 && c.proc.mem != nil {
		_ = c.proc.mem.WriteU32(addr, uint32(e))
	}
}

// fail sets errno from err, if it carries one.
func (c *call) fail(err error) {
	if code := errno.Of(err); code != 0 {
		c.setErrno(code)
	}
}

// trap aborts the guest on a memory fault.
func (c *call) trap(err error) {
	panic(err)
}

// abort terminates the guest the way abort() does.
func (c *call) abort(err error) {
	Logger().Error("aborting guest",
		zap.String("process", c.proc.name),
		zap.Error(err))
	_ = c.mod.CloseWithExitCode(c.ctx, abortExitCode)
	panic(sys.NewExitError(abortExitCode))
}

func (c *call) readU32(ptr uint32) uint32 {
	v, err := c.memory().ReadU32(ptr)
	if err != nil {
		c.trap(err)
	}
	return v
}

func (c *call) writeU32(ptr, v uint32) {
	if err := c.memory().WriteU32(ptr, v); err != nil {
		c.trap(err)
	}
}

func (c *call) writeU16(ptr uint32, v uint16) {
	if err := c.memory().WriteU16(ptr, v); err != nil {
		c.trap(err)
	}
}

// view returns the bytes [ptr, ptr+n), clamped to the end of memory. A
// pointer past the end traps.
func (c *call) view(ptr, n uint32) []byte {
	mem := c.memory()
	size := mem.Size()
	if ptr >= size {
		if n > 0 {
			c.trap(memoryFault(ptr, n))
		}
		return []byte{}
	}
	if n > size-ptr {
		n = size - ptr
	}
	b, err := mem.Read(ptr, n)
	if err != nil {
		c.trap(err)
	}
	return b
}

// sizeResult encodes a signed conversion result as size_t.
func sizeResult(n int) uint64 {
	return uint64(uint32(int32(n)))
}

func memoryFault(ptr, n uint32) error {
	return errors.OutOfBounds(errors.PhaseMemory, uint64(ptr), uint64(n))
}
