package libc

import "github.com/wippyai/wasm-libc/thread"

// errnoLocation hands out the thread's errno cell, allocating it from the
// guest heap on first use. The cell starts with the thread's current errno.
func errnoLocation(c *call, stack []uint64) {
	fresh := c.thread.ErrnoAddr() == 0
	addr := c.cell(thread.CellErrno)
	if fresh {
		c.writeU32(addr, uint32(c.thread.Errno()))
	}
	stack[0] = uint64(addr)
}
