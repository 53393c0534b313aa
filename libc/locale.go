package libc

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/internal/memory"
	"github.com/wippyai/wasm-libc/locale"
)

func getThreadLocale(c *call, stack []uint64) {
	stack[0] = uint64(c.host.opts.Registry.Handle(c.thread.Locale()))
}

// setThreadLocale returns the previous handle, or 0 with EINVAL when the
// handle is unknown.
func setThreadLocale(c *call, stack []uint64) {
	reg := c.host.opts.Registry
	l, ok := reg.ByHandle(locale.Handle(uint32(stack[0])))
	if !ok {
		c.setErrno(errno.EINVAL)
		stack[0] = 0
		return
	}
	prev := c.thread.SetLocale(l)
	Logger().Debug("thread locale changed",
		zap.Uint32("tid", uint32(c.thread.ID())),
		zap.Stringer("from", prev),
		zap.Stringer("to", l))
	stack[0] = uint64(reg.Handle(prev))
}

func lookupLocale(c *call, stack []uint64) {
	name, err := memory.CString(c.memory(), uint32(stack[0]))
	if err != nil {
		c.trap(err)
	}
	reg := c.host.opts.Registry
	l, err := reg.Lookup(string(name))
	if err != nil {
		c.fail(err)
		stack[0] = 0
		return
	}
	stack[0] = uint64(reg.Handle(l))
}

func localeCodeset(c *call, stack []uint64) {
	l, ok := c.host.opts.Registry.ByHandle(locale.Handle(uint32(stack[0])))
	if !ok {
		c.setErrno(errno.ENOENT)
		stack[0] = sizeResult(-1)
		return
	}
	buf, size := uint32(stack[1]), uint32(stack[2])
	name := l.Codeset()
	if uint64(len(name)) >= uint64(size) {
		c.setErrno(errno.ERANGE)
		stack[0] = sizeResult(-1)
		return
	}
	dst := c.view(buf, uint32(len(name))+1)
	if len(dst) < len(name)+1 {
		c.trap(memoryFault(buf, uint32(len(name))+1))
	}
	copy(dst, name)
	dst[len(name)] = 0
	stack[0] = uint64(len(name))
}

func mbCurMax(c *call, stack []uint64) {
	stack[0] = uint64(c.thread.Locale().MaxLen())
}
