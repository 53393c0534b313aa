package libc

import (
	"github.com/wippyai/wasm-libc/locale"
	"github.com/wippyai/wasm-libc/mbconv"
	"github.com/wippyai/wasm-libc/thread"
)

// state resolves an mbstate_t argument. A zero ps selects the thread's
// internal state for the entry point; otherwise the guest's state is
// loaded and the returned func writes it back.
func (c *call) state(ps uint32, f thread.Fallback) (*locale.State, func()) {
	if ps == 0 {
		return c.thread.State(f), func() {}
	}
	b := c.view(ps, locale.StateSize)
	if len(b) < locale.StateSize {
		c.trap(memoryFault(ps, locale.StateSize))
	}
	st := new(locale.State)
	st.Load(b)
	return st, func() { st.Store(b) }
}

// source returns the input of a decoding call; a zero s is the flush
// form and yields nil.
func (c *call) source(s, n uint32) []byte {
	if s == 0 {
		return nil
	}
	return c.view(s, n)
}

// target returns room for one encoded character at s; a zero s yields nil.
func (c *call) target(s uint32) []byte {
	if s == 0 {
		return nil
	}
	return c.view(s, uint32(c.thread.Locale().MaxLen()))
}

func (c *call) convResult(n int, err error) uint64 {
	if err != nil {
		c.fail(err)
	}
	return sizeResult(n)
}

func mbrtoc16(c *call, stack []uint64) {
	pc16, s, n, ps := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
	st, store := c.state(ps, thread.FallbackMbrtoc16)

	var unit uint16
	dst := &unit
	if pc16 == 0 {
		dst = nil
	}
	r, err := mbconv.BytesToC16(c.thread.Locale(), dst, c.source(s, n), st)
	store()
	if pc16 != 0 && s != 0 && err == nil {
		c.writeU16(pc16, unit)
	}
	stack[0] = c.convResult(r, err)
}

func c16rtomb(c *call, stack []uint64) {
	s, unit, ps := uint32(stack[0]), uint16(stack[1]), uint32(stack[2])
	st, store := c.state(ps, thread.FallbackC16rtomb)
	r, err := mbconv.C16ToBytes(c.thread.Locale(), c.target(s), unit, st)
	store()
	stack[0] = c.convResult(r, err)
}

func mbrtoc32(c *call, stack []uint64) {
	pc32, s, n, ps := uint32(stack[0]), uint32(stack[1]), uint32(stack[2]), uint32(stack[3])
	st, store := c.state(ps, thread.FallbackMbrtoc32)

	var cp rune
	dst := &cp
	if pc32 == 0 {
		dst = nil
	}
	r, err := mbconv.BytesToC32(c.thread.Locale(), dst, c.source(s, n), st)
	store()
	if pc32 != 0 && s != 0 && err == nil {
		c.writeU32(pc32, uint32(cp))
	}
	stack[0] = c.convResult(r, err)
}

func c32rtomb(c *call, stack []uint64) {
	s, cp, ps := uint32(stack[0]), rune(uint32(stack[1])), uint32(stack[2])
	st, store := c.state(ps, thread.FallbackC32rtomb)
	r, err := mbconv.C32ToBytes(c.thread.Locale(), c.target(s), cp, st)
	store()
	stack[0] = c.convResult(r, err)
}

// mbsinit treats a null ps as initial.
func mbsinit(c *call, stack []uint64) {
	ps := uint32(stack[0])
	if ps == 0 {
		stack[0] = 1
		return
	}
	st, _ := c.state(ps, thread.FallbackMbrlen)
	if mbconv.Mbsinit(st) {
		stack[0] = 1
	} else {
		stack[0] = 0
	}
}

func mbrlen(c *call, stack []uint64) {
	s, n, ps := uint32(stack[0]), uint32(stack[1]), uint32(stack[2])
	st, store := c.state(ps, thread.FallbackMbrlen)
	r, err := mbconv.Mbrlen(c.thread.Locale(), c.source(s, n), st)
	store()
	stack[0] = c.convResult(r, err)
}
