package heap

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/internal/memory"
)

const (
	// granule is the unit every block is rounded to.
	granule = 8

	// minBase keeps the arena clear of address 0, which is NULL.
	minBase = 16

	addressSpace = 1 << 32
)

type span struct {
	addr uint64
	size uint64
}

func (s span) end() uint64 { return s.addr + s.size }

type block struct {
	reserved uint64
	layout   Layout
}

// Stats is a snapshot of arena usage.
type Stats struct {
	Live      int
	InUse     uint64
	FreeBytes uint64
	FreeSpans int
	Base      uint32
	Top       uint64
	Grows     int
}

// Arena is a first-fit allocator over a region [base, limit) of linear
// memory. Freed spans are coalesced; a span ending at the top of the arena
// lowers the top instead. The layout of every live block is recorded, so
// releasing or resizing never trusts a caller-supplied size.
//
// An Arena is safe for concurrent use.
type Arena struct {
	mem   wasmlibc.LinearMemory
	live  map[uint32]block
	free  []span // sorted by addr, never adjacent, never touching top
	base  uint64
	top   uint64
	limit uint64
	grows int
	ready bool
	mu    sync.Mutex
}

// NewArena creates an arena over mem. A zero base starts the arena at the
// size of mem on first use; a zero limit allows the whole 32-bit address
// space.
func NewArena(mem wasmlibc.LinearMemory, base uint32, limit uint64) *Arena {
	if limit == 0 || limit > addressSpace {
		limit = addressSpace
	}
	return &Arena{
		mem:   mem,
		live:  make(map[uint32]block),
		base:  uint64(base),
		limit: limit,
	}
}

func (a *Arena) init() {
	if a.ready {
		return
	}
	if a.base == 0 {
		a.base = uint64(a.mem.Size())
	}
	a.base = alignUp(max(a.base, minBase), minBase)
	a.top = a.base
	a.ready = true
}

// Alloc reserves a block for l and returns its address.
func (a *Arena) Alloc(l Layout) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alloc(l)
}

func (a *Arena) alloc(l Layout) (uint32, error) {
	a.init()
	if l.Size >= a.limit || l.Align >= a.limit {
		return 0, errors.OutOfMemory(l.Size, l.Align)
	}
	need := alignUp(max(l.Size, 1), granule)
	align := max(l.Align, granule)

	for i, s := range a.free {
		p := alignUp(s.addr, align)
		if p+need > s.end() {
			continue
		}
		a.carve(i, p, need)
		a.live[uint32(p)] = block{reserved: need, layout: l}
		return uint32(p), nil
	}

	p := alignUp(a.top, align)
	if err := a.ensure(p+need, l); err != nil {
		return 0, err
	}
	prev := a.top
	a.top = p + need
	if p > prev {
		a.insert(span{addr: prev, size: p - prev})
	}
	a.live[uint32(p)] = block{reserved: need, layout: l}
	return uint32(p), nil
}

// Free releases the block at ptr and returns its recorded layout. It
// reports false if ptr is not a live block.
func (a *Arena) Free(ptr uint32) (Layout, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.live[ptr]
	if !ok {
		return Layout{}, false
	}
	a.release(ptr, b)
	return b.layout, true
}

func (a *Arena) release(ptr uint32, b block) {
	delete(a.live, ptr)
	a.insert(span{addr: uint64(ptr), size: b.reserved})
	a.trimTop()
}

// Realloc resizes the block at ptr to size bytes, keeping its alignment.
// It shrinks in place, grows in place when the following bytes are free,
// and otherwise moves the block, copying the smaller of the old and new
// sizes. On failure the block at ptr is untouched.
func (a *Arena) Realloc(ptr uint32, size uint64) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.live[ptr]
	if !ok {
		return 0, errors.New(errors.PhaseAlloc, errors.KindInvalidArgument).
			Detail("realloc of unknown pointer %#x", ptr).
			Value(ptr).
			Build()
	}
	if size >= a.limit {
		return 0, errors.OutOfMemory(size, b.layout.Align)
	}

	start := uint64(ptr)
	need := alignUp(max(size, 1), granule)
	switch {
	case need <= b.reserved:
		if tail := b.reserved - need; tail > 0 {
			a.insert(span{addr: start + need, size: tail})
			a.trimTop()
		}
	case start+b.reserved == a.top:
		if err := a.ensure(start+need, b.layout); err != nil {
			return 0, err
		}
		a.top = start + need
	default:
		i, ok := a.spanAt(start + b.reserved)
		if !ok || a.free[i].size < need-b.reserved {
			return a.move(ptr, b, size)
		}
		a.carve(i, start+b.reserved, need-b.reserved)
	}

	b.reserved = need
	b.layout.Size = size
	a.live[ptr] = b
	return ptr, nil
}

func (a *Arena) move(ptr uint32, b block, size uint64) (uint32, error) {
	np, err := a.alloc(Layout{Size: size, Align: b.layout.Align})
	if err != nil {
		return 0, err
	}
	if err := memory.Copy(a.mem, np, ptr, uint32(min(b.layout.Size, size))); err != nil {
		a.release(np, a.live[np])
		return 0, err
	}
	a.release(ptr, b)
	return np, nil
}

// Layout returns the recorded layout of the live block at ptr.
func (a *Arena) Layout(ptr uint32) (Layout, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.live[ptr]
	return b.layout, ok
}

// Stats returns a snapshot of arena usage.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Stats{
		Live:      len(a.live),
		FreeSpans: len(a.free),
		Base:      uint32(a.base),
		Top:       a.top,
		Grows:     a.grows,
	}
	for _, b := range a.live {
		st.InUse += b.reserved
	}
	for _, s := range a.free {
		st.FreeBytes += s.size
	}
	return st
}

// ensure grows the memory so that [0, end) is addressable.
func (a *Arena) ensure(end uint64, l Layout) error {
	if end > a.limit {
		return errors.OutOfMemory(l.Size, l.Align)
	}
	size := uint64(a.mem.Size())
	if end <= size {
		return nil
	}
	pages := (end - size + wasmlibc.PageSize - 1) / wasmlibc.PageSize
	if _, ok := a.mem.Grow(uint32(pages)); !ok {
		Logger().Debug("linear memory refused to grow",
			zap.Uint64("pages", pages),
			zap.Uint64("size", size))
		return errors.OutOfMemory(l.Size, l.Align)
	}
	a.grows++
	Logger().Debug("linear memory grown",
		zap.Uint64("pages", pages),
		zap.Uint64("size", size+pages*wasmlibc.PageSize))
	return nil
}

// carve takes [p, p+n) out of free span i, keeping any remainder on
// either side.
func (a *Arena) carve(i int, p, n uint64) {
	s := a.free[i]
	var rest []span
	if p > s.addr {
		rest = append(rest, span{addr: s.addr, size: p - s.addr})
	}
	if p+n < s.end() {
		rest = append(rest, span{addr: p + n, size: s.end() - (p + n)})
	}
	a.free = append(a.free[:i], append(rest, a.free[i+1:]...)...)
}

// insert adds s to the free list, merging it with adjacent spans.
func (a *Arena) insert(s span) {
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].addr >= s.addr })
	if i < len(a.free) && s.end() == a.free[i].addr {
		s.size += a.free[i].size
		a.free = append(a.free[:i], a.free[i+1:]...)
	}
	if i > 0 && a.free[i-1].end() == s.addr {
		a.free[i-1].size += s.size
		return
	}
	a.free = append(a.free, span{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = s
}

func (a *Arena) trimTop() {
	if n := len(a.free); n > 0 && a.free[n-1].end() == a.top {
		a.top = a.free[n-1].addr
		a.free = a.free[:n-1]
	}
}

func (a *Arena) spanAt(addr uint64) (int, bool) {
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].addr >= addr })
	return i, i < len(a.free) && a.free[i].addr == addr
}
