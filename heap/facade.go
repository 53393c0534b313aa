package heap

import (
	"math/bits"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/cpu"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/internal/memory"
)

// Config configures a Facade and its arena.
type Config struct {
	// PointerSize is sizeof(void *) on the guest; posix_memalign requires
	// alignments that are multiples of it. Default 4.
	PointerSize uint64

	// MaxAlign is the alignment of malloc, calloc and realloc results
	// (alignof(max_align_t)). Default 16.
	MaxAlign uint64

	// Base is the first address the arena may use. Zero means the size of
	// the memory when the first allocation happens.
	Base uint32

	// Limit caps the end of the arena. Zero means 4 GiB.
	Limit uint64
}

func (c Config) withDefaults() Config {
	if c.PointerSize == 0 {
		c.PointerSize = 4
	}
	if c.MaxAlign == 0 {
		c.MaxAlign = 16
	}
	return c
}

// Facade implements the C allocation functions over an Arena. Addresses
// are guest offsets; 0 is NULL. Failures return 0 together with an error
// carrying the errno C would report.
type Facade struct {
	arena *Arena
	mem   wasmlibc.LinearMemory
	cfg   Config
	_     cpu.CacheLinePad
	n     counters
}

// Counts is a snapshot of facade activity.
type Counts struct {
	Allocs   uint64
	Frees    uint64
	Failures uint64
}

// counters are bumped outside the arena lock by every guest thread that
// allocates, so each one gets its own cache line.
type counters struct {
	allocs   atomic.Uint64
	_        cpu.CacheLinePad
	frees    atomic.Uint64
	_        cpu.CacheLinePad
	failures atomic.Uint64
}

// Counts returns the number of successful allocations, frees of live
// blocks and failed requests so far.
func (f *Facade) Counts() Counts {
	return Counts{
		Allocs:   f.n.allocs.Load(),
		Frees:    f.n.frees.Load(),
		Failures: f.n.failures.Load(),
	}
}

// New creates a facade with its own arena over mem.
func New(mem wasmlibc.LinearMemory, cfg Config) *Facade {
	cfg = cfg.withDefaults()
	return &Facade{
		arena: NewArena(mem, cfg.Base, cfg.Limit),
		mem:   mem,
		cfg:   cfg,
	}
}

// Arena returns the underlying arena.
func (f *Facade) Arena() *Arena { return f.arena }

// Config returns the effective configuration.
func (f *Facade) Config() Config { return f.cfg }

// Malloc allocates size bytes aligned to MaxAlign. A zero size allocates
// one byte so the result is unique and may be freed.
func (f *Facade) Malloc(size uint64) (uint32, error) {
	return f.alloc(size, f.cfg.MaxAlign)
}

// AlignedAlloc allocates size bytes aligned to align, which must be a
// power of two.
func (f *Facade) AlignedAlloc(align, size uint64) (uint32, error) {
	if !isPowerOfTwo(align) {
		return 0, errors.InvalidArgument(errors.PhaseAlloc, "alignment is not a power of two", align)
	}
	return f.alloc(size, align)
}

// Calloc allocates zeroed memory for n elements of size bytes. A product
// that overflows 64 bits fails with ENOMEM before anything is allocated.
func (f *Facade) Calloc(n, size uint64) (uint32, error) {
	hi, total := bits.Mul64(n, size)
	if hi != 0 {
		f.n.failures.Add(1)
		return 0, errors.New(errors.PhaseAlloc, errors.KindOutOfMemory).
			Detail("calloc(%d, %d) overflows", n, size).
			Code(errno.ENOMEM).
			Build()
	}
	ptr, err := f.Malloc(total)
	if err != nil {
		return 0, err
	}
	if err := memory.Fill(f.mem, ptr, uint32(max(total, 1)), 0); err != nil {
		f.Free(ptr)
		return 0, err
	}
	return ptr, nil
}

// Realloc resizes the block at ptr. A zero ptr behaves as Malloc. On
// failure the original block is left intact.
func (f *Facade) Realloc(ptr uint32, size uint64) (uint32, error) {
	if ptr == 0 {
		return f.Malloc(size)
	}
	np, err := f.arena.Realloc(ptr, size)
	if err != nil {
		f.n.failures.Add(1)
		Logger().Debug("realloc failed", zap.Uint32("ptr", ptr), zap.Uint64("size", size), zap.Error(err))
		return 0, err
	}
	return np, nil
}

// PosixMemalign allocates size bytes aligned to align. The alignment must
// be a power of two and a multiple of the pointer size; it is validated
// before anything is allocated.
func (f *Facade) PosixMemalign(align, size uint64) (uint32, error) {
	if !isPowerOfTwo(align) || align%f.cfg.PointerSize != 0 {
		return 0, errors.InvalidArgument(errors.PhaseAlloc, "alignment must be a power-of-two multiple of the pointer size", align)
	}
	return f.alloc(size, align)
}

// Free releases the block at ptr. Freeing 0 does nothing; freeing an
// address that is not a live block is logged and ignored.
func (f *Facade) Free(ptr uint32) {
	if ptr == 0 {
		return
	}
	if _, ok := f.arena.Free(ptr); !ok {
		Logger().Warn("free of unknown pointer", zap.Uint32("ptr", ptr))
		return
	}
	f.n.frees.Add(1)
}

// FreeSized releases ptr, allocated with size bytes by Malloc, Calloc or
// Realloc. The recorded layout of the block is what is released.
func (f *Facade) FreeSized(ptr uint32, size uint64) error {
	return f.FreeAlignedSized(ptr, f.cfg.MaxAlign, size)
}

// FreeAlignedSized releases ptr, allocated with the given alignment and
// size. A layout that could not have come from any allocation is fatal.
func (f *Facade) FreeAlignedSized(ptr uint32, align, size uint64) error {
	if ptr == 0 {
		return nil
	}
	if _, err := NewLayout(size, align); err != nil {
		e := errors.Fatal(errors.PhaseAlloc, "invalid deallocation layout size=%d align=%d", size, align)
		e.Cause = err
		return e
	}
	f.Free(ptr)
	return nil
}

func (f *Facade) alloc(size, align uint64) (uint32, error) {
	if size == 0 {
		size = 1
	}
	l, err := NewLayout(size, align)
	if err != nil {
		f.n.failures.Add(1)
		return 0, errors.OutOfMemory(size, align)
	}
	ptr, err := f.arena.Alloc(l)
	if err != nil {
		f.n.failures.Add(1)
		Logger().Debug("allocation failed", zap.Uint64("size", size), zap.Uint64("align", align))
		return 0, err
	}
	f.n.allocs.Add(1)
	return ptr, nil
}

// Allocator adapts the facade to wasmlibc.Allocator.
func (f *Facade) Allocator() wasmlibc.Allocator {
	return allocator{f}
}

type allocator struct {
	f *Facade
}

func (a allocator) Alloc(size, align uint32) (uint32, error) {
	return a.f.AlignedAlloc(uint64(align), uint64(size))
}

func (a allocator) Free(ptr, size, align uint32) {
	if err := a.f.FreeAlignedSized(ptr, uint64(align), uint64(size)); err != nil {
		Logger().Warn("free with invalid layout", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}
