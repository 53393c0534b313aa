package heap

import "github.com/wippyai/wasm-libc/errors"

// Layout describes an allocation request: a size and a power-of-two
// alignment.
type Layout struct {
	Size  uint64
	Align uint64
}

// NewLayout validates size and align. The size rounded up to the
// alignment must not overflow.
func NewLayout(size, align uint64) (Layout, error) {
	if !isPowerOfTwo(align) {
		return Layout{}, errors.InvalidArgument(errors.PhaseAlloc, "alignment is not a power of two", align)
	}
	if size > ^uint64(0)-(align-1) {
		return Layout{}, errors.InvalidArgument(errors.PhaseAlloc, "size overflows when rounded to alignment", size)
	}
	return Layout{Size: size, Align: align}, nil
}

// Padded returns the size rounded up to a multiple of the alignment.
func (l Layout) Padded() uint64 {
	return alignUp(l.Size, l.Align)
}

func isPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

func alignUp(x, align uint64) uint64 {
	return (x + align - 1) &^ (align - 1)
}
