package memory

import (
	"encoding/binary"

	wasmlibc "github.com/wippyai/wasm-libc"
)

// Buffer is a slice-backed linear memory.
type Buffer struct {
	data     []byte
	maxPages uint32
}

// NewBuffer creates a memory of pages pages that may grow to maxPages.
// A zero maxPages allows the full 4 GiB address space.
func NewBuffer(pages, maxPages uint32) *Buffer {
	if maxPages == 0 {
		maxPages = 65536
	}
	return &Buffer{
		data:     make([]byte, uint64(pages)*wasmlibc.PageSize),
		maxPages: maxPages,
	}
}

// Bytes exposes the backing slice.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Size() uint32 { return uint32(len(b.data)) }

func (b *Buffer) Grow(deltaPages uint32) (uint32, bool) {
	prev := uint32(uint64(len(b.data)) / wasmlibc.PageSize)
	if uint64(prev)+uint64(deltaPages) > uint64(b.maxPages) {
		return prev, false
	}
	grown := make([]byte, len(b.data)+int(deltaPages)*wasmlibc.PageSize)
	copy(grown, b.data)
	b.data = grown
	return prev, true
}

func (b *Buffer) slice(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b.data)) {
		return nil, readFault(offset, length)
	}
	return b.data[offset:end:end], nil
}

func (b *Buffer) Read(offset, length uint32) ([]byte, error) {
	return b.slice(offset, length)
}

func (b *Buffer) Write(offset uint32, data []byte) error {
	dst, err := b.slice(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (b *Buffer) ReadU8(offset uint32) (uint8, error) {
	p, err := b.slice(offset, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) ReadU16(offset uint32) (uint16, error) {
	p, err := b.slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

func (b *Buffer) ReadU32(offset uint32) (uint32, error) {
	p, err := b.slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (b *Buffer) ReadU64(offset uint32) (uint64, error) {
	p, err := b.slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (b *Buffer) WriteU8(offset uint32, value uint8) error {
	p, err := b.slice(offset, 1)
	if err != nil {
		return err
	}
	p[0] = value
	return nil
}

func (b *Buffer) WriteU16(offset uint32, value uint16) error {
	p, err := b.slice(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(p, value)
	return nil
}

func (b *Buffer) WriteU32(offset uint32, value uint32) error {
	p, err := b.slice(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p, value)
	return nil
}

func (b *Buffer) WriteU64(offset uint32, value uint64) error {
	p, err := b.slice(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(p, value)
	return nil
}

var _ wasmlibc.LinearMemory = (*Buffer)(nil)
