// Package memory provides linear memory adapters: a wrapper over wazero's
// api.Memory and a slice-backed memory for tests and tools.
package memory

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errors"
)

// WrapMemory wraps a wazero api.Memory to implement wasmlibc.LinearMemory.
func WrapMemory(mem api.Memory) wasmlibc.LinearMemory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to wasmlibc.LinearMemory interface.
type Wrapper struct {
	Mem api.Memory
}

func readFault(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseMemory, uint64(offset), uint64(length))
}

// Read returns a view of guest memory. The view aliases the memory and is
// invalidated by Grow.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, readFault(offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return readFault(offset, uint32(len(data)))
	}
	return nil
}

func (m *Wrapper) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, readFault(offset, 1)
	}
	return v, nil
}

func (m *Wrapper) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, readFault(offset, 2)
	}
	return v, nil
}

func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, readFault(offset, 4)
	}
	return v, nil
}

func (m *Wrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, readFault(offset, 8)
	}
	return v, nil
}

func (m *Wrapper) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return readFault(offset, 1)
	}
	return nil
}

func (m *Wrapper) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return readFault(offset, 2)
	}
	return nil
}

func (m *Wrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return readFault(offset, 4)
	}
	return nil
}

func (m *Wrapper) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return readFault(offset, 8)
	}
	return nil
}

// Size returns the memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// Grow extends the memory by deltaPages.
func (m *Wrapper) Grow(deltaPages uint32) (uint32, bool) {
	return m.Mem.Grow(deltaPages)
}

type sizedMemory interface {
	wasmlibc.Memory
	wasmlibc.MemorySizer
}

// CString returns the NUL-terminated string at ptr, without the NUL. A
// string running to the end of memory is returned whole.
func CString(mem sizedMemory, ptr uint32) ([]byte, error) {
	size := mem.Size()
	if ptr >= size {
		return nil, readFault(ptr, 1)
	}
	view, err := mem.Read(ptr, size-ptr)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(view, 0); i >= 0 {
		return view[:i], nil
	}
	return view, nil
}

// Fill sets length bytes at offset to b.
func Fill(mem wasmlibc.Memory, offset, length uint32, b byte) error {
	view, err := mem.Read(offset, length)
	if err != nil {
		return err
	}
	for i := range view {
		view[i] = b
	}
	return nil
}

// Copy moves length bytes from src to dst; the ranges may overlap.
func Copy(mem wasmlibc.Memory, dst, src, length uint32) error {
	from, err := mem.Read(src, length)
	if err != nil {
		return err
	}
	to, err := mem.Read(dst, length)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}
