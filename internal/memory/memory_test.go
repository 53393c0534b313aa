package memory

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errno"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func wazeroMemory(t *testing.T) wasmlibc.LinearMemory {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	mem := WrapMemory(mod.ExportedMemory("memory"))
	if mem == nil {
		t.Fatal("expected non-nil wrapped memory")
	}
	return mem
}

func memories(t *testing.T) map[string]wasmlibc.LinearMemory {
	return map[string]wasmlibc.LinearMemory{
		"wazero": wazeroMemory(t),
		"buffer": NewBuffer(1, 4),
	}
}

func TestWrapMemory_Nil(t *testing.T) {
	if mem := WrapMemory(nil); mem != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestMemory_ReadWrite(t *testing.T) {
	for name, mem := range memories(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte{1, 2, 3, 4}
			if err := mem.Write(0, data); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			read, err := mem.Read(0, 4)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			for i, b := range read {
				if b != data[i] {
					t.Errorf("byte %d: expected %d, got %d", i, data[i], b)
				}
			}
		})
	}
}

func TestMemory_OutOfBounds(t *testing.T) {
	for name, mem := range memories(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := mem.Read(65536, 1); err == nil {
				t.Error("expected error for out of bounds read")
			}
			err := mem.Write(65535, []byte{1, 2})
			if err == nil {
				t.Fatal("expected error for out of bounds write")
			}
			if errno.Of(err) != errno.EFAULT {
				t.Errorf("errno = %v, want EFAULT", errno.Of(err))
			}
			if _, err := mem.ReadU32(65534); err == nil {
				t.Error("expected error for straddling read")
			}
		})
	}
}

func TestMemory_IntegerReadWrite(t *testing.T) {
	for name, mem := range memories(t) {
		t.Run(name, func(t *testing.T) {
			if err := mem.WriteU8(0, 42); err != nil {
				t.Fatalf("WriteU8 failed: %v", err)
			}
			if v, _ := mem.ReadU8(0); v != 42 {
				t.Errorf("ReadU8: expected 42, got %d", v)
			}

			if err := mem.WriteU16(0, 0x1234); err != nil {
				t.Fatalf("WriteU16 failed: %v", err)
			}
			if v, _ := mem.ReadU16(0); v != 0x1234 {
				t.Errorf("ReadU16: expected 0x1234, got 0x%x", v)
			}

			if err := mem.WriteU32(0, 0x12345678); err != nil {
				t.Fatalf("WriteU32 failed: %v", err)
			}
			if v, _ := mem.ReadU32(0); v != 0x12345678 {
				t.Errorf("ReadU32: expected 0x12345678, got 0x%x", v)
			}
			if b, _ := mem.ReadU8(0); b != 0x78 {
				t.Errorf("expected little-endian layout, first byte 0x%x", b)
			}

			if err := mem.WriteU64(0, 0x123456789ABCDEF0); err != nil {
				t.Fatalf("WriteU64 failed: %v", err)
			}
			if v, _ := mem.ReadU64(0); v != 0x123456789ABCDEF0 {
				t.Errorf("ReadU64: expected 0x123456789ABCDEF0, got 0x%x", v)
			}
		})
	}
}

func TestMemory_Grow(t *testing.T) {
	for name, mem := range memories(t) {
		t.Run(name, func(t *testing.T) {
			prev, ok := mem.Grow(2)
			if !ok || prev != 1 {
				t.Fatalf("Grow(2) = %d, %v", prev, ok)
			}
			if mem.Size() != 3*wasmlibc.PageSize {
				t.Errorf("Size = %d after grow", mem.Size())
			}
			if err := mem.WriteU8(3*wasmlibc.PageSize-1, 1); err != nil {
				t.Errorf("write to grown page: %v", err)
			}
		})
	}

	b := NewBuffer(1, 2)
	if _, ok := b.Grow(2); ok {
		t.Error("Grow past the maximum should fail")
	}
}

func TestCString(t *testing.T) {
	mem := NewBuffer(1, 1)
	copy(mem.Bytes()[100:], "hello\x00world")

	s, err := CString(mem, 100)
	if err != nil || string(s) != "hello" {
		t.Errorf("CString = %q, %v", s, err)
	}

	copy(mem.Bytes()[wasmlibc.PageSize-3:], "abc")
	s, err = CString(mem, wasmlibc.PageSize-3)
	if err != nil || string(s) != "abc" {
		t.Errorf("unterminated CString = %q, %v", s, err)
	}

	if _, err := CString(mem, wasmlibc.PageSize); err == nil {
		t.Error("expected error past end of memory")
	}
}

func TestFillCopy(t *testing.T) {
	mem := NewBuffer(1, 1)
	if err := Fill(mem, 8, 8, 0xaa); err != nil {
		t.Fatal(err)
	}
	copy(mem.Bytes()[8:], "abcd")
	if err := Copy(mem, 10, 8, 4); err != nil {
		t.Fatal(err)
	}
	if got := string(mem.Bytes()[8:14]); got != "ababcd" {
		t.Errorf("overlapping copy = %q", got)
	}
	if mem.Bytes()[15] != 0xaa {
		t.Errorf("fill byte = %#x", mem.Bytes()[15])
	}
}
