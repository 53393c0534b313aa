package libc

import (
	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/intparse"
	"github.com/wippyai/wasm-libc/internal/memory"
)

// strto builds the strto* handler for a bits-wide result.
func strto(bits int, signed bool) handler {
	return func(c *call, stack []uint64) {
		s, endptr, base := uint32(stack[0]), uint32(stack[1]), int(int32(uint32(stack[2])))
		src, err := memory.CString(c.memory(), s)
		if err != nil {
			c.trap(err)
		}

		v, n, code := parseInt(src, base, bits, signed)
		if endptr != 0 {
			c.writeU32(endptr, s+uint32(n))
		}
		if code != 0 {
			c.setErrno(code)
		}
		stack[0] = v
	}
}

// ato builds the ato* handler. These never touch errno; out of range input
// saturates like strtol.
func ato(bits int) handler {
	return func(c *call, stack []uint64) {
		src, err := memory.CString(c.memory(), uint32(stack[0]))
		if err != nil {
			c.trap(err)
		}
		v, _, _ := parseInt(src, 10, bits, true)
		stack[0] = v
	}
}

// parseInt returns the result already in its wasm stack encoding.
func parseInt(src []byte, base, bits int, signed bool) (uint64, int, errno.Errno) {
	switch {
	case bits == 32 && signed:
		o := intparse.ParseInt32(src, base)
		return uint64(uint32(o.Value)), o.N, o.Err
	case bits == 32:
		o := intparse.ParseUint32(src, base)
		return uint64(o.Value), o.N, o.Err
	case signed:
		o := intparse.ParseInt64(src, base)
		return uint64(o.Value), o.N, o.Err
	default:
		o := intparse.ParseUint64(src, base)
		return o.Value, o.N, o.Err
	}
}
