package intparse

import (
	"math"

	"github.com/wippyai/wasm-libc/ctype"
	"github.com/wippyai/wasm-libc/errno"
)

// Integer is the set of result types Parse can produce.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Limits bounds the result range of one parse. Min is zero for unsigned
// results.
type Limits[T Integer] struct {
	Min T
	Max T
}

func (l Limits[T]) unsigned() bool { return l.Min == 0 }

// Outcome is the result of one parse.
type Outcome[T Integer] struct {
	Value T
	// N counts the bytes from the start of the input through the last
	// digit, or 0 if no digit was read (endptr - nptr).
	N   int
	Err errno.Errno
}

var (
	Int8   = Limits[int8]{math.MinInt8, math.MaxInt8}
	Int16  = Limits[int16]{math.MinInt16, math.MaxInt16}
	Int32  = Limits[int32]{math.MinInt32, math.MaxInt32}
	Int64  = Limits[int64]{math.MinInt64, math.MaxInt64}
	Uint8  = Limits[uint8]{0, math.MaxUint8}
	Uint16 = Limits[uint16]{0, math.MaxUint16}
	Uint32 = Limits[uint32]{0, math.MaxUint32}
	Uint64 = Limits[uint64]{0, math.MaxUint64}
)

// Parse converts the integer at the start of src in the given base, the
// way the strto* family does. Input ends at the first NUL byte or at the
// end of src.
//
// Base 0 infers the base from the prefix: "0x" followed by a hex digit
// selects 16, "0b" followed by a binary digit selects 2, a leading "0"
// selects 8, anything else 10. Out of range results saturate at lim and
// report ERANGE. A negative unsigned result wraps as in strtoul.
func Parse[T Integer](src []byte, base int, lim Limits[T]) Outcome[T] {
	if base < 0 || base == 1 || base > 36 {
		return Outcome[T]{Err: errno.EINVAL}
	}

	r := reader(src)
	i := 0
	for ctype.IsSpace(r.at(i)) {
		i++
	}

	negative := false
	if c := r.at(i); c == '+' || c == '-' {
		negative = c == '-'
		i++
	}

	switch {
	case base == 0:
		switch {
		case r.prefixed(i, 'x', 16):
			base = 16
			i += 2
		case r.prefixed(i, 'b', 2):
			base = 2
			i += 2
		case r.at(i) == '0':
			base = 8
		default:
			base = 10
		}
	case base == 16 && r.prefixed(i, 'x', 16):
		i += 2
	case base == 2 && r.prefixed(i, 'b', 2):
		i += 2
	}

	// Magnitudes accumulate in uint64 against the bound for the sign.
	absMax := uint64(lim.Max)
	if negative && !lim.unsigned() {
		absMax = -uint64(lim.Min)
	}
	absMaxDiv := absMax / uint64(base)

	var (
		acc      uint64
		digits   bool
		overflow bool
	)
	for {
		d, ok := ctype.DigitValue(r.at(i))
		if !ok || d >= base {
			break
		}
		digits = true
		i++

		if acc == absMax {
			overflow = true
			continue
		}
		if acc > absMaxDiv {
			acc = absMax
			overflow = true
		} else {
			acc *= uint64(base)
		}
		if acc > absMax-uint64(d) {
			acc = absMax
			overflow = true
		} else {
			acc += uint64(d)
		}
	}

	out := Outcome[T]{}
	if digits {
		out.N = i
	}
	switch {
	case overflow:
		out.Err = errno.ERANGE
		out.Value = lim.Max
		if negative && !lim.unsigned() {
			out.Value = lim.Min
		}
	case negative:
		out.Value = T(^acc + 1)
	default:
		out.Value = T(acc)
	}
	return out
}

// reader views a NUL-terminated byte string; reads past the end yield NUL.
type reader []byte

func (r reader) at(i int) byte {
	if i < len(r) {
		return r[i]
	}
	return 0
}

// prefixed reports whether "0<letter>" followed by a digit valid in base
// starts at i.
func (r reader) prefixed(i int, letter byte, base int) bool {
	if r.at(i) != '0' || r.at(i+1)|0x20 != letter {
		return false
	}
	d, ok := ctype.DigitValue(r.at(i + 2))
	return ok && d < base
}

func ParseInt8(src []byte, base int) Outcome[int8] { return Parse(src, base, Int8) }
func ParseInt16(src []byte, base int) Outcome[int16] { return Parse(src, base, Int16) }
func ParseInt32(src []byte, base int) Outcome[int32] { return Parse(src, base, Int32) }
func ParseInt64(src []byte, base int) Outcome[int64] { return Parse(src, base, Int64) }
func ParseUint8(src []byte, base int) Outcome[uint8] { return Parse(src, base, Uint8) }
func ParseUint16(src []byte, base int) Outcome[uint16] { return Parse(src, base, Uint16) }
func ParseUint32(src []byte, base int) Outcome[uint32] { return Parse(src, base, Uint32) }
func ParseUint64(src []byte, base int) Outcome[uint64] { return Parse(src, base, Uint64) }
