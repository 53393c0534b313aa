package mbconv

import (
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/locale"
)

// DecodeString converts a multibyte string to code points (mbstowcs). It
// stops at the first NUL or the end of src. A sequence cut off by the end
// of src is an illegal sequence.
func DecodeString(loc *locale.Locale, src []byte) ([]rune, error) {
	out := make([]rune, 0, len(src))
	var st locale.State
	for len(src) > 0 {
		var cp rune
		n, err := BytesToC32(loc, &cp, src, &st)
		switch {
		case n == Incomplete:
			return out, errors.IllegalSequence(errors.PhaseDecode, loc.Codeset(), src)
		case err != nil:
			return out, err
		case n == 0:
			return out, nil
		}
		out = append(out, cp)
		src = src[n:]
	}
	return out, nil
}

// EncodeString converts code points to a multibyte string (wcstombs),
// stopping at the first NUL.
func EncodeString(loc *locale.Locale, src []rune) ([]byte, error) {
	out := make([]byte, 0, len(src))
	var (
		st  locale.State
		buf [locale.MBLenMax]byte
	)
	for _, cp := range src {
		if cp == 0 {
			break
		}
		n, err := C32ToBytes(loc, buf[:], cp, &st)
		if err != nil {
			return out, err
		}
		out = append(out, buf[:n]...)
	}
	return out, nil
}
