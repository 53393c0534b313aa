package locale

import "github.com/wippyai/wasm-libc/errors"

// UTF8 is the codec of the "C.UTF-8" locale and every *.UTF-8 locale.
type UTF8 struct{}

func (UTF8) codec() {}

func (UTF8) Codeset() string { return "UTF-8" }

func (UTF8) MaxLen() int { return 4 }

func (UTF8) Decode(dst *rune, src []byte, st *State) (int, error) {
	if len(src) < 1 {
		return 0, ErrIncomplete
	}

	i := 0
	left, cp, lower := st.bytesLeft, st.partial, st.lowerBound
	if left == 0 {
		b := src[0]
		i = 1
		switch {
		case b < 0x80:
			*dst = rune(b)
			st.Reset()
			return 1, nil
		case b < 0xc2:
			// stray continuation byte or overlong two-byte lead
			st.Reset()
			return 0, errors.IllegalSequence(errors.PhaseDecode, "UTF-8", b)
		case b < 0xe0:
			left, cp, lower = 1, rune(b&0x1f), 0x80
		case b < 0xf0:
			left, cp, lower = 2, rune(b&0x0f), 0x800
		case b < 0xf5:
			left, cp, lower = 3, rune(b&0x07), 0x10000
		default:
			st.Reset()
			return 0, errors.IllegalSequence(errors.PhaseDecode, "UTF-8", b)
		}
	}

	for ; left > 0 && i < len(src); i++ {
		b := src[i]
		if b&0xc0 != 0x80 {
			st.Reset()
			return 0, errors.IllegalSequence(errors.PhaseDecode, "UTF-8", b)
		}
		cp = cp<<6 | rune(b&0x3f)
		left--
		if !viable(cp, left, lower) {
			st.Reset()
			return 0, errors.IllegalSequence(errors.PhaseDecode, "UTF-8", b)
		}
	}

	if left > 0 {
		st.setMultibyte(left, cp, lower)
		return 0, ErrIncomplete
	}

	st.Reset()
	*dst = cp
	return i, nil
}

// viable reports whether a sequence holding cp with left continuation
// bytes still to come can end in a scalar value of at least lower. It
// rejects overlong forms, surrogates and values past U+10FFFF at the first
// byte that rules them out.
func viable(cp rune, left uint32, lower rune) bool {
	shift := 6 * left
	lo := cp << shift
	hi := lo | (rune(1)<<shift - 1)
	return hi >= lower && lo <= 0x10ffff && (lo < surrogateMin || hi > surrogateMax)
}

func (UTF8) Encode(dst []byte, cp rune, _ *State) (int, error) {
	var n int
	switch {
	case cp < 0:
		return 0, errors.IllegalSequence(errors.PhaseEncode, "UTF-8", cp)
	case cp < 0x80:
		n = 1
	case cp < 0x800:
		n = 2
	case cp >= surrogateMin && cp <= surrogateMax:
		return 0, errors.IllegalSequence(errors.PhaseEncode, "UTF-8", cp)
	case cp < 0x10000:
		n = 3
	case cp <= 0x10ffff:
		n = 4
	default:
		return 0, errors.IllegalSequence(errors.PhaseEncode, "UTF-8", cp)
	}
	if len(dst) < n {
		return 0, shortBuffer(n, len(dst))
	}

	switch n {
	case 1:
		dst[0] = byte(cp)
	case 2:
		dst[0] = 0xc0 | byte(cp>>6)
		dst[1] = 0x80 | byte(cp)&0x3f
	case 3:
		dst[0] = 0xe0 | byte(cp>>12)
		dst[1] = 0x80 | byte(cp>>6)&0x3f
		dst[2] = 0x80 | byte(cp)&0x3f
	default:
		dst[0] = 0xf0 | byte(cp>>18)
		dst[1] = 0x80 | byte(cp>>12)&0x3f
		dst[2] = 0x80 | byte(cp>>6)&0x3f
		dst[3] = 0x80 | byte(cp)&0x3f
	}
	return n, nil
}
