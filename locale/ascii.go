package locale

import "github.com/wippyai/wasm-libc/errors"

// ASCII is the codec of the "C" and "POSIX" locales.
type ASCII struct{}

func (ASCII) codec() {}

func (ASCII) Codeset() string { return "US-ASCII" }

func (ASCII) MaxLen() int { return 1 }

func (ASCII) Decode(dst *rune, src []byte, st *State) (int, error) {
	if len(src) < 1 {
		return 0, ErrIncomplete
	}
	if src[0] > 0x7f {
		return 0, errors.IllegalSequence(errors.PhaseDecode, "US-ASCII", src[0])
	}
	*dst = rune(src[0])
	st.Reset()
	return 1, nil
}

func (ASCII) Encode(dst []byte, cp rune, _ *State) (int, error) {
	if cp < 0 || cp > 0x7f {
		return 0, errors.IllegalSequence(errors.PhaseEncode, "US-ASCII", cp)
	}
	if len(dst) < 1 {
		return 0, shortBuffer(1, len(dst))
	}
	dst[0] = byte(cp)
	return 1, nil
}
