package mbconv

import (
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/locale"
)

// Results below zero mirror the (size_t)-1/-2/-3 returns of <uchar.h>.
const (
	// Illegal reports an encoding error; the error matches errno.EILSEQ.
	Illegal = -1

	// Incomplete reports a valid but unfinished multibyte sequence. All
	// input was consumed into the state.
	Incomplete = -2

	// Stored reports a 16-bit unit delivered from the state without
	// consuming input: the low half of a surrogate pair.
	Stored = -3
)

var nulString = []byte{0}

// BytesToC16 decodes the next character of src into one UTF-16 unit
// (mbrtoc16). Characters beyond the BMP are returned as a high surrogate
// now and a low surrogate, reported as Stored, on the next call with the
// same state.
//
// A nil src checks the state as if decoding "". A nil dst discards the
// unit. A nil st uses a state local to this call.
func BytesToC16(loc *locale.Locale, dst *uint16, src []byte, st *locale.State) (int, error) {
	var scratch uint16
	if src == nil {
		src = nulString
		dst = &scratch
	} else if dst == nil {
		dst = &scratch
	}
	if st == nil {
		st = new(locale.State)
	}

	if low, ok := st.Surrogate(); ok {
		*dst = low
		st.Reset()
		return Stored, nil
	}

	var cp rune
	n, err := decode(loc, &cp, src, st)
	if err != nil {
		return n, err
	}

	if cp > 0xffff {
		cp -= 0x10000
		*dst = 0xd800 | uint16(cp>>10)
		st.SetSurrogate(0xdc00 | uint16(cp&0x3ff))
		return n, nil
	}

	*dst = uint16(cp)
	if cp == 0 {
		return 0, nil
	}
	return n, nil
}

// C16ToBytes encodes one UTF-16 unit into dst (c16rtomb). A high
// surrogate is buffered in st and produces no bytes; the following low
// surrogate completes the pair.
//
// A nil dst encodes NUL into scratch space, which returns st to the
// initial state.
func C16ToBytes(loc *locale.Locale, dst []byte, unit uint16, st *locale.State) (int, error) {
	var scratch [locale.MBLenMax]byte
	if dst == nil {
		dst, unit = scratch[:], 0
	}
	if st == nil {
		st = new(locale.State)
	}

	var cp rune
	if high, ok := st.Surrogate(); ok {
		if unit < 0xdc00 || unit > 0xdfff {
			return Illegal, errors.IllegalSequence(errors.PhaseEncode, "UTF-16", unit)
		}
		cp = 0x10000 + (rune(high&0x3ff)<<10 | rune(unit&0x3ff))
	} else if unit >= 0xd800 && unit <= 0xdbff {
		st.SetSurrogate(unit)
		return 0, nil
	} else {
		cp = rune(unit)
	}

	return encode(loc, dst, cp, st)
}

// BytesToC32 decodes the next character of src (mbrtoc32). It returns the
// number of bytes that completed the character, 0 for NUL, Incomplete or
// Illegal.
//
// A nil src checks the state as if decoding "". A nil dst discards the
// code point.
func BytesToC32(loc *locale.Locale, dst *rune, src []byte, st *locale.State) (int, error) {
	var scratch rune
	if src == nil {
		src = nulString
		dst = &scratch
	} else if dst == nil {
		dst = &scratch
	}
	if st == nil {
		st = new(locale.State)
	}

	n, err := decode(loc, dst, src, st)
	if err != nil {
		return n, err
	}
	if *dst == 0 {
		return 0, nil
	}
	return n, nil
}

// C32ToBytes encodes cp into dst (c32rtomb). A nil dst encodes NUL into
// scratch space, which returns st to the initial state.
func C32ToBytes(loc *locale.Locale, dst []byte, cp rune, st *locale.State) (int, error) {
	var scratch [locale.MBLenMax]byte
	if dst == nil {
		dst, cp = scratch[:], 0
	}
	if st == nil {
		st = new(locale.State)
	}
	return encode(loc, dst, cp, st)
}

// Mbsinit reports whether st describes the initial conversion state. A
// nil state is initial.
func Mbsinit(st *locale.State) bool {
	return st.IsInitial()
}

// Mbrlen returns the length of the next character of src without storing
// it (mbrlen).
func Mbrlen(loc *locale.Locale, src []byte, st *locale.State) (int, error) {
	return BytesToC32(loc, nil, src, st)
}

func decode(loc *locale.Locale, dst *rune, src []byte, st *locale.State) (int, error) {
	if len(src) == 0 {
		return Incomplete, locale.ErrIncomplete
	}
	n, err := loc.Codec().Decode(dst, src, st)
	switch {
	case err == locale.ErrIncomplete:
		return Incomplete, err
	case err != nil:
		return Illegal, err
	}
	return n, nil
}

func encode(loc *locale.Locale, dst []byte, cp rune, st *locale.State) (int, error) {
	n, err := loc.Codec().Encode(dst, cp, st)
	if err != nil {
		return Illegal, err
	}
	st.Reset()
	return n, nil
}
