package locale

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/wippyai/wasm-libc/errors"
)

// Encoding returns an x/text encoding that converts between the locale's
// multibyte form and UTF-8. Unlike the x/text charmaps it never
// substitutes: unencodable input fails with ErrIllegalSequence.
func (l *Locale) Encoding() encoding.Encoding {
	return localeEncoding{codec: l.codec}
}

type localeEncoding struct {
	codec Codec
}

func (e localeEncoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{codec: e.codec}}
}

func (e localeEncoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{codec: e.codec}}
}

// decoder transforms locale bytes to UTF-8, one character per step.
type decoder struct {
	codec Codec
}

func (d *decoder) Reset() {}

func (d *decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		var (
			cp rune
			st State
		)
		n, err := d.codec.Decode(&cp, src[nSrc:], &st)
		if err == ErrIncomplete {
			if atEOF {
				return nDst, nSrc, errors.IllegalSequence(errors.PhaseDecode, d.codec.Codeset(), src[nSrc:])
			}
			return nDst, nSrc, transform.ErrShortSrc
		}
		if err != nil {
			return nDst, nSrc, err
		}
		if utf8.RuneLen(cp) > len(dst)-nDst {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], cp)
		nSrc += n
	}
	return nDst, nSrc, nil
}

// encoder transforms UTF-8 to locale bytes.
type encoder struct {
	codec Codec
}

func (e *encoder) Reset() {}

func (e *encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	var buf [MBLenMax]byte
	for nSrc < len(src) {
		cp, size := utf8.DecodeRune(src[nSrc:])
		if cp == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, errors.IllegalSequence(errors.PhaseEncode, "UTF-8", src[nSrc])
		}
		var st State
		n, err := e.codec.Encode(buf[:], cp, &st)
		if err != nil {
			return nDst, nSrc, err
		}
		if n > len(dst)-nDst {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], buf[:n])
		nSrc += size
	}
	return nDst, nSrc, nil
}
