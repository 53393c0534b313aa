package locale

import (
	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
)

var (
	// ErrIllegalSequence matches every EILSEQ failure of a codec.
	ErrIllegalSequence error = errno.EILSEQ

	// ErrIncomplete reports a valid prefix that needs more input. The
	// bytes read so far are kept in the State.
	ErrIncomplete = &errors.Error{
		Phase:  errors.PhaseDecode,
		Kind:   errors.KindIncomplete,
		Detail: "incomplete multibyte sequence",
	}
)

// Codec converts between one character encoding and 32-bit code points.
// The set of codecs is closed: ASCII and UTF8.
type Codec interface {
	// Codeset returns the nl_langinfo(CODESET) name.
	Codeset() string

	// MaxLen returns the longest encoding of one code point (MB_CUR_MAX).
	MaxLen() int

	// Decode reads one character from src into dst and returns the number
	// of bytes it used. Partial sequences are buffered in st and reported
	// with ErrIncomplete.
	Decode(dst *rune, src []byte, st *State) (int, error)

	// Encode writes cp into dst and returns the number of bytes written.
	Encode(dst []byte, cp rune, st *State) (int, error)

	codec()
}

func shortBuffer(need, have int) error {
	return errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
		Detail("need %d bytes, buffer holds %d", need, have).
		Build()
}
