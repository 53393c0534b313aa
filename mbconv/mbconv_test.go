package mbconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/locale"
)

func TestBytesToC16_BMP(t *testing.T) {
	var (
		st locale.State
		u  uint16
	)
	n, err := BytesToC16(locale.CUTF8, &u, []byte("€uro"), &st)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint16(0x20ac), u)
	assert.True(t, Mbsinit(&st))
}

func TestBytesToC16_SurrogatePair(t *testing.T) {
	var (
		st locale.State
		u  uint16
	)
	src := []byte("\U0001F30D!")

	n, err := BytesToC16(locale.CUTF8, &u, src, &st)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, uint16(0xd83c), u)
	assert.False(t, Mbsinit(&st))

	n, err = BytesToC16(locale.CUTF8, &u, src[n:], &st)
	require.NoError(t, err)
	assert.Equal(t, Stored, n)
	assert.Equal(t, uint16(0xdf0d), u)
	assert.True(t, Mbsinit(&st))

	n, err = BytesToC16(locale.CUTF8, &u, src[4:], &st)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint16('!'), u)
}

func TestBytesToC16_NilSourceFlushesSurrogate(t *testing.T) {
	var (
		st locale.State
		u  uint16
	)
	_, err := BytesToC16(locale.CUTF8, &u, []byte("\U00010000"), &st)
	require.NoError(t, err)
	require.False(t, Mbsinit(&st))

	n, err := BytesToC16(locale.CUTF8, &u, nil, &st)
	require.NoError(t, err)
	assert.Equal(t, Stored, n)
	assert.Equal(t, uint16(0xd800), u, "a nil source must not write the caller's unit")
	assert.True(t, Mbsinit(&st))
}

func TestBytesToC16_NUL(t *testing.T) {
	var (
		st locale.State
		u  uint16 = 0xffff
	)
	n, err := BytesToC16(locale.CUTF8, &u, []byte{0, 'x'}, &st)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint16(0), u)
	assert.True(t, Mbsinit(&st))

	n, err = BytesToC16(locale.CUTF8, &u, nil, &st)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a nil source on an initial state reads NUL")
}

func TestBytesToC16_Incomplete(t *testing.T) {
	var (
		st locale.State
		u  uint16
	)
	n, err := BytesToC16(locale.CUTF8, &u, []byte{0xf0, 0x9f}, &st)
	assert.Equal(t, Incomplete, n)
	assert.ErrorIs(t, err, locale.ErrIncomplete)
	assert.Equal(t, errno.Errno(0), errno.Of(err), "incomplete sets no errno")
	assert.False(t, Mbsinit(&st))

	n, err = BytesToC16(locale.CUTF8, &u, []byte{}, &st)
	assert.Equal(t, Incomplete, n)
	assert.ErrorIs(t, err, locale.ErrIncomplete)
	assert.False(t, Mbsinit(&st), "an empty read keeps the state")

	n, err = BytesToC16(locale.CUTF8, &u, []byte{0x8c, 0x8d}, &st)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint16(0xd83c), u)

	n, _ = BytesToC16(locale.CUTF8, &u, []byte{}, &st)
	assert.Equal(t, Stored, n)
	assert.Equal(t, uint16(0xdf0d), u)
}

func TestBytesToC16_Illegal(t *testing.T) {
	var (
		st locale.State
		u  uint16
	)
	n, err := BytesToC16(locale.CUTF8, &u, []byte{0xff}, &st)
	assert.Equal(t, Illegal, n)
	assert.ErrorIs(t, err, errno.EILSEQ)

	n, err = BytesToC16(locale.C, &u, []byte("é"), &st)
	assert.Equal(t, Illegal, n)
	assert.ErrorIs(t, err, errno.EILSEQ)
}

func TestC16ToBytes(t *testing.T) {
	t.Run("bmp", func(t *testing.T) {
		var st locale.State
		buf := make([]byte, locale.MBLenMax)
		n, err := C16ToBytes(locale.CUTF8, buf, 0xe9, &st)
		require.NoError(t, err)
		assert.Equal(t, "é", string(buf[:n]))
	})

	t.Run("pair", func(t *testing.T) {
		var st locale.State
		buf := make([]byte, locale.MBLenMax)
		n, err := C16ToBytes(locale.CUTF8, buf, 0xd83c, &st)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.False(t, Mbsinit(&st))

		n, err = C16ToBytes(locale.CUTF8, buf, 0xdf0d, &st)
		require.NoError(t, err)
		assert.Equal(t, "\U0001F30D", string(buf[:n]))
		assert.True(t, Mbsinit(&st))
	})

	t.Run("unpaired high", func(t *testing.T) {
		var st locale.State
		buf := make([]byte, locale.MBLenMax)
		_, err := C16ToBytes(locale.CUTF8, buf, 0xd800, &st)
		require.NoError(t, err)
		n, err := C16ToBytes(locale.CUTF8, buf, 'A', &st)
		assert.Equal(t, Illegal, n)
		assert.ErrorIs(t, err, errno.EILSEQ)
	})

	t.Run("lone low", func(t *testing.T) {
		var st locale.State
		buf := make([]byte, locale.MBLenMax)
		n, err := C16ToBytes(locale.CUTF8, buf, 0xdc00, &st)
		assert.Equal(t, Illegal, n)
		assert.ErrorIs(t, err, errno.EILSEQ)
	})

	t.Run("ascii locale", func(t *testing.T) {
		var st locale.State
		buf := make([]byte, locale.MBLenMax)
		n, err := C16ToBytes(locale.C, buf, 'z', &st)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = C16ToBytes(locale.C, buf, 0xe9, &st)
		assert.Equal(t, Illegal, n)
		assert.ErrorIs(t, err, errno.EILSEQ)
	})

	t.Run("nil dst", func(t *testing.T) {
		var st locale.State
		n, err := C16ToBytes(locale.CUTF8, nil, 0x20ac, &st)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "nil dst encodes NUL")
		assert.True(t, Mbsinit(&st))
	})
}

func TestC32(t *testing.T) {
	var st locale.State
	buf := make([]byte, locale.MBLenMax)

	for _, cp := range []rune{'A', 0xe9, 0x20ac, 0x1f30d, 0x10ffff} {
		n, err := C32ToBytes(locale.CUTF8, buf, cp, &st)
		require.NoError(t, err)

		var got rune
		m, err := BytesToC32(locale.CUTF8, &got, buf[:n], &st)
		require.NoError(t, err)
		assert.Equal(t, n, m)
		assert.Equal(t, cp, got)
	}

	for _, cp := range []rune{0xd800, 0xdfff, 0x110000, -1} {
		n, err := C32ToBytes(locale.CUTF8, buf, cp, &st)
		assert.Equal(t, Illegal, n, "cp %#x", cp)
		assert.ErrorIs(t, err, errno.EILSEQ)
	}

	n, err := C32ToBytes(locale.CUTF8, buf[:2], 0x20ac, &st)
	assert.Equal(t, Illegal, n)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errno.EILSEQ)
}

func TestBytesToC32_NilArguments(t *testing.T) {
	var st locale.State

	n, err := BytesToC32(locale.CUTF8, nil, []byte("€"), &st)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = BytesToC32(locale.CUTF8, nil, []byte{0xe2}, &st)
	require.ErrorIs(t, err, locale.ErrIncomplete)

	n, err = BytesToC32(locale.CUTF8, nil, nil, &st)
	assert.Equal(t, Illegal, n, "a nil source on an unfinished sequence is an error")
	assert.ErrorIs(t, err, errno.EILSEQ)
	assert.True(t, Mbsinit(&st))
}

func TestMbrlen(t *testing.T) {
	var st locale.State
	n, err := Mbrlen(locale.CUTF8, []byte("\U0001F30D"), &st)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = Mbrlen(locale.CUTF8, []byte{0xe2, 0x82}, &st)
	assert.Equal(t, Incomplete, n)
	assert.ErrorIs(t, err, locale.ErrIncomplete)

	n, err = Mbrlen(locale.CUTF8, []byte{0xac}, &st)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = Mbrlen(locale.CUTF8, []byte{0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMbsinit(t *testing.T) {
	assert.True(t, Mbsinit(nil))
	var st locale.State
	assert.True(t, Mbsinit(&st))
	st.SetSurrogate(0xd800)
	assert.False(t, Mbsinit(&st))
}

func TestStrings(t *testing.T) {
	cps, err := DecodeString(locale.CUTF8, []byte("a€\U0001F30D\x00ignored"))
	require.NoError(t, err)
	assert.Equal(t, []rune{'a', 0x20ac, 0x1f30d}, cps)

	b, err := EncodeString(locale.CUTF8, cps)
	require.NoError(t, err)
	assert.Equal(t, "a€\U0001F30D", string(b))

	b, err = EncodeString(locale.CUTF8, []rune{'o', 'k', 0, 'x'})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))

	_, err = DecodeString(locale.CUTF8, []byte("ab\xe2\x82"))
	assert.ErrorIs(t, err, errno.EILSEQ)

	_, err = EncodeString(locale.C, []rune("naïve"))
	assert.ErrorIs(t, err, errno.EILSEQ)
}
