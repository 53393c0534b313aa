// Package mbconv implements the <uchar.h> conversions between multibyte
// strings of the active locale and UTF-16 or UTF-32 code units.
//
// Each function performs one step and reports its result the way C does:
// a byte count, 0 for NUL, or one of the negative sentinels Illegal,
// Incomplete and Stored. Conversion state lives in a locale.State that the
// caller threads through consecutive calls.
//
//	var st locale.State
//	var u uint16
//	src := []byte("\U0001F30D!")
//	n, _ := mbconv.BytesToC16(locale.CUTF8, &u, src, &st)     // n == 4, u == 0xD83C
//	n, _ = mbconv.BytesToC16(locale.CUTF8, &u, src[4:], &st)  // n == Stored, u == 0xDF0D
//	n, _ = mbconv.BytesToC16(locale.CUTF8, &u, src[4:], &st)  // n == 1, u == '!'
package mbconv
