// Package ctype classifies bytes the way the C "C" locale does.
//
// Only ASCII is classified; every byte >= 0x80 is in no class. The
// integer parser uses these predicates as its classification oracle.
package ctype

const (
	upper = 1 << iota
	lower
	digit
	space
	hex
	punct
	cntrl
	blank
)

var table [256]uint8

func init() {
	for c := 0; c < 0x80; c++ {
		var f uint8
		switch {
		case c >= 'A' && c <= 'Z':
			f |= upper
		case c >= 'a' && c <= 'z':
			f |= lower
		case c >= '0' && c <= '9':
			f |= digit
		}
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			f |= hex
		}
		switch c {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			f |= space
		}
		if c == ' ' || c == '\t' {
			f |= blank
		}
		if c < 0x20 || c == 0x7f {
			f |= cntrl
		}
		if c > 0x20 && c < 0x7f && f&(upper|lower|digit) == 0 {
			f |= punct
		}
		table[c] = f
	}
}

func IsSpace(c byte) bool  { return table[c]&space != 0 }
func IsBlank(c byte) bool  { return table[c]&blank != 0 }
func IsDigit(c byte) bool  { return table[c]&digit != 0 }
func IsXDigit(c byte) bool { return table[c]&hex != 0 }
func IsUpper(c byte) bool  { return table[c]&upper != 0 }
func IsLower(c byte) bool  { return table[c]&lower != 0 }
func IsAlpha(c byte) bool  { return table[c]&(upper|lower) != 0 }
func IsAlnum(c byte) bool  { return table[c]&(upper|lower|digit) != 0 }
func IsPunct(c byte) bool  { return table[c]&punct != 0 }
func IsCntrl(c byte) bool  { return table[c]&cntrl != 0 }

// IsPrint reports printable characters including space.
func IsPrint(c byte) bool { return c >= 0x20 && c < 0x7f }

// ToLower maps A-Z to a-z and leaves other bytes unchanged.
func ToLower(c byte) byte {
	if IsUpper(c) {
		return c | 0x20
	}
	return c
}

// ToUpper maps a-z to A-Z and leaves other bytes unchanged.
func ToUpper(c byte) byte {
	if IsLower(c) {
		return c &^ 0x20
	}
	return c
}

// DigitValue maps 0-9 to 0-9 and letters (either case) to 10-35.
// Bytes outside those ranges report ok == false.
func DigitValue(c byte) (v int, ok bool) {
	switch {
	case IsDigit(c):
		return int(c - '0'), true
	case IsAlpha(c):
		return int(ToLower(c)-'a') + 10, true
	}
	return 0, false
}
