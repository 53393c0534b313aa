package locale

import "encoding/binary"

// StateSize is the size in bytes of a State in guest memory (mbstate_t).
const StateSize = 16

// MBLenMax bounds the encoded length of one character in any locale.
const MBLenMax = 16

const (
	surrogateMin = 0xd800
	surrogateMax = 0xdfff
)

// State carries an in-flight conversion across calls (mbstate_t).
//
// A State is INITIAL, or pending in exactly one way: a buffered UTF-16
// surrogate, or a partially read multibyte sequence owned by the codec.
// The zero value is INITIAL. A State is not safe for concurrent use.
type State struct {
	surrogate  uint16
	bytesLeft  uint32
	partial    rune
	lowerBound rune
}

func isSurrogate(u uint16) bool {
	return u >= surrogateMin && u <= surrogateMax
}

// IsInitial reports whether no conversion is pending.
func (s *State) IsInitial() bool {
	return s == nil || (!isSurrogate(s.surrogate) && s.bytesLeft == 0)
}

// Reset returns s to INITIAL.
func (s *State) Reset() {
	if s != nil {
		*s = State{}
	}
}

// Surrogate returns the buffered surrogate, if any.
func (s *State) Surrogate() (uint16, bool) {
	if !isSurrogate(s.surrogate) {
		return 0, false
	}
	return s.surrogate, true
}

// SetSurrogate buffers a surrogate half. u must lie in [0xD800, 0xDFFF].
func (s *State) SetSurrogate(u uint16) {
	if !isSurrogate(u) {
		panic("locale: surrogate out of range")
	}
	*s = State{surrogate: u}
}

// BytesLeft reports how many continuation bytes the pending multibyte
// sequence still needs.
func (s *State) BytesLeft() int {
	return int(s.bytesLeft)
}

func (s *State) setMultibyte(left uint32, partial, lowerBound rune) {
	*s = State{bytesLeft: left, partial: partial, lowerBound: lowerBound}
}

// Load decodes s from its little-endian guest layout. b must hold at
// least StateSize bytes.
func (s *State) Load(b []byte) {
	_ = b[StateSize-1]
	s.surrogate = uint16(binary.LittleEndian.Uint32(b[0:]))
	s.bytesLeft = binary.LittleEndian.Uint32(b[4:])
	s.partial = rune(binary.LittleEndian.Uint32(b[8:]))
	s.lowerBound = rune(binary.LittleEndian.Uint32(b[12:]))
	if s.bytesLeft > 3 {
		// Not produced by any codec; treat foreign bytes as INITIAL.
		*s = State{surrogate: s.surrogate}
	}
}

// Store encodes s into its little-endian guest layout.
func (s *State) Store(b []byte) {
	_ = b[StateSize-1]
	binary.LittleEndian.PutUint32(b[0:], uint32(s.surrogate))
	binary.LittleEndian.PutUint32(b[4:], s.bytesLeft)
	binary.LittleEndian.PutUint32(b[8:], uint32(s.partial))
	binary.LittleEndian.PutUint32(b[12:], uint32(s.lowerBound))
}
