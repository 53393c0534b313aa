package locale

import "golang.org/x/text/language"

// Locale is an immutable locale descriptor: a name, the language it
// describes, and the codec of its LC_CTYPE category.
type Locale struct {
	codec Codec
	name  string
	tag   language.Tag
}

// New creates a descriptor. A nil codec selects UTF8.
func New(name string, tag language.Tag, codec Codec) *Locale {
	if codec == nil {
		codec = UTF8{}
	}
	return &Locale{name: name, tag: tag, codec: codec}
}

var (
	// C is the "C"/"POSIX" locale: 7-bit ASCII.
	C = New("C", language.Und, ASCII{})

	// CUTF8 is the "C.UTF-8" locale, the default of every thread.
	CUTF8 = New("C.UTF-8", language.Und, UTF8{})
)

// Default returns the locale a new thread starts with.
func Default() *Locale { return CUTF8 }

func (l *Locale) Name() string { return l.name }
func (l *Locale) Tag() language.Tag { return l.tag }
func (l *Locale) Codec() Codec { return l.codec }
func (l *Locale) Codeset() string { return l.codec.Codeset() }
func (l *Locale) MaxLen() int { return l.codec.MaxLen() }
func (l *Locale) String() string { return l.name }
