// Package locale provides the locale descriptors and character codecs of
// the libc core.
//
// Two codecs ship with the library: ASCII (locale "C", alias "POSIX") and
// UTF8 (locale "C.UTF-8", the default of every thread). Both implement
// Codec, a closed interface stepping one character at a time between bytes
// and 32-bit code points. Partial input is kept in a State (mbstate_t) so
// a character split across calls decodes correctly.
//
// A Registry resolves names such as "en_US.UTF-8" to descriptors (the
// language part is parsed with golang.org/x/text/language) and assigns the
// numeric handles guests see.
//
// Locale.Encoding adapts a descriptor to golang.org/x/text/encoding for
// bulk conversion from Go code.
package locale
