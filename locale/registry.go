package locale

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
)

// Handle identifies a registered locale across the C ABI. Zero is invalid.
type Handle uint32

// Handles of the built-in locales, fixed in every Registry.
const (
	HandleC     Handle = 1
	HandleCUTF8 Handle = 2
)

// Registry maps locale names and ABI handles to descriptors.
// Safe for concurrent use.
type Registry struct {
	byName  map[string]*Locale
	handles map[*Locale]Handle
	entries []*Locale
	mu      sync.RWMutex
}

// NewRegistry creates a registry holding the built-in locales.
func NewRegistry() *Registry {
	r := &Registry{
		byName:  make(map[string]*Locale),
		handles: make(map[*Locale]Handle),
	}
	r.add(C, "POSIX")
	r.add(CUTF8, "C.utf8")
	return r
}

func (r *Registry) add(l *Locale, aliases ...string) Handle {
	r.entries = append(r.entries, l)
	h := Handle(len(r.entries))
	r.handles[l] = h
	r.byName[l.name] = l
	for _, a := range aliases {
		r.byName[a] = l
	}
	return h
}

// Register adds l under its name and returns its handle. Registering the
// same descriptor twice returns the existing handle.
func (r *Registry) Register(l *Locale) (Handle, error) {
	if l == nil || l.name == "" {
		return 0, errors.InvalidArgument(errors.PhaseLocale, "locale must have a name", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[l]; ok {
		return h, nil
	}
	if _, taken := r.byName[l.name]; taken {
		return 0, errors.New(errors.PhaseLocale, errors.KindRegistration).
			Detail("locale %q already registered", l.name).
			Code(errno.EEXIST).
			Build()
	}
	return r.add(l), nil
}

// Handle returns the handle of l, registering it if needed.
func (r *Registry) Handle(l *Locale) Handle {
	r.mu.RLock()
	h, ok := r.handles[l]
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[l]; ok {
		return h
	}
	return r.add(l)
}

// ByHandle resolves an ABI handle.
func (r *Registry) ByHandle(h Handle) (*Locale, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.entries) {
		return nil, false
	}
	return r.entries[h-1], true
}

// Names returns every registered name and alias, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Lookup resolves a locale name. Accepted forms are registered names
// ("C", "POSIX", "C.UTF-8") and language[_territory][.codeset][@modifier]
// names such as "en_US.UTF-8". Resolved names are registered so later
// lookups return the same descriptor.
func (r *Registry) Lookup(name string) (*Locale, error) {
	r.mu.RLock()
	l, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	l, err := parseName(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[l.name]; ok {
		r.byName[name] = existing
		return existing, nil
	}
	r.add(l, name)
	return l, nil
}

func parseName(name string) (*Locale, error) {
	notFound := func() error {
		e := errors.NotFound(errors.PhaseLocale, "locale", name)
		e.Code = errno.ENOENT
		return e
	}
	if name == "" {
		return nil, notFound()
	}

	base, _, _ := strings.Cut(name, "@")
	lang, codeset, hasCodeset := strings.Cut(base, ".")

	var codec Codec = ASCII{}
	if hasCodeset {
		c, ok := codecByName(codeset)
		if !ok {
			return nil, notFound()
		}
		codec = c
	}

	if lang == "C" || lang == "POSIX" {
		if _, ok := codec.(UTF8); ok {
			return CUTF8, nil
		}
		return C, nil
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return nil, notFound()
	}

	canonical := lang
	if hasCodeset {
		canonical += "." + codec.Codeset()
	}
	return New(canonical, tag, codec), nil
}

// codecByName normalizes codeset spellings the way glibc does: case and
// punctuation are ignored.
func codecByName(codeset string) (Codec, bool) {
	var b strings.Builder
	for i := 0; i < len(codeset); i++ {
		c := codeset[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c | 0x20)
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			b.WriteByte(c)
		}
	}
	switch b.String() {
	case "utf8":
		return UTF8{}, true
	case "ascii", "usascii", "ansix341968", "646":
		return ASCII{}, true
	}
	return nil, false
}
