// Package thread holds the per-thread state of the libc core: the active
// locale, errno, the strtok cursor, the guest buffers a thread owns, and
// the conversion states used when a caller passes no mbstate_t.
package thread

import (
	"context"
	"sync/atomic"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/locale"
)

// ID identifies a thread within a Table. ID 0 is reserved and always
// invalid.
type ID uint32

// Fallback selects the internal conversion state of one entry point.
type Fallback int

const (
	FallbackMbrtoc16 Fallback = iota
	FallbackC16rtomb
	FallbackMbrtoc32
	FallbackC32rtomb
	FallbackMbrlen
	numFallbacks
)

// Cell names a guest block owned by one thread. Cells are allocated on
// first use and released when the thread exits.
type Cell int

const (
	CellErrno Cell = iota
	CellStrerror
	CellStrsignal
	numCells
)

// Thread is the state one guest thread sees. A Thread is owned by the
// goroutine running that guest thread; only the locale may be read from
// elsewhere.
type Thread struct {
	locale atomic.Pointer[locale.Locale]
	states [numFallbacks]locale.State
	cells  [numCells]uint32
	id     ID
	errno  errno.Errno
	cursor uint32
}

// New creates a detached thread using the default locale.
func New() *Thread {
	t := &Thread{}
	t.locale.Store(locale.Default())
	return t
}

// ID returns the thread's identifier in its Table, or 0 if detached.
func (t *Thread) ID() ID { return t.id }

// Locale returns the active locale.
func (t *Thread) Locale() *locale.Locale {
	return t.locale.Load()
}

// SetLocale switches the active locale and returns the previous one. A nil
// locale restores the default.
func (t *Thread) SetLocale(l *locale.Locale) *locale.Locale {
	if l == nil {
		l = locale.Default()
	}
	return t.locale.Swap(l)
}

func (t *Thread) Errno() errno.Errno     { return t.errno }
func (t *Thread) SetErrno(e errno.Errno) { t.errno = e }

// ErrnoAddr returns the guest address of this thread's errno cell, or 0
// if none has been assigned yet.
func (t *Thread) ErrnoAddr() uint32 { return t.cells[CellErrno] }

func (t *Thread) SetErrnoAddr(ptr uint32) { t.cells[CellErrno] = ptr }

// Cell returns the guest address of a thread-owned block, or 0.
func (t *Thread) Cell(c Cell) uint32 { return t.cells[c] }

func (t *Thread) SetCell(c Cell, ptr uint32) { t.cells[c] = ptr }

// DropCells calls fn for every assigned cell, then forgets them.
func (t *Thread) DropCells(fn func(c Cell, ptr uint32)) {
	for c, ptr := range t.cells {
		if ptr != 0 {
			fn(Cell(c), ptr)
			t.cells[c] = 0
		}
	}
}

// TokenCursor returns where strtok resumes, or 0 when no string is being
// tokenized.
func (t *Thread) TokenCursor() uint32 { return t.cursor }

func (t *Thread) SetTokenCursor(ptr uint32) { t.cursor = ptr }

// State returns the fallback conversion state of an entry point.
func (t *Thread) State(f Fallback) *locale.State {
	return &t.states[f]
}

type ctxKey struct{}

// WithThread returns a context that carries t.
func WithThread(ctx context.Context, t *Thread) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the thread carried by ctx.
func FromContext(ctx context.Context) (*Thread, bool) {
	t, ok := ctx.Value(ctxKey{}).(*Thread)
	return t, ok && t != nil
}
