package thread

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("thread table closed")

// EventType distinguishes thread lifecycle events.
type EventType uint8

const (
	EventStarted EventType = iota
	EventExited
)

// Event represents a thread lifecycle event.
type Event struct {
	Thread *Thread
	ID     ID
	Type   EventType
}

// Observer receives notifications about thread lifecycle events.
type Observer interface {
	OnThreadEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnThreadEvent(e Event) { f(e) }

// Table tracks the live threads of one process. IDs of exited threads are
// reused.
type Table struct {
	entries   []*Thread
	freeList  []ID
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty thread table.
func NewTable() *Table {
	return &Table{
		entries:  make([]*Thread, 0, 4),
		freeList: make([]ID, 0, 4),
	}
}

// Spawn creates a thread with the default locale and registers it.
func (t *Table) Spawn() (*Thread, error) {
	th := New()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	if n := len(t.freeList); n > 0 {
		th.id = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[th.id-1] = th
	} else {
		t.entries = append(t.entries, th)
		th.id = ID(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventStarted, ID: th.id, Thread: th})
	return th, nil
}

// Get retrieves a live thread by ID.
func (t *Table) Get(id ID) (*Thread, bool) {
	if id == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(id) > len(t.entries) {
		return nil, false
	}
	th := t.entries[id-1]
	return th, th != nil
}

// Exit unregisters a thread. It reports false if id is not live.
func (t *Table) Exit(id ID) bool {
	if id == 0 {
		return false
	}

	t.mu.Lock()
	if int(id) > len(t.entries) || t.entries[id-1] == nil {
		t.mu.Unlock()
		return false
	}
	th := t.entries[id-1]
	t.entries[id-1] = nil
	t.freeList = append(t.freeList, id)
	t.mu.Unlock()

	t.notify(Event{Type: EventExited, ID: id, Thread: th})
	return true
}

// Len returns the number of live threads.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, th := range t.entries {
		if th != nil {
			count++
		}
	}
	return count
}

// Each iterates over live threads until fn returns false.
func (t *Table) Each(fn func(*Thread) bool) {
	t.mu.RLock()
	live := make([]*Thread, 0, len(t.entries))
	for _, th := range t.entries {
		if th != nil {
			live = append(live, th)
		}
	}
	t.mu.RUnlock()

	for _, th := range live {
		if !fn(th) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Close exits every live thread and rejects further spawns.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	var ids []ID
	for _, th := range t.entries {
		if th != nil {
			ids = append(ids, th.id)
		}
	}
	t.mu.Unlock()

	for _, id := range ids {
		t.Exit(id)
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	observers := make([]Observer, len(t.observers))
	copy(observers, t.observers)
	t.obsMu.RUnlock()

	for _, o := range observers {
		o.OnThreadEvent(e)
	}
}
