package thread

import (
	"context"
	"sync"
	"testing"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/locale"
)

func TestThread_Defaults(t *testing.T) {
	th := New()
	if th.Locale() != locale.CUTF8 {
		t.Errorf("default locale = %s, want C.UTF-8", th.Locale())
	}
	if th.Errno() != 0 || th.ErrnoAddr() != 0 || th.ID() != 0 {
		t.Errorf("fresh thread not zeroed: errno=%v addr=%d id=%d", th.Errno(), th.ErrnoAddr(), th.ID())
	}
	for f := FallbackMbrtoc16; f < numFallbacks; f++ {
		if !th.State(f).IsInitial() {
			t.Errorf("fallback %d not initial", f)
		}
	}
}

func TestThread_SetLocale(t *testing.T) {
	th := New()
	prev := th.SetLocale(locale.C)
	if prev != locale.CUTF8 || th.Locale() != locale.C {
		t.Errorf("SetLocale: prev=%s now=%s", prev, th.Locale())
	}
	th.SetLocale(nil)
	if th.Locale() != locale.Default() {
		t.Errorf("nil locale should restore the default, got %s", th.Locale())
	}
}

func TestThread_FallbackStatesAreIndependent(t *testing.T) {
	th := New()
	th.State(FallbackMbrtoc16).SetSurrogate(0xdc00)
	if !th.State(FallbackC16rtomb).IsInitial() {
		t.Error("states of different entry points must not alias")
	}
	if _, ok := th.State(FallbackMbrtoc16).Surrogate(); !ok {
		t.Error("State must return the stored state, not a copy")
	}
}

func TestThread_Errno(t *testing.T) {
	th := New()
	th.SetErrno(errno.EILSEQ)
	th.SetErrnoAddr(0x1000)
	if th.Errno() != errno.EILSEQ || th.ErrnoAddr() != 0x1000 {
		t.Errorf("errno=%v addr=%#x", th.Errno(), th.ErrnoAddr())
	}
}

func TestContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should carry no thread")
	}
	th := New()
	got, ok := FromContext(WithThread(context.Background(), th))
	if !ok || got != th {
		t.Error("thread not recovered from context")
	}
	if _, ok := FromContext(WithThread(context.Background(), nil)); ok {
		t.Error("nil thread should not be reported")
	}
}

func TestTable_SpawnExit(t *testing.T) {
	tbl := NewTable()
	a, err := tbl.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tbl.Spawn()
	if a.ID() != 1 || b.ID() != 2 {
		t.Errorf("ids = %d, %d", a.ID(), b.ID())
	}
	if got, ok := tbl.Get(a.ID()); !ok || got != a {
		t.Error("Get did not return the spawned thread")
	}

	if !tbl.Exit(a.ID()) {
		t.Fatal("Exit failed")
	}
	if tbl.Exit(a.ID()) {
		t.Error("double Exit should fail")
	}
	if _, ok := tbl.Get(a.ID()); ok {
		t.Error("exited thread still visible")
	}

	c, _ := tbl.Spawn()
	if c.ID() != a.ID() {
		t.Errorf("id %d not reused, got %d", a.ID(), c.ID())
	}
	if c == a {
		t.Error("reused id must get a fresh thread")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}

	if _, ok := tbl.Get(0); ok {
		t.Error("id 0 must be invalid")
	}
	if _, ok := tbl.Get(99); ok {
		t.Error("unknown id resolved")
	}
}

func TestTable_ObserversAndClose(t *testing.T) {
	tbl := NewTable()
	var mu sync.Mutex
	var events []Event
	tbl.Subscribe(ObserverFunc(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	th, _ := tbl.Spawn()
	tbl.Spawn()
	if err := tbl.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Spawn(); err != ErrClosed {
		t.Errorf("Spawn after Close: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[0].Type != EventStarted || events[0].Thread != th {
		t.Errorf("first event = %+v", events[0])
	}
	exited := 0
	for _, e := range events {
		if e.Type == EventExited {
			exited++
		}
	}
	if exited != 2 {
		t.Errorf("exited events = %d", exited)
	}

	count := 0
	tbl.Each(func(*Thread) bool { count++; return true })
	if count != 0 {
		t.Errorf("Each after Close visited %d threads", count)
	}
}

func TestThread_Cells(t *testing.T) {
	th := New()
	th.SetErrnoAddr(0x100)
	th.SetCell(CellStrsignal, 0x200)
	th.SetTokenCursor(0x300)

	if th.Cell(CellErrno) != 0x100 || th.Cell(CellStrerror) != 0 {
		t.Errorf("cells = %#x %#x", th.Cell(CellErrno), th.Cell(CellStrerror))
	}

	dropped := map[Cell]uint32{}
	th.DropCells(func(c Cell, ptr uint32) { dropped[c] = ptr })
	if len(dropped) != 2 || dropped[CellErrno] != 0x100 || dropped[CellStrsignal] != 0x200 {
		t.Errorf("dropped = %v", dropped)
	}
	if th.ErrnoAddr() != 0 || th.Cell(CellStrsignal) != 0 {
		t.Error("cells not cleared")
	}
	th.DropCells(func(Cell, uint32) { t.Error("cleared cells dropped twice") })

	if th.TokenCursor() != 0x300 {
		t.Errorf("cursor = %#x", th.TokenCursor())
	}
}
