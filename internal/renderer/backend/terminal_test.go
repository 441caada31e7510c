package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridstorm/internal/renderer/core"
)

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(term.Shutdown)
	sim.SetSize(20, 5)
	return term, sim
}

// nextEvent skips the resize events the simulation screen emits.
func nextEvent(term *Terminal) Event {
	for {
		ev := term.PollEvent()
		if ev.Type != EventResize {
			return ev
		}
	}
}

func TestTerminalCells(t *testing.T) {
	term, _ := newSimTerminal(t)
	if w, h := term.Size(); w != 20 || h != 5 {
		t.Errorf("Size = %d, %d", w, h)
	}

	style := core.DefaultStyle().
		WithForeground(core.RGB(10, 20, 30)).
		WithBackground(core.RGB(200, 100, 0)).
		Bold()
	term.SetCell(2, 1, core.Cell{Rune: 'x', Width: 1, Style: style})
	got := term.GetCell(2, 1)
	if got.Rune != 'x' {
		t.Errorf("rune = %q", got.Rune)
	}
	if got.Style.Foreground != style.Foreground || got.Style.Background != style.Background {
		t.Errorf("colors = %v on %v", got.Style.Foreground, got.Style.Background)
	}
	if !got.Style.Attributes.Has(core.AttrBold) {
		t.Error("bold lost")
	}

	term.Fill(core.RectFromSize(0, 0, 1, 3), core.Cell{Rune: '-', Width: 1, Style: core.DefaultStyle()})
	if got := term.GetCell(1, 0); got.Rune != '-' || !got.Style.Foreground.IsDefault() {
		t.Errorf("filled cell = %+v", got)
	}
}

func TestTerminalKeys(t *testing.T) {
	term, sim := newSimTerminal(t)

	tests := []struct {
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want Event
	}{
		{tcell.KeyRune, 'q', tcell.ModNone, Event{Type: EventKey, Key: KeyRune, Rune: 'q'}},
		{tcell.KeyDown, 0, tcell.ModShift, Event{Type: EventKey, Key: KeyDown, Mod: ModShift}},
		{tcell.KeyBacktab, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyBacktab}},
		{tcell.KeyCtrlZ, 0, tcell.ModCtrl, Event{Type: EventKey, Key: KeyCtrlZ}},
		{tcell.KeyCtrlD, 0, tcell.ModCtrl, Event{Type: EventKey, Key: KeyCtrlD}},
		{tcell.KeyF12, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyNone}},
	}
	for _, tt := range tests {
		sim.InjectKey(tt.key, tt.r, tt.mod)
		got := nextEvent(term)
		if got.Type != tt.want.Type || got.Key != tt.want.Key || got.Mod != tt.want.Mod {
			t.Errorf("key %v: got %+v, want %+v", tt.key, got, tt.want)
		}
		if tt.want.Rune != 0 && got.Rune != tt.want.Rune {
			t.Errorf("key %v: rune %q", tt.key, got.Rune)
		}
	}
}

func TestTerminalMouse(t *testing.T) {
	term, sim := newSimTerminal(t)

	sim.InjectMouse(4, 2, tcell.Button1, tcell.ModCtrl)
	ev := nextEvent(term)
	if ev.Type != EventMouse || ev.MouseX != 4 || ev.MouseY != 2 || ev.Button != MouseLeft || !ev.Mod.Has(ModCtrl) {
		t.Errorf("mouse event = %+v", ev)
	}

	sim.InjectMouse(0, 0, tcell.WheelDown, tcell.ModNone)
	if ev := nextEvent(term); ev.Button != MouseWheelDown {
		t.Errorf("wheel event = %+v", ev)
	}
}

func TestTerminalPostEvent(t *testing.T) {
	term, _ := newSimTerminal(t)

	ran := false
	term.PostEvent(Event{Type: EventInterrupt, Func: func() { ran = true }})
	ev := nextEvent(term)
	if ev.Type != EventInterrupt || ev.Func == nil {
		t.Fatalf("interrupt event = %+v", ev)
	}
	ev.Func()
	if !ran {
		t.Error("callback not carried through")
	}

	term.PostEvent(Event{Type: EventKey, Key: KeyEnter})
	if ev := nextEvent(term); ev.Key != KeyEnter {
		t.Errorf("posted key = %+v", ev)
	}
}
