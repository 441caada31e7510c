package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridstorm/internal/renderer/core"
)

// Terminal is a Backend drawing to a terminal through tcell.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a backend for the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalScreen wraps an existing screen, such as a tcell simulation
// screen.
func NewTerminalScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	if cell.IsContinuation() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
}

func (t *Terminal) GetCell(x, y int) core.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, _, style, width := t.screen.GetContent(x, y)
	return core.Cell{Rune: r, Width: width, Style: convertTcellStyle(style)}
}

func (t *Terminal) Fill(rect core.ScreenRect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	r := rect.Intersection(core.RectFromSize(0, 0, h, w))
	style := convertStyle(cell.Style)
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			t.screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.HideCursor()
}

func (t *Terminal) PollEvent() Event {
	return convertEvent(t.screen.PollEvent())
}

// PostEvent queues interrupts and key events. Others are dropped.
func (t *Terminal) PostEvent(ev Event) {
	switch ev.Type {
	case EventInterrupt:
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(ev.Func)) // queue full drops the callback
	case EventKey:
		_ = t.screen.PostEvent(tcell.NewEventKey(toTcellKey(ev.Key), ev.Rune, toTcellMod(ev.Mod)))
	}
}

// HasTrueColor returns true if the terminal shows 24-bit colour.
func (t *Terminal) HasTrueColor() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Colors() > 256
}

func convertColor(c core.Color) tcell.Color {
	if c.IsDefault() {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(convertColor(s.Foreground)).
		Background(convertColor(s.Background))
	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	return style
}

func convertTcellColor(c tcell.Color) core.Color {
	if c == tcell.ColorDefault {
		return core.ColorDefault
	}
	r, g, b := c.RGB()
	return core.RGB(uint8(r), uint8(g), uint8(b))
}

func convertTcellStyle(ts tcell.Style) core.Style {
	fg, bg, attrs := ts.Decompose()
	s := core.Style{Foreground: convertTcellColor(fg), Background: convertTcellColor(bg)}
	for _, a := range []struct {
		tc  tcell.AttrMask
		own core.Attribute
	}{
		{tcell.AttrBold, core.AttrBold},
		{tcell.AttrDim, core.AttrDim},
		{tcell.AttrItalic, core.AttrItalic},
		{tcell.AttrUnderline, core.AttrUnderline},
		{tcell.AttrReverse, core.AttrReverse},
	} {
		if attrs&a.tc != 0 {
			s.Attributes |= a.own
		}
	}
	return s
}

func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		key, mod := convertKey(e.Key()), convertMod(e.Modifiers())
		if key == KeyRune && mod.Has(ModCtrl) {
			if k, ok := ctrlRunes[e.Rune()]; ok {
				key = k
			}
		}
		if key.IsCtrl() {
			mod &^= ModCtrl
		}
		return Event{Type: EventKey, Key: key, Rune: e.Rune(), Mod: mod}
	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:   EventMouse,
			MouseX: x,
			MouseY: y,
			Button: convertButtons(e.Buttons()),
			Mod:    convertMod(e.Modifiers()),
		}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	case *tcell.EventInterrupt:
		fn, _ := e.Data().(func())
		return Event{Type: EventInterrupt, Func: fn}
	}
	return Event{Type: EventNone}
}

var keyMap = map[tcell.Key]Key{
	tcell.KeyRune:       KeyRune,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyF2:         KeyF2,
	tcell.KeyCtrlC:      KeyCtrlC,
	tcell.KeyCtrlD:      KeyCtrlD,
	tcell.KeyCtrlN:      KeyCtrlN,
	tcell.KeyCtrlP:      KeyCtrlP,
	tcell.KeyCtrlR:      KeyCtrlR,
	tcell.KeyCtrlY:      KeyCtrlY,
	tcell.KeyCtrlZ:      KeyCtrlZ,
}

// ctrlRunes maps the runes some terminals report with a ctrl modifier
// to the matching control keys.
var ctrlRunes = map[rune]Key{
	'c': KeyCtrlC,
	'd': KeyCtrlD,
	'n': KeyCtrlN,
	'p': KeyCtrlP,
	'r': KeyCtrlR,
	'y': KeyCtrlY,
	'z': KeyCtrlZ,
}

func convertKey(k tcell.Key) Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return KeyNone
}

func toTcellKey(k Key) tcell.Key {
	for tk, key := range keyMap {
		if key == k && tk != tcell.KeyBackspace2 {
			return tk
		}
	}
	return tcell.KeyNUL
}

func convertMod(m tcell.ModMask) ModMask {
	var out ModMask
	if m&tcell.ModShift != 0 {
		out |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= ModMeta
	}
	return out
}

func toTcellMod(m ModMask) tcell.ModMask {
	var out tcell.ModMask
	if m.Has(ModShift) {
		out |= tcell.ModShift
	}
	if m.Has(ModCtrl) {
		out |= tcell.ModCtrl
	}
	if m.Has(ModAlt) {
		out |= tcell.ModAlt
	}
	if m.Has(ModMeta) {
		out |= tcell.ModMeta
	}
	return out
}

func convertButtons(b tcell.ButtonMask) MouseButton {
	switch {
	case b&tcell.WheelUp != 0:
		return MouseWheelUp
	case b&tcell.WheelDown != 0:
		return MouseWheelDown
	case b&tcell.Button1 != 0:
		return MouseLeft
	case b&tcell.Button2 != 0:
		return MouseRight
	case b&tcell.Button3 != 0:
		return MouseMiddle
	}
	return MouseNone
}
