package core

// Key identifies a non-printable key, or KeyRune for text input.
type Key int

// Keys understood by the grid and its editors.
const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyF2
)

// ModMask is a set of modifier keys.
type ModMask uint8

// Modifiers.
const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModNone ModMask = 0
)

// KeyEvent is a keystroke delivered to the grid.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mod  ModMask
}

// Has reports whether m includes every modifier in o.
func (m ModMask) Has(o ModMask) bool {
	return m&o == o
}

// Shift reports whether only shift is held.
func (e KeyEvent) Shift() bool {
	return e.Mod == ModShift
}

// Plain reports whether no modifiers are held.
func (e KeyEvent) Plain() bool {
	return e.Mod == ModNone
}
