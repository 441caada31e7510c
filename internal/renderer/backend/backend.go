// Package backend abstracts the display the renderer paints to.
package backend

import "github.com/dshills/gridstorm/internal/renderer/core"

// EventType identifies a backend event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	// EventInterrupt carries a callback posted from another goroutine.
	EventInterrupt
)

// Event is a terminal event.
type Event struct {
	Type EventType

	Key  Key
	Rune rune
	Mod  ModMask

	MouseX, MouseY int
	Button         MouseButton

	Width, Height int

	// Func is set for EventInterrupt.
	Func func()
}

// Key is a keyboard key.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // printable character in Event.Rune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF2
	KeyCtrlC
	KeyCtrlD
	KeyCtrlN
	KeyCtrlP
	KeyCtrlR
	KeyCtrlZ
	KeyCtrlY
)

// IsCtrl reports whether k is one of the control keys.
func (k Key) IsCtrl() bool {
	return k >= KeyCtrlC && k <= KeyCtrlY
}

// ModMask is the set of held modifiers.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains mod.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is the mouse button state.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Backend is a cell display.
type Backend interface {
	// Init prepares the display. It must be called first.
	Init() error

	// Shutdown releases the display and restores the terminal.
	Shutdown()

	// Size returns the display size in cells.
	Size() (width, height int)

	// SetCell sets one cell. Positions outside the display are ignored.
	SetCell(x, y int, cell core.Cell)

	// GetCell returns a cell, or an empty cell outside the display.
	GetCell(x, y int) core.Cell

	// Fill sets every cell of rect.
	Fill(rect core.ScreenRect, cell core.Cell)

	// Clear blanks the display.
	Clear()

	// Show makes the changes since the last Show visible.
	Show()

	ShowCursor(x, y int)
	HideCursor()

	// PollEvent blocks until the next event.
	PollEvent() Event

	// PostEvent queues an event for PollEvent. It is safe to call from any
	// goroutine.
	PostEvent(ev Event)
}
