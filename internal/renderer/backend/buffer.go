package backend

import (
	"strings"
	"sync"

	"github.com/dshills/gridstorm/internal/renderer/core"
)

// ScreenBuffer is an in-memory Backend. It keeps the cells written since
// the last Show apart from the shown ones, so callers can count what a
// frame changed.
type ScreenBuffer struct {
	width, height int
	front         [][]core.Cell
	back          [][]core.Cell

	cursorX, cursorY int
	cursorVisible    bool
	shows            int
	changed          int

	mu     sync.Mutex
	events []Event
	wake   chan struct{}
}

// NewScreenBuffer creates a buffer of the given size.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{wake: make(chan struct{}, 1)}
	sb.Resize(width, height)
	return sb
}

func newPlane(width, height int) [][]core.Cell {
	plane := make([][]core.Cell, height)
	for y := range plane {
		plane[y] = make([]core.Cell, width)
		for x := range plane[y] {
			plane[y][x] = core.EmptyCell()
		}
	}
	return plane
}

// Resize changes the size, keeping the content that still fits.
func (sb *ScreenBuffer) Resize(width, height int) {
	back := newPlane(width, height)
	for y := 0; y < min(height, sb.height); y++ {
		copy(back[y], sb.back[y][:min(width, sb.width)])
	}
	sb.width, sb.height = width, height
	sb.back = back
	sb.front = newPlane(width, height)
}

func (sb *ScreenBuffer) Init() error { return nil }
func (sb *ScreenBuffer) Shutdown()   {}

func (sb *ScreenBuffer) Size() (int, int) {
	return sb.width, sb.height
}

func (sb *ScreenBuffer) SetCell(x, y int, cell core.Cell) {
	if x >= 0 && x < sb.width && y >= 0 && y < sb.height {
		sb.back[y][x] = cell
	}
}

func (sb *ScreenBuffer) GetCell(x, y int) core.Cell {
	if x >= 0 && x < sb.width && y >= 0 && y < sb.height {
		return sb.back[y][x]
	}
	return core.EmptyCell()
}

func (sb *ScreenBuffer) Fill(rect core.ScreenRect, cell core.Cell) {
	r := rect.Intersection(core.RectFromSize(0, 0, sb.height, sb.width))
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			sb.back[y][x] = cell
		}
	}
}

func (sb *ScreenBuffer) Clear() {
	sb.Fill(core.RectFromSize(0, 0, sb.height, sb.width), core.EmptyCell())
}

// Show publishes the written cells and records how many differ from the
// previous Show.
func (sb *ScreenBuffer) Show() {
	sb.changed = 0
	for y := range sb.back {
		for x, c := range sb.back[y] {
			if c != sb.front[y][x] {
				sb.front[y][x] = c
				sb.changed++
			}
		}
	}
	sb.shows++
}

// Changed returns the number of cells the last Show changed.
func (sb *ScreenBuffer) Changed() int {
	return sb.changed
}

// Shows returns how many times Show was called.
func (sb *ScreenBuffer) Shows() int {
	return sb.shows
}

func (sb *ScreenBuffer) ShowCursor(x, y int) {
	sb.cursorX, sb.cursorY, sb.cursorVisible = x, y, true
}

func (sb *ScreenBuffer) HideCursor() {
	sb.cursorVisible = false
}

// Cursor returns the cursor position and whether it is shown.
func (sb *ScreenBuffer) Cursor() (x, y int, visible bool) {
	return sb.cursorX, sb.cursorY, sb.cursorVisible
}

// PollEvent returns the oldest posted event, waiting for one if needed.
func (sb *ScreenBuffer) PollEvent() Event {
	for {
		sb.mu.Lock()
		if len(sb.events) > 0 {
			ev := sb.events[0]
			sb.events = sb.events[1:]
			sb.mu.Unlock()
			return ev
		}
		sb.mu.Unlock()
		<-sb.wake
	}
}

func (sb *ScreenBuffer) PostEvent(ev Event) {
	sb.mu.Lock()
	sb.events = append(sb.events, ev)
	sb.mu.Unlock()
	select {
	case sb.wake <- struct{}{}:
	default:
	}
}

// Line returns the shown text of row y with trailing blanks removed.
func (sb *ScreenBuffer) Line(y int) string {
	if y < 0 || y >= sb.height {
		return ""
	}
	return strings.TrimRight(core.StringFromCells(sb.front[y]), " ")
}

// String returns every shown line, newline separated.
func (sb *ScreenBuffer) String() string {
	lines := make([]string, sb.height)
	for y := range lines {
		lines[y] = sb.Line(y)
	}
	return strings.Join(lines, "\n")
}
