package renderer

import (
	"slices"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/renderer/backend"
	"github.com/dshills/gridstorm/internal/renderer/core"
	"github.com/dshills/gridstorm/internal/renderer/dirty"
)

// Options configures a Renderer.
type Options struct {
	Theme Theme

	// StatusLine reserves the last line of the area for Status text.
	StatusLine bool

	// AlignRightClass right-aligns the text of cells carrying it.
	AlignRightClass string

	Logger *logging.Logger
}

// DefaultOptions returns the default theme with a status line.
func DefaultOptions() Options {
	return Options{
		Theme:           DefaultTheme(),
		StatusLine:      true,
		AlignRightClass: "align-right",
	}
}

// Stats counts the renderer's work.
type Stats struct {
	Frames       int
	LinesPainted int
	FullRedraws  int
}

// Renderer paints grid frames onto a backend, repainting only the lines
// that changed.
type Renderer struct {
	mu sync.Mutex

	backend backend.Backend
	opts    Options
	log     *logging.Logger

	area    core.ScreenRect
	tracker *dirty.Tracker
	lines   [][]core.Cell
	status  string

	stats Stats
}

// New creates a renderer covering the whole backend screen.
func New(b backend.Backend, opts Options) *Renderer {
	if opts.Theme.Classes == nil {
		opts.Theme = DefaultTheme()
	}
	w, h := b.Size()
	r := &Renderer{
		backend: b,
		opts:    opts,
		log:     logging.OrDefault(opts.Logger).WithComponent("renderer"),
		tracker: dirty.NewTracker(0),
	}
	r.Resize(core.RectFromSize(0, 0, h, w))
	return r
}

// Resize moves the renderer to area and repaints everything on the next
// frame.
func (r *Renderer) Resize(area core.ScreenRect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.area = area
	r.lines = make([][]core.Cell, area.Height())
	r.tracker.SetScreenSize(area.Height())
	r.log.Debug("resized to %dx%d", area.Width(), area.Height())
}

// GridSize returns the size a grid container should have to fill the
// area, leaving room for the status line.
func (r *Renderer) GridSize() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.area.Height()
	if r.opts.StatusLine {
		h--
	}
	return r.area.Width(), max(h, 0)
}

// SetTheme replaces the theme and repaints everything on the next frame.
func (r *Renderer) SetTheme(t Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.Classes == nil {
		t.Classes = map[string]core.Style{}
	}
	r.opts.Theme = t
	r.tracker.MarkFullRedraw()
}

// Theme returns the current theme.
func (r *Renderer) Theme() Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.Theme
}

// Status sets the status line text shown by the next Render.
func (r *Renderer) Status(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = text
}

// Stats returns the work counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Render paints f and shows the result.
func (r *Renderer) Render(f grid.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, height := r.area.Width(), r.area.Height()
	canvas := newCanvas(width, height, r.opts.Theme.Cell)

	gridHeight := height
	if r.opts.StatusLine && height > 0 {
		gridHeight--
		canvas.text(gridHeight, 0, width, r.status, r.opts.Theme.Status, false)
	}
	r.paintFrame(canvas, f, gridHeight)

	full := r.tracker.NeedsFullRedraw()
	for y, line := range canvas.lines {
		if !slices.Equal(line, r.lines[y]) {
			r.tracker.MarkLine(y)
		}
	}
	if full || r.tracker.NeedsFullRedraw() {
		r.stats.FullRedraws++
	}
	for _, y := range r.tracker.DirtyLines() {
		for x, c := range canvas.lines[y] {
			r.backend.SetCell(r.area.Left+x, r.area.Top+y, c)
		}
		r.stats.LinesPainted++
	}
	r.lines = canvas.lines
	r.tracker.Clear()

	if x, y, ok := editorCursor(f, gridHeight); ok && x < width {
		r.backend.ShowCursor(r.area.Left+x, r.area.Top+y)
	} else {
		r.backend.HideCursor()
	}
	r.backend.Show()
	r.stats.Frames++
}

func (r *Renderer) paintFrame(c *canvas, f grid.Frame, gridHeight int) {
	t := r.opts.Theme
	width := min(c.width, f.Width)

	if f.HeaderHeight > 0 && len(f.Header) > 0 {
		for y := 0; y < min(f.HeaderHeight, gridHeight); y++ {
			c.fill(y, 0, width, t.Header)
		}
		for _, h := range f.Header {
			style := t.Header
			label := h.Text
			switch {
			case h.HasClass("sorted-asc"):
				style, label = t.Sorted, label+t.SortAsc
			case h.HasClass("sorted-desc"):
				style, label = t.Sorted, label+t.SortDesc
			}
			r.paintCell(c, 0, h.Left, h.Width, width, label, style, false)
		}
	}

	for _, row := range f.Rows {
		rowStyle := t.rowStyle(row.HasClass)
		top := f.HeaderHeight + row.Top
		for y := max(top, f.HeaderHeight); y < min(top+f.RowHeight, gridHeight); y++ {
			c.fill(y, 0, width, rowStyle)
		}
		if top < f.HeaderHeight || top >= gridHeight {
			continue
		}
		for _, cell := range row.Cells {
			style := t.cellStyle(rowStyle, cell.Classes, cell.HasClass)
			right := r.opts.AlignRightClass != "" && cell.HasClass(r.opts.AlignRightClass)
			r.paintCell(c, top, cell.Left, cell.Width, width, cell.Text, style, right)
		}
	}
}

// paintCell lays text out in width-1 columns followed by the separator,
// then copies the part inside [0, limit).
func (r *Renderer) paintCell(c *canvas, y, left, width, limit int, text string, style core.Style, right bool) {
	if width <= 0 {
		return
	}
	content := fitText(text, width-1, right)
	cells := core.CellsFromString(content, style)
	sepStyle := style.Merge(core.Style{Attributes: core.AttrDim})
	cells = append(cells, core.Cell{Rune: r.opts.Theme.Separator, Width: 1, Style: sepStyle})
	for i, cell := range cells {
		x := left + i
		if x < 0 || x >= limit {
			continue
		}
		c.set(x, y, cell)
	}
}

// fitText truncates or pads s to exactly width columns. Newlines become
// spaces.
func fitText(s string, width int, right bool) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = runewidth.Truncate(s, width, "…")
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// editorCursor places the cursor after the text of the cell being edited.
func editorCursor(f grid.Frame, gridHeight int) (x, y int, ok bool) {
	for _, row := range f.Rows {
		top := f.HeaderHeight + row.Top
		if top < f.HeaderHeight || top >= gridHeight {
			continue
		}
		for _, cell := range row.Cells {
			if cell.HasClass("editable") {
				w := min(runewidth.StringWidth(cell.Text), max(cell.Width-2, 0))
				x := cell.Left + w
				if x < 0 {
					return 0, 0, false
				}
				return x, top, true
			}
		}
	}
	return 0, 0, false
}

type canvas struct {
	width int
	lines [][]core.Cell
}

func newCanvas(width, height int, style core.Style) *canvas {
	c := &canvas{width: width, lines: make([][]core.Cell, height)}
	for y := range c.lines {
		c.lines[y] = make([]core.Cell, width)
		c.fill(y, 0, width, style)
	}
	return c
}

func (c *canvas) set(x, y int, cell core.Cell) {
	if y >= 0 && y < len(c.lines) && x >= 0 && x < c.width {
		c.lines[y][x] = cell
	}
}

func (c *canvas) fill(y, from, to int, style core.Style) {
	blank := core.EmptyCell()
	blank.Style = style
	for x := max(from, 0); x < min(to, c.width); x++ {
		c.set(x, y, blank)
	}
}

func (c *canvas) text(y, left, width int, s string, style core.Style, right bool) {
	c.fill(y, left, left+width, style)
	for i, cell := range core.CellsFromString(fitText(s, width, right), style) {
		c.set(left+i, y, cell)
	}
}
