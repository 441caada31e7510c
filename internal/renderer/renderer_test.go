package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/renderer/backend"
)

func testOptions(status bool) Options {
	opts := DefaultOptions()
	opts.StatusLine = status
	opts.Logger = logging.Null()
	return opts
}

func newRenderedGrid(t *testing.T, sb *backend.ScreenBuffer, r *Renderer, rows int) *grid.Grid {
	t.Helper()
	items := make([]item.Item, rows)
	for i := range items {
		items[i] = item.Record{"id": i, "title": fmt.Sprintf("Task %d", i), "done": i%2 == 0}
	}
	cols := []core.Column{
		{ID: "id", Name: "ID", Field: "id", Width: 5, CSSClass: "align-right"},
		{ID: "title", Name: "Title", Field: "title", Width: 10, Sortable: true},
		{ID: "done", Name: "Done", Field: "done", Width: 6},
	}

	w, h := r.GridSize()
	container := dom.NewNode("div")
	container.Width, container.Height = w, h

	opts := grid.DefaultOptions()
	opts.RowHeight = 1
	opts.Logger = logging.Null()
	g, err := grid.New(container, grid.ItemSlice(items), cols, opts)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func TestRenderGrid(t *testing.T) {
	sb := backend.NewScreenBuffer(24, 6)
	r := New(sb, testOptions(true))
	g := newRenderedGrid(t, sb, r, 8)

	r.Status("8 rows")
	r.Render(g.Frame())

	want := []string{
		"ID  │Title    │Done │",
		"   0│Task 0   │true │",
		"   1│Task 1   │false│",
		"   2│Task 2   │true │",
		"   3│Task 3   │false│",
		"8 rows",
	}
	for y, w := range want {
		if got := sb.Line(y); got != w {
			t.Errorf("line %d = %q, want %q", y, got, w)
		}
	}

	theme := r.Theme()
	if bg := sb.GetCell(6, 2).Style.Background; bg != theme.OddRow.Background {
		t.Errorf("odd row background = %v, want %v", bg, theme.OddRow.Background)
	}
	if bg := sb.GetCell(6, 1).Style.Background; bg != theme.Cell.Background {
		t.Errorf("even row background = %v", bg)
	}
	if s := r.Stats(); s.Frames != 1 || s.LinesPainted != 6 || s.FullRedraws != 1 {
		t.Errorf("first frame stats = %+v", s)
	}
}

func TestRenderRepaintsChangedLines(t *testing.T) {
	sb := backend.NewScreenBuffer(24, 6)
	r := New(sb, testOptions(true))
	g := newRenderedGrid(t, sb, r, 8)
	r.Render(g.Frame())

	r.Render(g.Frame())
	if s := r.Stats(); s.LinesPainted != 6 || s.Frames != 2 {
		t.Errorf("unchanged frame repainted lines: %+v", s)
	}
	if sb.Changed() != 0 {
		t.Errorf("unchanged frame changed %d cells", sb.Changed())
	}

	g.SetActiveCell(0, 1)
	r.Render(g.Frame())
	if s := r.Stats(); s.LinesPainted != 7 {
		t.Errorf("activating a cell painted %d lines, want 1", s.LinesPainted-6)
	}
	if bg := sb.GetCell(5, 1).Style.Background; bg != r.Theme().Active.Background {
		t.Errorf("active cell background = %v", bg)
	}
	if sb.Changed() != 10 {
		t.Errorf("changed cells = %d, want 10", sb.Changed())
	}
}

func TestRenderScrollAndSort(t *testing.T) {
	sb := backend.NewScreenBuffer(24, 6)
	r := New(sb, testOptions(true))
	g := newRenderedGrid(t, sb, r, 8)

	g.ScrollTo(2)
	g.SetSortColumn("title", false)
	r.Render(g.Frame())

	if got := sb.Line(1); got != "   2│Task 2   │true │" {
		t.Errorf("first row after scroll = %q", got)
	}
	theme := r.Theme()
	if !strings.Contains(sb.Line(0), "Title"+theme.SortDesc) {
		t.Errorf("header = %q", sb.Line(0))
	}
	if fg := sb.GetCell(5, 0).Style.Foreground; fg != theme.Sorted.Foreground {
		t.Errorf("sorted header foreground = %v", fg)
	}
}

func TestRenderTallRowsAndCursor(t *testing.T) {
	sb := backend.NewScreenBuffer(20, 4)
	r := New(sb, testOptions(false))
	f := grid.Frame{
		Width: 20, Height: 4, RowHeight: 2,
		Rows: []grid.FrameRow{
			{Row: 0, Top: -1, Cells: []grid.FrameCell{{Left: 0, Width: 5, Text: "a"}}},
			{Row: 1, Top: 1, Classes: []string{"odd"}, Cells: []grid.FrameCell{
				{Cell: 0, Left: 0, Width: 5, Text: "b"},
				{Cell: 1, Left: 5, Width: 5, Text: "c", Classes: []string{"editable"}},
			}},
		},
	}
	r.Render(f)

	want := []string{"", "b   │c   │", "", ""}
	for y, w := range want {
		if got := sb.Line(y); got != w {
			t.Errorf("line %d = %q, want %q", y, got, w)
		}
	}
	odd := r.Theme().OddRow.Background
	if sb.GetCell(0, 2).Style.Background != odd || sb.GetCell(0, 3).Style.Background == odd {
		t.Error("second line of the tall row not painted with the row style")
	}
	if x, y, ok := sb.Cursor(); !ok || x != 6 || y != 1 {
		t.Errorf("cursor = %d, %d, %v; want 6, 1", x, y, ok)
	}

	f.Rows[1].Cells[1].Classes = nil
	r.Render(f)
	if _, _, ok := sb.Cursor(); ok {
		t.Error("cursor shown without an editor")
	}
}

func TestRenderClipsCells(t *testing.T) {
	sb := backend.NewScreenBuffer(8, 1)
	r := New(sb, testOptions(false))
	r.Render(grid.Frame{
		Width: 8, Height: 1, RowHeight: 1,
		Rows: []grid.FrameRow{{Cells: []grid.FrameCell{
			{Cell: 0, Left: -3, Width: 6, Text: "abcdef"},
			{Cell: 1, Left: 3, Width: 8, Text: "long text here"},
		}}},
	})
	if got := sb.Line(0); got != "de…│long" {
		t.Errorf("clipped line = %q", got)
	}
}

func TestSetThemeRepaints(t *testing.T) {
	sb := backend.NewScreenBuffer(24, 6)
	r := New(sb, testOptions(true))
	g := newRenderedGrid(t, sb, r, 8)
	r.Render(g.Frame())

	r.SetTheme(MonoTheme())
	r.Render(g.Frame())
	if s := r.Stats(); s.FullRedraws != 2 || s.LinesPainted != 12 {
		t.Errorf("stats after theme change = %+v", s)
	}
	if got := sb.Line(0); got != "ID  |Title    |Done |" {
		t.Errorf("mono header = %q", got)
	}
}

func TestFitText(t *testing.T) {
	tests := []struct {
		s     string
		width int
		right bool
		want  string
	}{
		{"abc", 5, false, "abc  "},
		{"abc", 5, true, "  abc"},
		{"abcdef", 4, false, "abc…"},
		{"a\nb", 3, false, "a b"},
		{"x", 0, false, ""},
		{"日本語", 4, false, "日… "},
	}
	for _, tt := range tests {
		if got := fitText(tt.s, tt.width, tt.right); got != tt.want {
			t.Errorf("fitText(%q, %d, %v) = %q, want %q", tt.s, tt.width, tt.right, got, tt.want)
		}
	}
}
