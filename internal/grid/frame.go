package grid

import (
	"maps"
	"slices"
	"strings"

	"github.com/dshills/gridstorm/internal/dom"
)

// Frame is a snapshot of what the grid shows, in viewport coordinates,
// for painting.
type Frame struct {
	Width, Height int
	RowHeight     int
	HeaderHeight  int

	ScrollTop, ScrollLeft int

	Header []FrameCell
	Rows   []FrameRow
}

// FrameRow is one rendered row. Top is relative to the viewport and may be
// negative for a partially visible row.
type FrameRow struct {
	Row     int
	Top     int
	Classes []string
	Cells   []FrameCell
}

// FrameCell is one rendered cell or column header. Left is relative to the
// viewport.
type FrameCell struct {
	Cell    int
	Left    int
	Width   int
	Text    string
	Classes []string
}

// HasClass reports whether the row carries class.
func (r FrameRow) HasClass(class string) bool {
	return slices.Contains(r.Classes, class)
}

// HasClass reports whether the cell carries class.
func (c FrameCell) HasClass(class string) bool {
	return slices.Contains(c.Classes, class)
}

// Frame snapshots the rendered rows that intersect the viewport.
func (g *Grid) Frame() Frame {
	f := Frame{
		Width:        g.viewportW,
		Height:       g.viewportH,
		RowHeight:    g.opts.RowHeight,
		HeaderHeight: g.headerHeight(),
		ScrollTop:    g.scrollTop,
		ScrollLeft:   g.scrollLeft,
	}
	if !g.opts.HideColumnHeader {
		for i, n := range g.header.Children() {
			f.Header = append(f.Header, FrameCell{
				Cell:    i,
				Left:    n.Left - g.scrollLeft,
				Width:   n.Width,
				Text:    n.Text,
				Classes: n.Classes(),
			})
		}
	}

	for _, row := range g.cachedRows() {
		rc := g.rows[row]
		top := rc.node.Top - g.scrollTop
		if top+rc.node.Height <= 0 || top >= g.viewportH {
			continue
		}
		g.ensureCellNodes(row)
		fr := FrameRow{Row: row, Top: top, Classes: rc.node.Classes()}
		for _, cell := range slices.Sorted(maps.Keys(rc.cells)) {
			n := rc.cells[cell]
			left := n.Left - g.scrollLeft
			if left+n.Width <= 0 || left >= g.viewportW {
				continue
			}
			fr.Cells = append(fr.Cells, FrameCell{
				Cell:    cell,
				Left:    left,
				Width:   n.Width,
				Text:    cellText(n.Text, n.Children()),
				Classes: n.Classes(),
			})
		}
		f.Rows = append(f.Rows, fr)
	}
	return f
}

// cellText is the cell's own text followed by the text of any nodes an
// editor or post-render callback placed inside it.
func cellText(text string, children []*dom.Node) string {
	if len(children) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for _, c := range children {
		if !c.Hidden {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}
