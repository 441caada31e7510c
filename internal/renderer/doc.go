// Package renderer paints grid frames onto a backend.
//
// A Renderer takes the grid.Frame snapshot of what the grid shows, lays
// every visible row out as terminal cells, styles the cells from their
// CSS classes through a Theme and hands the lines that changed since the
// previous frame to the backend:
//
//	grid.Frame ──▶ compose ──▶ diff (dirty.Tracker) ──▶ backend.Backend
//
// Screen coordinates come from the frame directly, so a grid built for
// the terminal uses a RowHeight of 1 and column widths in cells. Taller
// rows are painted with their text on the first line.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, renderer.DefaultOptions())
//	r.Render(g.Frame())
package renderer
