package grid

import (
	"github.com/dshills/gridstorm/internal/core"
)

// HandleKeyDown processes a keystroke. An open editor sees the key first,
// then OnKeyDown subscribers; either can consume it. It reports whether the
// key was handled.
func (g *Grid) HandleKeyDown(k core.KeyEvent) bool {
	if kh, ok := g.editor.(core.KeyHandler); ok && kh.HandleKey(k) {
		return true
	}
	if !g.OnKeyDown.Notify(KeyDownArgs{Row: g.activeRow, Cell: g.activeCell, Key: k}, k) {
		return true
	}

	if k.Key == core.KeyBacktab || (k.Key == core.KeyTab && k.Shift()) {
		return g.NavigatePrev()
	}
	if !k.Plain() {
		return false
	}

	switch k.Key {
	case core.KeyEscape:
		if !g.lock.IsActive() {
			return false
		}
		g.cancelEditAndSetFocus()
		return true
	case core.KeyPageDown:
		g.NavigatePageDown()
		return true
	case core.KeyPageUp:
		g.NavigatePageUp()
		return true
	case core.KeyLeft:
		return g.NavigateLeft()
	case core.KeyRight:
		return g.NavigateRight()
	case core.KeyUp:
		return g.NavigateUp()
	case core.KeyDown:
		return g.NavigateDown()
	case core.KeyTab:
		return g.NavigateNext()
	case core.KeyEnter:
		if g.opts.Editable && g.editor != nil {
			if g.activeRow == g.data.Len() {
				g.NavigateDown()
			} else {
				g.commitEditAndSetFocus()
			}
		} else if g.lock.Commit() {
			if err := g.makeActiveCellEditable(nil); err != nil {
				g.log.Debug("enter: %v", err)
			}
		}
		return true
	case core.KeyF2:
		if g.editor == nil && g.opts.Editable {
			if err := g.makeActiveCellEditable(nil); err != nil {
				g.log.Debug("f2: %v", err)
			}
			return true
		}
	}
	return false
}

// CellFromPoint maps a point in viewport coordinates to the cell under it.
// A cell spanning several columns is reported by its first column.
func (g *Grid) CellFromPoint(x, y int) (row, cell int, ok bool) {
	if x < 0 || y < 0 || x >= g.viewportW || y >= g.viewportH {
		return -1, -1, false
	}
	row = g.rowFromPosition(y + g.scrollTop)
	if row < 0 || row >= g.dataLengthWithAddRow() {
		return -1, -1, false
	}
	px := x + g.scrollLeft
	for c := 0; c < len(g.columns); c += g.colspan(row, c) {
		last := min(len(g.columns)-1, c+g.colspan(row, c)-1)
		if px >= g.posLeft[c] && px < g.posRight[last] {
			return row, c, true
		}
	}
	return -1, -1, false
}

// HandleClick activates the clicked cell after publishing OnClick, which
// can stop it.
func (g *Grid) HandleClick(row, cell int, mod core.ModMask) {
	if !g.validCell(row, cell) {
		return
	}
	if g.editor != nil && g.activeRow == row && g.activeCell == cell {
		return
	}
	if !g.OnClick.Notify(ClickArgs{Row: row, Cell: cell, Mod: mod}, mod) {
		return
	}
	if (g.activeCell != cell || g.activeRow != row) && g.CanCellBeActive(row, cell) {
		if !g.lock.IsActive() || g.lock.Commit() {
			g.ScrollRowIntoView(row, false)
			g.setActiveCellInternal(row, cell, editAuto)
		}
	}
}

// HandleDblClick publishes OnDblClick and, unless stopped, opens the cell's
// editor.
func (g *Grid) HandleDblClick(row, cell int, mod core.ModMask) {
	if !g.validCell(row, cell) {
		return
	}
	if !g.OnDblClick.Notify(ClickArgs{Row: row, Cell: cell, Mod: mod}, mod) {
		return
	}
	if g.opts.Editable {
		g.GotoCell(row, cell, true)
	}
}

// HandleHeaderClick activates the header of column cell, sorting by it.
func (g *Grid) HandleHeaderClick(cell int) {
	g.ToggleSort(cell)
}

func (g *Grid) validCell(row, cell int) bool {
	return row >= 0 && row < g.dataLengthWithAddRow() && cell >= 0 && cell < len(g.columns)
}
