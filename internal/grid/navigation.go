package grid

// position is a navigation target. posX is the column the user is aiming
// at, which survives moves through rows with wide cells.
type position struct {
	row, cell, posX int
}

// Direction is a keyboard navigation direction.
type Direction int

// Navigation directions. Next and Prev walk cells left to right and then
// row by row, wrapping between rows.
const (
	Up Direction = iota
	Down
	Left
	Right
	Next
	Prev
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Next:
		return "next"
	case Prev:
		return "prev"
	}
	return "unknown"
}

// NavigateUp moves the active cell up. It reports whether it moved.
func (g *Grid) NavigateUp() bool { return g.Navigate(Up) }

// NavigateDown moves the active cell down.
func (g *Grid) NavigateDown() bool { return g.Navigate(Down) }

// NavigateLeft moves the active cell left.
func (g *Grid) NavigateLeft() bool { return g.Navigate(Left) }

// NavigateRight moves the active cell right.
func (g *Grid) NavigateRight() bool { return g.Navigate(Right) }

// NavigateNext moves to the next focusable cell, wrapping to the next row.
func (g *Grid) NavigateNext() bool { return g.Navigate(Next) }

// NavigatePrev moves to the previous focusable cell, wrapping to the
// previous row.
func (g *Grid) NavigatePrev() bool { return g.Navigate(Prev) }

// Navigate commits any open edit and moves the active cell. Next and Prev
// work without an active cell; they start at the first or last cell. It
// returns true when the key was consumed, including when the edit could not
// be committed.
func (g *Grid) Navigate(dir Direction) bool {
	if !g.opts.EnableCellNavigation {
		return false
	}
	if g.activeNode == nil && dir != Next && dir != Prev {
		return false
	}
	if !g.lock.Commit() {
		return true
	}

	var pos position
	var ok bool
	row, cell, posX := g.activeRow, g.activeCell, g.activePosX
	if g.activeNode == nil {
		row, cell, posX = -1, -1, -1
	}
	switch dir {
	case Up:
		pos, ok = g.gotoUp(row, posX)
	case Down:
		pos, ok = g.gotoDown(row, posX)
	case Left:
		pos, ok = g.gotoLeft(row, cell)
	case Right:
		pos, ok = g.gotoRight(row, cell)
	case Next:
		pos, ok = g.gotoNext(row, cell)
	case Prev:
		pos, ok = g.gotoPrev(row, cell)
	}

	if !ok {
		if g.activeNode != nil {
			g.setActiveCellInternal(g.activeRow, g.activeCell, editAuto)
		}
		return false
	}
	isAddNewRow := pos.row == g.data.Len()
	g.ScrollCellIntoView(pos.row, pos.cell, !isAddNewRow)
	g.setActiveCellInternal(pos.row, pos.cell, editAuto)
	g.activePosX = pos.posX
	return true
}

func (g *Grid) gotoRight(row, cell int) (position, bool) {
	n := len(g.columns)
	if cell >= n {
		return position{}, false
	}
	for {
		cell += g.colspan(row, cell)
		if cell >= n || g.CanCellBeActive(row, cell) {
			break
		}
	}
	if cell < n {
		return position{row, cell, cell}, true
	}
	return position{}, false
}

func (g *Grid) gotoLeft(row, cell int) (position, bool) {
	if cell <= 0 {
		return position{}, false
	}
	first, ok := g.firstFocusableCell(row)
	if !ok || first >= cell {
		return position{}, false
	}
	prev := position{row, first, first}
	for {
		pos, ok := g.gotoRight(prev.row, prev.cell)
		if !ok {
			return prev, true
		}
		if pos.cell >= cell {
			return prev, true
		}
		prev = pos
	}
}

// cellAt returns the cell covering column posX in row.
func (g *Grid) cellAt(row, posX int) int {
	prev := 0
	for cell := 0; cell <= posX && cell < len(g.columns); cell += g.colspan(row, cell) {
		prev = cell
	}
	return prev
}

func (g *Grid) gotoDown(row, posX int) (position, bool) {
	dl := g.dataLengthWithAddRow()
	for {
		row++
		if row >= dl {
			return position{}, false
		}
		cell := g.cellAt(row, posX)
		if g.CanCellBeActive(row, cell) {
			return position{row, cell, posX}, true
		}
	}
}

func (g *Grid) gotoUp(row, posX int) (position, bool) {
	for {
		row--
		if row < 0 {
			return position{}, false
		}
		cell := g.cellAt(row, posX)
		if g.CanCellBeActive(row, cell) {
			return position{row, cell, posX}, true
		}
	}
}

func (g *Grid) gotoNext(row, cell int) (position, bool) {
	if row < 0 && cell < 0 {
		row, cell = 0, 0
		if g.CanCellBeActive(row, cell) {
			return position{row, cell, cell}, true
		}
	}
	if pos, ok := g.gotoRight(row, cell); ok {
		return pos, true
	}
	dl := g.dataLengthWithAddRow()
	for row++; row < dl; row++ {
		if first, ok := g.firstFocusableCell(row); ok {
			return position{row, first, first}, true
		}
	}
	return position{}, false
}

func (g *Grid) gotoPrev(row, cell int) (position, bool) {
	if row < 0 && cell < 0 {
		row = g.dataLengthWithAddRow() - 1
		cell = len(g.columns) - 1
		if g.CanCellBeActive(row, cell) {
			return position{row, cell, cell}, true
		}
	}
	for {
		if pos, ok := g.gotoLeft(row, cell); ok {
			return pos, true
		}
		row--
		if row < 0 {
			return position{}, false
		}
		if last, ok := g.lastFocusableCell(row); ok {
			return position{row, last, last}, true
		}
		cell = 0
	}
}

func (g *Grid) firstFocusableCell(row int) (int, bool) {
	for cell := 0; cell < len(g.columns); cell += g.colspan(row, cell) {
		if g.CanCellBeActive(row, cell) {
			return cell, true
		}
	}
	return -1, false
}

func (g *Grid) lastFocusableCell(row int) (int, bool) {
	last := -1
	for cell := 0; cell < len(g.columns); cell += g.colspan(row, cell) {
		if g.CanCellBeActive(row, cell) {
			last = cell
		}
	}
	return last, last >= 0
}
