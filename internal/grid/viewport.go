package grid

import (
	"math"
	"time"
)

// Range is a span of rows and a horizontal pixel window.
type Range struct {
	Top, Bottom     int
	LeftPx, RightPx int
}

const (
	// minBuffer rows are kept rendered behind the scroll direction.
	minBuffer = 3

	// scrollRenderThreshold is the scroll distance that triggers a render.
	scrollRenderThreshold = 20

	// scrollRenderDelay defers rendering after a jump larger than the
	// viewport.
	scrollRenderDelay = 50 * time.Millisecond
)

func (g *Grid) rowTop(row int) int {
	return g.opts.RowHeight*row - g.offset
}

func (g *Grid) rowFromPosition(y int) int {
	return floorDiv(y+g.offset, g.opts.RowHeight)
}

// ScrollPosition returns the viewport scroll offsets within the canvas.
func (g *Grid) ScrollPosition() (top, left int) {
	return g.scrollTop, g.scrollLeft
}

// VirtualPage returns the active virtual page, the page count and the
// current page offset.
func (g *Grid) VirtualPage() (page, pages, offset int) {
	return g.page, g.n, g.offset
}

// ContentHeight returns the full height of all rows and the height of the
// rendered canvas, which is smaller when virtual paging is in use.
func (g *Grid) ContentHeight() (total, canvas int) {
	return g.th, g.h
}

// UpdateRowCount recomputes the canvas height and virtual pages after the
// number of rows changed, removing rows that no longer exist.
func (g *Grid) UpdateRowCount() {
	if !g.initialized {
		return
	}
	rh := g.opts.RowHeight
	dl := g.dataLengthWithAddRow()
	numberOfRows := dl
	if g.opts.LeaveSpaceForNewRows {
		numberOfRows += g.numVisibleRows - 1
	}
	g.hasVScroll = !g.opts.AutoHeight && numberOfRows*rh > g.viewportH

	// An edit on a row that still exists stays open. One on a removed row
	// is cancelled through the lock.
	editing := g.editor != nil && g.activeRow >= 0 && g.activeRow < dl
	if g.editor != nil && !editing {
		g.lock.Cancel()
	}

	// Remove rows no longer in the data.
	last := dl - 1
	for _, row := range g.cachedRows() {
		if row >= last && !(editing && row == g.activeRow) {
			g.removeRowFromCache(row)
		}
	}
	if g.activeNode != nil && g.activeRow > last {
		g.ResetActiveCell()
	}

	oldH := g.h
	g.th = max(rh*numberOfRows, g.viewportH)
	if g.th < g.opts.MaxSupportedHeight {
		g.h = g.th
		g.ph = g.th
		g.n = 1
		g.cj = 0
	} else {
		g.h = g.opts.MaxSupportedHeight
		g.ph = g.h / 100
		g.n = g.th / g.ph
		g.cj = float64(g.th-g.h) / float64(g.n-1)
	}
	if g.h != oldH {
		g.canvas.Height = g.h
		g.scrollTop = min(g.scrollTop, max(0, g.h-g.viewportH))
		g.log.Debug("canvas height %d for %d rows (%d virtual pages)", g.h, numberOfRows, g.n)
	}

	inRange := g.scrollTop+g.offset <= g.th-g.viewportH
	switch {
	case g.th == 0 || g.scrollTop == 0:
		g.page = 0
		g.offset = 0
	case inRange:
		g.scrollTo(g.scrollTop + g.offset)
	default:
		g.scrollTo(g.th - g.viewportH)
	}
	g.placeCanvas()

	if g.h != oldH && g.opts.AutoHeight {
		g.resizeCanvas()
	}
	g.updateCanvasWidth(false)
}

// ScrollTo scrolls so that y, in full content coordinates, is at the top of
// the viewport, and renders.
func (g *Grid) ScrollTo(y int) {
	g.scrollTo(y)
	g.Render()
}

// ScrollBy scrolls dy pixels from the current position. dy is measured
// in content coordinates, so it crosses virtual pages.
func (g *Grid) ScrollBy(dy int) {
	g.ScrollTo(g.scrollTop + g.offset + dy)
}

func (g *Grid) scrollTo(y int) {
	y = max(y, 0)
	y = min(y, g.th-g.viewportH)

	oldOffset := g.offset
	g.page = min(g.n-1, floorDiv(y, max(1, g.ph)))
	g.offset = int(math.Round(float64(g.page) * g.cj))
	newTop := y - g.offset

	if g.offset != oldOffset {
		r := g.visibleRange(newTop, g.scrollLeft)
		g.cleanupRows(r)
		g.updateRowPositions()
		g.log.Debug("virtual page %d of %d, offset %d", g.page+1, g.n, g.offset)
	}

	if g.prevScrollTop != newTop {
		if g.prevScrollTop+oldOffset < newTop+g.offset {
			g.vScrollDir = 1
		} else {
			g.vScrollDir = -1
		}
		g.scrollTop = newTop
		g.prevScrollTop = newTop
		g.lastRenderedTop = newTop
		g.placeCanvas()
		g.OnViewportChanged.Notify(struct{}{}, nil)
	}
}

// HandleScroll moves the viewport to the given canvas offsets, as a
// scrollbar drag or wheel does, and renders as needed.
func (g *Grid) HandleScroll(top, left int) {
	g.scrollTop = clamp(top, 0, max(0, g.h-g.viewportH))
	g.scrollLeft = clamp(left, 0, max(0, g.canvasWidth-g.viewportW))
	g.placeCanvas()
	g.handleScroll()
}

func (g *Grid) handleScroll() {
	vDist := abs(g.scrollTop - g.prevScrollTop)
	hDist := abs(g.scrollLeft - g.prevScrollLeft)

	if hDist != 0 {
		g.prevScrollLeft = g.scrollLeft
	}

	if vDist != 0 {
		if g.prevScrollTop < g.scrollTop {
			g.vScrollDir = 1
		} else {
			g.vScrollDir = -1
		}
		g.prevScrollTop = g.scrollTop

		if vDist < g.viewportH {
			g.scrollTo(g.scrollTop + g.offset)
		} else {
			oldOffset := g.offset
			if g.h == g.viewportH {
				g.page = 0
			} else {
				ratio := float64(g.th-g.viewportH) / float64(g.h-g.viewportH)
				g.page = min(g.n-1, int(math.Floor(float64(g.scrollTop)*ratio/float64(g.ph))))
			}
			g.offset = int(math.Round(float64(g.page) * g.cj))
			if oldOffset != g.offset {
				g.InvalidateAllRows()
			}
		}
	}

	if hDist != 0 || vDist != 0 {
		g.renderSlot.Cancel()
		dTop := abs(g.lastRenderedTop - g.scrollTop)
		dLeft := abs(g.lastRenderedLeft - g.scrollLeft)
		if dTop > scrollRenderThreshold || dLeft > scrollRenderThreshold {
			if g.opts.ForceSyncScrolling || (dTop < g.viewportH && dLeft < g.viewportW) {
				g.Render()
			} else {
				g.renderSlot.Schedule(scrollRenderDelay, g.Render)
			}
			g.OnViewportChanged.Notify(struct{}{}, nil)
		}
	}

	g.OnScroll.Notify(ScrollArgs{ScrollTop: g.scrollTop, ScrollLeft: g.scrollLeft}, nil)
}

// placeCanvas moves the canvas to reflect the scroll offsets.
func (g *Grid) placeCanvas() {
	g.canvas.Top = -g.scrollTop
	g.canvas.Left = -g.scrollLeft
	g.header.Left = -g.scrollLeft
}

// VisibleRange returns the rows and pixels currently inside the viewport.
func (g *Grid) VisibleRange() Range {
	return g.visibleRange(g.scrollTop, g.scrollLeft)
}

func (g *Grid) visibleRange(top, left int) Range {
	rh := g.opts.RowHeight
	return Range{
		Top:     floorDiv(top+g.offset, rh),
		Bottom:  floorDiv(top+g.offset+g.viewportH, rh) + 1,
		LeftPx:  left,
		RightPx: left + g.viewportW,
	}
}

// RenderedRange returns the visible range widened by the render buffer.
// More rows are buffered in the scroll direction.
func (g *Grid) RenderedRange() Range {
	return g.renderedRange(g.scrollTop, g.scrollLeft)
}

func (g *Grid) renderedRange(top, left int) Range {
	r := g.visibleRange(top, left)
	buffer := int(math.Round(float64(g.viewportH) / float64(g.opts.RowHeight)))

	switch g.vScrollDir {
	case -1:
		r.Top -= buffer
		r.Bottom += minBuffer
	case 1:
		r.Top -= minBuffer
		r.Bottom += buffer
	default:
		r.Top -= minBuffer
		r.Bottom += minBuffer
	}
	r.Top = max(0, r.Top)
	r.Bottom = min(g.dataLengthWithAddRow()-1, r.Bottom)

	r.LeftPx = max(0, r.LeftPx-g.viewportW)
	r.RightPx = min(g.canvasWidth, r.RightPx+g.viewportW)
	return r
}

// ScrollRowIntoView scrolls the least needed to show row. With doPaging the
// row ends up at the opposite edge, as page keys expect.
func (g *Grid) ScrollRowIntoView(row int, doPaging bool) {
	rh := g.opts.RowHeight
	atTop := row * rh
	atBottom := (row+1)*rh - g.viewportH

	switch {
	case (row+1)*rh > g.scrollTop+g.viewportH+g.offset:
		if doPaging {
			g.scrollTo(atTop)
		} else {
			g.scrollTo(atBottom)
		}
		g.Render()
	case row*rh < g.scrollTop+g.offset:
		if doPaging {
			g.scrollTo(atBottom)
		} else {
			g.scrollTo(atTop)
		}
		g.Render()
	}
}

// ScrollRowToTop scrolls row to the top of the viewport.
func (g *Grid) ScrollRowToTop(row int) {
	g.scrollTo(row * g.opts.RowHeight)
	g.Render()
}

// ScrollCellIntoView scrolls vertically to row and horizontally to cell.
func (g *Grid) ScrollCellIntoView(row, cell int, doPaging bool) {
	g.ScrollRowIntoView(row, doPaging)
	if cell < 0 || cell >= len(g.columns) {
		return
	}
	span := g.colspan(row, cell)
	left := g.posLeft[cell]
	right := g.posRight[min(len(g.columns)-1, cell+span-1)]
	scrollRight := g.scrollLeft + g.viewportW

	switch {
	case left < g.scrollLeft:
		g.HandleScroll(g.scrollTop, left)
		g.Render()
	case right > scrollRight:
		g.HandleScroll(g.scrollTop, min(left, right-g.viewportW))
		g.Render()
	}
}

// NavigatePageDown scrolls one page down, moving the active cell along.
func (g *Grid) NavigatePageDown() {
	g.scrollPage(1)
}

// NavigatePageUp scrolls one page up, moving the active cell along.
func (g *Grid) NavigatePageUp() {
	g.scrollPage(-1)
}

func (g *Grid) scrollPage(dir int) {
	if !g.lock.Commit() {
		return
	}
	delta := dir * g.numVisibleRows
	g.scrollTo((g.rowFromPosition(g.scrollTop) + delta) * g.opts.RowHeight)
	g.Render()

	if !g.opts.EnableCellNavigation || g.activeRow < 0 {
		return
	}
	row := clamp(g.activeRow+delta, 0, g.dataLengthWithAddRow()-1)
	prevCell := -1
	posX := g.activePosX
	for cell := 0; cell <= g.activePosX && cell < len(g.columns); cell += g.colspan(row, cell) {
		if g.CanCellBeActive(row, cell) {
			prevCell = cell
		}
	}
	if prevCell < 0 {
		g.ResetActiveCell()
		return
	}
	g.setActiveCellInternal(row, prevCell, editAuto)
	g.activePosX = posX
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
