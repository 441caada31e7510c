package grid

import (
	"maps"
	"slices"
	"strconv"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
)

// rowCache is a rendered row. Cells appended to the row node are queued in
// queue until ensureCellNodes indexes them into cells.
type rowCache struct {
	node     *dom.Node
	colspans map[int]int
	cells    map[int]*dom.Node
	queue    []int
}

// cachedRows returns the rendered row indexes in ascending order. Callers
// iterate the snapshot so they may remove rows as they go.
func (g *Grid) cachedRows() []int {
	return slices.Sorted(maps.Keys(g.rows))
}

// RenderedRows returns the indexes of the rows that currently have nodes.
func (g *Grid) RenderedRows() []int {
	return g.cachedRows()
}

// RowNode returns the node of a rendered row, or nil.
func (g *Grid) RowNode(row int) *dom.Node {
	if rc := g.rows[row]; rc != nil {
		return rc.node
	}
	return nil
}

// CellNode returns the node of a rendered cell, or nil.
func (g *Grid) CellNode(row, cell int) *dom.Node {
	rc := g.rows[row]
	if rc == nil {
		return nil
	}
	g.ensureCellNodes(row)
	return rc.cells[cell]
}

func (g *Grid) ensureCellNodes(row int) {
	rc := g.rows[row]
	if rc == nil || len(rc.queue) == 0 {
		return
	}
	n := rc.node.LastChild()
	for len(rc.queue) > 0 && n != nil {
		cell := rc.queue[len(rc.queue)-1]
		rc.queue = rc.queue[:len(rc.queue)-1]
		rc.cells[cell] = n
		n = n.PrevSibling()
	}
	rc.queue = rc.queue[:0]
}

func (g *Grid) removeRowFromCache(row int) {
	rc := g.rows[row]
	if rc == nil {
		return
	}
	rc.node.Remove()
	delete(g.rows, row)
	delete(g.postRendered, row)
	g.stats.RowsRemoved++
}

func (g *Grid) cleanupRows(keep Range) {
	for _, row := range g.cachedRows() {
		if row == g.activeRow && g.activeNode != nil {
			continue
		}
		if row < keep.Top || row > keep.Bottom {
			g.removeRowFromCache(row)
		}
	}
}

func (g *Grid) updateRowPositions() {
	for row, rc := range g.rows {
		rc.node.Top = g.rowTop(row)
	}
}

// Render brings the rendered rows in line with the viewport: rows that
// scrolled out are removed, missing rows and cells are created.
func (g *Grid) Render() {
	if !g.initialized {
		return
	}
	g.renderSlot.Cancel()

	visible := g.VisibleRange()
	rendered := g.RenderedRange()

	g.cleanupRows(rendered)
	if g.lastRenderedLeft != g.scrollLeft {
		g.cleanUpAndRenderCells(rendered)
	}
	created := g.renderRows(rendered)

	g.postFrom = visible.Top
	g.postTo = min(g.dataLengthWithAddRow()-1, visible.Bottom)
	g.startPostProcessing()

	g.lastRenderedTop = g.scrollTop
	g.lastRenderedLeft = g.scrollLeft
	if created > 0 {
		g.log.Debug("rendered %d rows, %d cached for %d..%d", created, len(g.rows), rendered.Top, rendered.Bottom)
	}
	g.handleActiveCellPositionChange()
	g.OnRendered.Notify(RenderedArgs{StartRow: visible.Top, EndRow: visible.Bottom}, nil)
}

func (g *Grid) renderRows(r Range) int {
	dl := g.data.Len()
	var created []int
	reselect := false
	for i := r.Top; i <= r.Bottom; i++ {
		if g.rows[i] != nil {
			continue
		}
		created = append(created, i)
		g.rows[i] = &rowCache{
			colspans: make(map[int]int),
			cells:    make(map[int]*dom.Node),
		}
		g.rows[i].node = g.appendRow(i, r, dl)
		g.stats.RowsRendered++
		if g.activeNode != nil && g.activeRow == i {
			reselect = true
		}
	}
	if len(created) == 0 {
		return 0
	}
	for _, i := range created {
		g.canvas.AppendChild(g.rows[i].node)
	}
	if reselect {
		g.activeNode = g.CellNode(g.activeRow, g.activeCell)
	}
	return len(created)
}

func (g *Grid) appendRow(row int, r Range, dl int) *dom.Node {
	d := g.DataRow(row)
	node := dom.NewNode("row", "grid-row")
	if row < dl && d == nil {
		node.AddClass("loading")
	}
	if row == g.activeRow {
		node.AddClass("active")
	}
	if row%2 == 1 {
		node.AddClass("odd")
	} else {
		node.AddClass("even")
	}
	if d == nil {
		node.AddClass(g.opts.AddNewRowCSSClass)
	}
	meta := g.rowMetadata(row)
	node.AddClass(meta.ClassList()...)

	node.Top = g.rowTop(row)
	node.Height = g.opts.RowHeight
	node.Width = g.canvasWidth

	ncols := len(g.columns)
	for i := 0; i < ncols; i++ {
		span := core.Resolve(meta, &g.columns[i], i, ncols).Colspan
		if g.posRight[min(ncols-1, i+span-1)] > r.LeftPx {
			// Columns to the right are outside the range.
			if g.posLeft[i] > r.RightPx {
				break
			}
			g.appendCell(node, row, i, span, d)
		}
		if span > 1 {
			i += span - 1
		}
	}
	return node
}

func (g *Grid) appendCell(rowNode *dom.Node, row, cell, span int, d core.Row) {
	col := &g.columns[cell]
	last := min(len(g.columns)-1, cell+span-1)

	n := dom.NewNode("cell", "grid-cell", "l"+strconv.Itoa(cell), "r"+strconv.Itoa(last))
	n.AddClass(col.CSSClass)
	if row == g.activeRow && cell == g.activeCell {
		n.AddClass("active")
	}
	for _, key := range slices.Sorted(maps.Keys(g.cellStyles)) {
		if cls, ok := g.cellStyles[key][row][col.ID]; ok {
			n.AddClass(cls)
		}
	}
	n.Left = g.posLeft[cell]
	n.Width = g.posRight[last] - g.posLeft[cell]
	n.Height = g.opts.RowHeight
	n.Text = g.formatCell(row, cell, d)

	rowNode.AppendChild(n)
	rc := g.rows[row]
	rc.queue = append(rc.queue, cell)
	rc.colspans[cell] = span
	g.stats.CellsRendered++
}

// cleanUpAndRenderCells reconciles the cells of rendered rows with a new
// horizontal range.
func (g *Grid) cleanUpAndRenderCells(r Range) {
	ncols := len(g.columns)
	for row := r.Top; row <= r.Bottom; row++ {
		rc := g.rows[row]
		if rc == nil {
			continue
		}
		g.ensureCellNodes(row)
		g.cleanUpCells(r, row)

		meta := g.rowMetadata(row)
		d := g.DataRow(row)
		for i := 0; i < ncols; i++ {
			if g.posLeft[i] > r.RightPx {
				break
			}
			if span, ok := rc.colspans[i]; ok {
				if span > 1 {
					i += span - 1
				}
				continue
			}
			span := core.Resolve(meta, &g.columns[i], i, ncols).Colspan
			if g.posRight[min(ncols-1, i+span-1)] > r.LeftPx {
				g.appendCell(rc.node, row, i, span, d)
			}
			if span > 1 {
				i += span - 1
			}
		}
	}
}

func (g *Grid) cleanUpCells(r Range, row int) {
	rc := g.rows[row]
	ncols := len(g.columns)
	var remove []int
	for cell := range rc.cells {
		span := max(1, rc.colspans[cell])
		if g.posLeft[cell] > r.RightPx || g.posRight[min(ncols-1, cell+span-1)] < r.LeftPx {
			if !(row == g.activeRow && cell == g.activeCell) {
				remove = append(remove, cell)
			}
		}
	}
	for _, cell := range remove {
		rc.node.RemoveChild(rc.cells[cell])
		delete(rc.colspans, cell)
		delete(rc.cells, cell)
		if pr := g.postRendered[row]; pr != nil {
			delete(pr, cell)
		}
		g.stats.CellsRemoved++
	}
}

// Invalidate recounts rows and re-renders everything.
func (g *Grid) Invalidate() {
	g.UpdateRowCount()
	g.InvalidateAllRows()
	g.Render()
}

// InvalidateAllRows removes every rendered row. The next Render recreates
// them.
func (g *Grid) InvalidateAllRows() {
	if g.editor != nil {
		g.makeActiveCellNormal()
	}
	for _, row := range g.cachedRows() {
		g.removeRowFromCache(row)
	}
}

// InvalidateRows removes the given rendered rows.
func (g *Grid) InvalidateRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	g.vScrollDir = 0
	for _, row := range rows {
		if g.editor != nil && g.activeRow == row {
			g.makeActiveCellNormal()
		}
		g.removeRowFromCache(row)
	}
}

// InvalidateRow removes one rendered row.
func (g *Grid) InvalidateRow(row int) {
	g.InvalidateRows([]int{row})
}

// UpdateCell re-formats one rendered cell in place. An open editor on the
// cell reloads its value instead.
func (g *Grid) UpdateCell(row, cell int) {
	n := g.CellNode(row, cell)
	if n == nil {
		return
	}
	d := g.DataRow(row)
	if g.editor != nil && g.activeRow == row && g.activeCell == cell {
		g.editor.LoadValue(core.ItemOf(d))
		return
	}
	n.Text = g.formatCell(row, cell, d)
	g.invalidatePostProcessing(row)
}

// UpdateRow re-formats the rendered cells of row in place.
func (g *Grid) UpdateRow(row int) {
	rc := g.rows[row]
	if rc == nil {
		return
	}
	g.ensureCellNodes(row)
	d := g.DataRow(row)
	for cell, n := range rc.cells {
		if g.editor != nil && row == g.activeRow && cell == g.activeCell {
			g.editor.LoadValue(core.ItemOf(d))
			continue
		}
		n.Text = g.formatCell(row, cell, d)
	}
	g.invalidatePostProcessing(row)
}

func (g *Grid) invalidatePostProcessing(row int) {
	delete(g.postRendered, row)
	g.postFrom = min(g.postFrom, row)
	g.postTo = max(g.postTo, row)
	g.startPostProcessing()
}

func (g *Grid) startPostProcessing() {
	if !g.opts.EnableAsyncPostRender {
		return
	}
	g.postRenderSlot.Schedule(g.opts.AsyncPostRenderDelay, g.asyncPostProcessRows)
}

// asyncPostProcessRows decorates one row per call, then schedules itself
// for the next.
func (g *Grid) asyncPostProcessRows() {
	dl := g.data.Len()
	for g.postFrom <= g.postTo {
		var row int
		if g.vScrollDir >= 0 {
			row = g.postFrom
			g.postFrom++
		} else {
			row = g.postTo
			g.postTo--
		}
		rc := g.rows[row]
		if rc == nil || row >= dl {
			continue
		}
		done := g.postRendered[row]
		if done == nil {
			done = make(map[int]bool)
			g.postRendered[row] = done
		}
		g.ensureCellNodes(row)
		d := g.DataRow(row)
		for _, cell := range slices.Sorted(maps.Keys(rc.cells)) {
			col := &g.columns[cell]
			if col.AsyncPostRender == nil || done[cell] {
				continue
			}
			col.AsyncPostRender(rc.cells[cell], row, d, col)
			done[cell] = true
		}
		g.postRenderSlot.Schedule(g.opts.AsyncPostRenderDelay, g.asyncPostProcessRows)
		return
	}
}
