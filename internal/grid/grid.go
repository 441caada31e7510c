package grid

import (
	"slices"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/editlock"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

// DataProvider supplies display rows to a grid. The data view implements it;
// ItemSlice adapts a plain slice.
type DataProvider interface {
	// Len returns the number of rows, not counting the add-new row.
	Len() int

	// Row returns the row at i, or nil when it is not loaded.
	Row(i int) core.Row

	// RowMetadata returns per-row overrides, or nil.
	RowMetadata(i int) *core.RowMetadata
}

// Plugin extends a grid through its public API and events.
type Plugin interface {
	Init(g *Grid)
	Destroy()
}

// Grid is a virtualized data grid rendered into a node tree. Only the rows
// near the viewport exist as nodes; scrolling creates and removes them.
//
// A Grid is not safe for concurrent use. Deferred work runs through the
// scheduler from Options, which must call back on the goroutine that owns
// the grid.
type Grid struct {
	Events

	container *dom.Node
	header    *dom.Node
	viewport  *dom.Node
	canvas    *dom.Node

	data     DataProvider
	columns  []core.Column
	byID     map[string]int
	posLeft  []int
	posRight []int

	opts Options
	log  *logging.Logger
	lock *editlock.Lock
	ctl  *editController

	initialized bool
	destroyed   bool

	viewportH, viewportW int
	canvasWidth          int
	numVisibleRows       int
	hasVScroll           bool

	// Virtual paging: th is the full content height, h the rendered canvas
	// height, ph the page height, n the page count and cj the jumpiness
	// coefficient mapping pages to offsets.
	th, h, ph, n int
	cj           float64
	page, offset int

	scrollTop, scrollLeft         int
	prevScrollTop, prevScrollLeft int
	lastRenderedTop               int
	lastRenderedLeft              int
	vScrollDir                    int

	rows         map[int]*rowCache
	postRendered map[int]map[int]bool
	postFrom     int
	postTo       int
	stats        Stats

	activeRow, activeCell int
	activePosX            int
	activeNode            *dom.Node

	editor          core.Editor
	serializedValue any

	selection    SelectionModel
	selectionSub *event.Subscription
	selectedRows []int
	cellStyles   map[string]CellStyles

	sortColumn string
	sortAsc    bool

	plugins []Plugin

	renderSlot     *schedule.Slot
	editorSlot     *schedule.Slot
	postRenderSlot *schedule.Slot
}

// Stats counts row and cell node churn since the grid was created.
type Stats struct {
	RowsRendered  int
	RowsRemoved   int
	CellsRendered int
	CellsRemoved  int
}

// New creates a grid rendering data into container. The container's width
// and height are the initial grid size. Unless opts.ExplicitInitialization
// is set the grid is initialized and rendered before New returns.
func New(container *dom.Node, data DataProvider, columns []core.Column, opts Options) (*Grid, error) {
	if container == nil {
		return nil, ErrNoContainer
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	if data == nil {
		data = ItemSlice(nil)
	}
	opts.normalize()

	g := &Grid{
		Events:       newEvents(),
		container:    container,
		data:         data,
		opts:         opts,
		log:          logging.OrDefault(opts.Logger).WithComponent("grid"),
		lock:         opts.EditorLock,
		rows:         make(map[int]*rowCache),
		postRendered: make(map[int]map[int]bool),
		cellStyles:   make(map[string]CellStyles),
		activeRow:    -1,
		activeCell:   -1,
		vScrollDir:   1,
		n:            1,
	}
	if g.lock == nil {
		g.lock = editlock.New()
	}
	g.ctl = &editController{g: g}
	g.renderSlot = schedule.NewSlot(opts.Scheduler, "render")
	g.editorSlot = schedule.NewSlot(opts.Scheduler, "editor")
	g.postRenderSlot = schedule.NewSlot(opts.Scheduler, "postrender")

	g.setColumns(columns)

	container.Empty()
	container.AddClass("grid")
	g.header = container.AppendChild(dom.NewNode("header", "grid-header"))
	g.viewport = container.AppendChild(dom.NewNode("viewport", "grid-viewport"))
	g.canvas = g.viewport.AppendChild(dom.NewNode("canvas", "grid-canvas"))

	if !opts.ExplicitInitialization {
		if err := g.Init(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Init sizes and renders the grid. It is only needed with
// ExplicitInitialization.
func (g *Grid) Init() error {
	if g.initialized {
		return ErrAlreadyInitialized
	}
	g.initialized = true
	g.createColumnHeaders()
	g.resizeCanvas()
	g.log.Debug("initialized with %d columns, %d rows", len(g.columns), g.data.Len())
	return nil
}

// Initialized reports whether Init has run.
func (g *Grid) Initialized() bool {
	return g.initialized
}

// Container returns the node the grid renders into.
func (g *Grid) Container() *dom.Node {
	return g.container
}

// Canvas returns the node holding the rendered rows.
func (g *Grid) Canvas() *dom.Node {
	return g.canvas
}

// Data returns the data provider.
func (g *Grid) Data() DataProvider {
	return g.data
}

// SetData replaces the data provider.
func (g *Grid) SetData(data DataProvider, scrollToTop bool) {
	if data == nil {
		data = ItemSlice(nil)
	}
	g.data = data
	g.InvalidateAllRows()
	g.UpdateRowCount()
	if scrollToTop {
		g.scrollTo(0)
	}
}

// Options returns a copy of the current options.
func (g *Grid) Options() Options {
	return g.opts
}

// SetOptions changes options after committing any open edit. The grid keeps
// its edit lock and scheduler.
func (g *Grid) SetOptions(apply func(o *Options)) {
	if !g.lock.Commit() {
		return
	}
	g.makeActiveCellNormal()
	prevAddRow := g.opts.EnableAddRow

	next := g.opts
	apply(&next)
	next.EditorLock = g.lock
	next.Scheduler = g.opts.Scheduler
	next.normalize()
	if next.EnableAddRow != prevAddRow {
		g.InvalidateRow(g.data.Len())
	}
	rowHeightChanged := next.RowHeight != g.opts.RowHeight
	g.opts = next
	if next.Logger != nil {
		g.log = next.Logger.WithComponent("grid")
	}
	if !g.initialized {
		return
	}
	g.createColumnHeaders()
	if rowHeightChanged {
		g.InvalidateAllRows()
	}
	g.resizeCanvas()
}

// EditorLock returns the lock coordinating this grid's editors.
func (g *Grid) EditorLock() *editlock.Lock {
	return g.lock
}

// Logger returns the grid's logger.
func (g *Grid) Logger() *logging.Logger {
	return g.log
}

// Stats returns node churn counters.
func (g *Grid) Stats() Stats {
	return g.stats
}

// Columns returns a copy of the column definitions.
func (g *Grid) Columns() []core.Column {
	return slices.Clone(g.columns)
}

// Column returns the column at index cell, or nil.
func (g *Grid) Column(cell int) *core.Column {
	if cell < 0 || cell >= len(g.columns) {
		return nil
	}
	return &g.columns[cell]
}

// ColumnIndex returns the index of the column with id, or -1.
func (g *Grid) ColumnIndex(id string) int {
	if i, ok := g.byID[id]; ok {
		return i
	}
	return -1
}

// SetColumns replaces the column definitions and re-renders.
func (g *Grid) SetColumns(columns []core.Column) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}
	g.setColumns(columns)
	if g.initialized {
		g.InvalidateAllRows()
		g.createColumnHeaders()
		g.resizeCanvas()
	}
	return nil
}

func (g *Grid) setColumns(columns []core.Column) {
	g.columns = slices.Clone(columns)
	g.byID = make(map[string]int, len(columns))
	for i := range g.columns {
		c := &g.columns[i]
		if c.ID == "" {
			c.ID = c.Field
		}
		if c.Width <= 0 {
			c.Width = g.opts.DefaultColumnWidth
		}
		if c.MinWidth > 0 && c.Width < c.MinWidth {
			c.Width = c.MinWidth
		}
		if c.MaxWidth > 0 && c.Width > c.MaxWidth {
			c.Width = c.MaxWidth
		}
		g.byID[c.ID] = i
	}
	g.updateColumnCaches()
}

// SetColumnWidth changes one column's width.
func (g *Grid) SetColumnWidth(cell, width int) {
	c := g.Column(cell)
	if c == nil || width <= 0 {
		return
	}
	rerender := c.RerenderOnResize && c.Width != width
	c.Width = width
	g.applyColumnWidths()
	if rerender {
		g.InvalidateAllRows()
	}
	g.Render()
}

func (g *Grid) updateColumnCaches() {
	g.posLeft = make([]int, len(g.columns))
	g.posRight = make([]int, len(g.columns))
	x := 0
	for i, c := range g.columns {
		g.posLeft[i] = x
		g.posRight[i] = x + c.Width
		x += c.Width
	}
}

func (g *Grid) createColumnHeaders() {
	g.header.Empty()
	g.header.Hidden = g.opts.HideColumnHeader
	g.header.Height = g.headerHeight()
	g.header.Width = g.canvasWidth
	for i, c := range g.columns {
		n := dom.NewNode("column", "grid-header-column")
		n.AddClass(c.HeaderCSSClass)
		n.Text = c.Name
		n.Left = g.posLeft[i]
		n.Width = c.Width
		n.Height = g.header.Height
		if c.Sortable {
			n.AddClass("sortable")
		}
		if c.ID == g.sortColumn && c.ID != "" {
			if g.sortAsc {
				n.AddClass("sorted-asc")
			} else {
				n.AddClass("sorted-desc")
			}
		}
		g.header.AppendChild(n)
	}
}

func (g *Grid) headerHeight() int {
	if g.opts.HideColumnHeader {
		return 0
	}
	return g.opts.RowHeight
}

func (g *Grid) applyColumnWidths() {
	g.updateColumnCaches()
	g.createColumnHeaders()
	g.updateCanvasWidth(true)
}

func (g *Grid) updateCanvasWidth(forceColumnWidthsUpdate bool) {
	old := g.canvasWidth
	g.canvasWidth = g.computeCanvasWidth()
	if g.canvasWidth != old {
		g.canvas.Width = g.canvasWidth
		g.header.Width = g.canvasWidth
		for _, rc := range g.rows {
			rc.node.Width = g.canvasWidth
		}
	}
	if g.canvasWidth != old || forceColumnWidthsUpdate {
		g.applyColumnWidthsToCells()
	}
}

func (g *Grid) computeCanvasWidth() int {
	rowWidth := 0
	for _, c := range g.columns {
		rowWidth += c.Width
	}
	if g.opts.FullWidthRows {
		return max(rowWidth, g.viewportW)
	}
	return rowWidth
}

// applyColumnWidthsToCells repositions rendered cells after width changes.
func (g *Grid) applyColumnWidthsToCells() {
	for row, rc := range g.rows {
		g.ensureCellNodes(row)
		for cell, node := range rc.cells {
			last := min(len(g.columns)-1, cell+rc.colspans[cell]-1)
			node.Left = g.posLeft[cell]
			node.Width = g.posRight[last] - g.posLeft[cell]
		}
	}
}

// AutosizeColumns fits column widths to the viewport width.
func (g *Grid) AutosizeColumns() {
	const absMin = 1
	avail := g.viewportW
	widths := make([]int, len(g.columns))
	total, shrinkLeeway := 0, 0
	for i, c := range g.columns {
		widths[i] = c.Width
		total += c.Width
		if !c.FixedWidth {
			shrinkLeeway += c.Width - max(c.MinWidth, absMin)
		}
	}

	prevTotal := total
	for total > avail && shrinkLeeway > 0 {
		proportion := float64(total-avail) / float64(shrinkLeeway)
		for i := 0; i < len(g.columns) && total > avail; i++ {
			c := g.columns[i]
			w := widths[i]
			minW := max(c.MinWidth, absMin)
			if c.FixedWidth || w <= minW {
				continue
			}
			shrink := int(proportion * float64(w-minW))
			if shrink == 0 {
				shrink = 1
			}
			shrink = min(shrink, w-minW)
			total -= shrink
			shrinkLeeway -= shrink
			widths[i] -= shrink
		}
		if prevTotal <= total {
			break
		}
		prevTotal = total
	}

	prevTotal = total
	for total < avail && total > 0 {
		proportion := float64(avail) / float64(total)
		for i := 0; i < len(g.columns) && total < avail; i++ {
			c := g.columns[i]
			w := widths[i]
			grow := 0
			if !c.FixedWidth && (c.MaxWidth == 0 || c.MaxWidth > w) {
				room := 1_000_000
				if c.MaxWidth > 0 {
					room = c.MaxWidth - w
				}
				grow = min(int(proportion*float64(w))-w, room)
				if grow == 0 {
					grow = 1
				}
			}
			total += grow
			if total <= avail {
				widths[i] += grow
			}
		}
		if prevTotal >= total {
			break
		}
		prevTotal = total
	}

	rerender := false
	for i := range g.columns {
		if g.columns[i].RerenderOnResize && g.columns[i].Width != widths[i] {
			rerender = true
		}
		g.columns[i].Width = widths[i]
	}
	g.applyColumnWidths()
	if rerender {
		g.InvalidateAllRows()
		g.Render()
	}
}

// Resize sets the grid's outer size and re-renders.
func (g *Grid) Resize(width, height int) {
	g.container.Width = width
	g.container.Height = height
	g.resizeCanvas()
}

func (g *Grid) resizeCanvas() {
	if !g.initialized {
		return
	}
	rh := g.opts.RowHeight
	hh := g.headerHeight()
	if g.opts.AutoHeight {
		g.viewportH = rh * g.dataLengthWithAddRow()
	} else {
		g.viewportH = max(0, g.container.Height-hh)
	}
	g.viewportW = g.container.Width
	g.numVisibleRows = (g.viewportH + rh - 1) / rh

	g.viewport.Top = hh
	g.viewport.Width = g.viewportW
	g.viewport.Height = g.viewportH

	if g.opts.ForceFitColumns {
		g.AutosizeColumns()
	}
	g.UpdateRowCount()
	g.handleScroll()
	g.lastRenderedLeft = -1
	g.Render()
}

// ViewportSize returns the viewport width and height.
func (g *Grid) ViewportSize() (width, height int) {
	return g.viewportW, g.viewportH
}

// Destroy cancels editing, unregisters plugins and empties the container.
func (g *Grid) Destroy() {
	if g.destroyed {
		return
	}
	g.lock.Cancel()
	g.OnBeforeDestroy.Notify(struct{}{}, nil)
	for i := len(g.plugins) - 1; i >= 0; i-- {
		g.UnregisterPlugin(g.plugins[i])
	}
	if g.selection != nil {
		g.SetSelectionModel(nil)
	}
	g.renderSlot.Cancel()
	g.editorSlot.Cancel()
	g.postRenderSlot.Cancel()
	for row := range g.rows {
		g.removeRowFromCache(row)
	}
	g.container.Empty()
	g.container.RemoveClass("grid")
	g.destroyed = true
	g.initialized = false
}

// RegisterPlugin initializes p. Later plugins take priority.
func (g *Grid) RegisterPlugin(p Plugin) {
	g.plugins = slices.Insert(g.plugins, 0, p)
	p.Init(g)
}

// UnregisterPlugin destroys and removes p.
func (g *Grid) UnregisterPlugin(p Plugin) {
	for i := len(g.plugins) - 1; i >= 0; i-- {
		if g.plugins[i] == p {
			p.Destroy()
			g.plugins = slices.Delete(g.plugins, i, i+1)
			return
		}
	}
}

// Plugins returns the registered plugins, most recent first.
func (g *Grid) Plugins() []Plugin {
	return slices.Clone(g.plugins)
}

// DataLength returns the number of data rows.
func (g *Grid) DataLength() int {
	return g.data.Len()
}

func (g *Grid) dataLengthWithAddRow() int {
	n := g.data.Len()
	if g.opts.EnableAddRow {
		n++
	}
	return n
}

// DataRow returns the display row at i, or nil beyond the data.
func (g *Grid) DataRow(i int) core.Row {
	if i < 0 || i >= g.data.Len() {
		return nil
	}
	return g.data.Row(i)
}

// DataItem returns the data item at row i, or nil for group, totals and
// add-new rows.
func (g *Grid) DataItem(i int) item.Item {
	return core.ItemOf(g.DataRow(i))
}

func (g *Grid) rowMetadata(row int) *core.RowMetadata {
	if row < 0 || row >= g.data.Len() {
		return nil
	}
	return g.data.RowMetadata(row)
}

// cellConfig resolves the effective configuration of one cell.
func (g *Grid) cellConfig(row, cell int) core.Cell {
	return core.Resolve(g.rowMetadata(row), &g.columns[cell], cell, len(g.columns))
}

func (g *Grid) colspan(row, cell int) int {
	return g.cellConfig(row, cell).Colspan
}

func (g *Grid) formatter(row, cell int) core.Formatter {
	if f := g.cellConfig(row, cell).Formatter; f != nil {
		return f
	}
	if g.opts.FormatterFactory != nil {
		if f := g.opts.FormatterFactory(&g.columns[cell]); f != nil {
			return f
		}
	}
	return g.opts.DefaultFormatter
}

func (g *Grid) editorFactory(row, cell int) core.EditorFactory {
	c := g.cellConfig(row, cell)
	if c.Editor != nil {
		return c.Editor
	}
	meta := g.rowMetadata(row)
	if meta != nil {
		if meta.NoEditor {
			return nil
		}
		if cm, ok := core.ColumnOverride(meta, &g.columns[cell], cell); ok && cm.NoEditor {
			return nil
		}
	}
	if g.opts.EditorFactory != nil {
		return g.opts.EditorFactory(&g.columns[cell])
	}
	return nil
}

func (g *Grid) cellValue(it item.Item, col *core.Column) any {
	if g.opts.DataItemColumnValueExtractor != nil {
		return g.opts.DataItemColumnValueExtractor(it, col)
	}
	return col.ValueOf(it)
}

// formatCell renders the text of one cell.
func (g *Grid) formatCell(row, cell int, r core.Row) string {
	if r == nil {
		return ""
	}
	col := &g.columns[cell]
	var value any
	if it := core.ItemOf(r); it != nil {
		value = g.cellValue(it, col)
	}
	return g.formatter(row, cell)(row, cell, value, col, r)
}

// CanCellBeActive reports whether the cell can hold focus.
func (g *Grid) CanCellBeActive(row, cell int) bool {
	if !g.opts.EnableCellNavigation || row < 0 || row >= g.dataLengthWithAddRow() ||
		cell < 0 || cell >= len(g.columns) {
		return false
	}
	return g.cellConfig(row, cell).Focusable
}

// CanCellBeSelected reports whether the cell can be part of a selection.
func (g *Grid) CanCellBeSelected(row, cell int) bool {
	if row < 0 || row >= g.data.Len() || cell < 0 || cell >= len(g.columns) {
		return false
	}
	return g.cellConfig(row, cell).Selectable
}

// SortColumn returns the sorted column id and direction.
func (g *Grid) SortColumn() (id string, ascending bool) {
	return g.sortColumn, g.sortAsc
}

// SetSortColumn marks a column as sorted without publishing OnSort.
func (g *Grid) SetSortColumn(id string, ascending bool) {
	g.sortColumn = id
	g.sortAsc = ascending
	if g.initialized {
		g.createColumnHeaders()
	}
}

// ToggleSort activates a column header: sortable columns flip direction, or
// start in their default direction, and OnSort is published.
func (g *Grid) ToggleSort(cell int) bool {
	c := g.Column(cell)
	if c == nil || !c.Sortable {
		return false
	}
	if !g.lock.Commit() {
		return false
	}
	asc := !c.DefaultSortDesc
	if g.sortColumn == c.ID {
		asc = !g.sortAsc
	}
	g.SetSortColumn(c.ID, asc)
	g.OnSort.Notify(SortArgs{Column: c, Ascending: asc}, nil)
	return true
}
