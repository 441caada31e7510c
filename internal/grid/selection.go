package grid

import (
	"maps"
	"slices"

	"github.com/dshills/gridstorm/internal/cellrange"
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
)

// SelectionModel tracks selected cell ranges for a grid.
type SelectionModel interface {
	Init(g *Grid)
	Destroy()
	SelectedRanges() []cellrange.Range
	SetSelectedRanges(ranges []cellrange.Range)
	OnSelectedRangesChanged() *event.Event[[]cellrange.Range]
}

// SelectionModel returns the current selection model, or nil.
func (g *Grid) SelectionModel() SelectionModel {
	return g.selection
}

// SetSelectionModel replaces the selection model. A nil model removes
// selection support.
func (g *Grid) SetSelectionModel(m SelectionModel) {
	if g.selection != nil {
		if g.selectionSub != nil {
			g.selectionSub.Cancel()
			g.selectionSub = nil
		}
		g.selection.Destroy()
	}
	g.selection = m
	if m != nil {
		m.Init(g)
		g.selectionSub = m.OnSelectedRangesChanged().Subscribe(func(a *event.Args[[]cellrange.Range]) {
			g.handleSelectedRangesChanged(a.Data, a.Native)
		})
	}
}

func (g *Grid) handleSelectedRangesChanged(ranges []cellrange.Range, native any) {
	g.selectedRows = nil
	styles := make(CellStyles)
	for _, r := range ranges {
		for row := r.FromRow; row <= r.ToRow; row++ {
			if _, ok := styles[row]; !ok {
				g.selectedRows = append(g.selectedRows, row)
				styles[row] = make(map[string]string)
			}
			for cell := r.FromCell; cell <= r.ToCell; cell++ {
				if g.CanCellBeSelected(row, cell) {
					styles[row][g.columns[cell].ID] = g.opts.SelectedCellCSSClass
				}
			}
		}
	}
	g.SetCellCSSStyles(g.opts.SelectedCellCSSClass, styles)
	g.OnSelectedRowsChanged.Notify(core.SelectionChange{Rows: slices.Clone(g.selectedRows)}, native)
}

// SelectedRows returns the selected rows in selection order.
func (g *Grid) SelectedRows() ([]int, error) {
	if g.selection == nil {
		return nil, ErrNoSelectionModel
	}
	return slices.Clone(g.selectedRows), nil
}

// SetSelectedRows selects whole rows.
func (g *Grid) SetSelectedRows(rows []int) error {
	if g.selection == nil {
		return ErrNoSelectionModel
	}
	g.selection.SetSelectedRanges(cellrange.FromRows(rows, len(g.columns)-1))
	return nil
}

// SelectedRowsChanged returns OnSelectedRowsChanged, for selection syncing.
func (g *Grid) SelectedRowsChanged() *event.Event[core.SelectionChange] {
	return g.OnSelectedRowsChanged
}

// CellCSSStyles returns the style layer stored under key.
func (g *Grid) CellCSSStyles(key string) (CellStyles, bool) {
	s, ok := g.cellStyles[key]
	return s, ok
}

// SetCellCSSStyles stores or replaces the style layer under key and
// restyles rendered cells.
func (g *Grid) SetCellCSSStyles(key string, styles CellStyles) {
	prev := g.cellStyles[key]
	g.cellStyles[key] = styles
	g.updateCellCSSStylesOnRenderedRows(styles, prev)
	g.OnCellCSSStylesChanged.Notify(CellCSSStylesArgs{Key: key, Styles: styles}, nil)
}

// AddCellCSSStyles stores a new style layer. It fails when key is in use.
func (g *Grid) AddCellCSSStyles(key string, styles CellStyles) error {
	if _, ok := g.cellStyles[key]; ok {
		return ErrDuplicateStyleKey
	}
	g.cellStyles[key] = styles
	g.updateCellCSSStylesOnRenderedRows(styles, nil)
	g.OnCellCSSStylesChanged.Notify(CellCSSStylesArgs{Key: key, Styles: styles}, nil)
	return nil
}

// RemoveCellCSSStyles drops the style layer under key.
func (g *Grid) RemoveCellCSSStyles(key string) {
	prev, ok := g.cellStyles[key]
	if !ok {
		return
	}
	g.updateCellCSSStylesOnRenderedRows(nil, prev)
	delete(g.cellStyles, key)
	g.OnCellCSSStylesChanged.Notify(CellCSSStylesArgs{Key: key}, nil)
}

func (g *Grid) updateCellCSSStylesOnRenderedRows(added, removed CellStyles) {
	for _, row := range g.cachedRows() {
		removedRow := removed[row]
		addedRow := added[row]
		for _, id := range slices.Sorted(maps.Keys(removedRow)) {
			if cls, ok := addedRow[id]; ok && cls == removedRow[id] {
				continue
			}
			if n := g.CellNode(row, g.ColumnIndex(id)); n != nil {
				n.RemoveClass(removedRow[id])
			}
		}
		for _, id := range slices.Sorted(maps.Keys(addedRow)) {
			if cls, ok := removedRow[id]; ok && cls == addedRow[id] {
				continue
			}
			if n := g.CellNode(row, g.ColumnIndex(id)); n != nil {
				n.AddClass(addedRow[id])
			}
		}
	}
}
