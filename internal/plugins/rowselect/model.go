// Package rowselect is a grid selection model that selects whole rows.
package rowselect

import (
	"slices"

	"github.com/dshills/gridstorm/internal/cellrange"
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid"
)

// Options configures a Model.
type Options struct {
	// SelectActiveRow selects the row of the active cell whenever it
	// changes.
	SelectActiveRow bool
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{SelectActiveRow: true}
}

// Model is a grid.SelectionModel over full rows. Shift with up or down
// extends the selection; ctrl-click toggles a row and shift-click selects a
// block, when the grid allows multiple selection.
type Model struct {
	opts    Options
	grid    *grid.Grid
	ranges  []cellrange.Range
	subs    *event.Group
	clicked bool

	changed *event.Event[[]cellrange.Range]
}

// New creates a row selection model.
func New(opts Options) *Model {
	return &Model{opts: opts, changed: event.New[[]cellrange.Range]()}
}

// Init subscribes to the grid. It is called by grid.SetSelectionModel.
func (m *Model) Init(g *grid.Grid) {
	m.grid = g
	m.subs = event.NewGroup()
	event.Attach(m.subs, g.OnActiveCellChanged, m.handleActiveCellChange)
	event.Attach(m.subs, g.OnKeyDown, m.handleKeyDown)
	event.Attach(m.subs, g.OnClick, m.handleClick)
}

// Destroy unsubscribes from the grid.
func (m *Model) Destroy() {
	if m.subs != nil {
		m.subs.UnsubscribeAll()
		m.subs = nil
	}
}

// OnSelectedRangesChanged fires with the new ranges after every change.
func (m *Model) OnSelectedRangesChanged() *event.Event[[]cellrange.Range] {
	return m.changed
}

// SelectedRanges returns one range per selected row.
func (m *Model) SelectedRanges() []cellrange.Range {
	return slices.Clone(m.ranges)
}

// SetSelectedRanges replaces the selection. Clearing an empty selection
// does not publish a change.
func (m *Model) SetSelectedRanges(ranges []cellrange.Range) {
	m.setRanges(ranges, nil)
}

func (m *Model) setRanges(ranges []cellrange.Range, native any) {
	if len(ranges) == 0 && len(m.ranges) == 0 {
		return
	}
	m.ranges = ranges
	m.changed.Notify(slices.Clone(ranges), native)
}

// SelectedRows returns the selected rows in ascending order.
func (m *Model) SelectedRows() []int {
	return cellrange.Rows(m.ranges)
}

// SetSelectedRows selects whole rows.
func (m *Model) SetSelectedRows(rows []int) {
	m.setRanges(m.rowsToRanges(rows), nil)
}

// rowsToRanges drops rows without a selectable cell, such as group rows.
func (m *Model) rowsToRanges(rows []int) []cellrange.Range {
	last := len(m.grid.Columns()) - 1
	return slices.DeleteFunc(cellrange.FromRows(rows, last), func(r cellrange.Range) bool {
		for cell := 0; cell <= last; cell++ {
			if m.grid.CanCellBeSelected(r.FromRow, cell) {
				return false
			}
		}
		return true
	})
}

func (m *Model) handleActiveCellChange(a *event.Args[grid.ActiveCellArgs]) {
	if !m.opts.SelectActiveRow || !a.Data.Active || m.clicked {
		return
	}
	m.setRanges(m.rowsToRanges([]int{a.Data.Row}), a.Native)
}

func (m *Model) handleKeyDown(a *event.Args[grid.KeyDownArgs]) {
	k := a.Data.Key
	if k.Mod != core.ModShift || (k.Key != core.KeyUp && k.Key != core.KeyDown) {
		return
	}
	active, _, ok := m.grid.ActiveCell()
	if !ok {
		return
	}

	rows := m.SelectedRows()
	if len(rows) == 0 {
		rows = []int{active}
	}
	top, bottom := rows[0], rows[len(rows)-1]
	var next int
	if k.Key == core.KeyDown {
		if active < bottom || top == bottom {
			bottom++
			next = bottom
		} else {
			top++
			next = top
		}
	} else {
		if active < bottom {
			bottom--
			next = bottom
		} else {
			top--
			next = top
		}
	}

	if next >= 0 && next < m.grid.DataLength() {
		m.grid.ScrollRowIntoView(next, false)
		span := make([]int, 0, bottom-top+1)
		for r := top; r <= bottom; r++ {
			span = append(span, r)
		}
		m.setRanges(m.rowsToRanges(span), a.Native)
	}
	a.Stop()
}

func (m *Model) handleClick(a *event.Args[grid.ClickArgs]) {
	row, cell, mod := a.Data.Row, a.Data.Cell, a.Data.Mod
	if !m.grid.CanCellBeActive(row, cell) {
		return
	}
	toggle := mod.Has(core.ModCtrl) || mod.Has(core.ModMeta)
	extend := mod.Has(core.ModShift)
	if !m.grid.Options().MultiSelect || (!toggle && !extend) {
		return
	}

	selection := m.SelectedRows()
	idx := slices.Index(selection, row)
	active, _, hasActive := m.grid.ActiveCell()

	m.clicked = true
	switch {
	case toggle && idx < 0:
		selection = append(selection, row)
		m.grid.SetActiveCell(row, cell)
	case toggle:
		selection = slices.Delete(selection, idx, idx+1)
		m.grid.SetActiveCell(row, cell)
	case hasActive:
		from, to := min(row, active), max(row, active)
		selection = selection[:0]
		for r := from; r <= to; r++ {
			if r != active {
				selection = append(selection, r)
			}
		}
		selection = append(selection, active)
		m.grid.SetActiveCell(row, cell)
	}
	m.clicked = false

	m.setRanges(m.rowsToRanges(selection), a.Native)
	a.Stop()
}
