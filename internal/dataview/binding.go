package dataview

import (
	"slices"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
)

// GridTarget is the part of a grid a data view drives.
type GridTarget interface {
	UpdateRowCount()
	InvalidateRows(rows []int)
	Render()
}

// Bind keeps target in step with the view: a row count change resizes and
// re-renders it, a rows change invalidates and re-renders the changed rows.
// Release the returned group to unbind.
func (d *DataView) Bind(target GridTarget) *event.Group {
	g := event.NewGroup()
	event.Attach(g, d.OnRowCountChanged, func(*event.Args[RowCountChange]) {
		target.UpdateRowCount()
		target.Render()
	})
	event.Attach(g, d.OnRowsChanged, func(a *event.Args[RowsChange]) {
		target.InvalidateRows(a.Data.Rows)
		target.Render()
	})
	return g
}

// SelectionGrid is the part of a grid SyncGridSelection needs.
type SelectionGrid interface {
	SelectedRows() ([]int, error)
	SetSelectedRows(rows []int) error
	SelectedRowsChanged() *event.Event[core.SelectionChange]
}

// SyncGridSelection keeps the grid's row selection attached to item ids
// across refreshes. With preserveHidden, ids of items that are filtered out
// or collapsed stay selected and reappear selected when visible again.
func (d *DataView) SyncGridSelection(grid SelectionGrid, preserveHidden bool) *event.Group {
	g := event.NewGroup()
	inHandler := false

	rows, _ := grid.SelectedRows()
	selectedIDs := d.MapRowsToIDs(rows)

	update := func() {
		if len(selectedIDs) == 0 {
			return
		}
		inHandler = true
		selected := d.MapIDsToRows(selectedIDs)
		if !preserveHidden {
			selectedIDs = d.MapRowsToIDs(selected)
		}
		_ = grid.SetSelectedRows(selected)
		inHandler = false
	}

	event.Attach(g, grid.SelectedRowsChanged(), func(a *event.Args[core.SelectionChange]) {
		if inHandler {
			return
		}
		newIDs := d.MapRowsToIDs(a.Data.Rows)
		if !preserveHidden {
			selectedIDs = newIDs
			return
		}
		// Keep ids that are not visible now; replace the visible ones with
		// the new selection.
		kept := slices.DeleteFunc(slices.Clone(selectedIDs), func(id any) bool {
			_, visible := d.RowByID(id)
			return visible
		})
		selectedIDs = append(kept, newIDs...)
	})
	event.Attach(g, d.OnRowsChanged, func(*event.Args[RowsChange]) { update() })
	event.Attach(g, d.OnRowCountChanged, func(*event.Args[RowCountChange]) { update() })
	return g
}
