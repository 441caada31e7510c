package dataview

import (
	"slices"
	"testing"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/item"
)

type mockGrid struct {
	calls       []string
	invalidated []int
	selected    []int
	changed     *event.Event[core.SelectionChange]
}

func newMockGrid() *mockGrid {
	return &mockGrid{changed: event.New[core.SelectionChange]()}
}

func (m *mockGrid) UpdateRowCount() { m.calls = append(m.calls, "count") }
func (m *mockGrid) Render()         { m.calls = append(m.calls, "render") }
func (m *mockGrid) InvalidateRows(rows []int) {
	m.calls = append(m.calls, "invalidate")
	m.invalidated = append(m.invalidated, rows...)
}

func (m *mockGrid) SelectedRows() ([]int, error) { return slices.Clone(m.selected), nil }
func (m *mockGrid) SetSelectedRows(rows []int) error {
	m.selected = slices.Clone(rows)
	m.changed.Notify(core.SelectionChange{Rows: m.selected}, nil)
	return nil
}
func (m *mockGrid) SelectedRowsChanged() *event.Event[core.SelectionChange] { return m.changed }

// userSelect simulates the user changing the selection in the grid.
func (m *mockGrid) userSelect(rows ...int) {
	m.selected = rows
	m.changed.Notify(core.SelectionChange{Rows: rows}, nil)
}

func TestBind(t *testing.T) {
	d := newView(t, makeItems(3))
	g := newMockGrid()
	binding := d.Bind(g)

	if err := d.AddItem(item.Record{"id": 10}); err != nil {
		t.Fatal(err)
	}
	want := []string{"count", "render", "invalidate", "render"}
	if !slices.Equal(g.calls, want) {
		t.Errorf("calls = %v, want %v", g.calls, want)
	}
	if !slices.Equal(g.invalidated, []int{3}) {
		t.Errorf("invalidated = %v", g.invalidated)
	}

	binding.UnsubscribeAll()
	g.calls = nil
	if err := d.AddItem(item.Record{"id": 11}); err != nil {
		t.Fatal(err)
	}
	if len(g.calls) != 0 {
		t.Errorf("unbound grid received %v", g.calls)
	}
}

func TestSyncGridSelection(t *testing.T) {
	d := newView(t, makeItems(6))
	g := newMockGrid()
	d.SyncGridSelection(g, false)

	g.userSelect(1, 3)
	d.SortByField("id", false)

	// ids 1 and 3 now sit at rows 4 and 2.
	if !slices.Equal(g.selected, []int{4, 2}) {
		t.Errorf("selected after sort = %v, want [4 2]", g.selected)
	}

	d.SetFilter(func(it item.Item, _ any) bool { return it.Get("id") != 3 })
	if !slices.Equal(g.selected, []int{3}) {
		t.Errorf("selected after filter = %v, want [3]", g.selected)
	}

	d.SetFilter(nil)
	if !slices.Equal(g.selected, []int{4}) {
		t.Errorf("hidden id should be dropped without preserveHidden, got %v", g.selected)
	}
}

func TestSyncGridSelectionPreserveHidden(t *testing.T) {
	d := newView(t, makeItems(6))
	g := newMockGrid()
	d.SyncGridSelection(g, true)

	g.userSelect(1, 3)
	d.SetFilter(func(it item.Item, _ any) bool { return it.Get("id") != 3 })
	if !slices.Equal(g.selected, []int{1}) {
		t.Fatalf("selected while hidden = %v, want [1]", g.selected)
	}

	d.SetFilter(nil)
	if !slices.Equal(g.selected, []int{1, 3}) {
		t.Errorf("hidden id should come back selected, got %v", g.selected)
	}
}
