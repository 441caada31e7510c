package grid

import (
	"testing"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
)

func activeAt(t *testing.T, g *Grid, row, cell int) {
	t.Helper()
	r, c, ok := g.ActiveCell()
	if !ok || r != row || c != cell {
		t.Errorf("active cell = %d:%d (ok %v), want %d:%d", r, c, ok, row, cell)
	}
}

func TestNavigateArrows(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(5)), nil)
	g.SetActiveCell(0, 0)

	steps := []struct {
		dir       Direction
		moved     bool
		row, cell int
	}{
		{Right, true, 0, 1},
		{Down, true, 1, 1},
		{Left, true, 1, 0},
		{Left, false, 1, 0},
		{Up, true, 0, 0},
		{Up, false, 0, 0},
		{Right, true, 0, 1},
		{Right, true, 0, 2},
		{Right, false, 0, 2},
	}
	for i, s := range steps {
		if got := g.Navigate(s.dir); got != s.moved {
			t.Errorf("step %d %v: moved = %v, want %v", i, s.dir, got, s.moved)
		}
		activeAt(t, g, s.row, s.cell)
	}
}

func TestNavigateWithoutActiveCell(t *testing.T) {
	cols := testColumns()
	cols[2].Unfocusable = true
	g := newTestGridColumns(t, ItemSlice(testItems(25)), cols, nil)

	if g.NavigateDown() {
		t.Error("Down moved without an active cell")
	}
	if !g.NavigatePrev() {
		t.Fatal("Prev without an active cell did not move")
	}
	activeAt(t, g, 24, 1)
	if top, _ := g.ScrollPosition(); top != 425 {
		t.Errorf("scroll top = %d, want 425", top)
	}

	g.ResetActiveCell()
	if !g.NavigateNext() {
		t.Fatal("Next without an active cell did not move")
	}
	activeAt(t, g, 0, 0)
}

func TestNavigateNextPrevWrap(t *testing.T) {
	cols := testColumns()
	cols[2].Unfocusable = true
	g := newTestGridColumns(t, ItemSlice(testItems(3)), cols, nil)

	g.SetActiveCell(0, 1)
	if g.NavigateRight() {
		t.Error("Right moved onto an unfocusable column")
	}
	g.NavigateNext()
	activeAt(t, g, 1, 0)
	g.NavigatePrev()
	activeAt(t, g, 0, 1)

	g.SetActiveCell(2, 1)
	if g.NavigateNext() {
		t.Error("Next moved past the last row")
	}
	activeAt(t, g, 2, 1)
}

func TestNavigateColspan(t *testing.T) {
	data := metaSlice{
		ItemSlice: ItemSlice(testItems(5)),
		meta: map[int]*core.RowMetadata{
			1: {ColumnsByIndex: map[int]core.ColumnMetadata{0: {ColspanRest: true}}},
		},
	}
	g := newTestGrid(t, data, nil)

	g.SetActiveCell(0, 2)
	g.NavigateDown()
	activeAt(t, g, 1, 0)
	g.NavigateDown()
	activeAt(t, g, 2, 2)
	g.NavigateUp()
	activeAt(t, g, 1, 0)
	g.NavigateUp()
	activeAt(t, g, 0, 2)

	g.NavigateDown()
	if g.NavigateRight() {
		t.Error("Right moved out of a cell spanning the row")
	}
	activeAt(t, g, 1, 0)
}

func TestNavigateScrollsWithPaging(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(25)), nil)
	g.SetActiveCell(0, 0)
	for range 10 {
		if !g.NavigateDown() {
			t.Fatal("NavigateDown failed")
		}
	}
	activeAt(t, g, 10, 0)
	if top, _ := g.ScrollPosition(); top != 200 {
		t.Errorf("scroll top = %d, want 200", top)
	}
}

func TestNavigatePage(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(25)), nil)
	g.SetActiveCell(0, 1)

	if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyPageDown}) {
		t.Fatal("PageDown not handled")
	}
	activeAt(t, g, 8, 1)
	if top, _ := g.ScrollPosition(); top != 200 {
		t.Errorf("scroll top = %d", top)
	}
	g.NavigatePageUp()
	activeAt(t, g, 0, 1)
}

func TestNavigationDisabled(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(3)), func(o *Options) {
		o.EnableCellNavigation = false
	})
	if g.CanCellBeActive(0, 0) {
		t.Error("cell focusable with navigation disabled")
	}
	if g.GotoCell(0, 0, false) {
		t.Error("GotoCell succeeded with navigation disabled")
	}
	if g.NavigateNext() {
		t.Error("NavigateNext moved with navigation disabled")
	}
}

func TestKeyDownNavigation(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(3)), nil)
	g.SetActiveCell(0, 2)

	keys := []struct {
		key       core.KeyEvent
		row, cell int
	}{
		{core.KeyEvent{Key: core.KeyTab}, 1, 0},
		{core.KeyEvent{Key: core.KeyBacktab}, 0, 2},
		{core.KeyEvent{Key: core.KeyLeft}, 0, 1},
		{core.KeyEvent{Key: core.KeyTab, Mod: core.ModShift}, 0, 0},
		{core.KeyEvent{Key: core.KeyDown}, 1, 0},
	}
	for _, k := range keys {
		if !g.HandleKeyDown(k.key) {
			t.Errorf("key %+v not handled", k.key)
		}
		activeAt(t, g, k.row, k.cell)
	}

	if g.HandleKeyDown(core.KeyEvent{Key: core.KeyDown, Mod: core.ModCtrl}) {
		t.Error("ctrl+down handled")
	}
}

func TestKeyDownStop(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(3)), nil)
	g.SetActiveCell(0, 0)

	var seen []core.KeyEvent
	g.OnKeyDown.Subscribe(func(a *event.Args[KeyDownArgs]) {
		seen = append(seen, a.Data.Key)
		if a.Data.Key.Key == core.KeyDown {
			a.Stop()
		}
	})
	if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyDown}) {
		t.Error("stopped key not reported as handled")
	}
	activeAt(t, g, 0, 0)
	g.HandleKeyDown(core.KeyEvent{Key: core.KeyRight})
	activeAt(t, g, 0, 1)
	if len(seen) != 2 {
		t.Errorf("OnKeyDown saw %d keys", len(seen))
	}
}

func TestClickActivates(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(5)), nil)

	var changes []ActiveCellArgs
	g.OnActiveCellChanged.Subscribe(func(a *event.Args[ActiveCellArgs]) { changes = append(changes, a.Data) })

	g.HandleClick(2, 1, core.ModNone)
	activeAt(t, g, 2, 1)
	if len(changes) != 1 || !changes[0].Active {
		t.Errorf("active cell changes = %+v", changes)
	}

	g.OnClick.Subscribe(func(a *event.Args[ClickArgs]) {
		if a.Data.Mod.Has(core.ModCtrl) {
			a.Stop()
		}
	})
	g.HandleClick(3, 1, core.ModCtrl)
	activeAt(t, g, 2, 1)

	g.HandleClick(99, 1, core.ModNone)
	activeAt(t, g, 2, 1)
}

func TestDblClickOpensEditor(t *testing.T) {
	g, eds := editableGrid(t, testItems(3), func(o *Options) { o.AutoEdit = false })
	g.HandleClick(1, 1, core.ModNone)
	if g.CurrentEditor() != nil {
		t.Fatal("single click opened an editor")
	}
	g.HandleDblClick(1, 1, core.ModNone)
	if g.CurrentEditor() == nil || len(eds.created) != 1 {
		t.Error("double click did not open an editor")
	}
}

func TestCellFromPoint(t *testing.T) {
	data := metaSlice{
		ItemSlice: ItemSlice(testItems(25)),
		meta: map[int]*core.RowMetadata{
			1: {ColumnsByIndex: map[int]core.ColumnMetadata{0: {ColspanRest: true}}},
		},
	}
	g := newTestGrid(t, data, nil)

	tests := []struct {
		x, y      int
		row, cell int
		ok        bool
	}{
		{10, 10, 0, 0, true},
		{50, 60, 2, 1, true},
		{150, 30, 1, 0, true},
		{169, 199, 7, 2, true},
		{170, 10, -1, -1, false},
		{-1, 10, -1, -1, false},
	}
	for _, tt := range tests {
		row, cell, ok := g.CellFromPoint(tt.x, tt.y)
		if row != tt.row || cell != tt.cell || ok != tt.ok {
			t.Errorf("CellFromPoint(%d, %d) = %d, %d, %v; want %d, %d, %v",
				tt.x, tt.y, row, cell, ok, tt.row, tt.cell, tt.ok)
		}
	}

	g.ScrollTo(100)
	if row, _, _ := g.CellFromPoint(10, 10); row != 4 {
		t.Errorf("after scrolling row = %d, want 4", row)
	}
}

func TestDirectionString(t *testing.T) {
	for d, want := range map[Direction]string{Up: "up", Next: "next", Direction(42): "unknown"} {
		if got := d.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", d, got, want)
		}
	}
}
