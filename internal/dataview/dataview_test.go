package dataview

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

func makeItems(n int) []item.Item {
	items := make([]item.Item, n)
	for i := range items {
		items[i] = item.Record{"id": i, "value": i * 10, "parity": i % 2}
	}
	return items
}

func newView(t *testing.T, items []item.Item, opts ...Option) *DataView {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Null())}, opts...)
	d := New(opts...)
	if err := d.SetItems(items); err != nil {
		t.Fatalf("SetItems: %v", err)
	}
	return d
}

// checkIndex verifies IdxByID agrees with Items.
func checkIndex(t *testing.T, d *DataView) {
	t.Helper()
	items := d.Items()
	if len(d.idxByID) != len(items) {
		t.Fatalf("index has %d entries, items %d", len(d.idxByID), len(items))
	}
	for i, it := range items {
		idx, ok := d.IdxByID(it.Get("id"))
		if !ok || idx != i {
			t.Fatalf("IdxByID(%v) = %d, %v; want %d", it.Get("id"), idx, ok, i)
		}
	}
}

func TestSetItemsRejectsBadIDs(t *testing.T) {
	tests := []struct {
		name  string
		items []item.Item
	}{
		{"missing id", []item.Item{item.Record{"id": 1}, item.Record{"name": "x"}}},
		{"duplicate id", []item.Item{item.Record{"id": 1}, item.Record{"id": 1}}},
		{"nil item", []item.Item{nil}},
		{"uncomparable id", []item.Item{item.Record{"id": []int{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newView(t, makeItems(2))
			err := d.SetItems(tt.items)
			if !errors.Is(err, ErrDuplicateOrMissingID) {
				t.Fatalf("SetItems = %v, want ErrDuplicateOrMissingID", err)
			}
			var idErr *IDError
			if !errors.As(err, &idErr) || idErr.Op != "SetItems" {
				t.Errorf("error should be an IDError for SetItems, got %v", err)
			}
			if d.Len() != 2 {
				t.Errorf("view changed after failed SetItems: Len() = %d", d.Len())
			}
			checkIndex(t, d)
		})
	}
}

func TestSetItemsWithIDField(t *testing.T) {
	d := newView(t, nil)
	items := []item.Item{item.Record{"key": "a"}, item.Record{"key": "b"}}
	if err := d.SetItemsWithIDField(items, "key"); err != nil {
		t.Fatalf("SetItemsWithIDField: %v", err)
	}
	if d.IDField() != "key" {
		t.Errorf("IDField() = %q", d.IDField())
	}
	if row, ok := d.RowByID("b"); !ok || row != 1 {
		t.Errorf("RowByID(b) = %d, %v", row, ok)
	}
}

func TestIndexConsistency(t *testing.T) {
	d := newView(t, makeItems(5))
	checkIndex(t, d)

	steps := []struct {
		name string
		op   func() error
	}{
		{"insert front", func() error { return d.InsertItem(0, item.Record{"id": 100}) }},
		{"insert middle", func() error { return d.InsertItem(3, item.Record{"id": 101}) }},
		{"insert past end", func() error { return d.InsertItem(99, item.Record{"id": 102}) }},
		{"add", func() error { return d.AddItem(item.Record{"id": 103}) }},
		{"delete", func() error { return d.DeleteItem(2) }},
		{"delete first", func() error { return d.DeleteItem(100) }},
		{"update", func() error { return d.UpdateItem(4, item.Record{"id": 4, "value": -1}) }},
	}
	for _, s := range steps {
		if err := s.op(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		checkIndex(t, d)
	}
	if d.Len() != 7 {
		t.Errorf("Len() = %d, want 7", d.Len())
	}
	if d.ItemByIdx(d.ItemCount()-2).Get("id") != 102 {
		t.Error("item inserted past the end should be appended")
	}
}

func TestMutationErrors(t *testing.T) {
	d := newView(t, makeItems(3))

	if err := d.InsertItem(0, item.Record{"id": 1}); !errors.Is(err, ErrDuplicateOrMissingID) {
		t.Errorf("InsertItem duplicate = %v", err)
	}
	if err := d.AddItem(item.Record{}); !errors.Is(err, ErrDuplicateOrMissingID) {
		t.Errorf("AddItem missing id = %v", err)
	}
	if err := d.UpdateItem(9, item.Record{"id": 9}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("UpdateItem unknown = %v", err)
	}
	if err := d.UpdateItem(1, item.Record{"id": 2}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("UpdateItem mismatched = %v", err)
	}
	if err := d.DeleteItem(9); !errors.Is(err, ErrInvalidID) {
		t.Errorf("DeleteItem unknown = %v", err)
	}
	checkIndex(t, d)
}

func TestUpdateItemDiff(t *testing.T) {
	d := newView(t, makeItems(10))

	var changes [][]int
	d.OnRowsChanged.Subscribe(func(a *event.Args[RowsChange]) { changes = append(changes, a.Data.Rows) })
	countEvents := 0
	d.OnRowCountChanged.Subscribe(func(*event.Args[RowCountChange]) { countEvents++ })

	if err := d.UpdateItem(4, item.Record{"id": 4, "value": 999}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if len(changes) != 1 || !slices.Equal(changes[0], []int{4}) {
		t.Errorf("rows changed = %v, want [[4]]", changes)
	}
	if countEvents != 0 {
		t.Errorf("row count events = %d, want 0", countEvents)
	}

	d.Refresh()
	if len(changes) != 1 {
		t.Error("a refresh without changes should not publish rows")
	}
}

func TestRowsChangedReportsRemovedTail(t *testing.T) {
	d := newView(t, makeItems(6))
	var got []int
	d.OnRowsChanged.Subscribe(func(a *event.Args[RowsChange]) { got = a.Data.Rows })

	d.SetFilter(func(it item.Item, _ any) bool { return it.Get("value").(int) < 30 })
	if d.Len() != 3 || !slices.Equal(got, []int{3, 4, 5}) {
		t.Errorf("filter: Len() = %d, rows changed = %v; want 3 and [3 4 5]", d.Len(), got)
	}

	got = nil
	if err := d.DeleteItem(2); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2}) {
		t.Errorf("delete last row: rows changed = %v, want [2]", got)
	}
}

func TestRefreshEventOrder(t *testing.T) {
	d := newView(t, nil)
	var order []string
	d.OnPagingInfoChanged.Subscribe(func(*event.Args[PagingInfo]) { order = append(order, "paging") })
	d.OnRowCountChanged.Subscribe(func(a *event.Args[RowCountChange]) {
		order = append(order, "count")
		if a.Data.Previous != 0 || a.Data.Current != 3 {
			t.Errorf("count change = %+v", a.Data)
		}
	})
	d.OnRowsChanged.Subscribe(func(*event.Args[RowsChange]) { order = append(order, "rows") })

	if err := d.SetItems(makeItems(3)); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(order, []string{"paging", "count", "rows"}) {
		t.Errorf("order = %v", order)
	}
}

func TestBeginEndUpdate(t *testing.T) {
	d := newView(t, makeItems(3))
	refreshes := 0
	d.OnRowCountChanged.Subscribe(func(*event.Args[RowCountChange]) { refreshes++ })

	d.BeginUpdate()
	if !d.Updating() {
		t.Error("Updating() should be true")
	}
	for i := 10; i < 15; i++ {
		if err := d.AddItem(item.Record{"id": i}); err != nil {
			t.Fatal(err)
		}
	}
	if d.Len() != 3 {
		t.Errorf("rows refreshed while suspended: Len() = %d", d.Len())
	}
	d.EndUpdate()
	if d.Len() != 8 || refreshes != 1 {
		t.Errorf("Len() = %d, refreshes = %d; want 8 and 1", d.Len(), refreshes)
	}
}

func TestDeferredRefresh(t *testing.T) {
	clock := schedule.NewManual()
	d := newView(t, nil, WithRefreshDelay(clock, 10*time.Millisecond))
	rowsEvents := 0
	d.OnRowsChanged.Subscribe(func(*event.Args[RowsChange]) { rowsEvents++ })

	if err := d.SetItems(makeItems(4)); err != nil {
		t.Fatal(err)
	}
	if err := d.AddItem(item.Record{"id": 50}); err != nil {
		t.Fatal(err)
	}
	if !d.RefreshPending() || d.Len() != 0 {
		t.Fatalf("refresh should be pending, Len() = %d", d.Len())
	}

	clock.Advance(10 * time.Millisecond)
	if d.Len() != 5 || rowsEvents != 1 {
		t.Errorf("Len() = %d, rowsEvents = %d; want 5 and 1", d.Len(), rowsEvents)
	}
	if d.RefreshPending() {
		t.Error("refresh should have run")
	}
}

func TestSortRoundTrip(t *testing.T) {
	items := []item.Item{
		item.Record{"id": 1, "k": 3},
		item.Record{"id": 2, "k": 1},
		item.Record{"id": 3, "k": 2},
		item.Record{"id": 4, "k": 5},
	}
	d := newView(t, items)
	cmp := func(a, b item.Item) int { return item.Compare(a.Get("k"), b.Get("k")) }

	ids := func() []any { return d.MapRowsToIDs([]int{0, 1, 2, 3}) }

	d.Sort(cmp, true)
	asc := ids()
	if !slices.Equal(asc, []any{2, 3, 1, 4}) {
		t.Fatalf("ascending = %v", asc)
	}
	checkIndex(t, d)

	d.Sort(cmp, false)
	desc := ids()
	if !slices.Equal(desc, []any{4, 1, 3, 2}) {
		t.Fatalf("descending = %v", desc)
	}

	d.Sort(cmp, true)
	if !slices.Equal(ids(), asc) {
		t.Errorf("re-sorting ascending = %v, want %v", ids(), asc)
	}
}

func TestSortDescendingKeepsTieOrder(t *testing.T) {
	items := []item.Item{
		item.Record{"id": "a", "k": 1},
		item.Record{"id": "b", "k": 2},
		item.Record{"id": "c", "k": 1},
	}
	d := newView(t, items)
	d.SortByField("k", false)
	got := d.MapRowsToIDs([]int{0, 1, 2})
	if !slices.Equal(got, []any{"b", "a", "c"}) {
		t.Errorf("descending = %v, want [b a c]", got)
	}
	if f, asc := d.SortField(); f != "k" || asc {
		t.Errorf("SortField() = %q, %v", f, asc)
	}

	if err := d.AddItem(item.Record{"id": "d", "k": 9}); err != nil {
		t.Fatal(err)
	}
	d.Resort()
	if first := d.Item(0).Get("id"); first != "d" {
		t.Errorf("after Resort first = %v, want d", first)
	}
}

func TestFilterNarrowsMonotonically(t *testing.T) {
	d := newView(t, makeItems(20))
	even := func(it item.Item, _ any) bool { return it.Get("parity") == 0 }
	d.SetFilter(even)

	got := d.FilteredItems()
	if len(got) > 20 || len(got) != 10 || d.FilteredItemCount() != 10 {
		t.Fatalf("filtered %d items, want 10", len(got))
	}
	for _, it := range got {
		if !even(it, nil) {
			t.Errorf("item %v does not satisfy filter", it.Get("id"))
		}
	}
	if d.Len() != 10 {
		t.Errorf("Len() = %d", d.Len())
	}

	d.SetFilter(nil)
	if d.Len() != 20 {
		t.Errorf("clearing the filter: Len() = %d, want 20", d.Len())
	}
}

func TestFilterHints(t *testing.T) {
	d := newView(t, makeItems(10))
	calls := 0
	d.SetFilter(func(it item.Item, args any) bool {
		calls++
		limit, _ := args.(int)
		return it.Get("value").(int) < limit
	})

	d.SetFilterArgs(80)
	d.Refresh()
	if d.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", d.Len())
	}

	calls = 0
	d.SetFilterArgs(50)
	d.SetRefreshHints(RefreshHints{IsFilterNarrowing: true})
	d.Refresh()
	if calls != 8 || d.Len() != 5 {
		t.Errorf("narrowing: calls = %d, Len() = %d; want 8 and 5", calls, d.Len())
	}

	calls = 0
	d.SetRefreshHints(RefreshHints{IsFilterUnchanged: true})
	d.Refresh()
	if calls != 0 || d.Len() != 5 {
		t.Errorf("unchanged: calls = %d, Len() = %d", calls, d.Len())
	}

	d.SetFilterArgs(70)
	d.SetRefreshHints(RefreshHints{IsFilterExpanding: true})
	d.Refresh()
	if d.Len() != 7 {
		t.Errorf("expanding: Len() = %d, want 7", d.Len())
	}

	calls = 0
	d.SetFilterArgs(90)
	d.SetRefreshHints(RefreshHints{IsFilterExpanding: true})
	d.Refresh()
	if calls != 3 || d.Len() != 9 {
		t.Errorf("cached expanding: calls = %d, Len() = %d; want 3 and 9", calls, d.Len())
	}
}

func TestIgnoreDiffsWindow(t *testing.T) {
	d := newView(t, makeItems(10))
	var got []int
	d.OnRowsChanged.Subscribe(func(a *event.Args[RowsChange]) { got = a.Data.Rows })

	d.BeginUpdate()
	for _, id := range []int{1, 5, 8} {
		if err := d.UpdateItem(id, item.Record{"id": id}); err != nil {
			t.Fatal(err)
		}
	}
	d.SetRefreshHints(RefreshHints{IgnoreDiffsBefore: 2, IgnoreDiffsAfter: 8})
	d.EndUpdate()

	if !slices.Equal(got, []int{5}) {
		t.Errorf("rows changed = %v, want [5]", got)
	}
}

func TestRowMappings(t *testing.T) {
	d := newView(t, makeItems(6))
	d.SetFilter(func(it item.Item, _ any) bool { return it.Get("parity") == 1 })

	if row, ok := d.RowByID(3); !ok || row != 1 {
		t.Errorf("RowByID(3) = %d, %v; want 1", row, ok)
	}
	if _, ok := d.RowByID(2); ok {
		t.Error("filtered-out id should have no row")
	}
	if _, ok := d.RowByID([]int{1}); ok {
		t.Error("uncomparable id should have no row")
	}
	if rows := d.MapIDsToRows([]any{5, 2, 1}); !slices.Equal(rows, []int{2, 0}) {
		t.Errorf("MapIDsToRows = %v", rows)
	}
	if ids := d.MapRowsToIDs([]int{0, 2, 9}); !slices.Equal(ids, []any{1, 5}) {
		t.Errorf("MapRowsToIDs = %v", ids)
	}
	if rows := d.MapItemsToRows([]item.Item{d.ItemByID(5)}); !slices.Equal(rows, []int{2}) {
		t.Errorf("MapItemsToRows = %v", rows)
	}
	if d.Row(-1) != nil || d.Row(3) != nil || d.Item(3) != nil {
		t.Error("out-of-range rows should be nil")
	}
}

func TestItemMetadata(t *testing.T) {
	meta := &core.RowMetadata{CSSClasses: "hot"}
	d := newView(t, makeItems(3), WithItemMetadata(func(it item.Item, row int) *core.RowMetadata {
		if it.Get("id") == 1 {
			return meta
		}
		return nil
	}))
	if d.RowMetadata(1) != meta {
		t.Error("item metadata not consulted")
	}
	if d.RowMetadata(0) != nil || d.RowMetadata(7) != nil {
		t.Error("unexpected metadata")
	}
}
