package dataview

import (
	"slices"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

// FilterFunc reports whether an item is visible. args is the value given to
// SetFilterArgs.
type FilterFunc func(it item.Item, args any) bool

// CompareFunc orders two items.
type CompareFunc func(a, b item.Item) int

// RefreshHints describe how the next refresh differs from the last one.
// They are cleared after every refresh.
type RefreshHints struct {
	// IsFilterNarrowing means every item hidden before is still hidden.
	IsFilterNarrowing bool

	// IsFilterExpanding means every item shown before is still shown.
	IsFilterExpanding bool

	// IsFilterUnchanged skips filtering and reuses the previous result.
	IsFilterUnchanged bool

	// IgnoreDiffsBefore and IgnoreDiffsAfter restrict change detection to
	// rows in [IgnoreDiffsBefore, IgnoreDiffsAfter). Zero means unbounded.
	IgnoreDiffsBefore int
	IgnoreDiffsAfter  int
}

// RowCountChange is published when the number of rows changes.
type RowCountChange struct {
	Previous int
	Current  int
}

// RowsChange is published with the rows that must be redrawn.
type RowsChange struct {
	Rows []int
}

// DataView is the filtered, sorted, grouped and paged projection of a list
// of items.
type DataView struct {
	cfg config
	log *logging.Logger

	items   []item.Item
	idxByID map[any]int

	rows     []core.Row
	rowsByID map[any]int

	filter      FilterFunc
	filterArgs  any
	filtered    []item.Item
	filterCache []bool

	sortCmp   CompareFunc
	sortField string
	sortAsc   bool

	updated   map[any]struct{}
	suspend   bool
	hints     RefreshHints
	prevHints RefreshHints

	groupingInfos []GroupingInfo
	groups        []*core.Group
	toggled       []map[string]bool

	pageSize  int
	pageNum   int
	totalRows int

	refreshSlot *schedule.Slot

	// OnRowCountChanged fires after a refresh changes the row count.
	OnRowCountChanged *event.Event[RowCountChange]

	// OnRowsChanged fires after a refresh with the rows that changed.
	OnRowsChanged *event.Event[RowsChange]

	// OnPagingInfoChanged fires when paging options or the total row count
	// change.
	OnPagingInfoChanged *event.Event[PagingInfo]
}

// New creates an empty DataView.
func New(opts ...Option) *DataView {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &DataView{
		cfg:                 cfg,
		log:                 logging.OrDefault(cfg.logger).WithComponent("dataview"),
		idxByID:             make(map[any]int),
		sortAsc:             true,
		OnRowCountChanged:   event.New[RowCountChange](),
		OnRowsChanged:       event.New[RowsChange](),
		OnPagingInfoChanged: event.New[PagingInfo](),
	}
	if cfg.scheduler != nil {
		d.refreshSlot = schedule.NewSlot(cfg.scheduler, "refresh")
	}
	return d
}

// IDField returns the identifier field name.
func (d *DataView) IDField() string {
	return d.cfg.idField
}

// BeginUpdate suspends refreshes until EndUpdate.
func (d *DataView) BeginUpdate() {
	d.suspend = true
}

// EndUpdate resumes refreshes and refreshes immediately.
func (d *DataView) EndUpdate() {
	d.suspend = false
	d.Refresh()
}

// Updating reports whether refreshes are suspended.
func (d *DataView) Updating() bool {
	return d.suspend
}

// SetRefreshHints sets the hints for the next refresh.
func (d *DataView) SetRefreshHints(h RefreshHints) {
	d.hints = h
}

// SetItems replaces the item list. The view keeps the slice's items by
// reference. Every item must carry a unique, valid id; on error the view is
// left unchanged.
func (d *DataView) SetItems(items []item.Item) error {
	idx, err := buildIndex("SetItems", items, d.cfg.idField)
	if err != nil {
		return err
	}
	d.items = slices.Clone(items)
	d.filtered = d.items
	d.idxByID = idx
	d.filterCache = nil
	d.requestRefresh()
	return nil
}

// SetItemsWithIDField changes the identifier field and replaces the items.
func (d *DataView) SetItemsWithIDField(items []item.Item, idField string) error {
	prev := d.cfg.idField
	d.cfg.idField = idField
	if err := d.SetItems(items); err != nil {
		d.cfg.idField = prev
		return err
	}
	return nil
}

// Items returns the item list in its current order. Callers must not modify
// the returned slice.
func (d *DataView) Items() []item.Item {
	return d.items
}

// ItemCount returns the number of items before filtering.
func (d *DataView) ItemCount() int {
	return len(d.items)
}

// FilteredItems returns the items that passed the last filter run, before
// paging.
func (d *DataView) FilteredItems() []item.Item {
	return d.filtered
}

// FilteredItemCount returns the number of items that passed the filter.
func (d *DataView) FilteredItemCount() int {
	return len(d.filtered)
}

// IdxByID returns the position of the item with the given id.
func (d *DataView) IdxByID(id any) (int, bool) {
	if !item.ValidID(id) {
		return -1, false
	}
	i, ok := d.idxByID[id]
	return i, ok
}

// ItemByIdx returns the item at position i of the unfiltered list.
func (d *DataView) ItemByIdx(i int) item.Item {
	if i < 0 || i >= len(d.items) {
		return nil
	}
	return d.items[i]
}

// ItemByID returns the item with the given id.
func (d *DataView) ItemByID(id any) item.Item {
	i, ok := d.IdxByID(id)
	if !ok {
		return nil
	}
	return d.items[i]
}

// UpdateItem replaces the item stored under id. The new item must carry
// the same id.
func (d *DataView) UpdateItem(id any, it item.Item) error {
	i, ok := d.IdxByID(id)
	if !ok || it == nil || !item.Equal(id, it.Get(d.cfg.idField)) {
		return &IDError{Op: "UpdateItem", ID: id, Index: -1, Err: ErrInvalidID}
	}
	d.items[i] = it
	if d.updated == nil {
		d.updated = make(map[any]struct{})
	}
	d.updated[id] = struct{}{}
	d.requestRefresh()
	return nil
}

// InsertItem inserts it before position before in the unfiltered list.
func (d *DataView) InsertItem(before int, it item.Item) error {
	if err := d.checkNewItem("InsertItem", it); err != nil {
		return err
	}
	before = max(0, min(before, len(d.items)))
	d.items = slices.Insert(d.items, before, it)
	d.reindexFrom(before)
	d.requestRefresh()
	return nil
}

// AddItem appends it to the unfiltered list.
func (d *DataView) AddItem(it item.Item) error {
	if err := d.checkNewItem("AddItem", it); err != nil {
		return err
	}
	d.items = append(d.items, it)
	d.reindexFrom(len(d.items) - 1)
	d.requestRefresh()
	return nil
}

// DeleteItem removes the item stored under id.
func (d *DataView) DeleteItem(id any) error {
	i, ok := d.IdxByID(id)
	if !ok {
		return &IDError{Op: "DeleteItem", ID: id, Index: -1, Err: ErrInvalidID}
	}
	delete(d.idxByID, id)
	d.items = slices.Delete(d.items, i, i+1)
	d.reindexFrom(i)
	d.requestRefresh()
	return nil
}

func (d *DataView) checkNewItem(op string, it item.Item) error {
	if it == nil {
		return &IDError{Op: op, Index: -1, Err: ErrDuplicateOrMissingID}
	}
	id := it.Get(d.cfg.idField)
	if !item.ValidID(id) {
		return &IDError{Op: op, ID: id, Index: -1, Err: ErrDuplicateOrMissingID}
	}
	if _, dup := d.idxByID[id]; dup {
		return &IDError{Op: op, ID: id, Index: -1, Err: ErrDuplicateOrMissingID}
	}
	return nil
}

// reindexFrom refreshes idxByID for items at positions start and later.
// Callers have already validated every id.
func (d *DataView) reindexFrom(start int) {
	for i := start; i < len(d.items); i++ {
		d.idxByID[d.items[i].Get(d.cfg.idField)] = i
	}
}

func buildIndex(op string, items []item.Item, idField string) (map[any]int, error) {
	idx := make(map[any]int, len(items))
	for i, it := range items {
		var id any
		if it != nil {
			id = it.Get(idField)
		}
		if !item.ValidID(id) {
			return nil, &IDError{Op: op, ID: id, Index: i, Err: ErrDuplicateOrMissingID}
		}
		if _, dup := idx[id]; dup {
			return nil, &IDError{Op: op, ID: id, Index: i, Err: ErrDuplicateOrMissingID}
		}
		idx[id] = i
	}
	return idx, nil
}

// SetFilter installs the visibility predicate, or clears it when fn is nil.
func (d *DataView) SetFilter(fn FilterFunc) {
	d.filter = fn
	d.filterCache = nil
	d.requestRefresh()
}

// SetFilterArgs sets the value passed to the filter on the next refresh.
// Combine with SetRefreshHints to describe how the change affects results.
func (d *DataView) SetFilterArgs(args any) {
	d.filterArgs = args
}

// Sort orders the items with cmp. Descending sorts keep equal items in
// their current relative order.
func (d *DataView) Sort(cmp CompareFunc, ascending bool) {
	d.sortCmp = cmp
	d.sortField = ""
	d.sortAsc = ascending
	d.sortItems(cmp, ascending)
}

// SortByField orders the items by the natural order of one field.
func (d *DataView) SortByField(field string, ascending bool) {
	cmp := func(a, b item.Item) int {
		return item.Compare(a.Get(field), b.Get(field))
	}
	d.sortCmp = cmp
	d.sortField = field
	d.sortAsc = ascending
	d.sortItems(cmp, ascending)
}

// SortField returns the field of the last SortByField, and its direction.
func (d *DataView) SortField() (string, bool) {
	return d.sortField, d.sortAsc
}

// Resort re-applies the last sort.
func (d *DataView) Resort() {
	if d.sortCmp != nil {
		d.sortItems(d.sortCmp, d.sortAsc)
	}
}

func (d *DataView) sortItems(cmp CompareFunc, ascending bool) {
	if !ascending {
		slices.Reverse(d.items)
	}
	slices.SortStableFunc(d.items, cmp)
	if !ascending {
		slices.Reverse(d.items)
	}
	clear(d.idxByID)
	d.reindexFrom(0)
	d.requestRefresh()
}

// Len returns the number of display rows.
func (d *DataView) Len() int {
	return len(d.rows)
}

// Row returns display row i, or nil when out of range. Group totals
// configured for lazy calculation are computed here on first access.
func (d *DataView) Row(i int) core.Row {
	if i < 0 || i >= len(d.rows) {
		return nil
	}
	r := d.rows[i]
	switch v := r.(type) {
	case *core.Group:
		if v.Totals != nil && !v.Totals.Initialized {
			gi := &d.groupingInfos[v.Level]
			if !gi.DisplayTotalsRow {
				d.calculateTotals(v.Totals)
				v.Title = gi.title(v)
			}
		}
	case *core.Totals:
		if !v.Initialized {
			d.calculateTotals(v)
		}
	}
	return r
}

// Item returns the data item at display row i, or nil for group, totals
// and out-of-range rows.
func (d *DataView) Item(i int) item.Item {
	return core.ItemOf(d.Row(i))
}

// RowMetadata returns the metadata for display row i.
func (d *DataView) RowMetadata(i int) *core.RowMetadata {
	if i < 0 || i >= len(d.rows) {
		return nil
	}
	switch r := d.rows[i].(type) {
	case *core.Group:
		if d.cfg.metadataProvider != nil {
			return d.cfg.metadataProvider.GroupRowMetadata(r)
		}
		return defaultGroupMetadata
	case *core.Totals:
		if d.cfg.metadataProvider != nil {
			return d.cfg.metadataProvider.TotalsRowMetadata(r)
		}
		return defaultTotalsMetadata
	case core.DataRow:
		if d.cfg.itemMetadata != nil {
			return d.cfg.itemMetadata(r.Item, i)
		}
	}
	return nil
}

// SetMetadataProvider replaces the group metadata provider.
func (d *DataView) SetMetadataProvider(p MetadataProvider) {
	d.cfg.metadataProvider = p
}

// RowByItem returns the display row of it.
func (d *DataView) RowByItem(it item.Item) (int, bool) {
	if it == nil {
		return -1, false
	}
	return d.RowByID(it.Get(d.cfg.idField))
}

// RowByID returns the display row of the item with the given id.
func (d *DataView) RowByID(id any) (int, bool) {
	if !item.ValidID(id) {
		return -1, false
	}
	d.ensureRowsByID()
	row, ok := d.rowsByID[id]
	return row, ok
}

// MapItemsToRows returns the display rows of the visible items.
func (d *DataView) MapItemsToRows(items []item.Item) []int {
	rows := make([]int, 0, len(items))
	for _, it := range items {
		if row, ok := d.RowByItem(it); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// MapIDsToRows returns the display rows of the visible ids.
func (d *DataView) MapIDsToRows(ids []any) []int {
	rows := make([]int, 0, len(ids))
	for _, id := range ids {
		if row, ok := d.RowByID(id); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// MapRowsToIDs returns the ids of the data items at the given rows.
func (d *DataView) MapRowsToIDs(rows []int) []any {
	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		if row < 0 || row >= len(d.rows) {
			continue
		}
		if it := core.ItemOf(d.rows[row]); it != nil {
			ids = append(ids, it.Get(d.cfg.idField))
		}
	}
	return ids
}

func (d *DataView) ensureRowsByID() {
	if d.rowsByID != nil {
		return
	}
	d.rowsByID = make(map[any]int, len(d.rows))
	for i, r := range d.rows {
		if it := core.ItemOf(r); it != nil {
			d.rowsByID[it.Get(d.cfg.idField)] = i
		}
	}
}
