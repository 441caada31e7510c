package dataview

import (
	"slices"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// requestRefresh refreshes now, or through the refresh slot when a delay is
// configured.
func (d *DataView) requestRefresh() {
	if d.suspend {
		return
	}
	if d.refreshSlot != nil {
		d.refreshSlot.Schedule(d.cfg.refreshDelay, d.Refresh)
		return
	}
	d.Refresh()
}

// RefreshPending reports whether a deferred refresh is waiting.
func (d *DataView) RefreshPending() bool {
	return d.refreshSlot != nil && d.refreshSlot.Pending()
}

// Refresh recomputes the rows and publishes what changed. It is a no-op
// while updates are suspended.
func (d *DataView) Refresh() {
	if d.refreshSlot != nil {
		d.refreshSlot.Cancel()
	}
	if d.suspend {
		return
	}

	countBefore := len(d.rows)
	totalBefore := d.totalRows

	diff := d.recalc()

	d.updated = nil
	d.prevHints = d.hints
	d.hints = RefreshHints{}

	d.log.Debug("refresh: %d rows, %d filtered, %d changed", len(d.rows), d.totalRows, len(diff))

	if totalBefore != d.totalRows {
		d.OnPagingInfoChanged.Notify(d.PagingInfo(), nil)
	}
	if countBefore != len(d.rows) {
		d.OnRowCountChanged.Notify(RowCountChange{Previous: countBefore, Current: len(d.rows)}, nil)
	}
	if len(diff) > 0 {
		d.OnRowsChanged.Notify(RowsChange{Rows: diff}, nil)
	}
}

// recalc runs the pipeline and returns the changed rows.
func (d *DataView) recalc() []int {
	d.rowsByID = nil

	if d.hints.IsFilterNarrowing != d.prevHints.IsFilterNarrowing ||
		d.hints.IsFilterExpanding != d.prevHints.IsFilterExpanding {
		d.filterCache = nil
	}

	total, paged := d.filterAndPage()
	d.totalRows = total

	var rows []core.Row
	d.groups = nil
	if len(d.groupingInfos) > 0 {
		d.groups = d.extractGroups(paged, nil)
		if len(d.groups) > 0 {
			d.finalizeGroups(d.groups, 0, true)
			rows = d.flattenGroups(d.groups, nil)
		}
	}
	if rows == nil {
		rows = make([]core.Row, len(paged))
		for i, it := range paged {
			rows[i] = core.DataRow{Item: it}
		}
	}

	diff := d.rowDiffs(d.rows, rows)
	d.rows = rows
	return diff
}

// filterAndPage returns the filtered item count and the items on the
// current page.
func (d *DataView) filterAndPage() (int, []item.Item) {
	if d.filter != nil {
		switch {
		case d.hints.IsFilterNarrowing:
			d.filtered = d.filterFrom(d.filtered)
		case d.hints.IsFilterExpanding:
			d.filtered = d.filterWithCache()
		case !d.hints.IsFilterUnchanged:
			d.filtered = d.filterFrom(d.items)
		}
	} else if d.pageSize > 0 {
		d.filtered = d.items
	} else {
		d.filtered = slices.Clone(d.items)
	}

	paged := d.filtered
	if d.pageSize > 0 {
		if len(d.filtered) <= d.pageNum*d.pageSize {
			if len(d.filtered) == 0 {
				d.pageNum = 0
			} else {
				d.pageNum = (len(d.filtered) - 1) / d.pageSize
			}
		}
		start := d.pageSize * d.pageNum
		end := min(start+d.pageSize, len(d.filtered))
		paged = d.filtered[start:end]
	}
	return len(d.filtered), paged
}

func (d *DataView) filterFrom(src []item.Item) []item.Item {
	out := make([]item.Item, 0, len(src))
	for _, it := range src {
		if d.filter(it, d.filterArgs) {
			out = append(out, it)
		}
	}
	return out
}

// filterWithCache re-tests only items that failed last time. Items that
// passed are assumed to pass again.
func (d *DataView) filterWithCache() []item.Item {
	if len(d.filterCache) != len(d.items) {
		d.filterCache = make([]bool, len(d.items))
	}
	out := make([]item.Item, 0, len(d.items))
	for i, it := range d.items {
		if d.filterCache[i] {
			out = append(out, it)
			continue
		}
		if d.filter(it, d.filterArgs) {
			d.filterCache[i] = true
			out = append(out, it)
		}
	}
	return out
}

// rowDiffs returns the rows that differ between prev and next, limited to
// the window given by the refresh hints. Rows past the end of next were
// removed and are always reported.
func (d *DataView) rowDiffs(prev, next []core.Row) []int {
	n := max(len(prev), len(next))
	from, to := 0, n
	if d.hints.IgnoreDiffsBefore > 0 {
		from = min(d.hints.IgnoreDiffsBefore, n)
	}
	if d.hints.IgnoreDiffsAfter > 0 {
		to = min(d.hints.IgnoreDiffsAfter, n)
	}

	grouped := len(d.groupingInfos) > 0
	var diff []int
	for i := from; i < to; i++ {
		if i >= len(prev) || i >= len(next) || d.rowChanged(prev[i], next[i], grouped) {
			diff = append(diff, i)
		}
	}
	return diff
}

func (d *DataView) rowChanged(prev, next core.Row, grouped bool) bool {
	if grouped {
		if prev.Kind() != next.Kind() {
			return true
		}
		switch n := next.(type) {
		case *core.Group:
			return !n.Equals(prev.(*core.Group))
		case *core.Totals:
			return true
		}
	}

	pi, ni := core.ItemOf(prev), core.ItemOf(next)
	if pi == nil || ni == nil {
		return true
	}
	id := ni.Get(d.cfg.idField)
	if !item.Equal(pi.Get(d.cfg.idField), id) {
		return true
	}
	_, changed := d.updated[id]
	return changed
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
