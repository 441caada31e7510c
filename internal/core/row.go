// Package core holds the types shared by the data view, the grid and the
// grid plugins: display rows, columns, the editor contract and per-row
// metadata. It has no behavior of its own beyond small helpers and exists to
// keep those packages free of import cycles.
package core

import (
	"fmt"
	"slices"

	"github.com/dshills/gridstorm/internal/item"
)

// RowKind discriminates the variants of Row.
type RowKind uint8

const (
	// KindData is a row backed by a data item.
	KindData RowKind = iota
	// KindGroup is a group header row.
	KindGroup
	// KindTotals is a group totals row.
	KindTotals
)

// String returns the kind name.
func (k RowKind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindGroup:
		return "group"
	case KindTotals:
		return "totals"
	default:
		return fmt.Sprintf("RowKind(%d)", uint8(k))
	}
}

// Row is one display entry of a data provider: a DataRow, a *Group or a
// *Totals.
type Row interface {
	Kind() RowKind
}

// DataRow wraps a data item.
type DataRow struct {
	Item item.Item
}

// Kind implements Row.
func (DataRow) Kind() RowKind { return KindData }

// ItemOf returns the data item behind r, or nil when r is nil or not a data
// row.
func ItemOf(r Row) item.Item {
	if d, ok := r.(DataRow); ok {
		return d.Item
	}
	return nil
}

// IsData reports whether r is a data row.
func IsData(r Row) bool {
	return r != nil && r.Kind() == KindData
}

// Group is a group header produced by the data view.
type Group struct {
	// Level is the nesting depth, starting at 0.
	Level int

	// Value is the grouping value shared by every row in the group.
	Value any

	// Title is the display text, computed by the grouping formatter.
	Title string

	// Count is the number of data items in the group, including nested
	// groups.
	Count int

	// Rows are the data items in the group.
	Rows []item.Item

	// Groups are the nested groups, when grouping has more levels.
	Groups []*Group

	// Collapsed hides the group's rows and nested groups.
	Collapsed bool

	// Totals holds aggregate results, or nil when the group is not
	// aggregated.
	Totals *Totals

	// GroupingKey identifies the group across refreshes: the parent key and
	// this value joined by the data view's delimiter.
	GroupingKey string
}

// Kind implements Row.
func (*Group) Kind() RowKind { return KindGroup }

// Equals reports whether two groups display the same.
func (g *Group) Equals(o *Group) bool {
	if g == nil || o == nil {
		return g == o
	}
	return item.Equal(g.Value, o.Value) &&
		g.Count == o.Count &&
		g.Collapsed == o.Collapsed &&
		g.Title == o.Title
}

// Totals carries the aggregate results of a group, keyed by aggregator kind
// ("sum", "avg") and then field.
type Totals struct {
	// Group is the owning group.
	Group *Group

	// Initialized is set once every aggregator has stored its result.
	Initialized bool

	values map[string]map[string]any
}

// NewTotals creates empty totals for g.
func NewTotals(g *Group) *Totals {
	return &Totals{Group: g, values: make(map[string]map[string]any)}
}

// Kind implements Row.
func (*Totals) Kind() RowKind { return KindTotals }

// Set stores a result.
func (t *Totals) Set(kind, field string, v any) {
	m, ok := t.values[kind]
	if !ok {
		m = make(map[string]any)
		t.values[kind] = m
	}
	m[field] = v
}

// Get returns a stored result.
func (t *Totals) Get(kind, field string) (any, bool) {
	v, ok := t.values[kind][field]
	return v, ok
}

// Float returns a stored numeric result.
func (t *Totals) Float(kind, field string) (float64, bool) {
	v, ok := t.Get(kind, field)
	if !ok {
		return 0, false
	}
	return item.ToFloat(v)
}

// Kinds returns the aggregator kinds with stored results, sorted.
func (t *Totals) Kinds() []string {
	kinds := make([]string, 0, len(t.values))
	for k := range t.values {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// SelectionChange is the payload of a grid's selected-rows event.
type SelectionChange struct {
	Rows []int
}
