package dataview

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// GroupingInfo configures one level of grouping. Use GroupBy for a value
// with the usual defaults.
type GroupingInfo struct {
	// Field is read from each item when Getter is nil.
	Field string

	// Getter extracts the grouping value.
	Getter func(it item.Item) any

	// Formatter renders the group title. The default prints the value.
	Formatter func(g *core.Group) string

	// Comparer orders sibling groups. The default orders by value.
	Comparer func(a, b *core.Group) int

	// PredefinedValues create groups even when no item has the value.
	PredefinedValues []any

	// Aggregators compute the group totals.
	Aggregators []Aggregator

	// AggregateEmpty computes totals for groups without rows.
	AggregateEmpty bool

	// AggregateCollapsed computes totals for collapsed groups, and shows
	// their totals rows.
	AggregateCollapsed bool

	// AggregateChildGroups aggregates over nested group totals instead of
	// the group's rows.
	AggregateChildGroups bool

	// Collapsed is the default collapse state for this level.
	Collapsed bool

	// DisplayTotalsRow adds a totals row after each aggregated group.
	DisplayTotalsRow bool

	// LazyTotalsCalculation defers computing totals until first access.
	LazyTotalsCalculation bool
}

// GroupBy returns grouping by field with a totals row.
func GroupBy(field string, aggregators ...Aggregator) GroupingInfo {
	return GroupingInfo{
		Field:            field,
		Aggregators:      aggregators,
		DisplayTotalsRow: true,
	}
}

func (gi *GroupingInfo) value(it item.Item) any {
	if gi.Getter != nil {
		return gi.Getter(it)
	}
	return it.Get(gi.Field)
}

func (gi *GroupingInfo) title(g *core.Group) string {
	if gi.Formatter != nil {
		return gi.Formatter(g)
	}
	if g.Value == nil {
		return ""
	}
	return fmt.Sprint(g.Value)
}

func (gi *GroupingInfo) compare(a, b *core.Group) int {
	if gi.Comparer != nil {
		return gi.Comparer(a, b)
	}
	return item.Compare(a.Value, b.Value)
}

// SetGrouping replaces the grouping levels. Collapse state is reset.
func (d *DataView) SetGrouping(infos ...GroupingInfo) {
	d.groupingInfos = slices.Clone(infos)
	d.toggled = make([]map[string]bool, len(infos))
	for i := range d.toggled {
		d.toggled[i] = make(map[string]bool)
	}
	d.requestRefresh()
}

// Grouping returns the grouping levels.
func (d *DataView) Grouping() []GroupingInfo {
	return d.groupingInfos
}

// Groups returns the top-level groups of the last refresh.
func (d *DataView) Groups() []*core.Group {
	return d.groups
}

// CollapseAllGroups collapses every group on the given levels, or on all
// levels when none are given.
func (d *DataView) CollapseAllGroups(levels ...int) {
	d.expandCollapseAll(levels, true)
}

// ExpandAllGroups expands every group on the given levels, or on all levels
// when none are given.
func (d *DataView) ExpandAllGroups(levels ...int) {
	d.expandCollapseAll(levels, false)
}

func (d *DataView) expandCollapseAll(levels []int, collapse bool) {
	if len(levels) == 0 {
		for i := range d.groupingInfos {
			d.toggled[i] = make(map[string]bool)
			d.groupingInfos[i].Collapsed = collapse
		}
	} else {
		for _, level := range levels {
			if level < 0 || level >= len(d.groupingInfos) {
				continue
			}
			d.toggled[level] = make(map[string]bool)
			d.groupingInfos[level].Collapsed = collapse
		}
	}
	d.requestRefresh()
}

// CollapseGroup collapses one group. It is addressed either by one value per
// level ("Lvl1", "Lvl2") or by its full grouping key.
func (d *DataView) CollapseGroup(values ...any) {
	d.expandCollapseGroup(values, true)
}

// ExpandGroup expands one group, addressed as for CollapseGroup.
func (d *DataView) ExpandGroup(values ...any) {
	d.expandCollapseGroup(values, false)
}

func (d *DataView) expandCollapseGroup(values []any, collapse bool) {
	if len(values) == 0 {
		return
	}

	key, level := "", -1
	if len(values) == 1 {
		if s, ok := values[0].(string); ok && strings.Contains(s, d.cfg.delimiter) {
			key = s
			level = strings.Count(s, d.cfg.delimiter)
		}
	}
	if level < 0 {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprint(v)
		}
		key = strings.Join(parts, d.cfg.delimiter)
		level = len(values) - 1
	}
	if level >= len(d.groupingInfos) {
		return
	}

	d.toggled[level][key] = d.groupingInfos[level].Collapsed != collapse
	d.requestRefresh()
}

// extractGroups partitions rows by the grouping value of parent's level
// plus one, recursing into deeper levels.
func (d *DataView) extractGroups(rows []item.Item, parent *core.Group) []*core.Group {
	level := 0
	if parent != nil {
		level = parent.Level + 1
	}
	gi := &d.groupingInfos[level]

	var groups []*core.Group
	byValue := make(map[any]*core.Group)

	newGroup := func(val any) *core.Group {
		g := &core.Group{Level: level, Value: val, GroupingKey: fmt.Sprint(val)}
		if parent != nil {
			g.GroupingKey = parent.GroupingKey + d.cfg.delimiter + g.GroupingKey
		}
		groups = append(groups, g)
		byValue[groupKey(val)] = g
		return g
	}

	for _, val := range gi.PredefinedValues {
		if _, ok := byValue[groupKey(val)]; !ok {
			newGroup(val)
		}
	}

	for _, it := range rows {
		val := gi.value(it)
		g, ok := byValue[groupKey(val)]
		if !ok {
			g = newGroup(val)
		}
		g.Rows = append(g.Rows, it)
		g.Count++
	}

	if level < len(d.groupingInfos)-1 {
		for _, g := range groups {
			g.Groups = d.extractGroups(g.Rows, g)
		}
	}

	slices.SortStableFunc(groups, gi.compare)
	return groups
}

// groupKey maps a grouping value to a usable map key.
func groupKey(v any) any {
	if v == nil || reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// finalizeGroups sets collapse state, titles and totals, children first.
func (d *DataView) finalizeGroups(groups []*core.Group, level int, aggregate bool) {
	gi := &d.groupingInfos[level]
	toggled := d.toggled[level]

	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		g.Collapsed = gi.Collapsed != toggled[g.GroupingKey]

		agg := aggregate && (!g.Collapsed || gi.AggregateCollapsed)
		if len(g.Groups) > 0 {
			d.finalizeGroups(g.Groups, level+1, agg)
		}
		if agg && len(gi.Aggregators) > 0 &&
			(gi.AggregateEmpty || len(g.Rows) > 0 || len(g.Groups) > 0) {
			g.Totals = core.NewTotals(g)
			if !gi.LazyTotalsCalculation {
				d.calculateTotals(g.Totals)
			}
		}
		g.Title = gi.title(g)
	}
}

// calculateTotals runs the level's aggregators into t.
func (d *DataView) calculateTotals(t *core.Totals) {
	g := t.Group
	gi := &d.groupingInfos[g.Level]
	fromChildren := gi.AggregateChildGroups && len(g.Groups) > 0

	if fromChildren {
		for _, c := range g.Groups {
			if c.Totals != nil && !c.Totals.Initialized {
				d.calculateTotals(c.Totals)
			}
		}
	}

	for i := len(gi.Aggregators) - 1; i >= 0; i-- {
		agg := gi.Aggregators[i]
		agg.Init()
		if fromChildren {
			for _, c := range g.Groups {
				agg.AccumulateGroup(c)
			}
		} else {
			for _, it := range g.Rows {
				agg.Accumulate(it)
			}
		}
		agg.StoreResult(t)
	}
	t.Initialized = true
}

// flattenGroups emits each group, its visible contents, then its totals.
func (d *DataView) flattenGroups(groups []*core.Group, out []core.Row) []core.Row {
	for _, g := range groups {
		out = append(out, g)
		gi := &d.groupingInfos[g.Level]

		if !g.Collapsed {
			if len(g.Groups) > 0 {
				out = d.flattenGroups(g.Groups, out)
			} else {
				for _, it := range g.Rows {
					out = append(out, core.DataRow{Item: it})
				}
			}
		}
		if g.Totals != nil && gi.DisplayTotalsRow && (!g.Collapsed || gi.AggregateCollapsed) {
			out = append(out, g.Totals)
		}
	}
	return out
}

var (
	defaultGroupMetadata = &core.RowMetadata{
		CSSClasses: "grid-group",
		Selectable: core.Bool(false),
		Focusable:  core.Bool(true),
		ColumnsByIndex: map[int]core.ColumnMetadata{
			0: {
				ColspanRest: true,
				NoEditor:    true,
				Formatter: func(_, _ int, _ any, _ *core.Column, r core.Row) string {
					if g, ok := r.(*core.Group); ok {
						return g.Title
					}
					return ""
				},
			},
		},
	}

	defaultTotalsMetadata = &core.RowMetadata{
		CSSClasses: "grid-group-totals",
		Selectable: core.Bool(false),
		Focusable:  core.Bool(false),
		NoEditor:   true,
		Formatter: func(_, _ int, _ any, col *core.Column, r core.Row) string {
			t, ok := r.(*core.Totals)
			if !ok || col.GroupTotalsFormatter == nil {
				return ""
			}
			return col.GroupTotalsFormatter(t, col)
		},
	}
)
