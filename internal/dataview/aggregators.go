package dataview

import (
	"math"
	"strconv"
	"strings"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// Aggregator accumulates one statistic over a group. The data view calls
// Init, then Accumulate for each row (or AccumulateGroup for each child
// group), then StoreResult.
type Aggregator interface {
	Init()
	Accumulate(it item.Item)
	AccumulateGroup(g *core.Group)
	StoreResult(t *core.Totals)
}

// Aggregator kinds, used as the first key of Totals.
const (
	KindAvg = "avg"
	KindMin = "min"
	KindMax = "max"
	KindSum = "sum"
)

// AggregatorOption configures a built-in aggregator.
type AggregatorOption func(*numericField)

// WithLegacyNumericGuard reproduces an old accumulation rule in which only
// values that are not numeric were folded in, parsed by numeric prefix.
func WithLegacyNumericGuard() AggregatorOption {
	return func(n *numericField) {
		n.read = legacyRead
	}
}

type numericField struct {
	field string
	read  func(v any) (float64, bool)
}

func newNumericField(field string, opts []AggregatorOption) numericField {
	n := numericField{field: field, read: numericRead}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

func (n numericField) value(it item.Item) (float64, bool) {
	return n.read(it.Get(n.field))
}

// numericRead accepts numbers and numeric strings.
func numericRead(v any) (float64, bool) {
	if v == nil || v == "" {
		return 0, false
	}
	return item.ToFloat(v)
}

// legacyRead accepts present values that do not convert to a number, and
// parses their longest numeric prefix, yielding NaN when there is none.
func legacyRead(v any) (float64, bool) {
	if v == nil || v == "" {
		return 0, false
	}
	if _, ok := item.ToFloat(v); ok {
		return 0, false
	}
	s, ok := v.(string)
	if !ok {
		return math.NaN(), true
	}
	return parseFloatPrefix(s), true
}

func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r")
	best := math.NaN()
	for i := 1; i <= len(s); i++ {
		if f, err := strconv.ParseFloat(s[:i], 64); err == nil {
			best = f
		}
	}
	return best
}

type avgAggregator struct {
	numericField
	sum   float64
	count int
}

// Avg averages a numeric field.
func Avg(field string, opts ...AggregatorOption) Aggregator {
	return &avgAggregator{numericField: newNumericField(field, opts)}
}

func (a *avgAggregator) Init() {
	a.sum, a.count = 0, 0
}

func (a *avgAggregator) Accumulate(it item.Item) {
	if v, ok := a.value(it); ok {
		a.sum += v
		a.count++
	}
}

func (a *avgAggregator) AccumulateGroup(g *core.Group) {
	if g.Totals == nil {
		return
	}
	if v, ok := g.Totals.Float(KindAvg, a.field); ok {
		a.sum += v * float64(g.Count)
		a.count += g.Count
	}
}

func (a *avgAggregator) StoreResult(t *core.Totals) {
	if a.count > 0 {
		t.Set(KindAvg, a.field, a.sum/float64(a.count))
	}
}

type extremeAggregator struct {
	numericField
	kind string
	less func(a, b float64) bool
	best float64
	seen bool
}

// Min tracks the smallest value of a numeric field.
func Min(field string, opts ...AggregatorOption) Aggregator {
	return &extremeAggregator{
		numericField: newNumericField(field, opts),
		kind:         KindMin,
		less:         func(a, b float64) bool { return a < b },
	}
}

// Max tracks the largest value of a numeric field.
func Max(field string, opts ...AggregatorOption) Aggregator {
	return &extremeAggregator{
		numericField: newNumericField(field, opts),
		kind:         KindMax,
		less:         func(a, b float64) bool { return a > b },
	}
}

func (a *extremeAggregator) Init() {
	a.best, a.seen = 0, false
}

func (a *extremeAggregator) offer(v float64) {
	if !a.seen || a.less(v, a.best) {
		a.best = v
		a.seen = true
	}
}

func (a *extremeAggregator) Accumulate(it item.Item) {
	if v, ok := a.value(it); ok {
		a.offer(v)
	}
}

func (a *extremeAggregator) AccumulateGroup(g *core.Group) {
	if g.Totals == nil {
		return
	}
	if v, ok := g.Totals.Float(a.kind, a.field); ok {
		a.offer(v)
	}
}

func (a *extremeAggregator) StoreResult(t *core.Totals) {
	if a.seen {
		t.Set(a.kind, a.field, a.best)
	}
}

type sumAggregator struct {
	numericField
	sum float64
}

// Sum adds up a numeric field.
func Sum(field string, opts ...AggregatorOption) Aggregator {
	return &sumAggregator{numericField: newNumericField(field, opts)}
}

func (a *sumAggregator) Init() {
	a.sum = 0
}

func (a *sumAggregator) Accumulate(it item.Item) {
	if v, ok := a.value(it); ok {
		a.sum += v
	}
}

func (a *sumAggregator) AccumulateGroup(g *core.Group) {
	if g.Totals == nil {
		return
	}
	if v, ok := g.Totals.Float(KindSum, a.field); ok {
		a.sum += v
	}
}

func (a *sumAggregator) StoreResult(t *core.Totals) {
	t.Set(KindSum, a.field, a.sum)
}
