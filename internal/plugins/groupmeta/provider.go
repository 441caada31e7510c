// Package groupmeta supplies row metadata for group and totals rows of a
// grouped data view and lets the user expand and collapse groups from the
// grid.
package groupmeta

import (
	"fmt"
	"strings"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dataview"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid"
)

// View is the part of a data view the provider toggles groups on.
type View interface {
	ExpandGroup(values ...any)
	CollapseGroup(values ...any)
	SetRefreshHints(h dataview.RefreshHints)
}

// Options configures a Provider.
type Options struct {
	GroupCSSClass     string
	GroupLevelPrefix  string
	TotalsCSSClass    string
	ExpandedCSSClass  string
	CollapsedCSSClass string

	// ExpandedGlyph and CollapsedGlyph prefix group titles when
	// EnableExpandCollapse is set.
	ExpandedGlyph  string
	CollapsedGlyph string

	// Indent is the number of spaces per group level.
	Indent int

	GroupFocusable       bool
	TotalsFocusable      bool
	EnableExpandCollapse bool

	// GroupFormatter and TotalsFormatter replace the default cell formatters
	// for group and totals rows.
	GroupFormatter  core.Formatter
	TotalsFormatter core.Formatter
}

// DefaultOptions returns the default provider options.
func DefaultOptions() Options {
	return Options{
		GroupCSSClass:        "grid-group",
		GroupLevelPrefix:     "grid-group-level-",
		TotalsCSSClass:       "grid-group-totals",
		ExpandedCSSClass:     "expanded",
		CollapsedCSSClass:    "collapsed",
		ExpandedGlyph:        "▾",
		CollapsedGlyph:       "▸",
		Indent:               2,
		GroupFocusable:       true,
		EnableExpandCollapse: true,
	}
}

// Provider is a dataview.MetadataProvider and a grid.Plugin. Install it on
// the view with SetMetadataProvider and on the grid with RegisterPlugin.
type Provider struct {
	view View
	opts Options
	grid *grid.Grid
	subs *event.Group
}

// New creates a provider toggling groups on view.
func New(view View, opts Options) *Provider {
	p := &Provider{view: view, opts: opts}
	if p.opts.GroupFormatter == nil {
		p.opts.GroupFormatter = p.formatGroup
	}
	if p.opts.TotalsFormatter == nil {
		p.opts.TotalsFormatter = formatTotals
	}
	return p
}

// Options returns the provider options.
func (p *Provider) Options() Options {
	return p.opts
}

// GroupRowMetadata spans the group title across the row.
func (p *Provider) GroupRowMetadata(g *core.Group) *core.RowMetadata {
	classes := []string{p.opts.GroupCSSClass, fmt.Sprintf("%s%d", p.opts.GroupLevelPrefix, g.Level)}
	if g.Collapsed {
		classes = append(classes, p.opts.CollapsedCSSClass)
	} else {
		classes = append(classes, p.opts.ExpandedCSSClass)
	}
	return &core.RowMetadata{
		CSSClasses: strings.Join(classes, " "),
		Selectable: core.Bool(false),
		Focusable:  core.Bool(p.opts.GroupFocusable),
		ColumnsByIndex: map[int]core.ColumnMetadata{
			0: {
				ColspanRest: true,
				NoEditor:    true,
				Formatter:   p.opts.GroupFormatter,
			},
		},
	}
}

// TotalsRowMetadata formats each cell of a totals row with its column's
// totals formatter.
func (p *Provider) TotalsRowMetadata(*core.Totals) *core.RowMetadata {
	return &core.RowMetadata{
		CSSClasses: p.opts.TotalsCSSClass,
		Selectable: core.Bool(false),
		Focusable:  core.Bool(p.opts.TotalsFocusable),
		NoEditor:   true,
		Formatter:  p.opts.TotalsFormatter,
	}
}

func (p *Provider) formatGroup(_, _ int, _ any, _ *core.Column, r core.Row) string {
	g, ok := r.(*core.Group)
	if !ok {
		return ""
	}
	if !p.opts.EnableExpandCollapse {
		return g.Title
	}
	glyph := p.opts.ExpandedGlyph
	if g.Collapsed {
		glyph = p.opts.CollapsedGlyph
	}
	return strings.Repeat(" ", g.Level*p.opts.Indent) + glyph + " " + g.Title
}

func formatTotals(_, _ int, _ any, col *core.Column, r core.Row) string {
	t, ok := r.(*core.Totals)
	if !ok || col.GroupTotalsFormatter == nil {
		return ""
	}
	return col.GroupTotalsFormatter(t, col)
}

// Init subscribes to the grid's clicks and keys.
func (p *Provider) Init(g *grid.Grid) {
	p.grid = g
	p.subs = event.NewGroup()
	event.Attach(p.subs, g.OnClick, p.handleClick)
	event.Attach(p.subs, g.OnKeyDown, p.handleKeyDown)
}

// Destroy unsubscribes from the grid.
func (p *Provider) Destroy() {
	if p.subs != nil {
		p.subs.UnsubscribeAll()
		p.subs = nil
	}
	p.grid = nil
}

func (p *Provider) handleClick(a *event.Args[grid.ClickArgs]) {
	if !p.opts.EnableExpandCollapse {
		return
	}
	if p.toggle(a.Data.Row) {
		a.Stop()
	}
}

func (p *Provider) handleKeyDown(a *event.Args[grid.KeyDownArgs]) {
	k := a.Data.Key
	if !p.opts.EnableExpandCollapse || k.Key != core.KeyRune || k.Rune != ' ' || !k.Plain() {
		return
	}
	row, _, ok := p.grid.ActiveCell()
	if !ok {
		return
	}
	if p.toggle(row) {
		a.Stop()
	}
}

// toggle expands or collapses the group on row. Only the rendered rows are
// diffed, since the rows below move anyway.
func (p *Provider) toggle(row int) bool {
	g, ok := p.grid.DataRow(row).(*core.Group)
	if !ok {
		return false
	}
	r := p.grid.RenderedRange()
	p.view.SetRefreshHints(dataview.RefreshHints{
		IgnoreDiffsBefore: r.Top,
		IgnoreDiffsAfter:  r.Bottom + 1,
	})
	if g.Collapsed {
		p.view.ExpandGroup(g.GroupingKey)
	} else {
		p.view.CollapseGroup(g.GroupingKey)
	}
	return true
}
