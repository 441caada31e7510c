package grid

import (
	"fmt"
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/editlock"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

// EditCommandHandler receives committed edits instead of the grid applying
// them directly, typically to record them for undo.
type EditCommandHandler func(it item.Item, col *core.Column, cmd *EditCommand)

// Options configures a Grid. Start from DefaultOptions.
type Options struct {
	// RowHeight is the height of every row.
	RowHeight int

	// DefaultColumnWidth applies to columns without a width.
	DefaultColumnWidth int

	// EnableAddRow shows an empty row after the data for new entries.
	EnableAddRow bool

	// LeaveSpaceForNewRows pads the canvas by a page of empty rows.
	LeaveSpaceForNewRows bool

	// Editable allows cell editors to open.
	Editable bool

	// AutoEdit opens the editor as soon as a cell becomes active.
	AutoEdit bool

	// EnableCellNavigation allows an active cell.
	EnableCellNavigation bool

	// AsyncEditorLoading opens editors after AsyncEditorLoadDelay instead
	// of immediately.
	AsyncEditorLoading   bool
	AsyncEditorLoadDelay time.Duration

	// EnableAsyncPostRender runs column AsyncPostRender callbacks on
	// visible cells, one row every AsyncPostRenderDelay.
	EnableAsyncPostRender bool
	AsyncPostRenderDelay  time.Duration

	// ForceFitColumns resizes columns to fill the viewport width.
	ForceFitColumns bool

	// AutoHeight sizes the viewport to fit every row.
	AutoHeight bool

	// HideColumnHeader removes the header row above the viewport.
	HideColumnHeader bool

	// FullWidthRows stretches rows to the viewport width.
	FullWidthRows bool

	// ForceSyncScrolling renders during every scroll instead of deferring
	// large jumps.
	ForceSyncScrolling bool

	// MultiSelect allows selection models to select more than one row.
	MultiSelect bool

	// MaxSupportedHeight is the largest canvas height the display supports.
	// Taller content is split into virtual pages.
	MaxSupportedHeight int

	SelectedCellCSSClass string
	AddNewRowCSSClass    string

	// EditorLock coordinates editors. Grids get their own lock when nil.
	EditorLock *editlock.Lock

	// Scheduler runs deferred rendering and editor work. The default runs
	// it immediately.
	Scheduler schedule.Scheduler

	Logger *logging.Logger

	// DataItemColumnValueExtractor reads cell values; the default reads the
	// column's field.
	DataItemColumnValueExtractor core.ValueExtractor

	// DefaultFormatter renders cells without a formatter.
	DefaultFormatter core.Formatter

	// FormatterFactory and EditorFactory supply a formatter or editor for
	// columns that do not define one.
	FormatterFactory func(col *core.Column) core.Formatter
	EditorFactory    func(col *core.Column) core.EditorFactory

	EditCommandHandler EditCommandHandler

	// NewItem creates the item for an entry on the add-new row.
	NewItem func() item.Item

	// ExplicitInitialization defers Init to the caller.
	ExplicitInitialization bool
}

// DefaultOptions returns the default grid options.
func DefaultOptions() Options {
	return Options{
		RowHeight:            25,
		DefaultColumnWidth:   80,
		AutoEdit:             true,
		EnableCellNavigation: true,
		AsyncEditorLoadDelay: 100 * time.Millisecond,
		AsyncPostRenderDelay: 50 * time.Millisecond,
		MultiSelect:          true,
		MaxSupportedHeight:   1_000_000,
		SelectedCellCSSClass: "selected",
		AddNewRowCSSClass:    "new-row",
		DefaultFormatter:     DefaultFormatter,
		NewItem:              func() item.Item { return item.NewRecord(item.DefaultIDField) },
	}
}

// DefaultFormatter prints the value, or nothing for nil.
func DefaultFormatter(_, _ int, value any, _ *core.Column, _ core.Row) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// normalize fills zero values the grid cannot work with.
func (o *Options) normalize() {
	d := DefaultOptions()
	if o.RowHeight <= 0 {
		o.RowHeight = d.RowHeight
	}
	if o.DefaultColumnWidth <= 0 {
		o.DefaultColumnWidth = d.DefaultColumnWidth
	}
	if o.MaxSupportedHeight <= 0 {
		o.MaxSupportedHeight = d.MaxSupportedHeight
	}
	if o.SelectedCellCSSClass == "" {
		o.SelectedCellCSSClass = d.SelectedCellCSSClass
	}
	if o.AddNewRowCSSClass == "" {
		o.AddNewRowCSSClass = d.AddNewRowCSSClass
	}
	if o.DefaultFormatter == nil {
		o.DefaultFormatter = d.DefaultFormatter
	}
	if o.NewItem == nil {
		o.NewItem = d.NewItem
	}
	if o.AutoHeight {
		o.LeaveSpaceForNewRows = false
	}
}
