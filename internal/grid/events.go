package grid

import (
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/item"
)

// ScrollArgs is published when the viewport scrolls.
type ScrollArgs struct {
	ScrollTop  int
	ScrollLeft int
}

// CellArgs identifies a cell.
type CellArgs struct {
	Row  int
	Cell int
}

// ActiveCellArgs is published when the active cell changes. Active is false
// when the grid has no active cell.
type ActiveCellArgs struct {
	Row    int
	Cell   int
	Active bool
}

// ClickArgs is published for clicks and double clicks.
type ClickArgs struct {
	Row  int
	Cell int
	Mod  core.ModMask
}

// KeyDownArgs is published for every key the grid receives.
type KeyDownArgs struct {
	Row  int
	Cell int
	Key  core.KeyEvent
}

// BeforeEditArgs is published before an editor opens. Stopping it cancels
// the edit.
type BeforeEditArgs struct {
	Row    int
	Cell   int
	Item   item.Item
	Column *core.Column
}

// EditorArgs carries the editor being destroyed.
type EditorArgs struct {
	Editor core.Editor
}

// CellChangeArgs is published after an edit is applied.
type CellChangeArgs struct {
	Row    int
	Cell   int
	Item   item.Item
	Column *core.Column
}

// AddNewRowArgs is published when an edit on the add-new row commits.
type AddNewRowArgs struct {
	Item   item.Item
	Column *core.Column
}

// ValidationErrorArgs is published when an editor value fails validation.
type ValidationErrorArgs struct {
	Editor   core.Editor
	CellNode *dom.Node
	Result   core.ValidationResult
	Row      int
	Cell     int
	Column   *core.Column
}

// CellStyles maps row to column id to CSS classes.
type CellStyles map[int]map[string]string

// CellCSSStylesArgs is published when a cell style layer changes.
type CellCSSStylesArgs struct {
	Key    string
	Styles CellStyles
}

// SortArgs is published when a sortable column header is activated.
type SortArgs struct {
	Column    *core.Column
	Ascending bool
}

// RenderedArgs is published after each render with the rendered row span.
type RenderedArgs struct {
	StartRow int
	EndRow   int
}

// Events are the notifications a grid publishes.
type Events struct {
	OnScroll                    *event.Event[ScrollArgs]
	OnViewportChanged           *event.Event[struct{}]
	OnActiveCellChanged         *event.Event[ActiveCellArgs]
	OnActiveCellPositionChanged *event.Event[struct{}]
	OnBeforeEditCell            *event.Event[BeforeEditArgs]
	OnBeforeCellEditorDestroy   *event.Event[EditorArgs]
	OnCellChange                *event.Event[CellChangeArgs]
	OnAddNewRow                 *event.Event[AddNewRowArgs]
	OnValidationError           *event.Event[ValidationErrorArgs]
	OnSelectedRowsChanged       *event.Event[core.SelectionChange]
	OnCellCSSStylesChanged      *event.Event[CellCSSStylesArgs]
	OnKeyDown                   *event.Event[KeyDownArgs]
	OnClick                     *event.Event[ClickArgs]
	OnDblClick                  *event.Event[ClickArgs]
	OnSort                      *event.Event[SortArgs]
	OnRendered                  *event.Event[RenderedArgs]
	OnBeforeDestroy             *event.Event[struct{}]
}

func newEvents() Events {
	return Events{
		OnScroll:                    event.New[ScrollArgs](),
		OnViewportChanged:           event.New[struct{}](),
		OnActiveCellChanged:         event.New[ActiveCellArgs](),
		OnActiveCellPositionChanged: event.New[struct{}](),
		OnBeforeEditCell:            event.New[BeforeEditArgs](),
		OnBeforeCellEditorDestroy:   event.New[EditorArgs](),
		OnCellChange:                event.New[CellChangeArgs](),
		OnAddNewRow:                 event.New[AddNewRowArgs](),
		OnValidationError:           event.New[ValidationErrorArgs](),
		OnSelectedRowsChanged:       event.New[core.SelectionChange](),
		OnCellCSSStylesChanged:      event.New[CellCSSStylesArgs](),
		OnKeyDown:                   event.New[KeyDownArgs](),
		OnClick:                     event.New[ClickArgs](),
		OnDblClick:                  event.New[ClickArgs](),
		OnSort:                      event.New[SortArgs](),
		OnRendered:                  event.New[RenderedArgs](),
		OnBeforeDestroy:             event.New[struct{}](),
	}
}
