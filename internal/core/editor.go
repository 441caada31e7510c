package core

import (
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/item"
)

// EditorArgs is what a grid passes to an EditorFactory.
type EditorArgs struct {
	// Container is the cell node the editor renders into.
	Container *dom.Node

	// Column is the column being edited.
	Column *Column

	// Item is the row's data item, nil on the add-new row.
	Item item.Item

	// Grid is the owning grid.
	Grid any

	// Position is the cell box; GridPosition is the grid's box.
	Position     dom.Box
	GridPosition dom.Box

	// CommitChanges and CancelChanges let the editor end the edit itself.
	CommitChanges func()
	CancelChanges func()
}

// Editor edits a single cell value.
type Editor interface {
	// Destroy tears the editor down.
	Destroy()

	// Focus gives the editor input focus.
	Focus()

	// LoadValue reads the initial value from it.
	LoadValue(it item.Item)

	// SerializeValue returns the editor's current value.
	SerializeValue() any

	// ApplyValue writes a serialized value into it.
	ApplyValue(it item.Item, state any)

	// IsValueChanged reports whether the value differs from the loaded one.
	IsValueChanged() bool

	// Validate checks the current value.
	Validate() ValidationResult
}

// EditorFactory creates an editor for one cell.
type EditorFactory func(args EditorArgs) Editor

// Positioner is implemented by editors drawn outside the cell, which must
// follow the cell as the grid scrolls.
type Positioner interface {
	Show()
	Hide()
	Position(box dom.Box)
}

// KeyHandler is implemented by editors that consume keystrokes. HandleKey
// reports whether the key was used.
type KeyHandler interface {
	HandleKey(k KeyEvent) bool
}
