package grid

import (
	"fmt"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/item"
)

// editMode says whether activating a cell opens its editor.
type editMode int

const (
	// editAuto opens the editor on the add-new row or with AutoEdit.
	editAuto editMode = iota
	editOn
	editOff
)

// editController holds the edit lock on behalf of a grid.
type editController struct {
	g *Grid
}

func (c *editController) CommitCurrentEdit() bool { return c.g.commitCurrentEdit() }
func (c *editController) CancelCurrentEdit() bool { return c.g.cancelCurrentEdit() }

// EditCommand is a committed cell edit. It can be executed and undone any
// number of times.
type EditCommand struct {
	Row    int
	Cell   int
	Editor core.Editor

	SerializedValue     any
	PrevSerializedValue any

	g    *Grid
	item item.Item
	col  *core.Column
}

// Item returns the edited item.
func (c *EditCommand) Item() item.Item {
	return c.item
}

// Execute applies the new value.
func (c *EditCommand) Execute() error {
	return c.apply(c.SerializedValue)
}

// Undo restores the previous value.
func (c *EditCommand) Undo() error {
	return c.apply(c.PrevSerializedValue)
}

// Description names the edit for history listings.
func (c *EditCommand) Description() string {
	return fmt.Sprintf("Edit %s (row %d)", c.col.Name, c.Row)
}

func (c *EditCommand) apply(v any) error {
	if c.item == nil {
		return &CellError{Op: "apply edit", Row: c.Row, Cell: c.Cell, Err: ErrNotEditable}
	}
	c.Editor.ApplyValue(c.item, v)
	c.g.UpdateRow(c.Row)
	c.g.OnCellChange.Notify(CellChangeArgs{Row: c.Row, Cell: c.Cell, Item: c.item, Column: c.col}, nil)
	return nil
}

// ActiveCell returns the active cell. ok is false when there is none.
func (g *Grid) ActiveCell() (row, cell int, ok bool) {
	if g.activeNode == nil {
		return -1, -1, false
	}
	return g.activeRow, g.activeCell, true
}

// ActiveCellNode returns the node of the active cell, or nil.
func (g *Grid) ActiveCellNode() *dom.Node {
	return g.activeNode
}

// ActiveCellPosition returns the absolute box of the active cell. Visible
// is false when the cell is scrolled out of the viewport.
func (g *Grid) ActiveCellPosition() (dom.Box, bool) {
	if g.activeNode == nil {
		return dom.Box{}, false
	}
	return g.cellBox(g.activeNode), true
}

func (g *Grid) cellBox(n *dom.Node) dom.Box {
	b := n.Box()
	vp := g.viewport.Box()
	b.Visible = b.Visible &&
		b.Bottom > vp.Top && b.Top < vp.Bottom &&
		b.Right > vp.Left && b.Left < vp.Right
	return b
}

// CurrentEditor returns the open editor, or nil.
func (g *Grid) CurrentEditor() core.Editor {
	return g.editor
}

// SetActiveCell scrolls to and activates a cell without opening its editor.
func (g *Grid) SetActiveCell(row, cell int) {
	if !g.initialized || row < 0 || row > g.data.Len() || cell < 0 || cell >= len(g.columns) {
		return
	}
	if !g.opts.EnableCellNavigation {
		return
	}
	g.ScrollCellIntoView(row, cell, false)
	g.setActiveCellInternal(row, cell, editOff)
}

// ResetActiveCell clears the active cell, closing any editor.
func (g *Grid) ResetActiveCell() {
	g.setActiveCellInternal(-1, -1, editOff)
}

// GotoCell commits any open edit, then activates a cell. forceEdit opens
// the editor regardless of AutoEdit. It reports whether the cell became
// active.
func (g *Grid) GotoCell(row, cell int, forceEdit bool) bool {
	if !g.initialized || !g.CanCellBeActive(row, cell) {
		return false
	}
	if !g.lock.Commit() {
		return false
	}
	g.ScrollCellIntoView(row, cell, false)
	mode := editAuto
	if forceEdit {
		mode = editOn
	}
	g.setActiveCellInternal(row, cell, mode)
	return g.activeNode != nil
}

// setActiveCellInternal moves the active cell to a rendered cell. A cell
// without a node clears the active cell.
func (g *Grid) setActiveCellInternal(row, cell int, mode editMode) {
	g.editorSlot.Cancel()
	if g.activeNode != nil {
		g.makeActiveCellNormal()
		g.activeNode.RemoveClass("active")
		if rc := g.rows[g.activeRow]; rc != nil {
			rc.node.RemoveClass("active")
		}
	}

	var node *dom.Node
	if row >= 0 && cell >= 0 {
		node = g.CellNode(row, cell)
	}
	changed := node != g.activeNode
	g.activeNode = node

	if node == nil {
		g.activeRow, g.activeCell = -1, -1
	} else {
		g.activeRow, g.activeCell = row, cell
		g.activePosX = cell
		node.AddClass("active")
		g.rows[row].node.AddClass("active")

		edit := mode == editOn
		if mode == editAuto {
			edit = row == g.data.Len() || g.opts.AutoEdit
		}
		if g.opts.Editable && edit && g.isCellPotentiallyEditable(row, cell) {
			if g.opts.AsyncEditorLoading {
				g.editorSlot.Schedule(g.opts.AsyncEditorLoadDelay, func() {
					if err := g.makeActiveCellEditable(nil); err != nil {
						g.log.Debug("deferred editor: %v", err)
					}
				})
			} else if err := g.makeActiveCellEditable(nil); err != nil {
				g.log.Debug("editor: %v", err)
			}
		}
	}

	if changed {
		g.OnActiveCellChanged.Notify(ActiveCellArgs{Row: g.activeRow, Cell: g.activeCell, Active: node != nil}, nil)
	}
}

func (g *Grid) isCellPotentiallyEditable(row, cell int) bool {
	dl := g.data.Len()
	if row < dl && !core.IsData(g.data.Row(row)) {
		return false
	}
	if g.columns[cell].CannotTriggerInsert && row >= dl {
		return false
	}
	return g.editorFactory(row, cell) != nil
}

// EditActiveCell opens an editor on the active cell. A nil factory uses the
// cell's configured editor.
func (g *Grid) EditActiveCell(factory core.EditorFactory) error {
	if g.activeNode == nil {
		return nil
	}
	if !g.opts.Editable {
		return ErrNotEditable
	}
	return g.makeActiveCellEditable(factory)
}

func (g *Grid) makeActiveCellEditable(factory core.EditorFactory) error {
	if g.activeNode == nil {
		return nil
	}
	if !g.opts.Editable {
		return ErrNotEditable
	}
	g.editorSlot.Cancel()
	row, cell := g.activeRow, g.activeCell
	if !g.isCellPotentiallyEditable(row, cell) {
		return nil
	}
	col := &g.columns[cell]
	it := g.DataItem(row)
	if !g.OnBeforeEditCell.Notify(BeforeEditArgs{Row: row, Cell: cell, Item: it, Column: col}, nil) {
		return nil
	}
	if err := g.lock.Activate(g.ctl); err != nil {
		return &CellError{Op: "edit", Row: row, Cell: cell, Err: err}
	}
	g.activeNode.AddClass("editable")

	use := factory
	if use == nil {
		use = g.editorFactory(row, cell)
		g.activeNode.Text = ""
	}
	g.editor = use(core.EditorArgs{
		Container:     g.activeNode,
		Column:        col,
		Item:          it,
		Grid:          g,
		Position:      g.cellBox(g.activeNode),
		GridPosition:  g.container.Box(),
		CommitChanges: g.commitEditAndSetFocus,
		CancelChanges: g.cancelEditAndSetFocus,
	})
	if it != nil {
		g.editor.LoadValue(it)
	}
	g.serializedValue = g.editor.SerializeValue()
	if _, ok := g.editor.(core.Positioner); ok {
		g.handleActiveCellPositionChange()
	}
	return nil
}

// makeActiveCellNormal closes the editor and restores the cell text.
func (g *Grid) makeActiveCellNormal() {
	if g.editor == nil {
		return
	}
	g.OnBeforeCellEditorDestroy.Notify(EditorArgs{Editor: g.editor}, nil)
	g.editor.Destroy()
	g.editor = nil

	if g.activeNode != nil {
		g.activeNode.RemoveClass("editable", "invalid")
		g.activeNode.Empty()
		if d := g.DataRow(g.activeRow); d != nil {
			g.activeNode.Text = g.formatCell(g.activeRow, g.activeCell, d)
			g.invalidatePostProcessing(g.activeRow)
		}
	}
	if err := g.lock.Deactivate(g.ctl); err != nil {
		g.log.Debug("release edit lock: %v", err)
	}
}

// commitCurrentEdit implements the commit half of the lock controller.
func (g *Grid) commitCurrentEdit() bool {
	if g.editor == nil {
		return true
	}
	if !g.editor.IsValueChanged() {
		g.makeActiveCellNormal()
		return true
	}

	row, cell := g.activeRow, g.activeCell
	col := &g.columns[cell]
	result := g.editor.Validate()
	if !result.Valid {
		g.activeNode.RemoveClass("invalid")
		g.activeNode.AddClass("invalid")
		g.OnValidationError.Notify(ValidationErrorArgs{
			Editor:   g.editor,
			CellNode: g.activeNode,
			Result:   result,
			Row:      row,
			Cell:     cell,
			Column:   col,
		}, nil)
		g.editor.Focus()
		return false
	}

	if row < g.data.Len() {
		cmd := &EditCommand{
			Row:                 row,
			Cell:                cell,
			Editor:              g.editor,
			SerializedValue:     g.editor.SerializeValue(),
			PrevSerializedValue: g.serializedValue,
			g:                   g,
			item:                g.DataItem(row),
			col:                 col,
		}
		if g.opts.EditCommandHandler != nil {
			g.makeActiveCellNormal()
			g.opts.EditCommandHandler(cmd.item, col, cmd)
		} else {
			if err := cmd.Execute(); err != nil {
				g.log.Warn("commit edit: %v", err)
			}
			g.makeActiveCellNormal()
		}
	} else {
		it := g.opts.NewItem()
		g.editor.ApplyValue(it, g.editor.SerializeValue())
		g.makeActiveCellNormal()
		g.OnAddNewRow.Notify(AddNewRowArgs{Item: it, Column: col}, nil)
	}

	// Handlers may have opened another editor.
	return !g.lock.IsActive()
}

// cancelCurrentEdit implements the cancel half of the lock controller.
func (g *Grid) cancelCurrentEdit() bool {
	g.makeActiveCellNormal()
	return true
}

func (g *Grid) commitEditAndSetFocus() {
	if g.lock.Commit() && g.opts.AutoEdit {
		g.NavigateDown()
	}
}

func (g *Grid) cancelEditAndSetFocus() {
	g.lock.Cancel()
}

func (g *Grid) handleActiveCellPositionChange() {
	if g.activeNode == nil {
		return
	}
	g.OnActiveCellPositionChanged.Notify(struct{}{}, nil)
	p, ok := g.editor.(core.Positioner)
	if !ok {
		return
	}
	box := g.cellBox(g.activeNode)
	if box.Visible {
		p.Show()
	} else {
		p.Hide()
	}
	p.Position(box)
}
