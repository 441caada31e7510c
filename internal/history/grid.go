package history

import (
	"fmt"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
)

// Tracker records a grid's committed edits and undoes them with the grid's
// active cell following along.
type Tracker struct {
	grid *grid.Grid
	hist *History
	log  *logging.Logger
}

// Attach installs an edit command handler on g that executes every
// committed edit and records it in h.
func Attach(g *grid.Grid, h *History) *Tracker {
	t := &Tracker{grid: g, hist: h, log: g.Logger().WithComponent("history")}
	g.SetOptions(func(o *grid.Options) {
		o.EditCommandHandler = t.handle
	})
	return t
}

// History returns the underlying history.
func (t *Tracker) History() *History {
	return t.hist
}

func (t *Tracker) handle(_ item.Item, _ *core.Column, cmd *grid.EditCommand) {
	if err := t.hist.Execute(cmd); err != nil {
		t.log.Warn("edit row %d cell %d: %v", cmd.Row, cmd.Cell, err)
	}
}

// Undo commits any open edit, then undoes the last recorded command.
func (t *Tracker) Undo() error {
	if !t.grid.EditorLock().Commit() {
		return nil
	}
	cmd, err := t.hist.Undo()
	if err != nil {
		return err
	}
	t.follow(cmd)
	return nil
}

// Redo commits any open edit, then redoes the last undone command.
func (t *Tracker) Redo() error {
	if !t.grid.EditorLock().Commit() {
		return nil
	}
	cmd, err := t.hist.Redo()
	if err != nil {
		return err
	}
	t.follow(cmd)
	return nil
}

// FillDown copies the active cell's value into the same column of rows as
// one undo step. The active row and rows without a data item are skipped.
// changed runs for every item written, on execute, undo and redo.
func (t *Tracker) FillDown(rows []int, changed func(it item.Item, field string)) error {
	if !t.grid.Options().Editable {
		return grid.ErrNotEditable
	}
	if !t.grid.EditorLock().Commit() {
		return nil
	}
	row, cell, ok := t.grid.ActiveCell()
	if !ok {
		return ErrNothingToFill
	}
	col := t.grid.Column(cell)
	src := t.grid.DataItem(row)
	if col == nil || col.Editor == nil || src == nil {
		return ErrNothingToFill
	}
	value := src.Get(col.Field)

	var cmds []Command
	for _, r := range rows {
		it := t.grid.DataItem(r)
		if r == row || it == nil {
			continue
		}
		cmd := NewFieldCommand(it, col.Field, value)
		cmd.Changed = func(it item.Item) {
			if changed != nil {
				changed(it, col.Field)
			}
			t.grid.UpdateRow(r)
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return ErrNothingToFill
	}
	t.log.Debug("fill %s into %d rows", col.Field, len(cmds))
	return t.hist.ExecuteGrouped(fmt.Sprintf("Fill %s", col.Name), cmds...)
}

// follow moves the active cell to the cell a command edited.
func (t *Tracker) follow(cmd Command) {
	if c, ok := cmd.(*CompoundCommand); ok && len(c.Commands) > 0 {
		cmd = c.Commands[len(c.Commands)-1]
	}
	if ec, ok := cmd.(*grid.EditCommand); ok {
		t.grid.SetActiveCell(ec.Row, ec.Cell)
	}
}
