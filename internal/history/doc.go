// Package history provides undo and redo for grid edits.
//
// Edits are commands with Execute and Undo methods. The grid hands every
// committed cell edit to an EditCommandHandler; Attach installs one that
// executes the edit and records it:
//
//	h := history.New(500)
//	tr := history.Attach(g, h)
//
//	// later, from a key binding
//	if err := tr.Undo(); errors.Is(err, history.ErrNothingToUndo) {
//		...
//	}
//
// # Grouping
//
// ExecuteGrouped records several commands as one undo unit and undoes the
// ones already run when a later one fails. Tracker.FillDown uses it to copy
// the active cell into a set of rows:
//
//	err := tr.FillDown(selectedRows, func(it item.Item, field string) {
//		// refresh the view, write the field back
//	})
package history
