package grid

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/editlock"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/schedule"
)

// fakeEditor edits a column as text. Typed runes append to the value.
type fakeEditor struct {
	args      core.EditorArgs
	node      *dom.Node
	loaded    string
	value     string
	invalid   bool
	focused   int
	destroyed bool
}

func (e *fakeEditor) Destroy() { e.destroyed = true }
func (e *fakeEditor) Focus()   { e.focused++ }

func (e *fakeEditor) LoadValue(it item.Item) {
	e.loaded = fmt.Sprint(it.Get(e.args.Column.Field))
	e.set(e.loaded)
}

func (e *fakeEditor) SerializeValue() any { return e.value }

func (e *fakeEditor) ApplyValue(it item.Item, state any) {
	if s, ok := it.(item.Setter); ok {
		_ = s.Set(e.args.Column.Field, state)
	}
}

func (e *fakeEditor) IsValueChanged() bool { return e.value != e.loaded }

func (e *fakeEditor) Validate() core.ValidationResult {
	if e.invalid {
		return core.ValidationResult{Msg: "rejected"}
	}
	return core.Valid
}

func (e *fakeEditor) HandleKey(k core.KeyEvent) bool {
	if k.Key != core.KeyRune {
		return false
	}
	e.set(e.value + string(k.Rune))
	return true
}

func (e *fakeEditor) set(v string) {
	e.value = v
	e.node.Text = v
}

// editors records every editor a factory creates.
type editors struct {
	created []*fakeEditor
}

func (r *editors) factory(args core.EditorArgs) core.Editor {
	e := &fakeEditor{args: args, node: args.Container.AppendChild(dom.NewNode("input"))}
	r.created = append(r.created, e)
	return e
}

func (r *editors) last() *fakeEditor {
	if len(r.created) == 0 {
		return nil
	}
	return r.created[len(r.created)-1]
}

func editableGrid(t *testing.T, items []item.Item, configure func(o *Options)) (*Grid, *editors) {
	t.Helper()
	eds := &editors{}
	g := newTestGrid(t, ItemSlice(items), func(o *Options) {
		o.Editable = true
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds.factory }
		if configure != nil {
			configure(o)
		}
	})
	return g, eds
}

func TestEditCommitOnNavigate(t *testing.T) {
	items := testItems(5)
	g, eds := editableGrid(t, items, nil)

	var changes []CellChangeArgs
	g.OnCellChange.Subscribe(func(a *event.Args[CellChangeArgs]) { changes = append(changes, a.Data) })

	if !g.GotoCell(1, 1, false) {
		t.Fatal("GotoCell failed")
	}
	ed := eds.last()
	if ed == nil || g.CurrentEditor() != core.Editor(ed) {
		t.Fatal("AutoEdit did not open an editor")
	}
	if !g.EditorLock().IsActive() {
		t.Error("edit lock not held")
	}
	cell := g.CellNode(1, 1)
	if !cell.HasClass("editable") || cell.Text != "" {
		t.Errorf("editing cell: classes %v text %q", cell.Classes(), cell.Text)
	}
	if ed.value != "Task 1" {
		t.Errorf("loaded value = %q", ed.value)
	}

	for _, r := range "!!" {
		if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyRune, Rune: r}) {
			t.Fatal("editor did not consume rune")
		}
	}
	if !g.NavigateDown() {
		t.Fatal("NavigateDown failed")
	}

	if got := items[1].Get("title"); got != "Task 1!!" {
		t.Errorf("item title = %v", got)
	}
	if got := g.CellNode(1, 1).Text; got != "Task 1!!" {
		t.Errorf("cell text after commit = %q", got)
	}
	if g.CellNode(1, 1).ChildCount() != 0 {
		t.Error("editor node left in the cell")
	}
	if !ed.destroyed {
		t.Error("editor not destroyed")
	}
	if len(changes) != 1 || changes[0].Row != 1 || changes[0].Cell != 1 {
		t.Errorf("cell changes = %+v", changes)
	}
	if row, cell, _ := g.ActiveCell(); row != 2 || cell != 1 {
		t.Errorf("active cell = %d:%d, want 2:1", row, cell)
	}
	if len(eds.created) != 2 {
		t.Errorf("created %d editors, want a second one on 2:1", len(eds.created))
	}
}

func TestEditValidationFailure(t *testing.T) {
	items := testItems(5)
	g, eds := editableGrid(t, items, nil)

	var failures []ValidationErrorArgs
	g.OnValidationError.Subscribe(func(a *event.Args[ValidationErrorArgs]) { failures = append(failures, a.Data) })

	g.GotoCell(1, 1, false)
	ed := eds.last()
	ed.set("bad")
	ed.invalid = true

	if !g.NavigateDown() {
		t.Error("NavigateDown should consume the key when the commit fails")
	}
	if row, cell, _ := g.ActiveCell(); row != 1 || cell != 1 {
		t.Errorf("active cell moved to %d:%d", row, cell)
	}
	if !g.CellNode(1, 1).HasClass("invalid") {
		t.Error("cell not marked invalid")
	}
	if len(failures) != 1 || failures[0].Result.Msg != "rejected" {
		t.Errorf("validation errors = %+v", failures)
	}
	if ed.focused != 1 {
		t.Errorf("editor focused %d times", ed.focused)
	}
	if items[1].Get("title") != "Task 1" {
		t.Error("invalid value applied")
	}
	if g.GotoCell(3, 1, false) {
		t.Error("GotoCell succeeded with an invalid edit open")
	}

	ed.invalid = false
	if !g.EditorLock().Commit() {
		t.Fatal("commit of fixed value failed")
	}
	if items[1].Get("title") != "bad" {
		t.Errorf("title = %v", items[1].Get("title"))
	}
	if g.CellNode(1, 1).HasClass("invalid") {
		t.Error("invalid class left after commit")
	}
}

func TestBeforeEditCellStop(t *testing.T) {
	g, eds := editableGrid(t, testItems(5), nil)
	g.OnBeforeEditCell.Subscribe(func(a *event.Args[BeforeEditArgs]) {
		if a.Data.Row == 1 {
			a.Stop()
		}
	})

	if !g.GotoCell(1, 1, true) {
		t.Fatal("GotoCell failed")
	}
	if g.CurrentEditor() != nil || len(eds.created) != 0 {
		t.Error("editor opened despite OnBeforeEditCell stop")
	}
	if g.EditorLock().IsActive() {
		t.Error("lock held without an editor")
	}

	g.GotoCell(2, 1, true)
	if g.CurrentEditor() == nil {
		t.Error("editor not opened on an allowed row")
	}
}

func TestEditCommandHandler(t *testing.T) {
	items := testItems(5)
	var cmds []*EditCommand
	g, eds := editableGrid(t, items, func(o *Options) {
		o.AutoEdit = false
		o.EditCommandHandler = func(_ item.Item, _ *core.Column, cmd *EditCommand) {
			cmds = append(cmds, cmd)
		}
	})

	g.GotoCell(2, 1, true)
	eds.last().set("queued")
	if !g.EditorLock().Commit() {
		t.Fatal("commit failed")
	}
	if len(cmds) != 1 {
		t.Fatalf("handler got %d commands", len(cmds))
	}
	cmd := cmds[0]
	if items[2].Get("title") != "Task 2" {
		t.Error("handler path applied the value itself")
	}
	if cmd.Description() != "Edit Title (row 2)" {
		t.Errorf("description = %q", cmd.Description())
	}
	if cmd.PrevSerializedValue != "Task 2" || cmd.SerializedValue != "queued" {
		t.Errorf("command values %v -> %v", cmd.PrevSerializedValue, cmd.SerializedValue)
	}

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := g.CellNode(2, 1).Text; got != "queued" {
		t.Errorf("after Execute cell = %q", got)
	}
	if err := cmd.Undo(); err != nil {
		t.Fatal(err)
	}
	if items[2].Get("title") != "Task 2" || g.CellNode(2, 1).Text != "Task 2" {
		t.Error("Undo did not restore the value")
	}
}

func TestAddNewRowCommit(t *testing.T) {
	g, eds := editableGrid(t, testItems(3), func(o *Options) {
		o.EnableAddRow = true
		o.AutoEdit = false
	})

	var added []AddNewRowArgs
	g.OnAddNewRow.Subscribe(func(a *event.Args[AddNewRowArgs]) { added = append(added, a.Data) })

	if !g.GotoCell(3, 1, false) {
		t.Fatal("add-new row not focusable")
	}
	ed := eds.last()
	if ed == nil {
		t.Fatal("editor not opened on the add-new row without AutoEdit")
	}
	if ed.args.Item != nil {
		t.Error("add-new row editor got an item")
	}
	ed.set("fresh")

	if !g.EditorLock().Commit() {
		t.Fatal("commit failed")
	}
	if len(added) != 1 {
		t.Fatalf("OnAddNewRow published %d times", len(added))
	}
	if added[0].Item.Get("title") != "fresh" || added[0].Column.ID != "title" {
		t.Errorf("new item = %v column %s", added[0].Item, added[0].Column.ID)
	}
	if g.CellNode(3, 1).ChildCount() != 0 {
		t.Error("editor node left on the add-new row")
	}
}

func TestCannotTriggerInsert(t *testing.T) {
	eds := &editors{}
	cols := testColumns()
	cols[0].CannotTriggerInsert = true
	g := newTestGridColumns(t, ItemSlice(testItems(3)), cols, func(o *Options) {
		o.Editable = true
		o.EnableAddRow = true
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds.factory }
	})
	g.GotoCell(3, 0, true)
	if g.CurrentEditor() != nil {
		t.Error("editor opened on a column that cannot insert")
	}
	g.GotoCell(3, 1, true)
	if g.CurrentEditor() == nil {
		t.Error("editor not opened on an insert column")
	}
}

func TestEditNotEditable(t *testing.T) {
	g := newTestGrid(t, ItemSlice(testItems(3)), nil)
	g.SetActiveCell(0, 1)
	err := g.EditActiveCell(nil)
	if !errors.Is(err, ErrNotEditable) {
		t.Errorf("err = %v, want ErrNotEditable", err)
	}
}

func TestEditNoEditorMetadata(t *testing.T) {
	eds := &editors{}
	data := metaSlice{
		ItemSlice: ItemSlice(testItems(3)),
		meta:      map[int]*core.RowMetadata{1: {NoEditor: true}},
	}
	g := newTestGrid(t, data, func(o *Options) {
		o.Editable = true
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds.factory }
	})
	g.GotoCell(1, 1, true)
	if g.CurrentEditor() != nil {
		t.Error("NoEditor row opened an editor")
	}
}

func TestEditCancel(t *testing.T) {
	items := testItems(3)
	g, eds := editableGrid(t, items, func(o *Options) { o.AutoEdit = false })

	if g.HandleKeyDown(core.KeyEvent{Key: core.KeyEscape}) {
		t.Error("Escape handled without an edit")
	}
	g.GotoCell(0, 1, false)
	if g.CurrentEditor() != nil {
		t.Fatal("editor opened without AutoEdit")
	}
	if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyF2}) {
		t.Fatal("F2 not handled")
	}
	eds.last().set("discard me")
	if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyEscape}) {
		t.Error("Escape not handled")
	}
	if g.CurrentEditor() != nil || g.EditorLock().IsActive() {
		t.Error("edit still open after Escape")
	}
	if items[0].Get("title") != "Task 0" || g.CellNode(0, 1).Text != "Task 0" {
		t.Error("cancelled value applied")
	}
}

func TestEnterCommitsAndMovesDown(t *testing.T) {
	items := testItems(5)
	g, eds := editableGrid(t, items, nil)

	g.GotoCell(0, 1, false)
	eds.last().set("entered")
	if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyEnter}) {
		t.Fatal("Enter not handled")
	}
	if items[0].Get("title") != "entered" {
		t.Errorf("title = %v", items[0].Get("title"))
	}
	if row, _, _ := g.ActiveCell(); row != 1 {
		t.Errorf("active row = %d, want 1", row)
	}
}

func TestSharedEditLock(t *testing.T) {
	lock := editlock.New()
	eds1, eds2 := &editors{}, &editors{}
	g1 := newTestGrid(t, ItemSlice(testItems(3)), func(o *Options) {
		o.Editable = true
		o.EditorLock = lock
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds1.factory }
	})
	g2 := newTestGrid(t, ItemSlice(testItems(3)), func(o *Options) {
		o.Editable = true
		o.EditorLock = lock
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds2.factory }
	})

	g1.GotoCell(0, 1, false)
	if g1.CurrentEditor() == nil {
		t.Fatal("g1 editor not open")
	}
	if !g2.GotoCell(1, 1, false) {
		t.Fatal("g2 GotoCell failed")
	}
	if g1.CurrentEditor() != nil {
		t.Error("g1 editor still open after g2 took the lock")
	}
	if g2.CurrentEditor() == nil {
		t.Fatal("g2 editor not open")
	}

	ed := eds2.last()
	ed.set("x")
	ed.invalid = true
	if g1.GotoCell(2, 1, false) {
		t.Error("g1 activated a cell while g2 holds an invalid edit")
	}
}

func TestAsyncEditorLoading(t *testing.T) {
	sched := schedule.NewManual()
	g, eds := editableGrid(t, testItems(5), func(o *Options) {
		o.Scheduler = sched
		o.AsyncEditorLoading = true
	})

	g.GotoCell(1, 1, false)
	if g.CurrentEditor() != nil {
		t.Fatal("editor opened before the delay")
	}
	g.GotoCell(2, 1, false)
	sched.Advance(100 * time.Millisecond)

	if len(eds.created) != 1 {
		t.Fatalf("created %d editors, want 1", len(eds.created))
	}
	if row, _, _ := g.ActiveCell(); row != 2 || eds.last().loaded != "Task 2" {
		t.Errorf("editor opened for row %d value %q", row, eds.last().loaded)
	}
}

type positionedEditor struct {
	*fakeEditor
	shown bool
	box   dom.Box
}

func (p *positionedEditor) Show()              { p.shown = true }
func (p *positionedEditor) Hide()              { p.shown = false }
func (p *positionedEditor) Position(b dom.Box) { p.box = b }

func TestPositionerFollowsScroll(t *testing.T) {
	var pe *positionedEditor
	factory := func(args core.EditorArgs) core.Editor {
		pe = &positionedEditor{fakeEditor: &fakeEditor{args: args, node: args.Container.AppendChild(dom.NewNode("input"))}}
		return pe
	}
	g := newTestGrid(t, ItemSlice(testItems(25)), func(o *Options) {
		o.Editable = true
		o.EditorFactory = func(*core.Column) core.EditorFactory { return factory }
	})

	g.GotoCell(1, 1, false)
	if pe == nil || !pe.shown {
		t.Fatal("positioned editor not shown")
	}
	g.ScrollTo(300)
	if pe.shown {
		t.Error("editor shown while its cell is scrolled out")
	}
	if g.RowNode(1) == nil {
		t.Error("active row removed from the cache")
	}
}

func typeText(g *Grid, s string) {
	for _, r := range s {
		g.HandleKeyDown(core.KeyEvent{Key: core.KeyRune, Rune: r})
	}
}

func TestPageKeysCommitEdit(t *testing.T) {
	items := testItems(25)
	g, eds := editableGrid(t, items, nil)

	g.GotoCell(1, 1, true)
	ed := eds.last()
	typeText(g, "XY")
	if !g.HandleKeyDown(core.KeyEvent{Key: core.KeyPageDown}) {
		t.Fatal("PageDown not handled")
	}
	if got := items[1].Get("title"); got != "Task 1XY" {
		t.Errorf("title after paging = %v, want the typed value committed", got)
	}
	if !ed.destroyed {
		t.Error("editor left open after paging")
	}
	activeAt(t, g, 9, 1)

	g.GotoCell(9, 1, true)
	ed = eds.last()
	ed.invalid = true
	typeText(g, "!")
	g.NavigatePageUp()
	activeAt(t, g, 9, 1)
	if g.CurrentEditor() != core.Editor(ed) || ed.destroyed {
		t.Error("paging discarded an edit that failed validation")
	}
}

func TestRowCountChangeKeepsEdit(t *testing.T) {
	data := &liveSlice{items: testItems(5)}
	eds := &editors{}
	g := newTestGrid(t, data, func(o *Options) {
		o.Editable = true
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds.factory }
	})

	tests := []struct {
		name string
		row  int
		grow func()
	}{
		{"append", 1, func() { data.items = append(data.items, item.Record{"id": 5, "title": "Task 5"}) }},
		{"last row unchanged", 5, func() {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.GotoCell(tt.row, 1, true)
			ed := eds.last()
			typeText(g, "XY")

			tt.grow()
			g.UpdateRowCount()
			g.Render()

			if ed.destroyed || g.CurrentEditor() != core.Editor(ed) {
				t.Fatal("row count change closed the editor")
			}
			if !g.EditorLock().Commit() {
				t.Fatal("commit failed")
			}
			want := fmt.Sprintf("Task %dXY", tt.row)
			if got := data.items[tt.row].Get("title"); got != want {
				t.Errorf("title = %v, want %q", got, want)
			}
		})
	}
}

func TestRowCountChangeCancelsRemovedRowEdit(t *testing.T) {
	data := &liveSlice{items: testItems(5)}
	eds := &editors{}
	g := newTestGrid(t, data, func(o *Options) {
		o.Editable = true
		o.EditorFactory = func(*core.Column) core.EditorFactory { return eds.factory }
	})
	removed := data.items[4]

	g.GotoCell(4, 1, true)
	ed := eds.last()
	typeText(g, "XY")

	data.items = data.items[:3]
	g.UpdateRowCount()

	if !ed.destroyed || g.CurrentEditor() != nil {
		t.Error("editor on a removed row still open")
	}
	if g.EditorLock().IsActive() {
		t.Error("edit lock still held")
	}
	if got := removed.Get("title"); got != "Task 4" {
		t.Errorf("removed item title = %v", got)
	}
}
