package app

import (
	"errors"
	"runtime/debug"
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dataview"
	"github.com/dshills/gridstorm/internal/history"
	"github.com/dshills/gridstorm/internal/renderer/backend"
)

// DoubleClickInterval is the longest gap between two clicks on one cell
// that counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

// WheelLines is how many rows a mouse wheel step scrolls.
const WheelLines = 3

type click struct {
	row, cell int
	at        time.Time
	pressed   bool
}

// eventLoop handles events one at a time until quit or Shutdown,
// repainting after each.
func (app *Application) eventLoop(b backend.Backend) error {
	for {
		select {
		case <-app.done:
			return nil
		default:
		}

		ev := b.PollEvent()
		timer := StartTimer()
		err := app.dispatch(ev)
		switch ev.Type {
		case backend.EventKey, backend.EventMouse:
			app.metrics.RecordInput(timer.Stop())
		case backend.EventInterrupt:
			app.metrics.RecordEvent(timer.Stop())
		}
		if err != nil {
			return err
		}
		app.render()
	}
}

// dispatch handles one event, turning a panic into an error so the
// terminal is restored before the program exits.
func (app *Application) dispatch(ev backend.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			app.log.Error("%v", err)
		}
	}()
	return app.handleBackendEvent(ev)
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.resize(ev.Width, ev.Height)
	case backend.EventKey:
		app.message = ""
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		app.handleMouseEvent(ev)
	case backend.EventInterrupt:
		if ev.Func != nil {
			ev.Func()
		}
	}
	return nil
}

// handleKeyEvent runs application shortcuts and passes every other key to
// the grid.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyCtrlZ:
		app.historyStep(app.history.Undo, "undo")
		return nil
	case backend.KeyCtrlY:
		app.historyStep(app.history.Redo, "redo")
		return nil
	case backend.KeyCtrlR:
		app.reloadSettings()
		return nil
	case backend.KeyCtrlD:
		app.fillDown()
		return nil
	case backend.KeyCtrlN:
		app.turnPage(1)
		return nil
	case backend.KeyCtrlP:
		app.turnPage(-1)
		return nil
	}

	k, ok := convertToKeyEvent(ev)
	if !ok {
		return nil
	}
	app.grid.HandleKeyDown(k)
	return nil
}

func (app *Application) historyStep(step func() error, name string) {
	err := step()
	switch {
	case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
		app.notify("nothing to %s", name)
	case err != nil:
		app.notify("%s: %v", name, err)
	}
}

// fillDown copies the active cell's value into the selected rows.
func (app *Application) fillDown() {
	rows, err := app.grid.SelectedRows()
	if err == nil {
		err = app.history.FillDown(rows, app.storeEdit)
	}
	switch {
	case errors.Is(err, history.ErrNothingToFill):
		app.notify("select rows to fill")
	case err != nil:
		app.notify("fill: %v", err)
	}
}

func (app *Application) turnPage(delta int) {
	p := app.view.PagingInfo()
	if p.PageSize == 0 {
		app.notify("paging is off")
		return
	}
	n := min(max(p.PageNum+delta, 0), p.TotalPages-1)
	if n != p.PageNum && app.grid.EditorLock().Commit() {
		app.view.SetPagingOptions(dataview.PageNum(n))
	}
}

// handleMouseEvent turns presses into clicks, pairs of quick clicks on
// one cell into double clicks, and wheel steps into scrolling.
func (app *Application) handleMouseEvent(ev backend.Event) {
	switch ev.Button {
	case backend.MouseWheelUp:
		app.scrollBy(-WheelLines)
	case backend.MouseWheelDown:
		app.scrollBy(WheelLines)
	case backend.MouseLeft:
		if app.lastClick.pressed {
			return
		}
		app.lastClick.pressed = true
		app.click(ev.MouseX, ev.MouseY, convertMod(ev.Mod))
	case backend.MouseNone:
		app.lastClick.pressed = false
	}
}

func (app *Application) click(x, y int, mod core.ModMask) {
	f := app.frame
	if y < f.HeaderHeight {
		for _, h := range f.Header {
			if x >= h.Left && x < h.Left+h.Width {
				app.grid.HandleHeaderClick(h.Cell)
				return
			}
		}
		return
	}

	row, cell, ok := app.grid.CellFromPoint(x, y-f.HeaderHeight)
	if !ok {
		return
	}
	now := app.now()
	last := app.lastClick
	app.lastClick = click{row: row, cell: cell, at: now, pressed: true}
	if last.row == row && last.cell == cell && now.Sub(last.at) <= DoubleClickInterval {
		app.lastClick.at = time.Time{}
		app.grid.HandleDblClick(row, cell, mod)
		return
	}
	app.grid.HandleClick(row, cell, mod)
}

func (app *Application) scrollBy(lines int) {
	app.grid.ScrollBy(lines * app.grid.Options().RowHeight)
}

// convertToKeyEvent converts a backend key event for the grid. Keys the
// grid has no use for report false.
func convertToKeyEvent(ev backend.Event) (core.KeyEvent, bool) {
	k, ok := keyMap[ev.Key]
	if !ok {
		return core.KeyEvent{}, false
	}
	out := core.KeyEvent{Key: k, Mod: convertMod(ev.Mod)}
	if k == core.KeyRune {
		out.Rune = ev.Rune
	}
	return out, true
}

var keyMap = map[backend.Key]core.Key{
	backend.KeyRune:      core.KeyRune,
	backend.KeyEscape:    core.KeyEscape,
	backend.KeyEnter:     core.KeyEnter,
	backend.KeyTab:       core.KeyTab,
	backend.KeyBacktab:   core.KeyBacktab,
	backend.KeyBackspace: core.KeyBackspace,
	backend.KeyDelete:    core.KeyDelete,
	backend.KeyHome:      core.KeyHome,
	backend.KeyEnd:       core.KeyEnd,
	backend.KeyPageUp:    core.KeyPageUp,
	backend.KeyPageDown:  core.KeyPageDown,
	backend.KeyUp:        core.KeyUp,
	backend.KeyDown:      core.KeyDown,
	backend.KeyLeft:      core.KeyLeft,
	backend.KeyRight:     core.KeyRight,
	backend.KeyF2:        core.KeyF2,
}

func convertMod(m backend.ModMask) core.ModMask {
	mods := core.ModNone
	if m.Has(backend.ModShift) {
		mods |= core.ModShift
	}
	if m.Has(backend.ModCtrl) {
		mods |= core.ModCtrl
	}
	if m.Has(backend.ModAlt) {
		mods |= core.ModAlt
	}
	if m.Has(backend.ModMeta) {
		mods |= core.ModMeta
	}
	return mods
}
