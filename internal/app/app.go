// Package app wires the grid, its data view, plugins, settings and the
// terminal renderer into the gridstorm application and runs its event
// loop.
package app

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/config/watcher"
	"github.com/dshills/gridstorm/internal/dataview"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/editors"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/history"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/plugins/groupmeta"
	"github.com/dshills/gridstorm/internal/plugins/rowselect"
	"github.com/dshills/gridstorm/internal/renderer"
	"github.com/dshills/gridstorm/internal/renderer/backend"
	rcore "github.com/dshills/gridstorm/internal/renderer/core"
	"github.com/dshills/gridstorm/internal/schedule"
	"github.com/dshills/gridstorm/internal/script"
	"github.com/dshills/gridstorm/internal/source"
)

// Application is the central coordinator for all gridstorm components.
// Apart from Shutdown and the scheduler's post hook, its methods run on
// the event loop goroutine.
type Application struct {
	mu sync.Mutex

	opts     Options
	cfg      *config.Config
	settings config.Settings
	log      *logging.Logger
	logFile  *os.File
	sched    schedule.Scheduler
	metrics  *Metrics

	// Data
	table    *source.Table
	db       *sql.DB
	scripts  *script.Engine
	registry *editors.Registry

	// Grid components
	view      *dataview.DataView
	grid      *grid.Grid
	container *dom.Node
	groups    *groupmeta.Provider
	rows      *rowselect.Model
	history   *history.Tracker
	subs      *event.Group
	bindings  []*event.Group

	// Display
	backend  backend.Backend
	renderer *renderer.Renderer
	watcher  *watcher.Watcher
	frame    grid.Frame
	message  string

	lastClick click
	now       func() time.Time

	running   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	stopOnce  sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty uses defaults and the
	// environment only.
	ConfigPath string

	// DataPath is a .json document or a SQLite database.
	DataPath string

	// ItemsPath is the gjson path of the item array in a JSON document.
	ItemsPath string

	// Query selects the items from a SQLite database.
	Query string

	// Table is the SQLite table to load when Query is empty. Edits are
	// written back to it.
	Table string

	// LogLevel overrides the settings' logging level.
	LogLevel string

	// LogOutput receives log lines when the settings name no log file.
	// Nil discards them, since the terminal belongs to the grid.
	LogOutput io.Writer

	// Locale formats numbers, as a BCP 47 tag.
	Locale string

	// ReadOnly disables editing and write-back.
	ReadOnly bool

	// Watch reloads settings when the settings file changes.
	Watch bool

	// Scheduler runs deferred work. The default posts timer callbacks to
	// the event loop.
	Scheduler schedule.Scheduler
}

// DefaultSize is the snapshot size when none is given.
const (
	DefaultWidth  = 100
	DefaultHeight = 30
)

// New loads settings and data and builds the grid. Nothing is shown
// until SetBackend and Run, or Snapshot.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		log:     logging.Null(),
		metrics: NewMetrics(),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	app.sched = opts.Scheduler
	if app.sched == nil {
		app.sched = schedule.NewRealtime(app.post)
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// SetBackend sets the display. Must be called before Run.
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run shows the grid and handles input until quit or Shutdown. A quit
// from the keyboard returns ErrQuit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil {
		return ErrNoBackend
	}

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	app.attachRenderer(b)
	if app.opts.Watch {
		app.startWatcher()
	}
	app.render()
	return app.eventLoop(b)
}

// Snapshot paints one frame of the given size and writes it as text.
func (app *Application) Snapshot(w io.Writer, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	sb := backend.NewScreenBuffer(width, height)
	app.attachRenderer(sb)
	app.render()
	_, err := io.WriteString(w, sb.String()+"\n")
	return err
}

func (app *Application) attachRenderer(b backend.Backend) {
	opts := renderer.DefaultOptions()
	opts.Logger = app.log
	if th, err := app.settings.Theme.Theme(); err == nil {
		opts.Theme = th
	} else {
		app.log.Warn("theme: %v", err)
	}
	app.renderer = renderer.New(b, opts)
	w, h := b.Size()
	app.resize(w, h)
}

func (app *Application) startWatcher() {
	if app.cfg.Path() == "" {
		return
	}
	w, err := app.cfg.Watch(watcher.Options{Scheduler: app.sched, Logger: app.log})
	if err != nil {
		app.log.Warn("watch settings: %v", err)
		return
	}
	app.watcher = w
}

// post queues fn on the event loop. Callbacks posted while the loop is
// not running are dropped.
func (app *Application) post(fn func()) {
	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil || !app.running.Load() {
		app.log.Debug("dropped callback posted outside the event loop")
		return
	}
	b.PostEvent(backend.Event{Type: backend.EventInterrupt, Func: fn})
}

// Shutdown asks a running event loop to stop. It is safe to call from any
// goroutine and more than once.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() {
		close(app.done)
		app.post(func() {})
	})
}

// Close releases the data source, script engine, watcher and log file.
func (app *Application) Close() {
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			app.watcher.Close()
		}
		if app.subs != nil {
			app.subs.UnsubscribeAll()
		}
		for _, b := range app.bindings {
			b.UnsubscribeAll()
		}
		if app.grid != nil {
			app.grid.Destroy()
		}
		if app.scripts != nil {
			app.scripts.Close()
		}
		if app.db != nil {
			if err := app.db.Close(); err != nil {
				app.log.Warn("close database: %v", err)
			}
		}
		if app.logFile != nil {
			app.logFile.Close()
		}
	})
}

// IsRunning returns true if the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Grid returns the grid.
func (app *Application) Grid() *grid.Grid {
	return app.grid
}

// View returns the data view feeding the grid.
func (app *Application) View() *dataview.DataView {
	return app.view
}

// Settings returns the settings in effect.
func (app *Application) Settings() config.Settings {
	return app.settings
}

// Config returns the settings loader.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Renderer returns the renderer, or nil before the first display is
// attached.
func (app *Application) Renderer() *renderer.Renderer {
	return app.renderer
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Message returns the transient status message.
func (app *Application) Message() string {
	return app.message
}

// render paints the grid and the status line.
func (app *Application) render() {
	if app.renderer == nil {
		return
	}
	timer := StartTimer()
	app.frame = app.grid.Frame()
	app.renderer.Status(app.statusText())
	app.renderer.Render(app.frame)
	app.metrics.RecordFrame(timer.Stop(), len(app.frame.Rows))
}

func (app *Application) resize(width, height int) {
	if app.renderer == nil {
		return
	}
	app.renderer.Resize(rcore.RectFromSize(0, 0, height, width))
	gw, gh := app.renderer.GridSize()
	app.grid.Resize(gw, gh)
}

// notify shows a message on the status line until the next input.
func (app *Application) notify(format string, args ...any) {
	app.message = fmt.Sprintf(format, args...)
	app.log.Info("%s", app.message)
}

func (app *Application) statusText() string {
	if app.message != "" {
		return app.message
	}
	s := fmt.Sprintf(" %s  %d/%d items", app.sourceName(), app.view.FilteredItemCount(), len(app.view.Items()))
	if row, _, ok := app.grid.ActiveCell(); ok {
		s += fmt.Sprintf("  row %d/%d", row+1, app.view.Len())
	}
	if p := app.view.PagingInfo(); p.PageSize > 0 {
		s += fmt.Sprintf("  page %d/%d", p.PageNum+1, p.TotalPages)
	}
	if n := app.history.History().UndoCount(); n > 0 {
		s += fmt.Sprintf("  %d edits", n)
	}
	if app.log.Enabled(logging.LevelDebug) {
		s += fmt.Sprintf("  %v", app.metrics.Snapshot().Frames.Last.Round(time.Microsecond))
	}
	return s
}
