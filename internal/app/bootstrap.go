package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dataview"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/editors"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/history"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/plugins/groupmeta"
	"github.com/dshills/gridstorm/internal/plugins/rowselect"
	"github.com/dshills/gridstorm/internal/script"
	"github.com/dshills/gridstorm/internal/source"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Settings
	app.cfg = config.New(app.opts.ConfigPath)
	if err := app.cfg.Load(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.settings = app.cfg.Settings()

	// 2. Logging
	if err := app.initLogging(app.settings); err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	app.cfg.SetLogger(app.log)

	// 3. Editors, formatters and scripts
	tag := language.English
	if app.opts.Locale != "" {
		t, err := language.Parse(app.opts.Locale)
		if err != nil {
			return &InitError{Component: "locale", Err: err}
		}
		tag = t
	}
	app.registry = editors.NewRegistry(tag)
	app.scripts = script.New(script.Options{Logger: app.log})

	// 4. Items
	table, err := app.loadTable()
	if err != nil {
		return &InitError{Component: "data", Err: err}
	}
	app.table = table
	idField := app.settings.View.IDField
	assignIDs(table.Items, idField)

	app.view = dataview.New(
		dataview.WithIDField(idField),
		dataview.WithLogger(app.log),
	)
	app.groups = groupmeta.New(app.view, groupmeta.DefaultOptions())
	app.view.SetMetadataProvider(app.groups)
	if err := app.view.SetItems(table.Items); err != nil {
		return &InitError{Component: "data", Err: err}
	}

	// 5. Grid
	cols, err := app.buildColumns(app.settings)
	if err != nil {
		return &InitError{Component: "columns", Err: err}
	}
	app.container = dom.NewNode("div", "gridstorm")
	app.container.Width, app.container.Height = DefaultWidth, DefaultHeight
	app.grid, err = grid.New(app.container, app.view, cols, app.gridOptions(app.settings))
	if err != nil {
		return &InitError{Component: "grid", Err: err}
	}

	// 6. Plugins and bindings
	app.subs = event.NewGroup()
	app.bindings = append(app.bindings, app.view.Bind(app.grid))
	app.grid.RegisterPlugin(app.groups)
	app.rows = rowselect.New(rowselect.DefaultOptions())
	app.grid.SetSelectionModel(app.rows)
	app.bindings = append(app.bindings, app.view.SyncGridSelection(app.grid, false))
	app.history = history.Attach(app.grid, history.New(app.settings.Grid.HistorySize))
	app.subscribe()

	if err := app.configureView(app.settings); err != nil {
		return &InitError{Component: "view", Err: err}
	}
	app.log.Info("loaded %d items from %s", len(table.Items), app.sourceName())
	return nil
}

func (app *Application) initLogging(s config.Settings) error {
	level := s.Logging.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	out := app.opts.LogOutput
	if s.Logging.File != "" {
		f, err := os.OpenFile(s.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		app.logFile = f
		out = f
	}
	if out == nil {
		out = io.Discard
	}
	app.log = logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: out,
		Prefix: "gridstorm",
	})
	logging.SetDefault(app.log)
	return nil
}

// loadTable reads the items named by the options.
func (app *Application) loadTable() (*source.Table, error) {
	path := app.opts.DataPath
	if path == "" {
		return nil, ErrNoData
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return source.LoadJSONFile(path, app.opts.ItemsPath)
	case ".db", ".sqlite", ".sqlite3":
		db, err := source.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		app.db = db
		if app.opts.Query != "" {
			return source.LoadSQL(context.Background(), db, app.opts.Query)
		}
		return source.LoadTable(context.Background(), db, app.opts.Table)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedData, path)
}

func (app *Application) sourceName() string {
	name := filepath.Base(app.opts.DataPath)
	if app.opts.Table != "" {
		name += ":" + app.opts.Table
	}
	return name
}

// assignIDs numbers items that have no identifier, when they can be set.
func assignIDs(items []item.Item, field string) {
	for i, it := range items {
		if it.Get(field) != nil {
			continue
		}
		if s, ok := it.(item.Setter); ok {
			_ = s.Set(field, i+1)
		}
	}
}

// nextID returns one past the largest numeric id, or a fresh uuid when
// the ids are not numbers.
func nextID(items []item.Item, field string) any {
	var top int64
	for _, it := range items {
		f, ok := item.ToFloat(it.Get(field))
		if !ok {
			return item.NewRecord(field).Get(field)
		}
		top = max(top, int64(f))
	}
	return top + 1
}

func (app *Application) gridOptions(s config.Settings) grid.Options {
	opts := grid.DefaultOptions()
	s.Grid.Apply(&opts)
	if app.opts.ReadOnly {
		opts.Editable = false
		opts.EnableAddRow = false
	}
	opts.Scheduler = app.sched
	opts.Logger = app.log
	opts.EditorFactory = func(*core.Column) core.EditorFactory { return editors.Text }
	idField := s.View.IDField
	opts.NewItem = func() item.Item {
		rec := item.Record{}
		rec[idField] = nextID(app.view.Items(), idField)
		return rec
	}
	return opts
}

// buildColumns turns column settings into grid columns, or derives one
// column per field when none are configured.
func (app *Application) buildColumns(s config.Settings) ([]core.Column, error) {
	if len(s.Columns) == 0 {
		return app.table.Columns(s.Grid.DefaultColumnWidth), nil
	}
	cols := make([]core.Column, 0, len(s.Columns))
	for i, cs := range s.Columns {
		col := cs.Column()
		if err := app.registry.Configure(&col, cs.Editor, cs.Formatter); err != nil {
			return nil, fmt.Errorf("columns[%d]: %w", i, err)
		}
		if cs.Script != "" {
			f, err := app.scripts.CompileFormatter(cs.Script)
			if err != nil {
				return nil, fmt.Errorf("columns[%d].script: %w", i, err)
			}
			col.Formatter = f
		}
		if cs.Totals != "" {
			t, ok := app.registry.TotalsFormatter(cs.Totals)
			if !ok {
				return nil, fmt.Errorf("columns[%d].totals: %w", i, editors.ErrUnknown)
			}
			col.GroupTotalsFormatter = t
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// configureView applies filtering, grouping, paging and sorting in one
// refresh.
func (app *Application) configureView(s config.Settings) error {
	var filter dataview.FilterFunc
	if s.View.Filter != "" {
		f, err := app.scripts.CompileFilter(s.View.Filter)
		if err != nil {
			return NewOperationError("compile", "view.filter", err)
		}
		filter = f
	}

	d := app.view
	d.BeginUpdate()
	defer d.EndUpdate()

	d.SetFilter(filter)
	if s.View.GroupBy != "" {
		aggs := make([]dataview.Aggregator, 0, len(s.View.Sum))
		for _, f := range s.View.Sum {
			aggs = append(aggs, dataview.Sum(f))
		}
		d.SetGrouping(dataview.GroupBy(s.View.GroupBy, aggs...))
	} else {
		d.SetGrouping()
	}
	d.SetPagingOptions(dataview.PageSize(s.View.PageSize))
	if s.View.SortField != "" {
		asc := !s.View.SortDesc
		d.SortByField(s.View.SortField, asc)
		for _, c := range app.grid.Columns() {
			if c.Field == s.View.SortField {
				app.grid.SetSortColumn(c.ID, asc)
				break
			}
		}
	}
	return nil
}

// subscribe connects grid and settings events to the application.
func (app *Application) subscribe() {
	event.Attach(app.subs, app.grid.OnSort, func(a *event.Args[grid.SortArgs]) {
		app.view.SortByField(a.Data.Column.Field, a.Data.Ascending)
	})
	event.Attach(app.subs, app.grid.OnCellChange, func(a *event.Args[grid.CellChangeArgs]) {
		app.storeEdit(a.Data.Item, a.Data.Column.Field)
	})
	event.Attach(app.subs, app.grid.OnAddNewRow, func(a *event.Args[grid.AddNewRowArgs]) {
		if err := app.addItem(a.Data.Item); err != nil {
			app.notify("%v", err)
		}
	})
	event.Attach(app.subs, app.grid.OnValidationError, func(a *event.Args[grid.ValidationErrorArgs]) {
		app.notify("%s: %s", a.Data.Column.Name, a.Data.Result.Msg)
	})
	event.Attach(app.subs, app.cfg.OnReload, func(a *event.Args[config.Settings]) {
		app.reload(a.Data)
	})
	event.Attach(app.subs, app.cfg.OnError, func(a *event.Args[error]) {
		app.notify("settings: %v", a.Data)
	})
}

// storeEdit refreshes an edited item in the view and writes the field back
// to the database.
func (app *Application) storeEdit(it item.Item, field string) {
	app.metrics.RecordEdit()
	if err := app.refreshItem(it); err != nil {
		app.notify("%v", err)
	}
	if err := app.writeField(it, field); err != nil {
		app.notify("%v", err)
	}
}

// refreshItem runs an edited item through the view again, so sorting,
// filtering, grouping and totals see the new value.
func (app *Application) refreshItem(it item.Item) error {
	id := it.Get(app.settings.View.IDField)
	if err := app.view.UpdateItem(id, it); err != nil {
		return NewOperationError("refresh", "item", err)
	}
	return nil
}

// writeField stores an edited field in the database table, when there is
// one.
func (app *Application) writeField(it item.Item, field string) error {
	if app.db == nil || app.opts.Table == "" {
		return nil
	}
	if app.opts.ReadOnly {
		return ErrReadOnly
	}
	err := source.UpdateField(context.Background(), app.db, app.opts.Table, app.settings.View.IDField, it, field)
	if err != nil {
		return NewOperationError("update", app.opts.Table, err)
	}
	return nil
}

func (app *Application) addItem(it item.Item) error {
	if err := app.view.AddItem(it); err != nil {
		return NewOperationError("add", "item", err)
	}
	if app.db == nil || app.opts.Table == "" {
		return nil
	}
	if err := source.InsertItem(context.Background(), app.db, app.opts.Table, app.table.Fields, it); err != nil {
		return NewOperationError("insert", app.opts.Table, err)
	}
	return nil
}

// reload re-applies settings to the live grid. Parts that fail keep their
// previous state.
func (app *Application) reload(s config.Settings) {
	var errs ErrorList
	app.settings = s

	level := s.Logging.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	app.log.SetLevel(logging.ParseLevel(level))

	app.grid.SetOptions(func(o *grid.Options) {
		s.Grid.Apply(o)
		if app.opts.ReadOnly {
			o.Editable = false
			o.EnableAddRow = false
		}
	})
	if cols, err := app.buildColumns(s); err != nil {
		errs.Add(err)
	} else {
		errs.Add(app.grid.SetColumns(cols))
	}
	errs.Add(app.configureView(s))
	app.history.History().SetMaxEntries(s.Grid.HistorySize)

	if app.renderer != nil {
		if th, err := s.Theme.Theme(); err != nil {
			errs.Add(err)
		} else {
			app.renderer.SetTheme(th)
		}
	}

	if err := errs.AsError(); err != nil {
		app.notify("settings: %v", err)
		return
	}
	app.notify("settings reloaded")
}

// reloadSettings reads the settings file again on request.
func (app *Application) reloadSettings() {
	if app.cfg.Path() == "" {
		app.notify("no settings file")
		return
	}
	// Failures reach the status line through OnError.
	_ = app.cfg.Reload()
}
