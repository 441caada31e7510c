package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dshills/gridstorm/internal/config/loader"
	"github.com/dshills/gridstorm/internal/config/watcher"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

const testPrefix = "GSTEST_"

func newTestConfig(path string, fsys loader.FileSystem) *Config {
	return New(path, WithFS(fsys), WithEnvPrefix(testPrefix), WithLogger(logging.Null()))
}

const salesTOML = `
[grid]
rowHeight = 2
editable = false
editorLoadDelay = "250ms"

[view]
groupBy = "region"
sum = ["amount"]
pageSize = 20

[[columns]]
id = "region"
width = 10

[[columns]]
id = "amount"
name = "Amount"
formatter = "number"
align = "right"
`

func TestLoadDefaults(t *testing.T) {
	c := newTestConfig("", loader.MapFS{})
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	s := c.Settings()
	d := Default()
	if s.Grid != d.Grid || s.Theme != d.Theme || s.Logging != d.Logging {
		t.Errorf("settings = %+v, want defaults", s)
	}
	if len(s.Columns) != 0 || s.View.IDField != "id" {
		t.Errorf("view %+v, columns %v", s.View, s.Columns)
	}
}

func TestLoadTOML(t *testing.T) {
	c := newTestConfig("sales.toml", loader.MapFS{"sales.toml": salesTOML})
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	s := c.Settings()

	if s.Grid.RowHeight != 2 || s.Grid.Editable || !s.Grid.EnableCellNavigation {
		t.Errorf("grid = %+v", s.Grid)
	}
	if s.Grid.EditorLoadDelay != 250*time.Millisecond {
		t.Errorf("editorLoadDelay = %v", s.Grid.EditorLoadDelay)
	}
	if s.View.GroupBy != "region" || !slices.Equal(s.View.Sum, []string{"amount"}) || s.View.PageSize != 20 {
		t.Errorf("view = %+v", s.View)
	}
	if len(s.Columns) != 2 {
		t.Fatalf("columns = %+v", s.Columns)
	}

	col := s.Columns[1].Column()
	if col.ID != "amount" || col.Field != "amount" || col.Name != "Amount" || col.CSSClass != "align-right" {
		t.Errorf("amount column = %+v", col)
	}
	if col := s.Columns[0].Column(); col.Name != "region" || col.Width != 10 {
		t.Errorf("region column = %+v", col)
	}

	opts := grid.DefaultOptions()
	s.Grid.Apply(&opts)
	if opts.RowHeight != 2 || opts.Editable || opts.AsyncEditorLoadDelay != 250*time.Millisecond {
		t.Errorf("applied options = %+v", opts)
	}
}

func TestLoadYAML(t *testing.T) {
	fsys := loader.MapFS{"grid.yaml": "theme:\n  name: mono\nlogging:\n  level: debug\n  file: /tmp/grid.log\n"}
	c := newTestConfig("grid.yaml", fsys)
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	s := c.Settings()
	if s.Theme.Name != "mono" || s.Logging.Level != "debug" || s.Logging.File != "/tmp/grid.log" {
		t.Errorf("settings = %+v", s)
	}
	theme, err := s.Theme.Theme()
	if err != nil {
		t.Fatal(err)
	}
	if theme.Separator != '|' {
		t.Errorf("mono theme separator = %q", theme.Separator)
	}
}

func TestEnvironmentWins(t *testing.T) {
	t.Setenv(testPrefix+"GRID_ROW_HEIGHT", "3")
	t.Setenv(testPrefix+"LOG_LEVEL", "warn")
	t.Setenv(testPrefix+"PAGE_SIZE", "5")
	t.Setenv(testPrefix+"VIEW_SUM", `["amount","qty"]`)
	t.Setenv(testPrefix+"CONFIG", "ignored.toml")

	c := newTestConfig("sales.toml", loader.MapFS{"sales.toml": salesTOML})
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	s := c.Settings()
	if s.Grid.RowHeight != 3 || s.Logging.Level != "warn" || s.View.PageSize != 5 {
		t.Errorf("settings = %+v", s)
	}
	if !slices.Equal(s.View.Sum, []string{"amount", "qty"}) {
		t.Errorf("view.sum = %v", s.View.Sum)
	}
	if s.Grid.Editable {
		t.Error("file setting lost")
	}
}

func TestUnknownSetting(t *testing.T) {
	c := newTestConfig("a.toml", loader.MapFS{"a.toml": "[grid]\nrowHight = 2\n"})
	err := c.Load()
	if !errors.Is(err, ErrUnknownSetting) || !strings.Contains(err.Error(), "rowHight") {
		t.Errorf("err = %v", err)
	}
}

func TestValidation(t *testing.T) {
	doc := `
[grid]
rowHeight = 0

[view]
sum = ["amount"]

[theme]
accent = "#12"

[[columns]]
id = "a"

[[columns]]
id = "a"
align = "center"
`
	c := newTestConfig("a.toml", loader.MapFS{"a.toml": doc})
	err := c.Load()
	if !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("err = %v", err)
	}
	for _, path := range []string{"grid.rowHeight", "view.sum", "theme.accent", "columns[1].id", "columns[1].align"} {
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error does not mention %s: %v", path, err)
		}
	}
	if c.Settings().Grid.RowHeight != 1 || c.Loads() != 0 {
		t.Error("failed load replaced the settings")
	}
}

func TestTypeMismatch(t *testing.T) {
	c := newTestConfig("a.yaml", loader.MapFS{"a.yaml": "grid:\n  rowHeight: tall\n"})
	if err := c.Load(); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("err = %v", err)
	}
}

func TestParseErrorSurfaces(t *testing.T) {
	c := newTestConfig("a.toml", loader.MapFS{"a.toml": "[grid\n"})
	var perr *loader.ParseError
	if err := c.Load(); !errors.As(err, &perr) {
		t.Errorf("err = %v, want ParseError", err)
	}
}

func TestReloadKeepsLastGood(t *testing.T) {
	fsys := loader.MapFS{"a.toml": "[grid]\nrowHeight = 2\n"}
	c := newTestConfig("a.toml", fsys)

	var reloaded []int
	var failures []error
	c.OnReload.Subscribe(func(a *event.Args[Settings]) { reloaded = append(reloaded, a.Data.Grid.RowHeight) })
	c.OnError.Subscribe(func(a *event.Args[error]) { failures = append(failures, a.Data) })

	if err := c.Reload(); err != nil {
		t.Fatal(err)
	}
	fsys["a.toml"] = "[grid]\nrowHeight = -1\n"
	if err := c.Reload(); err == nil {
		t.Fatal("invalid reload succeeded")
	}
	if c.Settings().Grid.RowHeight != 2 {
		t.Error("invalid reload replaced the settings")
	}
	fsys["a.toml"] = "[grid]\nrowHeight = 4\n"
	c.Reload()

	if !slices.Equal(reloaded, []int{2, 4}) || len(failures) != 1 {
		t.Errorf("reloaded %v, failures %v", reloaded, failures)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.toml")
	if err := os.WriteFile(path, []byte("[grid]\nrowHeight = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(path, WithEnvPrefix(testPrefix), WithLogger(logging.Null()))
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}

	clock := schedule.NewManual()
	w, err := c.Watch(watcher.Options{Debounce: 50 * time.Millisecond, Scheduler: clock})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[grid]\nrowHeight = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for clock.Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Settings().Grid.RowHeight != 2 {
		t.Error("reloaded before the debounce interval")
	}
	clock.Advance(50 * time.Millisecond)
	if got := c.Settings().Grid.RowHeight; got != 3 {
		t.Errorf("rowHeight after change = %d, want 3", got)
	}
}

func TestWatchWithoutFile(t *testing.T) {
	if _, err := newTestConfig("", loader.MapFS{}).Watch(watcher.Options{}); err == nil {
		t.Error("Watch without a file succeeded")
	}
}
