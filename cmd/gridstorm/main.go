// Package main is the entry point for gridstorm.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/gridstorm/internal/app"
	"github.com/dshills/gridstorm/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	opts          app.Options
	snapshot      bool
	width, height int
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	application, err := app.New(f.opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	// Without a terminal there is nothing to drive the event loop, so
	// print one frame instead.
	if f.snapshot || !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := application.Snapshot(os.Stdout, f.width, f.height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	tb, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetBackend(tb); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() flags {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.opts.ConfigPath, "config", "", "Path to settings file (.yaml or .toml)")
	flag.StringVar(&f.opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flag.StringVar(&f.opts.DataPath, "data", "", "Items to show: a .json document or a SQLite database")
	flag.StringVar(&f.opts.ItemsPath, "items", "", "Path of the item array inside a JSON document")
	flag.StringVar(&f.opts.Query, "query", "", "SQL query selecting the items from a database")
	flag.StringVar(&f.opts.Table, "table", "", "Database table to show and write edits back to")
	flag.StringVar(&f.opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.opts.Locale, "locale", "", "Locale for number formatting, such as de-DE")
	flag.BoolVar(&f.opts.ReadOnly, "readonly", false, "Disable editing")
	flag.BoolVar(&f.opts.ReadOnly, "R", false, "Disable editing (shorthand)")
	flag.BoolVar(&f.opts.Watch, "watch", false, "Reload settings when the file changes")
	flag.BoolVar(&f.snapshot, "snapshot", false, "Print one frame and exit")
	flag.IntVar(&f.width, "width", app.DefaultWidth, "Snapshot width")
	flag.IntVar(&f.height, "height", app.DefaultHeight, "Snapshot height")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Gridstorm - terminal data grid\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridstorm [options] [data]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  arrows, tab        move the active cell\n")
		fmt.Fprintf(os.Stderr, "  enter, F2          edit or commit the active cell\n")
		fmt.Fprintf(os.Stderr, "  ctrl-z, ctrl-y     undo and redo edits\n")
		fmt.Fprintf(os.Stderr, "  ctrl-n, ctrl-p     next and previous page\n")
		fmt.Fprintf(os.Stderr, "  ctrl-d             fill the active cell into selected rows\n")
		fmt.Fprintf(os.Stderr, "  ctrl-r             reload settings\n")
		fmt.Fprintf(os.Stderr, "  ctrl-c             quit\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridstorm tasks.json                      Show a JSON array\n")
		fmt.Fprintf(os.Stderr, "  gridstorm -items data.rows export.json    Show a nested array\n")
		fmt.Fprintf(os.Stderr, "  gridstorm -table sales shop.db            Edit a SQLite table\n")
		fmt.Fprintf(os.Stderr, "  gridstorm -snapshot -c grid.yaml t.json   Print one frame\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Gridstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch f.opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.opts.LogLevel)
		os.Exit(1)
	}

	if f.opts.DataPath == "" && flag.NArg() > 0 {
		f.opts.DataPath = flag.Arg(0)
	}
	if f.opts.DataPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	return f
}

