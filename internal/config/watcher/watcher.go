// Package watcher reloads settings when their file changes on disk.
//
// The watcher observes the file's directory with fsnotify, so editors
// that save by renaming a temporary file are noticed too. Bursts of
// events are debounced through a schedule.Slot: the callback runs once,
// a debounce interval after the last event, on whatever goroutine the
// scheduler uses.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

// DefaultDebounce is used when no debounce interval is given.
const DefaultDebounce = 150 * time.Millisecond

// ErrClosed is returned when starting a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Op describes what happened to the watched file.
type Op uint8

const (
	OpWrite Op = 1 << iota
	OpCreate
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch {
	case op&OpCreate != 0:
		return "create"
	case op&OpWrite != 0:
		return "write"
	case op&OpRename != 0:
		return "rename"
	case op&OpRemove != 0:
		return "remove"
	}
	return "unknown"
}

// Options configures a Watcher.
type Options struct {
	Debounce  time.Duration
	Scheduler schedule.Scheduler
	Logger    *logging.Logger
}

// Watcher calls a function after the watched file changes.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	slot     *schedule.Slot
	debounce time.Duration
	onChange func(Op)
	log      *logging.Logger

	mu      sync.Mutex
	pending Op
	events  int

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New starts watching path. onChange receives every operation seen during
// the debounce window. A nil scheduler uses real timers.
func New(path string, opts Options, onChange func(Op)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewRealtime(nil)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		slot:     schedule.NewSlot(opts.Scheduler, "config-reload"),
		debounce: opts.Debounce,
		onChange: onChange,
		log:      logging.OrDefault(opts.Logger).WithComponent("config-watcher"),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns how many relevant file events were seen.
func (w *Watcher) Events() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.events
}

// Close stops watching and drops a pending callback.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		w.slot.Cancel()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch %s: %v", w.path, err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}

	w.mu.Lock()
	w.pending |= op
	w.events++
	w.mu.Unlock()
	w.log.Debug("%s %s", op, w.path)

	w.slot.Schedule(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	op := w.pending
	w.pending = 0
	w.mu.Unlock()
	if op != 0 && w.onChange != nil {
		w.onChange(op)
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
