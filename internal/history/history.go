package history

import (
	"errors"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrReadOnlyItem  = errors.New("item is read-only")
	ErrNothingToFill = errors.New("nothing to fill")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// OperationInfo describes a recorded command.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

type undoEntry struct {
	command   Command
	timestamp time.Time
}

// History manages the undo and redo stacks.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	maxEntries int
	now        func() time.Time
}

// New creates a history keeping at most maxEntries undo steps.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Execute runs a command and records it.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	h.Push(cmd)
	return nil
}

// Push records an already executed command and clears the redo stack.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushLocked(cmd)
}

func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: h.now(),
	})
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo undoes the last command and returns it. The lock is released while
// the command runs, since undoing an edit re-renders the grid and may
// publish events whose handlers use the history.
func (h *History) Undo() (Command, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := entry.command.Undo(); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return entry.command, nil
}

// Redo re-executes the last undone command and returns it.
func (h *History) Redo() (Command, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := entry.command.Execute(); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return nil, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return entry.command, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*undoEntry) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, entry := range stack {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// PeekUndo describes the next undo step without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{Description: entry.command.Description(), Timestamp: entry.timestamp}, true
}

// PeekRedo describes the next redo step without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{Description: entry.command.Description(), Timestamp: entry.timestamp}, true
}

// SetMaxEntries changes the undo limit, dropping the oldest entries when the
// stack is larger.
func (h *History) SetMaxEntries(limit int) {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = limit
	if len(h.undoStack) > limit {
		excess := len(h.undoStack) - limit
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the undo limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
