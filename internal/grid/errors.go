package grid

import (
	"errors"
	"fmt"
)

// Sentinel errors for grid operations.
var (
	// ErrNoContainer is returned by New without a container node.
	ErrNoContainer = errors.New("grid: container is required")

	// ErrNoColumns is returned by New without columns.
	ErrNoColumns = errors.New("grid: at least one column is required")

	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("grid: already initialized")

	// ErrNotInitialized is returned by operations that need Init first.
	ErrNotInitialized = errors.New("grid: not initialized")

	// ErrNoSelectionModel is returned by selection operations when no
	// selection model is set.
	ErrNoSelectionModel = errors.New("grid: selection model is not set")

	// ErrDuplicateStyleKey is returned by AddCellCSSStyles for a key that
	// is already in use.
	ErrDuplicateStyleKey = errors.New("grid: cell CSS style key already in use")

	// ErrNotEditable is returned when an editor is requested on a grid that
	// is not editable.
	ErrNotEditable = errors.New("grid: grid is not editable")

	// ErrNoColumn is returned for an unknown column id.
	ErrNoColumn = errors.New("grid: no such column")
)

// CellError reports an operation rejected for a particular cell.
type CellError struct {
	Op   string
	Row  int
	Cell int
	Err  error
}

// Error implements the error interface.
func (e *CellError) Error() string {
	return fmt.Sprintf("%s (%d:%d): %v", e.Op, e.Row, e.Cell, e.Err)
}

// Unwrap returns the underlying error.
func (e *CellError) Unwrap() error {
	return e.Err
}
