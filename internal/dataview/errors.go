package dataview

import (
	"errors"
	"fmt"
)

// Sentinel errors for data view operations.
var (
	// ErrDuplicateOrMissingID is returned when an item has no usable
	// identifier or shares one with another item.
	ErrDuplicateOrMissingID = errors.New("dataview: each item must have a unique, non-nil id")

	// ErrInvalidID is returned when an id is unknown, or does not match the
	// id of the item supplied with it.
	ErrInvalidID = errors.New("dataview: invalid or non-matching id")
)

// IDError reports which item an operation rejected.
type IDError struct {
	// Op is the operation that failed, such as "SetItems".
	Op string

	// ID is the offending identifier.
	ID any

	// Index is the item position, or -1 when not applicable.
	Index int

	// Err is ErrDuplicateOrMissingID or ErrInvalidID.
	Err error
}

// Error implements the error interface.
func (e *IDError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: item %d (id %v): %v", e.Op, e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: id %v: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *IDError) Unwrap() error {
	return e.Err
}
