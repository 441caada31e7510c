package source

import (
	"errors"
	"fmt"
)

// Sentinel errors for item loading.
var (
	// ErrInvalidJSON is returned for documents gjson cannot parse.
	ErrInvalidJSON = errors.New("source: invalid JSON document")

	// ErrNotArray is returned when the selected value is not an array.
	ErrNotArray = errors.New("source: items must be a JSON array")

	// ErrNotObject is returned when an array element is not an object.
	ErrNotObject = errors.New("source: item is not a JSON object")

	// ErrNoTable is returned by write-back operations without a table name.
	ErrNoTable = errors.New("source: no table name")
)

// ElementError reports which array element was rejected.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}
