// Package editlock provides the exclusive lock that coordinates active edits.
//
// At most one controller holds a Lock at a time. Each grid gets its own lock
// unless one is passed in; grids given the same Lock never have two editors
// open at once, because a grid asks the current holder to commit before it
// opens an editor.
//
// A Lock is not safe for concurrent use; it is owned by the UI goroutine.
package editlock

import (
	"errors"
	"reflect"
)

// Sentinel errors for lock operations.
var (
	// ErrLockConflict is returned by Activate while another controller
	// holds the lock.
	ErrLockConflict = errors.New("editlock: another controller is active")

	// ErrLockMismatch is returned by Deactivate when the controller is not
	// the one holding the lock.
	ErrLockMismatch = errors.New("editlock: controller is not the active one")

	// ErrContract is returned when a controller cannot be used as a lock
	// holder: it is nil or its dynamic type is not comparable.
	ErrContract = errors.New("editlock: invalid edit controller")
)

// Controller is an active edit that can be committed or cancelled.
type Controller interface {
	// CommitCurrentEdit attempts to commit; false means the edit stays open.
	CommitCurrentEdit() bool

	// CancelCurrentEdit attempts to abandon the edit.
	CancelCurrentEdit() bool
}

// Lock is the exclusive edit lock. The zero value is unlocked.
type Lock struct {
	active Controller
}

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{}
}

// IsActive reports whether any controller holds the lock.
func (l *Lock) IsActive() bool {
	return l.active != nil
}

// IsActiveFor reports whether c holds the lock.
func (l *Lock) IsActiveFor(c Controller) bool {
	return l.active != nil && valid(c) && l.active == c
}

// Activate gives the lock to c. Activating the current holder again is a
// no-op.
func (l *Lock) Activate(c Controller) error {
	if !valid(c) {
		return ErrContract
	}
	if l.active == c {
		return nil
	}
	if l.active != nil {
		return ErrLockConflict
	}
	l.active = c
	return nil
}

// Deactivate releases the lock held by c.
func (l *Lock) Deactivate(c Controller) error {
	if l.active == nil || !valid(c) || l.active != c {
		return ErrLockMismatch
	}
	l.active = nil
	return nil
}

// Commit asks the holder to commit. It returns true when the lock is free.
func (l *Lock) Commit() bool {
	return l.active == nil || l.active.CommitCurrentEdit()
}

// Cancel asks the holder to cancel. It returns true when the lock is free.
func (l *Lock) Cancel() bool {
	return l.active == nil || l.active.CancelCurrentEdit()
}

func valid(c Controller) bool {
	if c == nil {
		return false
	}
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return false
	}
	return v.Type().Comparable()
}
