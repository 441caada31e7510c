package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSetting wraps every ValidationError.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrUnknownSetting is returned for keys Settings does not define.
	ErrUnknownSetting = errors.New("unknown setting")
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSetting
}
