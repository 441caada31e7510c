package editors

import "errors"

// ErrUnknown is returned for a name that is not registered.
var ErrUnknown = errors.New("editors: unknown name")
