package presets

import "errors"

// ErrNotFound indicates the preset does not exist.
var ErrNotFound = errors.New("not found")
