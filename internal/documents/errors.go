package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates the input is invalid.
	ErrInvalidInput = errors.New("invalid input")
)
