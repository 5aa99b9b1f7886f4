package core

import "errors"

// Sentinel errors returned by storage and validation layers. Callers match
// them with errors.Is to choose an HTTP status.
var (
	// ErrNotFound indicates the requested record does not exist or is archived.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed identifier or field value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOverAllocated is returned by a write-time re-check when committing a
	// billing percentage would push a project's total over 100%.
	ErrOverAllocated = errors.New("billing allocation exceeds 100%")
)
