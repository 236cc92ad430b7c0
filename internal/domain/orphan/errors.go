package orphan

import "errors"

var (
	// ErrTargetNotFound indicates the adoption target partition no longer exists.
	ErrTargetNotFound = errors.New("target partition not found")
	// ErrInvalidInput indicates a missing target or scope.
	ErrInvalidInput = errors.New("invalid orphan input")
)
