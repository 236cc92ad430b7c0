package tab

import "errors"

var (
	// ErrTabNotFound indicates the tab doesn't exist for this owner.
	ErrTabNotFound = errors.New("tab not found")
	// ErrInvalidInput indicates invalid tab input.
	ErrInvalidInput = errors.New("invalid tab input")
	// ErrTabInUse indicates a restricted delete of a tab that still has records.
	ErrTabInUse = errors.New("tab still has records")
)
