package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the server refuses a change because of dependent state
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetwork is returned when a request did not complete; the operation is considered not applied
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the server rejects the caller's credentials
	ErrUnauthorized = errors.New("unauthorized")
)
