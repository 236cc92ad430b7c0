package draft

import "errors"

var (
	// ErrInvalidKey indicates an empty draft scope key.
	ErrInvalidKey = errors.New("invalid draft key")
	// ErrInvalidTransition indicates a close-flow step that is not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid form state transition")
	// ErrFormClosed indicates an edit on a form that has already closed.
	ErrFormClosed = errors.New("form is closed")
)
