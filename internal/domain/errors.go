package domain

import "errors"

// Error kinds raised by the coaching core. Concrete failures wrap one (or more)
// of these with fmt.Errorf("%w: ...") so callers can match them with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrCapacity          = errors.New("capacity exceeded")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrIncompatibleState = errors.New("incompatible state")
	ErrNotFound          = errors.New("not found")
)
