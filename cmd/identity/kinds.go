package identity

import "errors"

// Sentinel error kinds, stable for errors.Is and for HTTP status mapping.
var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
	// ErrNotActive marks a deactivated profile.
	ErrNotActive = errors.New("not_active")
)
