package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when an action needs a logged in user.
	ErrUnauthenticated = errors.New("login required")
	// ErrValidation marks input rejected before any backend call.
	ErrValidation = errors.New("validation failed")
)
