package apiclient

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned for any response carrying redirect: true.
// The session store has already been cleared when it is returned.
var ErrSessionExpired = errors.New("session expired")

const (
	msgRequestFailed = "API request failed"
	msgNetwork       = "Network error"
)

// APIError is a failed backend call with the message the backend gave.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Message extracts a user facing message from err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrSessionExpired) {
		return "Session expired, please log in again"
	}
	return err.Error()
}
