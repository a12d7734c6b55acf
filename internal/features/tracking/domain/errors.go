package domain

import "errors"

var (
	// ErrInvalidTrackingNumber is returned when the backend rejects a
	// submitted tracking number outright.
	ErrInvalidTrackingNumber = errors.New("invalid tracking number provided")

	// ErrSessionUnavailable is returned when session capture exhausts its
	// retry budget without observing the continuation header.
	ErrSessionUnavailable = errors.New("session token unavailable")
)

// ValidationError reports invalid caller input, surfaced verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BackendError carries a non-success status message from the tracking
// backend.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return "error retrieving tracking information: " + e.Message
}
