package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrInvalidRequest indicates that caller input failed validation
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTransport indicates a connectivity, timeout, or non-success
	// status failure when talking to an inference endpoint
	ErrTransport = errors.New("transport error")

	// ErrObserver indicates that a progress observer failed; the fold
	// that invoked it is aborted
	ErrObserver = errors.New("observer error")

	// ErrUnsupportedFormat indicates an input format with no dedicated
	// decoder; callers may still fall back to raw bytes
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
)
