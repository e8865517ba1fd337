package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid")
	// ErrStateUnavailable indicates a maintenance-state provider could not be
	// consulted (timeout, unreachable); callers fall back to the next provider.
	ErrStateUnavailable = errors.New("state_unavailable")
	// ErrToggleFailed indicates an admin toggle could not persist its write.
	ErrToggleFailed = errors.New("toggle_failed")
)
