package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotReady           = errors.New("site not ready")
	ErrAlreadyFinalized   = errors.New("site already finalized")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// External services
	ErrMissingCredential = errors.New("missing AI API credential")
	ErrExternalService   = errors.New("external service error")
	ErrEmptyCompletion   = errors.New("model returned empty output")
	ErrNoAudio           = errors.New("no audio provided")
)

// ValidationError carries the first human-readable validation message for a rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrInvalidArgument) match validation failures.
func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// NewValidationError returns a ValidationError with msg.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
