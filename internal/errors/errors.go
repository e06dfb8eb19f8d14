package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess         = 0   // Indicates successful execution.
	ExitErrorGeneric    = 1   // Indicates a generic error (including worker faults).
	ExitErrorTimeout    = 2   // Indicates the operation timed out.
	ExitErrorValidation = 3   // Indicates the grid or worker count was rejected.
	ExitErrorConfig     = 4   // Indicates a configuration error.
	ExitErrorCanceled   = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// Sentinel errors identifying the failure classes of a grid reduction.
// Concrete errors wrap one of these so callers can branch with errors.Is.
var (
	// ErrInvalidGrid reports an empty or ragged grid, detected before dispatch.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrInvalidWorkerCount reports a non-positive worker count, detected before dispatch.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrWorkerFault reports that an individual worker failed to compute its partial sum.
	ErrWorkerFault = errors.New("worker fault")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation, provides a human-readable explanation and carries
// the sentinel describing the failure class.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
	// Kind is the sentinel error class (ErrInvalidGrid, ErrInvalidWorkerCount).
	Kind error
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%v: %q: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// Unwrap returns the sentinel class so errors.Is(err, ErrInvalidGrid) holds.
func (e ValidationError) Unwrap() error { return e.Kind }

// NewGridError builds a ValidationError of class ErrInvalidGrid.
func NewGridError(format string, a ...any) error {
	return ValidationError{Field: "grid", Message: fmt.Sprintf(format, a...), Kind: ErrInvalidGrid}
}

// NewWorkerCountError builds a ValidationError of class ErrInvalidWorkerCount.
func NewWorkerCountError(n int) error {
	return ValidationError{
		Field:   "workers",
		Message: fmt.Sprintf("must be at least 1, got %d", n),
		Kind:    ErrInvalidWorkerCount,
	}
}

// NewWorkerLimitError builds a ValidationError of class
// ErrInvalidWorkerCount for a worker count above limit.
func NewWorkerLimitError(n, limit int) error {
	return ValidationError{
		Field:   "workers",
		Message: fmt.Sprintf("must be at most %d, got %d", limit, n),
		Kind:    ErrInvalidWorkerCount,
	}
}

// WorkerFault encapsulates the failure of the worker assigned to one
// partition while preserving the original cause.
type WorkerFault struct {
	// Partition is the index of the partition whose worker failed.
	Partition int
	// Start is the first flat index of the partition.
	Start int
	// Length is the number of elements in the partition.
	Length int
	// Cause is the underlying error reported by the worker.
	Cause error
}

// Error returns a message naming the partition and the cause.
func (e WorkerFault) Error() string {
	return fmt.Sprintf("worker fault in partition %d [%d,%d): %v", e.Partition, e.Start, e.Start+e.Length, e.Cause)
}

// Unwrap returns the underlying cause.
func (e WorkerFault) Unwrap() error { return e.Cause }

// Is reports whether target is ErrWorkerFault, so that every WorkerFault
// matches the sentinel regardless of its cause.
func (e WorkerFault) Is(target error) bool { return target == ErrWorkerFault }

// TimeoutError represents a reduction timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
	// Cause is the error the operation returned, usually wrapping
	// context.DeadlineExceeded.
	Cause error
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// Unwrap returns the underlying cause.
func (e TimeoutError) Unwrap() error { return e.Cause }

// WrapTimeout converts err into a TimeoutError when it was caused by a
// deadline. Other errors, and nil, are returned unchanged.
//
// Parameters:
//   - err: The error returned by the operation.
//   - operation: The operation name reported in the message.
//   - limit: The deadline the operation ran under.
//
// Returns:
//   - error: A TimeoutError wrapping err, or err itself.
func WrapTimeout(err error, operation string, limit time.Duration) error {
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return TimeoutError{Operation: operation, Limit: limit, Cause: err}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsValidationError reports whether err was produced by input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidGrid) || errors.Is(err, ErrInvalidWorkerCount)
}
