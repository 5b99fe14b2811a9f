package batch

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for gateway operations.
var (
	// ErrJobNotFound indicates no batch job exists for the run's natural key.
	// Both steps of the lookup-then-act sequence collapse to this error: a
	// job that disappears between list and describe is indistinguishable
	// from one that was never submitted.
	ErrJobNotFound = errors.New("batch job not found")

	// ErrAccessDenied indicates insufficient permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrThrottled indicates the request was rate limited by the service.
	ErrThrottled = errors.New("request throttled")

	// ErrServiceUnavailable indicates the batch service failed internally.
	ErrServiceUnavailable = errors.New("batch service unavailable")
)

// GatewayError wraps batch service errors with operation context.
type GatewayError struct {
	// Op is the operation that failed (e.g., "Submit", "Describe").
	Op string

	// JobName is the natural-key job name, if resolved.
	JobName string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.JobName != "" {
		return fmt.Sprintf("batch %s: %s: %v", e.Op, e.JobName, e.Err)
	}
	return fmt.Sprintf("batch %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsJobNotFound returns true if the error indicates the job was not found.
func IsJobNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound)
}

// IsThrottled returns true if the error indicates rate limiting.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsAccessDenied returns true if the error indicates insufficient permissions.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsServiceUnavailable returns true if the error indicates a service fault.
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsRetryable reports whether the error is a transient failure the caller
// may retry without operator intervention. Timeouts count; not-found is
// excluded: absence policy belongs to the scheduler, not the gateway.
func IsRetryable(err error) bool {
	return IsThrottled(err) || IsServiceUnavailable(err) ||
		errors.Is(err, context.DeadlineExceeded)
}
