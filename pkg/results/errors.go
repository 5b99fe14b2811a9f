package results

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for results operations.
var (
	// ErrInvalidResultsDir indicates the local results directory is
	// missing, not a directory, or contains no recognizable output.
	// Not retryable without operator intervention.
	ErrInvalidResultsDir = errors.New("invalid results directory")

	// ErrNotFound indicates the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrAccessDenied indicates insufficient storage permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrThrottled indicates the storage request was rate limited.
	ErrThrottled = errors.New("request throttled")

	// ErrStorageUnavailable indicates the storage service failed internally.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// PackagingError indicates archive creation failed. No external state has
// been mutated when this is returned; the operation is retryable.
type PackagingError struct {
	Dir string
	Err error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package results %s: %v", e.Dir, e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }

// StorageError wraps storage service errors with operation context.
//
// Message content is sanitized of credential material before construction;
// storage-client errors can embed request signing details.
type StorageError struct {
	// Op is the operation that failed (e.g., "UploadRunResults").
	Op string

	// Bucket and Key identify the target object, if applicable.
	Bucket string
	Key    string

	// Message is the sanitized description of the underlying failure.
	Message string

	// Err is the sentinel classification, if one applies.
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s: %s/%s: %s", e.Op, e.Bucket, e.Key, e.Message)
	}
	return fmt.Sprintf("storage %s: %s: %s", e.Op, e.Bucket, e.Message)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsInvalidResultsDir returns true for results-directory validation failures.
func IsInvalidResultsDir(err error) bool {
	return errors.Is(err, ErrInvalidResultsDir)
}

// IsPackaging returns true for archive creation failures.
func IsPackaging(err error) bool {
	var pe *PackagingError
	return errors.As(err, &pe)
}

// IsRetryable reports whether the failure may be retried without operator
// intervention: packaging, timeouts, and transient storage failures qualify,
// directory validation does not.
func IsRetryable(err error) bool {
	if IsPackaging(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StorageError
	if errors.As(err, &se) {
		return !errors.Is(err, ErrAccessDenied) && !errors.Is(err, ErrNotFound)
	}
	return false
}
