// Package batch integrates the run pipeline with the external batch compute
// service (AWS Batch).
//
// Jobs are addressed purely by the run's natural key. The external service
// is the source of truth for execution state; no job ID is ever persisted
// locally.
package batch

import (
	"context"

	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

// Gateway submits, queries, and cancels jobs on the batch compute service.
type Gateway interface {
	// Submit submits the run's job. The run is not modified; the job can be
	// looked up afterwards by natural key alone.
	Submit(ctx context.Context, r *run.Run) error

	// Describe returns the current status snapshot for the run's job.
	// Returns ErrJobNotFound if no job with the run's natural key exists.
	Describe(ctx context.Context, r *run.Run) (run.StatusDetail, error)

	// Cancel terminates the run's job with the given reason.
	// Returns ErrJobNotFound if no job with the run's natural key exists.
	Cancel(ctx context.Context, r *run.Run, reason string) error
}

// Config configures the AWS Batch gateway.
//
// Queue and Definition follow the platform naming convention per
// environment: fred-batch-queue-{env} and fred-simulation-runner-{env}.
type Config struct {
	// Queue is the job queue name or ARN (required).
	Queue string

	// Definition is the job definition name or ARN (required).
	Definition string

	// Region is the AWS region. Defaults to us-east-1 if not resolvable
	// from the environment.
	Region string

	// Endpoint is a custom endpoint URL, used for local test doubles such
	// as moto. Leave empty for AWS.
	Endpoint string

	// Profile is the AWS profile name from shared config. Leave empty to
	// use the default credential chain.
	Profile string
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Queue == "" {
		return &ConfigError{Field: "Queue", Message: "job queue is required"}
	}
	if c.Definition == "" {
		return &ConfigError{Field: "Definition", Message: "job definition is required"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "batch config: " + e.Field + ": " + e.Message
}

// DefaultCancelReason is used when no explicit cancellation reason is given.
const DefaultCancelReason = "User requested cancellation"
