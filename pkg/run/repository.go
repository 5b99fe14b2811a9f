package run

import (
	"context"
	"errors"
)

// ErrRunNotFound indicates the requested run does not exist in the repository.
var ErrRunNotFound = errors.New("run not found")

// Repository is the persistence boundary for runs.
//
// The reconciliation core borrows a run for the duration of one pass and
// hands a possibly-mutated copy back through Save. Save assigns an identity
// to unpersisted runs and returns the stored run.
type Repository interface {
	// FindByID returns the run with the given ID, or ErrRunNotFound.
	FindByID(ctx context.Context, id int64) (*Run, error)

	// FindByJobID returns all runs belonging to a job, ordered by ID.
	FindByJobID(ctx context.Context, jobID int64) ([]*Run, error)

	// Save persists the run, assigning an ID if it is unpersisted.
	// Returns the persisted run.
	Save(ctx context.Context, r *Run) (*Run, error)
}
