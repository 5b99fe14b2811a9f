// Package job holds the minimal job entity consumed by the run pipeline.
//
// The pipeline needs only a job's identity and creation timestamp: the
// timestamp anchors the deterministic storage prefix shared by every
// artifact of the job, so keys stay reconstructible without a database
// round-trip.
package job

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound indicates the requested job does not exist.
var ErrJobNotFound = errors.New("job not found")

// Job is the owning entity for a set of runs.
type Job struct {
	ID     int64    `json:"id"`
	UserID int64    `json:"user_id"`
	Tags   []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Persisted reports whether the job has a repository-assigned identity.
func (j *Job) Persisted() bool {
	return j.ID != 0
}

// Repository is the persistence boundary for jobs.
type Repository interface {
	// FindByID returns the job with the given ID, or ErrJobNotFound.
	FindByID(ctx context.Context, id int64) (*Job, error)

	// Save persists the job, assigning an ID if it is unpersisted.
	Save(ctx context.Context, j *Job) (*Job, error)
}
