// Package run defines the run domain model for the simulation platform.
//
// A Run tracks one execution of a simulation on the external batch compute
// service. Runs are addressed externally by a deterministic natural key
// derived from their persisted identity; no batch job ID is ever stored.
package run

import (
	"errors"
	"fmt"
	"time"
)

// DefaultEPXClientVersion is recorded on runs created without an explicit
// client version, matching the historical API default.
const DefaultEPXClientVersion = "1.2.2"

// ErrNotPersisted indicates an operation that requires a repository-assigned
// identity was attempted on an unpersisted run.
var ErrNotPersisted = errors.New("run is not persisted")

// Run is the run domain entity.
//
// A run is unpersisted until its owning repository assigns an ID via Save.
// ID zero means unpersisted; repositories assign IDs starting at 1.
type Run struct {
	ID     int64 `json:"id"`
	JobID  int64 `json:"job_id"`
	UserID int64 `json:"user_id"`

	Status          RunStatus `json:"status"`
	PodPhase        PodPhase  `json:"pod_phase"`
	ContainerStatus string    `json:"container_status,omitempty"`

	ResultsUploaded   bool       `json:"results_uploaded"`
	ConfigURL         string     `json:"config_url,omitempty"`
	ResultsURL        string     `json:"results_url,omitempty"`
	ResultsUploadedAt *time.Time `json:"results_uploaded_at,omitempty"`

	UserDeleted      bool   `json:"user_deleted"`
	EPXClientVersion string `json:"epx_client_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an unpersisted run for the given job and user.
func New(jobID, userID int64, now time.Time) *Run {
	return &Run{
		JobID:            jobID,
		UserID:           userID,
		Status:           StatusQueued,
		PodPhase:         PhasePending,
		EPXClientVersion: DefaultEPXClientVersion,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Persisted reports whether the run has a repository-assigned identity.
func (r *Run) Persisted() bool {
	return r.ID != 0
}

// NaturalKey returns the deterministic identifier used to address this run's
// job on the external compute service.
//
// Format: job-{job_id}-run-{run_id}. This exact string is part of the
// external compatibility contract for in-flight jobs; changing it strands
// every job submitted under the old format.
//
// Returns ErrNotPersisted for runs that have no identity yet.
func (r *Run) NaturalKey() (string, error) {
	if !r.Persisted() {
		return "", fmt.Errorf("natural key for job %d: %w", r.JobID, ErrNotPersisted)
	}
	return fmt.Sprintf("job-%d-run-%d", r.JobID, r.ID), nil
}

// Validate checks the run's internal consistency.
//
// The load-bearing invariant: DONE is only valid once results are durably
// uploaded and retrievable. Every persistence path calls this before writing.
func (r *Run) Validate() error {
	if r.Status.Canonical() == StatusDone {
		if !r.ResultsUploaded {
			return fmt.Errorf("run %d: status DONE with results_uploaded=false", r.ID)
		}
		if r.ResultsURL == "" {
			return fmt.Errorf("run %d: status DONE without results_url", r.ID)
		}
	}
	return nil
}
