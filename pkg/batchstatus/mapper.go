// Package batchstatus maps AWS Batch job statuses to domain enums.
//
// The mapping is deterministic, total, and pure: unrecognized input maps to
// a defined fallback rather than an error.
//
// AWS Batch status values (see the Batch job states documentation):
// SUBMITTED, PENDING, RUNNABLE, STARTING, RUNNING, SUCCEEDED, FAILED.
package batchstatus

import "github.com/jzallen/fred-simulations-sub002/pkg/run"

// MapRunStatus maps an AWS Batch status to the client-visible RunStatus.
//
// A SUCCEEDED batch job is necessary but not sufficient for client-visible
// completion: DONE is withheld (reported as RUNNING) until the run's results
// artifact is durably uploaded. This prevents clients from racing ahead of
// artifact availability.
//
//	SUBMITTED, PENDING, RUNNABLE → QUEUED
//	STARTING, RUNNING            → RUNNING
//	SUCCEEDED                    → DONE if resultsUploaded, else RUNNING
//	FAILED                       → ERROR
//	anything else                → ERROR
func MapRunStatus(batchStatus string, resultsUploaded bool) run.RunStatus {
	switch batchStatus {
	case "SUBMITTED", "PENDING", "RUNNABLE":
		return run.StatusQueued
	case "STARTING", "RUNNING":
		return run.StatusRunning
	case "SUCCEEDED":
		if resultsUploaded {
			return run.StatusDone
		}
		return run.StatusRunning
	case "FAILED":
		return run.StatusError
	default:
		return run.StatusError
	}
}

// MapPodPhase maps an AWS Batch status to the execution pod phase.
//
//	SUBMITTED, PENDING, RUNNABLE → Pending
//	STARTING, RUNNING            → Running
//	SUCCEEDED                    → Succeeded
//	FAILED                       → Failed
//	anything else                → Unknown
func MapPodPhase(batchStatus string) run.PodPhase {
	switch batchStatus {
	case "SUBMITTED", "PENDING", "RUNNABLE":
		return run.PhasePending
	case "STARTING", "RUNNING":
		return run.PhaseRunning
	case "SUCCEEDED":
		return run.PhaseSucceeded
	case "FAILED":
		return run.PhaseFailed
	default:
		return run.PhaseUnknown
	}
}
