package run

import "fmt"

// RunStatus is the client-visible lifecycle status of a run.
//
// NOTE: These values are persisted and are part of the stable on-disk
// contract. New code must only ever write the five canonical values;
// the legacy aliases below exist solely to decode historical records.
type RunStatus string

const (
	StatusQueued     RunStatus = "QUEUED"
	StatusNotStarted RunStatus = "NOT_STARTED"
	StatusRunning    RunStatus = "RUNNING"
	StatusError      RunStatus = "ERROR"
	StatusDone       RunStatus = "DONE"
)

// Legacy status values found in historical records. Kept in a separate
// compatibility table so the canonical set stays clean.
const (
	legacyStatusSubmitted RunStatus = "Submitted"
	legacyStatusFailed    RunStatus = "Failed"
	legacyStatusCancelled RunStatus = "Cancelled"
	legacyStatusRunning   RunStatus = "Running"
)

// legacyRunStatus maps historical aliases to their canonical value.
var legacyRunStatus = map[RunStatus]RunStatus{
	legacyStatusSubmitted: StatusQueued,
	legacyStatusFailed:    StatusError,
	legacyStatusCancelled: StatusError,
	legacyStatusRunning:   StatusRunning,
}

var canonicalRunStatuses = map[RunStatus]struct{}{
	StatusQueued:     {},
	StatusNotStarted: {},
	StatusRunning:    {},
	StatusError:      {},
	StatusDone:       {},
}

// ParseRunStatus decodes a persisted status value, accepting both canonical
// values and legacy aliases. The stored value is preserved as-is; use
// Canonical to normalize for comparisons or client-visible output.
func ParseRunStatus(s string) (RunStatus, error) {
	st := RunStatus(s)
	if _, ok := canonicalRunStatuses[st]; ok {
		return st, nil
	}
	if _, ok := legacyRunStatus[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown run status %q", s)
}

// Canonical maps legacy aliases to their canonical value. Canonical values
// return themselves.
func (s RunStatus) Canonical() RunStatus {
	if mapped, ok := legacyRunStatus[s]; ok {
		return mapped
	}
	return s
}

// IsCanonical reports whether the status is one of the five values new code
// is allowed to write.
func (s RunStatus) IsCanonical() bool {
	_, ok := canonicalRunStatuses[s]
	return ok
}

// PodPhase is the fine-grained execution phase of the underlying compute
// task, distinct from the coarser client-visible RunStatus.
type PodPhase string

const (
	PhasePending   PodPhase = "Pending"
	PhaseRunning   PodPhase = "Running"
	PhaseSucceeded PodPhase = "Succeeded"
	PhaseFailed    PodPhase = "Failed"
	PhaseUnknown   PodPhase = "Unknown"
)

// ParsePodPhase decodes a persisted pod phase value.
func ParsePodPhase(s string) (PodPhase, error) {
	switch p := PodPhase(s); p {
	case PhasePending, PhaseRunning, PhaseSucceeded, PhaseFailed, PhaseUnknown:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pod phase %q", s)
	}
}

// StatusDetail is the transient status snapshot produced by the batch
// gateway for one run. It is never persisted directly.
type StatusDetail struct {
	Status   RunStatus
	PodPhase PodPhase
	Message  string
}
