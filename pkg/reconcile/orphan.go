package reconcile

import (
	"errors"
	"fmt"

	"github.com/jzallen/fred-simulations-sub002/pkg/orphanledger"
)

// OrphanSink records orphaned artifacts durably. The file-backed ledger is
// the production implementation.
type OrphanSink interface {
	Record(rec orphanledger.Record) error
}

// OrphanedArtifactError reports a metadata commit that failed after the
// results artifact was already uploaded: storage state has diverged from
// recorded state. Plain retry of the whole upload would duplicate storage
// writes, so callers must branch on this error distinctly and drive the
// commit-only compensation path instead.
//
// This is the one error kind that must never be reduced to a log line.
type OrphanedArtifactError struct {
	// StorageURL locates the uploaded-but-unrecorded artifact.
	StorageURL string

	JobID int64
	RunID int64

	// Err is the underlying commit failure.
	Err error
}

func (e *OrphanedArtifactError) Error() string {
	return fmt.Sprintf("results uploaded but metadata commit failed for run %d (orphaned artifact at %s): %v",
		e.RunID, e.StorageURL, e.Err)
}

func (e *OrphanedArtifactError) Unwrap() error { return e.Err }

// IsOrphanedArtifact returns true if the error carries an orphaned artifact.
func IsOrphanedArtifact(err error) bool {
	var oe *OrphanedArtifactError
	return errors.As(err, &oe)
}
