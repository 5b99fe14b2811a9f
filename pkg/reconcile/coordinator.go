package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jzallen/fred-simulations-sub002/pkg/job"
	"github.com/jzallen/fred-simulations-sub002/pkg/orphanledger"
	"github.com/jzallen/fred-simulations-sub002/pkg/results"
	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

// UploadCoordinator makes a run's results durable and flips it to DONE.
//
// It runs once the run's pod phase has reached Succeeded. Each step is a
// distinct failure domain: validation and packaging mutate nothing
// external, upload mutates storage only, commit mutates run metadata only.
// A commit failure after a successful upload produces an orphan record and
// an OrphanedArtifactError.
type UploadCoordinator struct {
	runs     run.Repository
	jobs     job.Repository
	packager results.Packager
	store    results.Store
	orphans  OrphanSink
	clock    Clock
	logger   *zap.Logger
}

// NewUploadCoordinator wires a coordinator. A nil clock uses the system
// clock; a nil logger disables logging.
func NewUploadCoordinator(
	runs run.Repository,
	jobs job.Repository,
	packager results.Packager,
	store results.Store,
	orphans OrphanSink,
	clock Clock,
	logger *zap.Logger,
) *UploadCoordinator {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadCoordinator{
		runs:     runs,
		jobs:     jobs,
		packager: packager,
		store:    store,
		orphans:  orphans,
		clock:    clock,
		logger:   logger,
	}
}

// UploadResults packages, uploads, and commits a run's results.
//
// Steps: validate+package the local directory, upload the archive to its
// deterministic key, then commit results_uploaded/results_url and status
// DONE. Re-running on a run whose results are already uploaded is a no-op
// returning the recorded URL.
//
// Returns the results URL on success.
func (c *UploadCoordinator) UploadResults(ctx context.Context, jobID, runID int64, resultsDir string) (string, error) {
	j, err := c.jobs.FindByID(ctx, jobID)
	if err != nil {
		return "", fmt.Errorf("job %d: %w", jobID, err)
	}

	ru, err := c.runs.FindByID(ctx, runID)
	if err != nil {
		return "", fmt.Errorf("run %d: %w", runID, err)
	}
	if ru.JobID != jobID {
		return "", fmt.Errorf("run %d does not belong to job %d", runID, jobID)
	}

	// Idempotence short-circuit: results are already durable and recorded.
	if ru.ResultsUploaded {
		c.logger.Info("results already uploaded",
			zap.Int64("run_id", runID),
			zap.String("results_url", ru.ResultsURL))
		return ru.ResultsURL, nil
	}

	prefix := results.PrefixForJob(j)

	packaged, err := c.packager.PackageDirectory(resultsDir)
	if err != nil {
		return "", err
	}
	c.logger.Info("packaged run results",
		zap.Int64("run_id", runID),
		zap.Int("files", packaged.FileCount),
		zap.Int64("bytes", packaged.TotalSizeBytes))

	loc, err := c.store.UploadRunResults(ctx, prefix, runID, packaged.Archive)
	if err != nil {
		return "", err
	}

	return c.commit(ctx, ru, loc.URL, true)
}

// commit records the uploaded artifact on the run and persists it. This is
// the only place in the pipeline that introduces DONE. recordOrphan is
// false on the compensation path, where a ledger record already exists.
func (c *UploadCoordinator) commit(ctx context.Context, ru *run.Run, storageURL string, recordOrphan bool) (string, error) {
	now := c.clock.Now()
	prior := *ru

	ru.ResultsUploaded = true
	ru.ResultsURL = storageURL
	ru.ResultsUploadedAt = &now
	ru.Status = run.StatusDone
	ru.PodPhase = run.PhaseSucceeded

	if _, err := c.runs.Save(ctx, ru); err != nil {
		// Storage now holds an artifact the metadata does not know about.
		// Restore the pre-upload state so the caller never observes a run
		// claiming DONE, record the orphan, and surface the distinct error.
		*ru = prior

		orphanErr := &OrphanedArtifactError{
			StorageURL: storageURL,
			JobID:      ru.JobID,
			RunID:      ru.ID,
			Err:        err,
		}

		c.logger.Error("metadata commit failed after upload",
			zap.Int64("run_id", ru.ID),
			zap.String("orphaned_url", storageURL),
			zap.Error(err))

		if recordOrphan && c.orphans != nil {
			if recErr := c.orphans.Record(orphanledger.Record{
				StorageURL: storageURL,
				JobID:      ru.JobID,
				RunID:      ru.ID,
				Reason:     err.Error(),
				RecordedAt: now,
			}); recErr != nil {
				return "", errors.Join(orphanErr, fmt.Errorf("recording orphan: %w", recErr))
			}
		}
		return "", orphanErr
	}

	c.logger.Info("run results committed",
		zap.Int64("run_id", ru.ID),
		zap.String("results_url", storageURL),
		zap.Time("uploaded_at", now))
	return storageURL, nil
}

// RetryOrphanCommit re-runs only the metadata commit for an orphaned
// artifact. The artifact is never re-uploaded: the storage URL comes from
// the ledger record, whose key was deterministic to begin with. Safe to
// call repeatedly; a run whose results are already recorded is a no-op.
func (c *UploadCoordinator) RetryOrphanCommit(ctx context.Context, rec orphanledger.Record) error {
	ru, err := c.runs.FindByID(ctx, rec.RunID)
	if err != nil {
		return fmt.Errorf("run %d: %w", rec.RunID, err)
	}
	if ru.ResultsUploaded {
		return nil
	}

	if _, err := c.commit(ctx, ru, rec.StorageURL, false); err != nil {
		return err
	}
	return nil
}
