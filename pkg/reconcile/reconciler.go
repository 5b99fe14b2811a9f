// Package reconcile orchestrates run-status reconciliation and two-phase
// completion.
//
// The Reconciler maps external batch-job state into the local run record;
// the UploadCoordinator makes results durable and is the only component
// allowed to introduce DONE. Splitting the transition across the two
// components is what enforces the completion invariant: the reconciler can
// only ever observe DONE (via the withholding mapper) after the coordinator
// has committed the upload.
package reconcile

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jzallen/fred-simulations-sub002/pkg/batch"
	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

// Reconciler performs one reconciliation pass per call for a single run.
//
// The external scheduler guarantees at most one concurrent pass per run;
// within a pass every step is strictly sequential.
type Reconciler struct {
	gateway batch.Gateway
	runs    run.Repository
	logger  *zap.Logger
}

// NewReconciler wires a reconciler. A nil logger disables logging.
func NewReconciler(gateway batch.Gateway, runs run.Repository, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{gateway: gateway, runs: runs, logger: logger}
}

// Reconcile synchronizes one run with the batch service.
//
// Returns true if the run's (status, pod phase) changed and was persisted,
// false for a no-op pass. Errors from Describe (including not-found) are
// surfaced unchanged with no local mutation; retry and backoff policy
// belong to the scheduler.
//
// Reconcile never sets DONE on its own: a SUCCEEDED batch job maps to a
// withheld RUNNING until the upload coordinator has committed results.
func (r *Reconciler) Reconcile(ctx context.Context, ru *run.Run) (bool, error) {
	passID := uuid.NewString()

	detail, err := r.gateway.Describe(ctx, ru)
	if err != nil {
		return false, err
	}

	if ru.Status == detail.Status && ru.PodPhase == detail.PodPhase {
		return false, nil
	}

	r.logger.Info("run status change",
		zap.String("pass_id", passID),
		zap.Int64("run_id", ru.ID),
		zap.String("from_status", string(ru.Status)),
		zap.String("from_phase", string(ru.PodPhase)),
		zap.String("to_status", string(detail.Status)),
		zap.String("to_phase", string(detail.PodPhase)),
		zap.String("message", detail.Message))

	ru.Status = detail.Status
	ru.PodPhase = detail.PodPhase

	if _, err := r.runs.Save(ctx, ru); err != nil {
		return false, err
	}
	return true, nil
}
