package cmd

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jzallen/fred-simulations-sub002/internal/observability"
	"github.com/jzallen/fred-simulations-sub002/pkg/batch"
	"github.com/jzallen/fred-simulations-sub002/pkg/reconcile"
	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile run status with the batch compute service",
	Long: `Reconcile fetches the current batch-job state for one run (--run-id) or
every run of a job (--job-id) and persists any status change.

A SUCCEEDED batch job whose results have not been uploaded yet is reported
as still RUNNING; only the results upload flips a run to DONE.

With --watch the pass repeats at the configured reconcile interval until
interrupted or, for a single run, until the run reaches a terminal status.`,
	RunE: runReconcile,
}

var (
	reconcileRunID int64
	reconcileJobID int64
	reconcileWatch bool
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().Int64Var(&reconcileRunID, "run-id", 0, "Run ID")
	reconcileCmd.Flags().Int64Var(&reconcileJobID, "job-id", 0, "Job ID (reconcile all of its runs)")
	reconcileCmd.Flags().BoolVar(&reconcileWatch, "watch", false, "Repeat at the configured interval")
	reconcileCmd.MarkFlagsOneRequired("run-id", "job-id")
	reconcileCmd.MarkFlagsMutuallyExclusive("run-id", "job-id")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	gw, err := buildGateway(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid batch configuration", err)
	}
	repo := buildRunRepository()
	rec := reconcile.NewReconciler(gw, repo, observability.CLILogger)

	limiter := rate.NewLimiter(rate.Every(cfg.Reconcile.Interval), 1)
	for {
		done, err := reconcilePass(cmd, rec, repo)
		if err != nil {
			return err
		}
		if !reconcileWatch || done {
			return nil
		}
		if err := limiter.Wait(ctx); err != nil {
			if errors.Is(err, ctx.Err()) {
				return exitError(foundry.ExitSignalInt, "Interrupted", err)
			}
			return err
		}
	}
}

// reconcilePass runs one pass over the selected runs. The bool result is
// true once every selected run is terminal, which ends a --watch loop.
func reconcilePass(cmd *cobra.Command, rec *reconcile.Reconciler, repo run.Repository) (bool, error) {
	ctx := cmd.Context()

	var runs []*run.Run
	if reconcileRunID != 0 {
		ru, err := repo.FindByID(ctx, reconcileRunID)
		if err != nil {
			return false, exitError(foundry.ExitFileNotFound, "Run not found", err)
		}
		runs = []*run.Run{ru}
	} else {
		var err error
		runs, err = repo.FindByJobID(ctx, reconcileJobID)
		if err != nil {
			return false, exitError(foundry.ExitFileReadError, "Failed to list runs", err)
		}
	}

	allTerminal := true
	for _, ru := range runs {
		changed, err := rec.Reconcile(ctx, ru)
		switch {
		case batch.IsJobNotFound(err):
			return false, exitError(foundry.ExitExternalServiceUnavailable, "Batch job not found", err)
		case batch.IsRetryable(err):
			if !reconcileWatch {
				return false, exitError(foundry.ExitExternalServiceUnavailable, "Batch service unavailable, retry later", err)
			}
			fmt.Printf("run %d: transient batch error, will retry: %v\n", ru.ID, err)
			allTerminal = false
			continue
		case err != nil:
			return false, exitError(foundry.ExitExternalServiceUnavailable, "Reconcile failed", err)
		}

		if changed {
			fmt.Printf("run %d: %s (%s)\n", ru.ID, ru.Status.Canonical(), ru.PodPhase)
		}
		if !terminal(ru.Status.Canonical()) {
			allTerminal = false
		}
	}
	return allTerminal, nil
}

func terminal(s run.RunStatus) bool {
	return s == run.StatusDone || s == run.StatusError
}
