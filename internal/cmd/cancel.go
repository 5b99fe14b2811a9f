package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/batch"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a run's batch job",
	Long: `Cancel terminates the batch job addressed by the run's natural key. A
job that already finished or was never found on the batch service is
reported as not found; nothing is mutated locally in that case.`,
	RunE: runCancel,
}

var (
	cancelRunID  int64
	cancelReason string
)

func init() {
	rootCmd.AddCommand(cancelCmd)
	cancelCmd.Flags().Int64Var(&cancelRunID, "run-id", 0, "Run ID (required)")
	cancelCmd.Flags().StringVar(&cancelReason, "reason", batch.DefaultCancelReason, "Termination reason recorded on the batch job")
	_ = cancelCmd.MarkFlagRequired("run-id")
}

func runCancel(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ru, err := buildRunRepository().FindByID(ctx, cancelRunID)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Run not found", err)
	}

	gw, err := buildGateway(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid batch configuration", err)
	}

	if err := gw.Cancel(ctx, ru, cancelReason); err != nil {
		if batch.IsJobNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "Batch job not found", err)
		}
		if batch.IsRetryable(err) {
			return exitError(foundry.ExitExternalServiceUnavailable, "Batch service unavailable, retry later", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to cancel run", err)
	}

	key, _ := ru.NaturalKey()
	fmt.Printf("Cancellation requested for %s\n", key)
	return nil
}
