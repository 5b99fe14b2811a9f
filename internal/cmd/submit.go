package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/batch"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a run to the batch compute service",
	Long: `Submit dispatches a run to AWS Batch under its natural key
(job-{job_id}-run-{run_id}). The batch job ID returned by the service is
deliberately not recorded; all later lookups go through the natural key.`,
	RunE: runSubmit,
}

var submitRunID int64

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Int64Var(&submitRunID, "run-id", 0, "Run ID (required)")
	_ = submitCmd.MarkFlagRequired("run-id")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ru, err := buildRunRepository().FindByID(ctx, submitRunID)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Run not found", err)
	}

	gw, err := buildGateway(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid batch configuration", err)
	}

	if err := gw.Submit(ctx, ru); err != nil {
		if batch.IsRetryable(err) {
			return exitError(foundry.ExitExternalServiceUnavailable, "Batch service unavailable, retry later", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to submit run", err)
	}

	key, _ := ru.NaturalKey()
	fmt.Printf("Submitted run %d as %s\n", ru.ID, key)
	return nil
}
