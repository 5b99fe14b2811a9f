package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/reconcile"
	"github.com/jzallen/fred-simulations-sub002/pkg/results"
)

var uploadResultsCmd = &cobra.Command{
	Use:   "upload-results",
	Short: "Package and upload a run's results, then mark the run DONE",
	Long: `upload-results zips the FRED results directory, uploads the archive to
its deterministic storage key, and commits results_uploaded and status DONE
on the run record. Safe to re-run: a run whose results are already recorded
returns the existing URL without touching storage.

If the upload succeeds but the metadata commit fails, the artifact location
is written to the orphan ledger; recover with "fredsim orphans retry".`,
	RunE: runUploadResults,
}

var (
	uploadJobID      int64
	uploadRunID      int64
	uploadResultsDir string
)

func init() {
	rootCmd.AddCommand(uploadResultsCmd)
	uploadResultsCmd.Flags().Int64Var(&uploadJobID, "job-id", 0, "Owning job ID (required)")
	uploadResultsCmd.Flags().Int64Var(&uploadRunID, "run-id", 0, "Run ID (required)")
	uploadResultsCmd.Flags().StringVar(&uploadResultsDir, "results-dir", "", "Local FRED results directory (required)")
	_ = uploadResultsCmd.MarkFlagRequired("job-id")
	_ = uploadResultsCmd.MarkFlagRequired("run-id")
	_ = uploadResultsCmd.MarkFlagRequired("results-dir")
}

func runUploadResults(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	coord, err := buildCoordinator(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid storage configuration", err)
	}

	url, err := coord.UploadResults(ctx, uploadJobID, uploadRunID, uploadResultsDir)
	switch {
	case reconcile.IsOrphanedArtifact(err):
		fmt.Printf("Upload succeeded but the run record could not be updated.\n")
		fmt.Printf("The artifact location was saved to the orphan ledger; run\n")
		fmt.Printf("\"fredsim orphans retry\" once the store is healthy.\n")
		return exitError(foundry.ExitFileWriteError, "Metadata commit failed after upload", err)
	case results.IsInvalidResultsDir(err), results.IsPackaging(err):
		return exitError(foundry.ExitFileReadError, "Invalid results directory", err)
	case results.IsRetryable(err):
		return exitError(foundry.ExitExternalServiceUnavailable, "Storage unavailable, retry later", err)
	case err != nil:
		return exitError(foundry.ExitExternalServiceUnavailable, "Upload failed", err)
	}

	fmt.Printf("Results uploaded: %s\n", url)
	return nil
}
