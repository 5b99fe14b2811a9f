package cmd

import (
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/results"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Access uploaded run results",
}

var resultsURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Mint a presigned download URL for a run's results",
	RunE:  runResultsURL,
}

var (
	resultsURLRunID   int64
	resultsURLExpires time.Duration
)

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsURLCmd)

	resultsURLCmd.Flags().Int64Var(&resultsURLRunID, "run-id", 0, "Run ID (required)")
	resultsURLCmd.Flags().DurationVar(&resultsURLExpires, "expires", 0, "URL validity window (default from config)")
	_ = resultsURLCmd.MarkFlagRequired("run-id")
}

func runResultsURL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ru, err := buildRunRepository().FindByID(ctx, resultsURLRunID)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Run not found", err)
	}
	if !ru.ResultsUploaded || ru.ResultsURL == "" {
		return exitError(foundry.ExitFileNotFound, "Run has no uploaded results",
			fmt.Errorf("run %d: results not uploaded", ru.ID))
	}

	store, err := buildResultsStore(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid storage configuration", err)
	}

	expiry := resultsURLExpires
	if expiry == 0 {
		expiry = cfg.Storage.DownloadExpiry
	}

	loc, err := store.PresignDownload(ctx, ru.ResultsURL, expiry)
	if err != nil {
		if results.IsRetryable(err) {
			return exitError(foundry.ExitExternalServiceUnavailable, "Storage unavailable, retry later", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to presign download", err)
	}

	fmt.Println(loc.URL)
	return nil
}
