package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/orphanledger"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Inspect and recover orphaned results artifacts",
	Long: `An orphaned artifact exists in storage but was never recorded on its
run (the upload succeeded, the metadata commit failed). The ledger keeps
one record per orphan until an operator resolves it.`,
}

var orphansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unresolved orphan records",
	RunE:  runOrphansList,
}

var orphansRetryCmd = &cobra.Command{
	Use:   "retry [record_id]",
	Short: "Re-run the metadata commit for orphaned artifacts",
	Long: `Retry re-attempts only the metadata commit; the artifact is never
re-uploaded. With no record ID every ledger entry is retried. Records
whose commit succeeds (or whose run already has results recorded) are
resolved and removed from the ledger.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOrphansRetry,
}

func init() {
	rootCmd.AddCommand(orphansCmd)
	orphansCmd.AddCommand(orphansListCmd)
	orphansCmd.AddCommand(orphansRetryCmd)
}

func runOrphansList(_ *cobra.Command, _ []string) error {
	recs, err := buildLedger().List()
	if err != nil {
		return exitError(foundry.ExitFileReadError, "Failed to read orphan ledger", err)
	}
	if len(recs) == 0 {
		fmt.Println("No orphaned artifacts.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRUN\tRECORDED\tURL")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			rec.ID, rec.RunID, rec.RecordedAt.Format(time.RFC3339), rec.StorageURL)
	}
	return w.Flush()
}

func runOrphansRetry(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ledger := buildLedger()

	var recs []orphanledger.Record
	if len(args) == 1 {
		rec, err := ledger.Get(args[0])
		if err != nil {
			return exitError(foundry.ExitFileNotFound, "Orphan record not found", err)
		}
		recs = []orphanledger.Record{*rec}
	} else {
		var err error
		recs, err = ledger.List()
		if err != nil {
			return exitError(foundry.ExitFileReadError, "Failed to read orphan ledger", err)
		}
	}
	if len(recs) == 0 {
		fmt.Println("No orphaned artifacts.")
		return nil
	}

	coord, err := buildCoordinator(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid storage configuration", err)
	}

	var failed int
	for _, rec := range recs {
		if err := coord.RetryOrphanCommit(ctx, rec); err != nil {
			failed++
			fmt.Printf("record %s (run %d): %v\n", rec.ID, rec.RunID, err)
			continue
		}
		if err := ledger.Resolve(rec.ID); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to resolve orphan record", err)
		}
		fmt.Printf("record %s (run %d): resolved\n", rec.ID, rec.RunID)
	}

	if failed > 0 {
		return exitError(foundry.ExitFileWriteError, "Some orphan records could not be resolved",
			fmt.Errorf("%d of %d records failed", failed, len(recs)))
	}
	return nil
}
