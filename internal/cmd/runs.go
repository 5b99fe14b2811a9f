package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage simulation runs",
}

var runsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a run record for a job",
	RunE:  runRunsCreate,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs for a job",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Show a run record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var (
	runsCreateJobID  int64
	runsCreateUserID int64
	runsListJobID    int64
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsCreateCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCreateCmd.Flags().Int64Var(&runsCreateJobID, "job-id", 0, "Owning job ID (required)")
	runsCreateCmd.Flags().Int64Var(&runsCreateUserID, "user-id", 0, "Owning user ID (required)")
	runsListCmd.Flags().Int64Var(&runsListJobID, "job-id", 0, "Job ID (required)")
	runsListCmd.Flags().Bool("json", false, "Output as JSON")
	runsShowCmd.Flags().Bool("json", false, "Output as JSON")

	_ = runsCreateCmd.MarkFlagRequired("job-id")
	_ = runsCreateCmd.MarkFlagRequired("user-id")
	_ = runsListCmd.MarkFlagRequired("job-id")
}

func runRunsCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if _, err := buildJobRepository().FindByID(ctx, runsCreateJobID); err != nil {
		return exitError(foundry.ExitFileNotFound, "Job not found", err)
	}

	r := run.New(runsCreateJobID, runsCreateUserID, time.Now().UTC())
	saved, err := buildRunRepository().Save(ctx, r)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to save run", err)
	}

	key, _ := saved.NaturalKey()
	fmt.Printf("Created run %d (natural key %s)\n", saved.ID, key)
	return nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	runs, err := buildRunRepository().FindByJobID(cmd.Context(), runsListJobID)
	if err != nil {
		return exitError(foundry.ExitFileReadError, "Failed to list runs", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		b, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTATUS\tPHASE\tRESULTS\tUPDATED")
	for _, r := range runs {
		uploaded := "-"
		if r.ResultsUploaded {
			uploaded = "uploaded"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status.Canonical(), r.PodPhase, uploaded, r.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid run ID", err)
	}

	r, err := buildRunRepository().FindByID(cmd.Context(), id)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Run not found", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	key, _ := r.NaturalKey()
	fmt.Printf("Run:        %d\n", r.ID)
	fmt.Printf("Job:        %d\n", r.JobID)
	fmt.Printf("Key:        %s\n", key)
	fmt.Printf("Status:     %s\n", r.Status.Canonical())
	fmt.Printf("Phase:      %s\n", r.PodPhase)
	fmt.Printf("Uploaded:   %t\n", r.ResultsUploaded)
	if r.ResultsURL != "" {
		fmt.Printf("Results:    %s\n", r.ResultsURL)
	}
	fmt.Printf("Updated:    %s\n", r.UpdatedAt.Format(time.RFC3339))
	return nil
}
