package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/jzallen/fred-simulations-sub002/pkg/job"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage simulation jobs",
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job record",
	RunE:  runJobsCreate,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job_id>",
	Short: "Show a job record",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var (
	jobsCreateUserID int64
	jobsCreateTags   []string
)

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsCreateCmd)
	jobsCmd.AddCommand(jobsShowCmd)

	jobsCreateCmd.Flags().Int64Var(&jobsCreateUserID, "user-id", 0, "Owning user ID (required)")
	jobsCreateCmd.Flags().StringSliceVar(&jobsCreateTags, "tag", nil, "Job tag (repeatable)")
	jobsShowCmd.Flags().Bool("json", false, "Output as JSON")

	_ = jobsCreateCmd.MarkFlagRequired("user-id")
}

func runJobsCreate(cmd *cobra.Command, _ []string) error {
	now := time.Now().UTC()
	j := &job.Job{UserID: jobsCreateUserID, Tags: jobsCreateTags, CreatedAt: now, UpdatedAt: now}

	saved, err := buildJobRepository().Save(cmd.Context(), j)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to save job", err)
	}

	fmt.Printf("Created job %d\n", saved.ID)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid job ID", err)
	}

	j, err := buildJobRepository().FindByID(cmd.Context(), id)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Job not found", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		b, err := json.MarshalIndent(j, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	fmt.Printf("Job:      %d\n", j.ID)
	fmt.Printf("User:     %d\n", j.UserID)
	if len(j.Tags) > 0 {
		fmt.Printf("Tags:     %v\n", j.Tags)
	}
	fmt.Printf("Created:  %s\n", j.CreatedAt.Format(time.RFC3339))
	return nil
}
