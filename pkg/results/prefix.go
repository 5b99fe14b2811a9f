package results

import (
	"fmt"
	"time"

	"github.com/jzallen/fred-simulations-sub002/pkg/job"
)

// ArtifactPrefix is the storage prefix shared by every artifact of a job.
//
// The prefix is anchored on the job's creation timestamp, not upload time,
// so artifacts uploaded seconds apart never fragment across directories and
// any key is reconstructible from the job record alone.
//
// Layout:
//
//	jobs/{job_id}/{yyyy}/{mm}/{dd}/{HHMMSS}/
//	  ├── run_4_config.json
//	  └── run_4_results.zip
type ArtifactPrefix struct {
	JobID     int64
	Timestamp time.Time
}

// PrefixForJob derives the artifact prefix from a job's creation time.
func PrefixForJob(j *job.Job) ArtifactPrefix {
	return ArtifactPrefix{JobID: j.ID, Timestamp: j.CreatedAt}
}

// BasePrefix returns the prefix without a trailing slash,
// e.g. "jobs/12/2025/10/23/211500".
func (p ArtifactPrefix) BasePrefix() string {
	return fmt.Sprintf("jobs/%d/%s", p.JobID, p.Timestamp.UTC().Format("2006/01/02/150405"))
}

// RunResultsKey returns the object key for a run's results archive.
func (p ArtifactPrefix) RunResultsKey(runID int64) string {
	return fmt.Sprintf("%s/run_%d_results.zip", p.BasePrefix(), runID)
}

// RunConfigKey returns the object key for a run's configuration document.
func (p ArtifactPrefix) RunConfigKey(runID int64) string {
	return fmt.Sprintf("%s/run_%d_config.json", p.BasePrefix(), runID)
}
