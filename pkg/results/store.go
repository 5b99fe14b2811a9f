// Package results packages and stores simulation results artifacts.
//
// Artifacts live in durable object storage under deterministic keys derived
// from the owning job's creation time and the run ID, so a key can always be
// reconstructed without a database round-trip.
package results

import (
	"context"
	"time"
)

// DefaultDownloadExpiry is the default validity window for presigned
// download URLs. Downstream clients assume 24 hours.
const DefaultDownloadExpiry = 24 * time.Hour

// UploadLocation identifies a stored artifact.
type UploadLocation struct {
	// URL is the artifact URL. For uploads this is the permanent object
	// URL; for presigned downloads it is time-limited.
	URL string
}

// Store uploads packaged results and mints retrieval URLs.
type Store interface {
	// UploadRunResults uploads a packaged results archive for a run under
	// the deterministic key derived from prefix and runID.
	UploadRunResults(ctx context.Context, prefix ArtifactPrefix, runID int64, archive []byte) (UploadLocation, error)

	// PresignDownload generates a time-limited retrieval URL for a
	// previously uploaded artifact. Zero expiry uses DefaultDownloadExpiry.
	PresignDownload(ctx context.Context, resultsURL string, expiry time.Duration) (UploadLocation, error)
}
