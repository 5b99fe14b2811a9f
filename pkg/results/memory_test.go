package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UploadAndPresign(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("fred-results")
	prefix := ArtifactPrefix{JobID: 12, Timestamp: time.Date(2025, 10, 23, 21, 15, 0, 0, time.UTC)}

	loc, err := store.UploadRunResults(ctx, prefix, 4, []byte("zipbytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://fred-results.s3.amazonaws.com/jobs/12/2025/10/23/211500/run_4_results.zip", loc.URL)
	assert.Equal(t, 1, store.PutCount())

	b, ok := store.Object("jobs/12/2025/10/23/211500/run_4_results.zip")
	require.True(t, ok)
	assert.Equal(t, []byte("zipbytes"), b)

	signed, err := store.PresignDownload(ctx, loc.URL, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, signed.URL, "X-Amz-Expires=3600")
}

func TestMemoryStore_PresignDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("fred-results")
	prefix := ArtifactPrefix{JobID: 1, Timestamp: time.Now().UTC()}

	loc, err := store.UploadRunResults(ctx, prefix, 1, []byte("z"))
	require.NoError(t, err)

	signed, err := store.PresignDownload(ctx, loc.URL, 0)
	require.NoError(t, err)
	assert.Contains(t, signed.URL, "X-Amz-Expires=86400")
}

func TestMemoryStore_PresignMissingObject(t *testing.T) {
	store := NewMemoryStore("fred-results")

	_, err := store.PresignDownload(context.Background(), "https://fred-results.s3.amazonaws.com/nope.zip", time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsRetryable(err))
}

func TestMemoryStore_FailUploads(t *testing.T) {
	store := NewMemoryStore("fred-results")
	store.FailUploads = true
	prefix := ArtifactPrefix{JobID: 1, Timestamp: time.Now().UTC()}

	_, err := store.UploadRunResults(context.Background(), prefix, 1, []byte("z"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 0, store.PutCount())
}
