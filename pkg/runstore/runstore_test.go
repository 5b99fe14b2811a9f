package runstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzallen/fred-simulations-sub002/pkg/job"
	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

func TestRunStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore(t.TempDir())
	now := time.Date(2025, 10, 23, 21, 15, 0, 0, time.UTC)

	saved, err := store.Save(ctx, run.New(12, 7, now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)

	got, err := store.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.JobID, got.JobID)
	assert.Equal(t, run.StatusQueued, got.Status)
	assert.Equal(t, run.PhasePending, got.PodPhase)
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestRunStore_AssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewRunStore(root)
	now := time.Now().UTC()

	first, err := store.Save(ctx, run.New(1, 1, now))
	require.NoError(t, err)
	second, err := store.Save(ctx, run.New(1, 1, now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	// A fresh store over the same directory continues the sequence.
	third, err := NewRunStore(root).Save(ctx, run.New(1, 1, now))
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ID)
}

func TestRunStore_FindByJobID(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore(t.TempDir())
	now := time.Now().UTC()

	_, err := store.Save(ctx, run.New(1, 1, now))
	require.NoError(t, err)
	_, err = store.Save(ctx, run.New(2, 1, now))
	require.NoError(t, err)
	_, err = store.Save(ctx, run.New(1, 1, now))
	require.NoError(t, err)

	runs, err := store.FindByJobID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].ID)
	assert.Equal(t, int64(3), runs[1].ID)
}

func TestRunStore_NotFound(t *testing.T) {
	store := NewRunStore(t.TempDir())

	_, err := store.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, run.ErrRunNotFound)
}

func TestRunStore_RefusesNonCanonicalWrite(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore(t.TempDir())

	r := run.New(1, 1, time.Now().UTC())
	r.Status = run.RunStatus("Submitted")

	_, err := store.Save(ctx, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-canonical status")
}

func TestRunStore_RefusesDoneWithoutResults(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore(t.TempDir())

	r := run.New(1, 1, time.Now().UTC())
	r.Status = run.StatusDone

	_, err := store.Save(ctx, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results_uploaded=false")
}

func TestRunStore_DecodesLegacyStatus(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewRunStore(root)

	// Historical records were written with legacy status values; the store
	// reads them as-is.
	legacy := map[string]any{
		"id":         7,
		"job_id":     3,
		"user_id":    1,
		"status":     "Cancelled",
		"pod_phase":  "Failed",
		"created_at": "2024-01-02T03:04:05Z",
		"updated_at": "2024-01-02T03:04:05Z",
	}
	b, err := json.Marshal(legacy)
	require.NoError(t, err)
	dir := filepath.Join(root, "runs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.json"), b, 0o644))

	got, err := store.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, run.RunStatus("Cancelled"), got.Status)
	assert.Equal(t, run.StatusError, got.Status.Canonical())
}

func TestRunStore_RejectsUnknownStoredStatus(t *testing.T) {
	root := t.TempDir()
	store := NewRunStore(root)

	dir := filepath.Join(root, "runs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "9.json"),
		[]byte(`{"id":9,"job_id":1,"status":"Bogus"}`), 0o644))

	_, err := store.FindByID(context.Background(), 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown run status")
}

func TestJobStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(t.TempDir())
	now := time.Date(2025, 10, 23, 21, 15, 0, 0, time.UTC)

	saved, err := store.Save(ctx, &job.Job{UserID: 7, Tags: []string{"measles"}, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)

	got, err := store.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, []string{"measles"}, got.Tags)
	assert.True(t, now.Equal(got.CreatedAt))

	_, err = store.FindByID(ctx, 99)
	assert.ErrorIs(t, err, job.ErrJobNotFound)
}

func TestRunStore_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewRunStore(root)

	_, err := store.Save(ctx, run.New(1, 1, time.Now().UTC()))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "runs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.json", entries[0].Name())
}
