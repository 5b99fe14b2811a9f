package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_SaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()

	first, err := repo.Save(ctx, New(1, 1, now))
	require.NoError(t, err)
	second, err := repo.Save(ctx, New(1, 1, now))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestMemoryRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	saved, err := repo.Save(ctx, New(5, 1, time.Now().UTC()))
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, int64(5), got.JobID)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryRepository_FindByJobID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now().UTC()

	_, err := repo.Save(ctx, New(1, 1, now))
	require.NoError(t, err)
	_, err = repo.Save(ctx, New(2, 1, now))
	require.NoError(t, err)
	_, err = repo.Save(ctx, New(1, 1, now))
	require.NoError(t, err)

	runs, err := repo.FindByJobID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Less(t, runs[0].ID, runs[1].ID)

	empty, err := repo.FindByJobID(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepository_CopiesOnReturn(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	saved, err := repo.Save(ctx, New(1, 1, time.Now().UTC()))
	require.NoError(t, err)

	saved.Status = StatusError

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)
}

func TestMemoryRepository_SaveRejectsInvalidRun(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	r := New(1, 1, time.Now().UTC())
	r.Status = StatusDone

	_, err := repo.Save(ctx, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results_uploaded=false")
}
