package runstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

// RunStore is the file-backed run.Repository.
type RunStore struct {
	mu  sync.Mutex
	dir string
}

var _ run.Repository = (*RunStore)(nil)

// NewRunStore creates a run store rooted at <root>/runs.
func NewRunStore(root string) *RunStore {
	return &RunStore{dir: filepath.Join(root, "runs")}
}

func (s *RunStore) FindByID(_ context.Context, id int64) (*run.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *RunStore) FindByJobID(_ context.Context, jobID int64) ([]*run.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := listIDs(s.dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*run.Run
	for _, id := range ids {
		r, err := s.load(id)
		if err != nil {
			return nil, err
		}
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RunStore) Save(_ context.Context, r *run.Run) (*run.Run, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !r.Status.IsCanonical() {
		return nil, fmt.Errorf("run %d: refusing to write non-canonical status %q", r.ID, r.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !r.Persisted() {
		id, err := nextID(s.dir)
		if err != nil {
			return nil, err
		}
		r.ID = id
	}

	if err := writeRecord(s.dir, r.ID, r); err != nil {
		return nil, err
	}
	out := *r
	return &out, nil
}

func (s *RunStore) load(id int64) (*run.Run, error) {
	var r run.Run
	if err := readRecord(s.dir, id, &r); err != nil {
		if os.IsNotExist(err) {
			return nil, run.ErrRunNotFound
		}
		return nil, err
	}
	// Historical records may carry legacy status values; validate both
	// tables and keep the stored value as-is.
	if _, err := run.ParseRunStatus(string(r.Status)); err != nil {
		return nil, fmt.Errorf("run %d: %w", id, err)
	}
	return &r, nil
}
