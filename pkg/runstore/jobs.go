package runstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/jzallen/fred-simulations-sub002/pkg/job"
)

// JobStore is the file-backed job.Repository.
type JobStore struct {
	mu  sync.Mutex
	dir string
}

var _ job.Repository = (*JobStore)(nil)

// NewJobStore creates a job store rooted at <root>/jobs.
func NewJobStore(root string) *JobStore {
	return &JobStore{dir: filepath.Join(root, "jobs")}
}

func (s *JobStore) FindByID(_ context.Context, id int64) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var j job.Job
	if err := readRecord(s.dir, id, &j); err != nil {
		if os.IsNotExist(err) {
			return nil, job.ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (s *JobStore) Save(_ context.Context, j *job.Job) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !j.Persisted() {
		id, err := nextID(s.dir)
		if err != nil {
			return nil, err
		}
		j.ID = id
	}

	if err := writeRecord(s.dir, j.ID, j); err != nil {
		return nil, err
	}
	out := *j
	return &out, nil
}
