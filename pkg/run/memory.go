package run

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and local use.
//
// Safe for concurrent use. Stored runs are copied on the way in and out so
// callers cannot mutate repository state through aliased pointers.
type MemoryRepository struct {
	mu     sync.Mutex
	runs   map[int64]Run
	nextID int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[int64]Run), nextID: 1}
}

func (m *MemoryRepository) FindByID(_ context.Context, id int64) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := r
	return &out, nil
}

func (m *MemoryRepository) FindByJobID(_ context.Context, jobID int64) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Run
	for _, r := range m.runs {
		if r.JobID == jobID {
			cp := r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) Save(_ context.Context, r *Run) (*Run, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !r.Persisted() {
		r.ID = m.nextID
		m.nextID++
	} else if r.ID >= m.nextID {
		m.nextID = r.ID + 1
	}
	m.runs[r.ID] = *r

	out := *r
	return &out, nil
}
