package job

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and local use.
type MemoryRepository struct {
	mu     sync.Mutex
	jobs   map[int64]Job
	nextID int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{jobs: make(map[int64]Job), nextID: 1}
}

func (m *MemoryRepository) FindByID(_ context.Context, id int64) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	out := j
	return &out, nil
}

func (m *MemoryRepository) Save(_ context.Context, j *Job) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !j.Persisted() {
		j.ID = m.nextID
		m.nextID++
	} else if j.ID >= m.nextID {
		m.nextID = j.ID + 1
	}
	m.jobs[j.ID] = *j

	out := *j
	return &out, nil
}
