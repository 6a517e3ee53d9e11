// Package memory provides in-memory implementations of the storage
// ports, used in tests and single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
)

// Ensure IngestJobStore implements the interface.
var _ driven.IngestJobStore = (*IngestJobStore)(nil)

// IngestJobStore is an in-memory implementation of driven.IngestJobStore.
type IngestJobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.IngestJob
}

// NewIngestJobStore creates a new in-memory job store.
func NewIngestJobStore() *IngestJobStore {
	return &IngestJobStore{
		jobs: make(map[string]domain.IngestJob),
	}
}

// Save stores or updates a job by ID.
func (s *IngestJobStore) Save(_ context.Context, job domain.IngestJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// Get retrieves a job by ID.
func (s *IngestJobStore) Get(_ context.Context, id string) (*domain.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// List returns all known jobs, most recently started first.
func (s *IngestJobStore) List(_ context.Context) ([]domain.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]domain.IngestJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs, nil
}
