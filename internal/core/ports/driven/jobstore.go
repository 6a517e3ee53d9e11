package driven

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// IngestJobStore persists background ingestion job state for polling.
type IngestJobStore interface {
	// Save stores or updates a job by ID.
	Save(ctx context.Context, job domain.IngestJob) error

	// Get retrieves a job by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.IngestJob, error)

	// List returns all known jobs, most recently started first.
	List(ctx context.Context) ([]domain.IngestJob, error)
}
