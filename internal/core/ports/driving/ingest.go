package driving

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// IngestOrchestrator runs the crawl -> chunk -> embed -> store pipeline.
type IngestOrchestrator interface {
	// Start begins a background ingestion run and returns its job ID
	// immediately. Progress and outcome counts are recorded in the job
	// store for polling via Status.
	Start(ctx context.Context, targets []domain.CrawlTarget) (string, error)

	// Status returns the recorded state of a job.
	Status(ctx context.Context, jobID string) (*domain.IngestJob, error)

	// Jobs lists all known ingestion jobs, most recent first.
	Jobs(ctx context.Context) ([]domain.IngestJob, error)
}
