package domain

import "time"

// JobState tracks the lifecycle of a background ingestion run.
type JobState string

// Ingestion job states.
const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// SourceReport accumulates per-seed outcome counts. Crawl-level errors
// are collected here alongside partial success counts rather than
// aborting the whole job.
type SourceReport struct {
	Seed      string
	Documents int
	Chunks    int
	Errors    int
}

// IngestJob records the outcome of one background ingestion run for
// later polling.
type IngestJob struct {
	ID         string
	State      JobState
	Sources    []SourceReport
	Documents  int
	Chunks     int
	Errors     int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// CrawlReport summarises one crawl run.
type CrawlReport struct {
	// Documents is the number of pages kept (above the length threshold).
	Documents int

	// URLsVisited is the number of distinct normalised URLs fetched.
	URLsVisited int

	// AvgContentLength is the mean extracted text length of kept pages.
	AvgContentLength float64

	// BySourceType counts kept pages per inferred source type.
	BySourceType map[SourceType]int

	// Errors lists skipped-page failures. The crawl never aborts on one.
	Errors []string
}
