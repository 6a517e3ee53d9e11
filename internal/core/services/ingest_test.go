package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrag/campusrag/internal/adapters/driven/embedding/tfidf"
	storagememory "github.com/campusrag/campusrag/internal/adapters/driven/storage/memory"
	vectormemory "github.com/campusrag/campusrag/internal/adapters/driven/vectorstore/memory"
	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/segmenter"
)

// --- Mock implementations for ingest testing ---

// ingestMockCrawler implements driven.Crawler for testing.
type ingestMockCrawler struct {
	docs []domain.CrawledDocument
	err  error
	// delay lets tests hold the pipeline open to observe running state.
	delay time.Duration
}

func (m *ingestMockCrawler) Crawl(ctx context.Context, _ domain.CrawlTarget) ([]domain.CrawledDocument, *domain.CrawlReport, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, nil, m.err
	}
	report := &domain.CrawlReport{
		Documents:   len(m.docs),
		URLsVisited: len(m.docs),
	}
	return m.docs, report, nil
}

func testTarget() domain.CrawlTarget {
	return domain.CrawlTarget{
		Seeds:    []string{"https://www.unizg.hr"},
		MaxDepth: 1,
		MaxPages: 10,
	}
}

func testDocuments() []domain.CrawledDocument {
	long := "Exam registration opens two weeks before each examination period. " +
		"Students register through the student information system. Late registration " +
		"requires approval from the faculty office and an administrative fee. " +
		"The winter examination period runs from late January until mid February. " +
		"The summer examination period runs from June until mid July every year. " +
		"Autumn resits are scheduled during the first two weeks of September."
	return []domain.CrawledDocument{
		{
			URL:        "https://www.unizg.hr/exams",
			Title:      "Examination Periods",
			Content:    long,
			SourceType: domain.SourceTypeFaculty,
			CrawledAt:  time.Now(),
		},
		{
			URL:        "https://www.unizg.hr/library",
			Title:      "Library Hours",
			Content:    long + " The library reading rooms stay open until ten during exams.",
			SourceType: domain.SourceTypeLibrary,
			CrawledAt:  time.Now(),
		},
	}
}

// waitForJob polls until the job leaves the running states or the
// timeout elapses.
func waitForJob(t *testing.T, o *IngestOrchestrator, jobID string) *domain.IngestJob {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := o.Status(context.Background(), jobID)
		require.NoError(t, err)
		if job.State == domain.JobStateCompleted || job.State == domain.JobStateFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", jobID)
	return nil
}

func newTestOrchestrator(crawler *ingestMockCrawler) (*IngestOrchestrator, *vectormemory.Store) {
	store := vectormemory.New("campusrag_test")
	o := NewIngestOrchestrator(
		crawler,
		segmenter.New(segmenter.WithChunkSize(200), segmenter.WithMinChunkSize(50)),
		tfidf.New(),
		store,
		storagememory.NewIngestJobStore(),
	)
	return o, store
}

func TestIngest_FullPipeline(t *testing.T) {
	crawler := &ingestMockCrawler{docs: testDocuments()}
	o, store := newTestOrchestrator(crawler)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job := waitForJob(t, o, jobID)
	assert.Equal(t, domain.JobStateCompleted, job.State)
	assert.Equal(t, 2, job.Documents)
	assert.Positive(t, job.Chunks)
	assert.Zero(t, job.Errors)
	assert.False(t, job.FinishedAt.IsZero())

	// Every chunk ended up in the store with an embedding attached.
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.Chunks, count)
}

func TestIngest_PerSourceReports(t *testing.T) {
	crawler := &ingestMockCrawler{docs: testDocuments()}
	o, _ := newTestOrchestrator(crawler)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)

	job := waitForJob(t, o, jobID)
	require.Len(t, job.Sources, 1)
	assert.Equal(t, "https://www.unizg.hr", job.Sources[0].Seed)
	assert.Equal(t, 2, job.Sources[0].Documents)
	assert.Equal(t, job.Chunks, job.Sources[0].Chunks)
}

func TestIngest_NoTargets(t *testing.T) {
	o, _ := newTestOrchestrator(&ingestMockCrawler{})

	_, err := o.Start(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_InvalidTarget(t *testing.T) {
	o, _ := newTestOrchestrator(&ingestMockCrawler{})

	_, err := o.Start(context.Background(), []domain.CrawlTarget{{MaxDepth: 1, MaxPages: 10}})
	assert.Error(t, err)
}

func TestIngest_RejectsConcurrentRuns(t *testing.T) {
	crawler := &ingestMockCrawler{docs: testDocuments(), delay: 200 * time.Millisecond}
	o, _ := newTestOrchestrator(crawler)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)

	_, err = o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)

	// After the first run finishes a new one is accepted again.
	waitForJob(t, o, jobID)
	_, err = o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	assert.NoError(t, err)
}

func TestIngest_CrawlFailureFailsJob(t *testing.T) {
	crawler := &ingestMockCrawler{err: errors.New("connection refused")}
	o, _ := newTestOrchestrator(crawler)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)

	job := waitForJob(t, o, jobID)
	assert.Equal(t, domain.JobStateFailed, job.State)
	assert.Contains(t, job.Error, "connection refused")
}

func TestIngest_EmptyCrawlFailsJob(t *testing.T) {
	crawler := &ingestMockCrawler{docs: nil}
	o, _ := newTestOrchestrator(crawler)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)

	job := waitForJob(t, o, jobID)
	assert.Equal(t, domain.JobStateFailed, job.State)
}

func TestIngest_RebuildReplacesOldIndex(t *testing.T) {
	crawler := &ingestMockCrawler{docs: testDocuments()}
	o, store := newTestOrchestrator(crawler)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)
	first := waitForJob(t, o, jobID)

	jobID, err = o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)
	second := waitForJob(t, o, jobID)

	// Same corpus crawled twice: counts match and the store holds only
	// the newest generation.
	assert.Equal(t, first.Chunks, second.Chunks)
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.Chunks, count)
}

func TestIngest_JobsListsMostRecentFirst(t *testing.T) {
	crawler := &ingestMockCrawler{docs: testDocuments()}
	o, _ := newTestOrchestrator(crawler)

	first, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)
	waitForJob(t, o, first)

	second, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)
	waitForJob(t, o, second)

	jobs, err := o.Jobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, first, jobs[1].ID)
}
