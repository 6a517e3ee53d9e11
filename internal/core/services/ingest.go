package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
	"github.com/campusrag/campusrag/internal/core/ports/driving"
	"github.com/campusrag/campusrag/internal/logger"
	"github.com/campusrag/campusrag/internal/segmenter"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

// maxConcurrentCrawls bounds how many targets are crawled in parallel.
// Targets cover disjoint domains, so parallel runs never race on a host.
const maxConcurrentCrawls = 3

// IngestOrchestrator runs the crawl -> chunk -> embed -> store pipeline
// as a background job.
type IngestOrchestrator struct {
	crawler   driven.Crawler
	segmenter *segmenter.Segmenter
	embedder  driven.Embedder
	store     driven.VectorStore
	jobs      driven.IngestJobStore

	mu      sync.Mutex
	running bool
}

// NewIngestOrchestrator creates a new ingest orchestrator.
func NewIngestOrchestrator(
	crawler driven.Crawler,
	seg *segmenter.Segmenter,
	embedder driven.Embedder,
	store driven.VectorStore,
	jobs driven.IngestJobStore,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		crawler:   crawler,
		segmenter: seg,
		embedder:  embedder,
		store:     store,
		jobs:      jobs,
	}
}

// Start begins a background ingestion run and returns its job ID
// immediately. Only one run may be active at a time: the embedder is
// refitted on the full corpus and the collection rebuilt, so overlapping
// runs would corrupt the index.
func (o *IngestOrchestrator) Start(ctx context.Context, targets []domain.CrawlTarget) (string, error) {
	if len(targets) == 0 {
		return "", fmt.Errorf("%w: no crawl targets", domain.ErrInvalidInput)
	}
	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return "", fmt.Errorf("target %d: %w", i, err)
		}
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return "", domain.ErrIngestInProgress
	}
	o.running = true
	o.mu.Unlock()

	job := domain.IngestJob{
		ID:        uuid.NewString(),
		State:     domain.JobStatePending,
		StartedAt: time.Now(),
	}
	if err := o.jobs.Save(ctx, job); err != nil {
		o.setRunning(false)
		return "", fmt.Errorf("save job: %w", err)
	}

	logger.Info("Ingestion job %s accepted (%d targets)", job.ID, len(targets))

	// Detach from the caller's context: the job outlives the request
	// that started it.
	go o.run(context.WithoutCancel(ctx), job, targets)

	return job.ID, nil
}

// Status returns the recorded state of a job.
func (o *IngestOrchestrator) Status(ctx context.Context, jobID string) (*domain.IngestJob, error) {
	return o.jobs.Get(ctx, jobID)
}

// Jobs lists all known ingestion jobs, most recent first.
func (o *IngestOrchestrator) Jobs(ctx context.Context) ([]domain.IngestJob, error) {
	return o.jobs.List(ctx)
}

func (o *IngestOrchestrator) setRunning(v bool) {
	o.mu.Lock()
	o.running = v
	o.mu.Unlock()
}

// run executes the full pipeline and records the outcome in the job
// store. Per-page failures are counted, not fatal; only pipeline-level
// failures (embedding, storage) fail the job.
func (o *IngestOrchestrator) run(ctx context.Context, job domain.IngestJob, targets []domain.CrawlTarget) {
	defer o.setRunning(false)

	job.State = domain.JobStateRunning
	o.saveJob(ctx, job)

	logger.Section("Crawl")

	// 1. Crawl all targets, bounded parallelism.
	type crawlResult struct {
		target domain.CrawlTarget
		docs   []domain.CrawledDocument
		report *domain.CrawlReport
	}

	results := make([]crawlResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCrawls)

	for i, target := range targets {
		g.Go(func() error {
			docs, report, err := o.crawler.Crawl(gctx, target)
			if err != nil {
				return fmt.Errorf("crawl %v: %w", target.Seeds, err)
			}
			results[i] = crawlResult{target: target, docs: docs, report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.failJob(ctx, job, err)
		return
	}

	var documents []domain.CrawledDocument
	for _, r := range results {
		seed := ""
		if len(r.target.Seeds) > 0 {
			seed = r.target.Seeds[0]
		}
		sr := domain.SourceReport{
			Seed:      seed,
			Documents: len(r.docs),
			Errors:    len(r.report.Errors),
		}
		job.Sources = append(job.Sources, sr)
		job.Errors += len(r.report.Errors)
		documents = append(documents, r.docs...)
	}
	job.Documents = len(documents)
	logger.Info("Crawled %d documents across %d targets", job.Documents, len(targets))

	if len(documents) == 0 {
		o.failJob(ctx, job, fmt.Errorf("crawl produced no documents"))
		return
	}

	logger.Section("Segmentation")

	// 2. Chunk every document. Records are built now, embeddings filled
	// in after fitting.
	var records []domain.VectorRecord
	var corpus []string
	var allChunks []domain.Chunk
	for di, doc := range documents {
		chunks := o.segmenter.Chunks(doc.Content)
		allChunks = append(allChunks, chunks...)
		for _, c := range chunks {
			records = append(records, domain.VectorRecord{
				ID:      uuid.NewString(),
				Content: c.Content,
				Metadata: domain.RecordMetadata{
					URL:        doc.URL,
					Title:      doc.Title,
					SourceType: doc.SourceType,
					ChunkIndex: c.Index,
					CrawledAt:  doc.CrawledAt,
				},
			})
			corpus = append(corpus, c.Content)
		}
		// Attribute chunk counts to the source that produced them.
		countChunks(&job, di, len(chunks))
	}
	job.Chunks = len(records)
	stats := domain.NewChunkStats(allChunks)
	logger.Info("Segmented into %d chunks (mean %.0f chars, %.0f words)",
		stats.Count, stats.MeanSize, stats.MeanWordCount)

	if len(records) == 0 {
		o.failJob(ctx, job, fmt.Errorf("segmentation produced no chunks"))
		return
	}

	logger.Section("Embedding")

	// 3. Fit once on the full chunk corpus, then embed everything.
	// Fitting per batch would make vectors from different batches
	// incomparable, so the vocabulary is frozen before any embedding.
	if err := o.embedder.Fit(ctx, corpus); err != nil {
		o.failJob(ctx, job, fmt.Errorf("fit embedder: %w", err))
		return
	}
	vectors, err := o.embedder.EmbedBatch(ctx, corpus)
	if err != nil {
		o.failJob(ctx, job, fmt.Errorf("embed corpus: %w", err))
		return
	}
	for i := range records {
		records[i].Embedding = vectors[i]
	}
	logger.Info("Embedded %d chunks (%d dimensions, model %s)",
		len(records), o.embedder.Dimensions(), o.embedder.ModelName())

	logger.Section("Indexing")

	// 4. Rebuild the collection. The fresh vocabulary makes old vectors
	// incomparable with new ones, so stale records must not survive.
	if err := o.store.Clear(ctx); err != nil {
		o.failJob(ctx, job, fmt.Errorf("clear collection: %w", err))
		return
	}
	if err := o.store.Init(ctx); err != nil {
		o.failJob(ctx, job, fmt.Errorf("init collection: %w", err))
		return
	}
	if err := o.store.Upsert(ctx, records); err != nil {
		o.failJob(ctx, job, fmt.Errorf("upsert records: %w", err))
		return
	}

	job.State = domain.JobStateCompleted
	job.FinishedAt = time.Now()
	o.saveJob(ctx, job)
	logger.Info("Ingestion job %s completed: %d documents, %d chunks, %d errors",
		job.ID, job.Documents, job.Chunks, job.Errors)
}

// countChunks adds a chunk count to the source report covering document
// index di. Documents are appended in target order, so the report whose
// cumulative document count covers di is the owner.
func countChunks(job *domain.IngestJob, di, chunks int) {
	covered := 0
	for i := range job.Sources {
		covered += job.Sources[i].Documents
		if di < covered {
			job.Sources[i].Chunks += chunks
			return
		}
	}
}

func (o *IngestOrchestrator) failJob(ctx context.Context, job domain.IngestJob, err error) {
	logger.Warn("Ingestion job %s failed: %v", job.ID, err)
	job.State = domain.JobStateFailed
	job.Error = err.Error()
	job.FinishedAt = time.Now()
	o.saveJob(ctx, job)
}

func (o *IngestOrchestrator) saveJob(ctx context.Context, job domain.IngestJob) {
	if err := o.jobs.Save(ctx, job); err != nil {
		logger.Warn("Failed to save job %s: %v", job.ID, err)
	}
}
