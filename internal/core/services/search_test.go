package services

import (
	"context"
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

func newTestSearchService(t *testing.T, queryVector []float32) *SearchService {
	t.Helper()
	return NewSearchService(&answerMockEmbedder{fallback: queryVector}, seededStore(t))
}

func TestSearch_RanksByDistance(t *testing.T) {
	// Closer to the exam vector than the library vector.
	svc := newTestSearchService(t, []float32{0.9, 0.1, 0})

	results, err := svc.Search(context.Background(), "exam dates", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "https://www.unizg.hr/exams", results[0].Metadata.URL)
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.InDelta(t, 1-results[0].Distance, results[0].Relevance, 1e-9)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestSearchService(t, []float32{1, 0, 0})

	results, err := svc.Search(context.Background(), "  ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_LimitApplied(t *testing.T) {
	svc := newTestSearchService(t, []float32{1, 0, 0})

	results, err := svc.Search(context.Background(), "exams", domain.SearchOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_SourceTypeFilter(t *testing.T) {
	svc := newTestSearchService(t, []float32{1, 0, 0})

	results, err := svc.Search(context.Background(), "opening hours", domain.SearchOptions{
		SourceType: domain.SourceTypeLibrary,
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, domain.SourceTypeLibrary, results[0].Metadata.SourceType)
}

func TestSearch_MinRelevanceFloor(t *testing.T) {
	svc := newTestSearchService(t, []float32{1, 0, 0})

	results, err := svc.Search(context.Background(), "exams", domain.SearchOptions{
		MinRelevance: 0.5,
	})
	require.NoError(t, err)

	// The orthogonal library vector has relevance 0 and is dropped.
	require.Len(t, results, 1)
	assert.Equal(t, "https://www.unizg.hr/exams", results[0].Metadata.URL)
}

func TestSearch_CroatianQuestionFindsExamPage(t *testing.T) {
	// Full pipeline with the real embedder: ingest a page about exam
	// periods and one about the library, then search in Croatian.
	docs := []domain.CrawledDocument{
		{
			URL:   "https://www.unizg.hr/ispitni-rokovi",
			Title: "Ispitni rokovi",
			Content: "Ispitni rokovi zimskog semestra počinju krajem siječnja. " +
				"Ispitni rokovi ljetnog semestra počinju sredinom lipnja i traju do srpnja.",
			SourceType: domain.SourceTypeFaculty,
			CrawledAt:  time.Now(),
		},
		{
			URL:   "https://www.unizg.hr/knjiznica",
			Title: "Knjižnica",
			Content: "Knjižnica je otvorena radnim danom od osam do dvadeset sati. " +
				"Čitaonice su dostupne studentima tijekom cijele akademske godine.",
			SourceType: domain.SourceTypeLibrary,
			CrawledAt:  time.Now(),
		},
	}

	model := tfidf.New()
	store := vectormemory.New("campusrag_test")
	o := NewIngestOrchestrator(
		&ingestMockCrawler{docs: docs},
		segmenter.New(segmenter.WithChunkSize(400)),
		model,
		store,
		storagememory.NewIngestJobStore(),
	)

	jobID, err := o.Start(context.Background(), []domain.CrawlTarget{testTarget()})
	require.NoError(t, err)
	job := waitForJob(t, o, jobID)
	require.Equal(t, domain.JobStateCompleted, job.State)

	svc := NewSearchService(model, store)
	results, err := svc.Search(context.Background(), "Kada su ispitni rokovi?", domain.SearchOptions{Limit: 3})
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "https://www.unizg.hr/ispitni-rokovi", results[0].Metadata.URL)
	assert.Greater(t, results[0].Relevance, 0.3)

	// With the floor applied only the exam page survives.
	filtered, err := svc.Search(context.Background(), "Kada su ispitni rokovi?", domain.SearchOptions{
		Limit:        3,
		MinRelevance: 0.3,
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "https://www.unizg.hr/ispitni-rokovi", filtered[0].Metadata.URL)
}

func TestSearch_EmbedFailurePropagates(t *testing.T) {
	embedder := &answerMockEmbedder{err: domain.ErrVocabularyNotTrained}
	svc := NewSearchService(embedder, seededStore(t))

	_, err := svc.Search(context.Background(), "exams", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrVocabularyNotTrained)
}
