package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusrag/campusrag/internal/adapters/driven/config/file"
	"github.com/campusrag/campusrag/internal/adapters/driven/embedding/tfidf"
	storagememory "github.com/campusrag/campusrag/internal/adapters/driven/storage/memory"
	vectormemory "github.com/campusrag/campusrag/internal/adapters/driven/vectorstore/memory"
	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/services"
	"github.com/campusrag/campusrag/internal/segmenter"
)

// cliMockCrawler implements driven.Crawler without any network access.
type cliMockCrawler struct {
	docs []domain.CrawledDocument
}

func (m *cliMockCrawler) Crawl(_ context.Context, _ domain.CrawlTarget) ([]domain.CrawledDocument, *domain.CrawlReport, error) {
	return m.docs, &domain.CrawlReport{Documents: len(m.docs), URLsVisited: len(m.docs)}, nil
}

// setupTestServices wires the CLI package against in-memory adapters
// and a pre-fitted embedding model. The returned cleanup restores the
// uninitialised state.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	corpus := []string{
		"The winter examination period runs from late January until mid February every academic year.",
		"The library reading rooms stay open until ten in the evening during examination periods.",
	}

	model := tfidf.New()
	require.NoError(t, model.Fit(context.Background(), corpus))

	store := vectormemory.New("campusrag_test")
	for i, text := range corpus {
		vec, err := model.Embed(context.Background(), text)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(context.Background(), []domain.VectorRecord{{
			ID:        fmt.Sprintf("chunk-%d", i),
			Content:   text,
			Embedding: vec,
			Metadata: domain.RecordMetadata{
				URL:        "https://www.unizg.hr/page",
				Title:      "Test Page",
				SourceType: domain.SourceTypeWeb,
				CrawledAt:  time.Now(),
			},
		}}))
	}

	cfg, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	configStore = cfg
	vectorStore = store
	embedder = model
	tfidfModel = model
	modelPath = filepath.Join(t.TempDir(), "model.json")
	llmService = nil
	ingestOrchestrator = services.NewIngestOrchestrator(
		&cliMockCrawler{docs: []domain.CrawledDocument{{
			URL:        "https://www.unizg.hr/page",
			Title:      "Test Page",
			Content:    corpus[0] + " " + corpus[1],
			SourceType: domain.SourceTypeWeb,
			CrawledAt:  time.Now(),
		}}},
		segmenter.New(segmenter.WithChunkSize(200), segmenter.WithMinChunkSize(50)),
		model,
		store,
		storagememory.NewIngestJobStore(),
	)
	answerService = services.NewAnswerService(model, store, nil)
	searchService = services.NewSearchService(model, store)
	servicesWired = true

	return func() {
		configStore = nil
		vectorStore = nil
		embedder = nil
		tfidfModel = nil
		llmService = nil
		ingestOrchestrator = nil
		answerService = nil
		searchService = nil
		servicesWired = false
	}
}
