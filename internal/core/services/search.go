package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
	"github.com/campusrag/campusrag/internal/core/ports/driving"
	"github.com/campusrag/campusrag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// defaultSearchLimit applies when the caller gives no limit.
const defaultSearchLimit = 5

// SearchService provides semantic search over the indexed corpus.
type SearchService struct {
	embedder driven.Embedder
	store    driven.VectorStore
}

// NewSearchService creates a new search service.
func NewSearchService(embedder driven.Embedder, store driven.VectorStore) *SearchService {
	return &SearchService{
		embedder: embedder,
		store:    store,
	}
}

// Search embeds the query and returns ranked hits above the relevance
// floor, ordered by ascending distance.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	logger.Section("Semantic Search")
	logger.Debug("Query: %q, limit: %d, source type: %q, min relevance: %.2f",
		query, limit, opts.SourceType, opts.MinRelevance)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Query(ctx, vector, limit, opts.SourceType)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}

	if opts.MinRelevance <= 0 {
		return results, nil
	}

	filtered := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Relevance >= opts.MinRelevance {
			filtered = append(filtered, r)
		}
	}
	logger.Debug("%d of %d hits above relevance floor", len(filtered), len(results))
	return filtered, nil
}
