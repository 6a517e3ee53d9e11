package driving

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// SearchService provides semantic search over the indexed corpus.
type SearchService interface {
	// Search embeds the query and returns ranked hits above the
	// relevance floor.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
