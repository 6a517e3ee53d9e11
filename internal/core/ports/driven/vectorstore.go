package driven

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// VectorStore persists chunk vectors and serves nearest-neighbour search.
// It deals in ready-made vectors only and is agnostic to how they were
// produced; callers are responsible for dimensional self-consistency
// within one collection generation.
type VectorStore interface {
	// Init idempotently opens or creates the named collection.
	Init(ctx context.Context) error

	// Upsert inserts or overwrites records by ID. No content dedup.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// Query returns up to limit hits nearest to the vector, ordered by
	// ascending distance, optionally filtered to one source type.
	// Relevance floors are applied by the caller.
	Query(ctx context.Context, vector []float32, limit int, sourceType domain.SourceType) ([]domain.SearchResult, error)

	// Clear deletes and recreates the collection empty. Required before
	// a full re-index so vectors from different embedding vocabularies
	// never share a collection.
	Clear(ctx context.Context) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Collection returns the collection name.
	Collection() string

	// Close releases resources.
	Close() error
}
