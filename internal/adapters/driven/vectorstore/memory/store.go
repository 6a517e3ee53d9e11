// Package memory provides an in-memory vector store with exact cosine
// scan. It backs tests and offline runs; production deployments use the
// qdrant adapter.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu         sync.RWMutex
	collection string
	records    map[string]domain.VectorRecord
}

// New creates an in-memory vector store for the named collection.
func New(collection string) *Store {
	return &Store{
		collection: collection,
		records:    make(map[string]domain.VectorRecord),
	}
}

// Init is a no-op for the in-memory store.
func (s *Store) Init(_ context.Context) error {
	return nil
}

// Upsert inserts or overwrites records by ID.
func (s *Store) Upsert(_ context.Context, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

// Query scans all records and returns up to limit nearest hits by
// cosine distance, ascending.
func (s *Store) Query(_ context.Context, vector []float32, limit int, sourceType domain.SourceType) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.SearchResult, 0, len(s.records))
	for _, r := range s.records {
		if sourceType != "" && r.Metadata.SourceType != sourceType {
			continue
		}
		dist := 1 - cosineSimilarity(vector, r.Embedding)
		results = append(results, domain.SearchResult{
			Content:   r.Content,
			Metadata:  r.Metadata,
			Distance:  dist,
			Relevance: 1 - dist,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Clear drops all records.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.VectorRecord)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
