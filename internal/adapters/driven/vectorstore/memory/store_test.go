package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrag/campusrag/internal/core/domain"
)

func seedRecords() []domain.VectorRecord {
	return []domain.VectorRecord{
		{
			ID:        "a",
			Content:   "exam schedule",
			Embedding: []float32{1, 0, 0},
			Metadata:  domain.RecordMetadata{URL: "https://x/a", SourceType: domain.SourceTypeFaculty},
		},
		{
			ID:        "b",
			Content:   "library hours",
			Embedding: []float32{0, 1, 0},
			Metadata:  domain.RecordMetadata{URL: "https://x/b", SourceType: domain.SourceTypeLibrary},
		},
		{
			ID:        "c",
			Content:   "close to a",
			Embedding: []float32{0.9, 0.1, 0},
			Metadata:  domain.RecordMetadata{URL: "https://x/c", SourceType: domain.SourceTypeFaculty},
		},
	}
}

func TestStore_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	s := New("test")
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Upsert(ctx, seedRecords()))

	results, err := s.Query(ctx, []float32{1, 0, 0}, 3, "")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exam schedule", results[0].Content)
	assert.Equal(t, "close to a", results[1].Content)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
	assert.InDelta(t, 1.0, results[0].Relevance, 1e-6)
}

func TestStore_QueryLimit(t *testing.T) {
	ctx := context.Background()
	s := New("test")
	require.NoError(t, s.Upsert(ctx, seedRecords()))

	results, err := s.Query(ctx, []float32{1, 0, 0}, 1, "")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStore_QuerySourceTypeFilter(t *testing.T) {
	ctx := context.Background()
	s := New("test")
	require.NoError(t, s.Upsert(ctx, seedRecords()))

	results, err := s.Query(ctx, []float32{1, 0, 0}, 10, domain.SourceTypeLibrary)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "library hours", results[0].Content)
}

func TestStore_UpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	s := New("test")
	require.NoError(t, s.Upsert(ctx, seedRecords()))
	require.NoError(t, s.Upsert(ctx, []domain.VectorRecord{
		{ID: "a", Content: "replaced", Embedding: []float32{0, 0, 1}},
	}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := s.Query(ctx, []float32{0, 0, 1}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "replaced", results[0].Content)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := New("test")
	require.NoError(t, s.Upsert(ctx, seedRecords()))
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New("test")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = s.Upsert(ctx, seedRecords())
		}
	}()
	for i := 0; i < 50; i++ {
		_, err := s.Query(ctx, []float32{1, 0, 0}, 2, "")
		assert.NoError(t, err)
	}
	<-done
}
