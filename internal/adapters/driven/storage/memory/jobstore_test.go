package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrag/campusrag/internal/core/domain"
)

func TestIngestJobStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewIngestJobStore()

	job := domain.IngestJob{
		ID:        "job-1",
		State:     domain.JobStatePending,
		StartedAt: time.Now(),
	}
	require.NoError(t, s.Save(ctx, job))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatePending, got.State)

	job.State = domain.JobStateCompleted
	job.Documents = 7
	require.NoError(t, s.Save(ctx, job))

	got, err = s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCompleted, got.State)
	assert.Equal(t, 7, got.Documents)
}

func TestIngestJobStore_GetMissing(t *testing.T) {
	s := NewIngestJobStore()
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestJobStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewIngestJobStore()

	base := time.Now()
	require.NoError(t, s.Save(ctx, domain.IngestJob{ID: "old", StartedAt: base.Add(-time.Hour)}))
	require.NoError(t, s.Save(ctx, domain.IngestJob{ID: "new", StartedAt: base}))

	jobs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "new", jobs[0].ID)
	assert.Equal(t, "old", jobs[1].ID)
}
