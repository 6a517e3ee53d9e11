// Package qdrant provides a vector store adapter backed by a Qdrant
// server over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"sync"
	"time"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
	"github.com/campusrag/campusrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultAddr       = "localhost:6334"
	DefaultCollection = "campusrag"

	// upsertBatchSize bounds how many points go into one upsert call.
	upsertBatchSize = 100
)

// Payload field names stored with each point.
const (
	fieldContent    = "content"
	fieldURL        = "url"
	fieldTitle      = "title"
	fieldSourceType = "source_type"
	fieldChunkIndex = "chunk_index"
	fieldCrawledAt  = "crawled_at"
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// Addr is the Qdrant gRPC address (default: localhost:6334).
	Addr string

	// Collection is the collection name (default: campusrag).
	Collection string

	// VectorSize fixes the collection dimensionality up front. When 0,
	// the dimensionality of the first upserted batch is used.
	VectorSize int
}

// Store is a Qdrant-backed implementation of driven.VectorStore.
// The collection uses cosine distance; hit scores come back as cosine
// similarity and are converted to distance = 1 - score.
type Store struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	collection  string

	mu     sync.Mutex
	dims   uint64
	exists bool
}

// New connects to Qdrant and returns a store for the configured
// collection. The connection is lazy; Init performs the first round trip.
func New(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s: %w", cfg.Addr, err)
	}

	return &Store{
		conn:        conn,
		collections: qdrantclient.NewCollectionsClient(conn),
		points:      qdrantclient.NewPointsClient(conn),
		collection:  cfg.Collection,
		dims:        uint64(cfg.VectorSize),
	}, nil
}

// Init idempotently opens or creates the collection. Creation is
// deferred to the first upsert when the dimensionality is not yet known.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if known {
		s.exists = true
		return nil
	}
	if s.dims > 0 {
		return s.createCollection(ctx)
	}
	return nil
}

// Upsert inserts or overwrites records by ID, creating the collection
// on first use with the batch's dimensionality.
func (s *Store) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	if !s.exists {
		if s.dims == 0 {
			s.dims = uint64(len(records[0].Embedding))
		}
		if err := s.createCollection(ctx); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	points := make([]*qdrantclient.PointStruct, 0, upsertBatchSize)
	for i, r := range records {
		points = append(points, toPoint(r))
		if len(points) >= upsertBatchSize || i == len(records)-1 {
			_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
				CollectionName: s.collection,
				Points:         points,
			})
			if err != nil {
				return fmt.Errorf("%w: upsert points: %w", domain.ErrVectorStoreUnavailable, err)
			}
			points = points[:0]
		}
	}

	logger.Debug("Upserted %d points into collection %q", len(records), s.collection)
	return nil
}

// Query returns up to limit hits nearest to the vector, ordered by
// ascending distance, optionally filtered to one source type.
func (s *Store) Query(ctx context.Context, vector []float32, limit int, sourceType domain.SourceType) ([]domain.SearchResult, error) {
	req := &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	}

	if sourceType != "" {
		req.Filter = &qdrantclient.Filter{
			Must: []*qdrantclient.Condition{{
				ConditionOneOf: &qdrantclient.Condition_Field{
					Field: &qdrantclient.FieldCondition{
						Key: fieldSourceType,
						Match: &qdrantclient.Match{
							MatchValue: &qdrantclient.Match_Keyword{Keyword: string(sourceType)},
						},
					},
				},
			}},
		}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrVectorStoreUnavailable, err)
	}

	results := make([]domain.SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		// Cosine similarity score to distance.
		dist := 1 - float64(point.GetScore())
		results = append(results, domain.SearchResult{
			Content:   point.Payload[fieldContent].GetStringValue(),
			Metadata:  payloadMetadata(point.Payload),
			Distance:  dist,
			Relevance: 1 - dist,
		})
	}
	return results, nil
}

// Clear deletes and recreates the collection empty.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.collections.Delete(ctx, &qdrantclient.DeleteCollection{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("%w: delete collection: %w", domain.ErrVectorStoreUnavailable, err)
	}
	s.exists = false

	if s.dims > 0 {
		return s.createCollection(ctx)
	}
	return nil
}

// Count returns the exact number of stored points.
func (s *Store) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &qdrantclient.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrVectorStoreUnavailable, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// collectionExists checks server-side for the collection.
// Caller holds s.mu.
func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	resp, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("%w: list collections: %w", domain.ErrVectorStoreUnavailable, err)
	}
	for _, col := range resp.GetCollections() {
		if col.GetName() == s.collection {
			return true, nil
		}
	}
	return false, nil
}

// createCollection creates the cosine-distance collection.
// Caller holds s.mu.
func (s *Store) createCollection(ctx context.Context) error {
	_, err := s.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     s.dims,
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %w", domain.ErrVectorStoreUnavailable, err)
	}
	s.exists = true
	logger.Info("Created collection %q (dims=%d)", s.collection, s.dims)
	return nil
}

// toPoint converts a record to a Qdrant point with its payload.
func toPoint(r domain.VectorRecord) *qdrantclient.PointStruct {
	return &qdrantclient.PointStruct{
		Id: &qdrantclient.PointId{
			PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: r.ID},
		},
		Vectors: &qdrantclient.Vectors{
			VectorsOptions: &qdrantclient.Vectors_Vector{
				Vector: &qdrantclient.Vector{Data: r.Embedding},
			},
		},
		Payload: map[string]*qdrantclient.Value{
			fieldContent:    {Kind: &qdrantclient.Value_StringValue{StringValue: r.Content}},
			fieldURL:        {Kind: &qdrantclient.Value_StringValue{StringValue: r.Metadata.URL}},
			fieldTitle:      {Kind: &qdrantclient.Value_StringValue{StringValue: r.Metadata.Title}},
			fieldSourceType: {Kind: &qdrantclient.Value_StringValue{StringValue: string(r.Metadata.SourceType)}},
			fieldChunkIndex: {Kind: &qdrantclient.Value_IntegerValue{IntegerValue: int64(r.Metadata.ChunkIndex)}},
			fieldCrawledAt:  {Kind: &qdrantclient.Value_IntegerValue{IntegerValue: r.Metadata.CrawledAt.Unix()}},
		},
	}
}

// payloadMetadata reconstructs record metadata from a point payload.
func payloadMetadata(payload map[string]*qdrantclient.Value) domain.RecordMetadata {
	meta := domain.RecordMetadata{
		URL:        payload[fieldURL].GetStringValue(),
		Title:      payload[fieldTitle].GetStringValue(),
		SourceType: domain.SourceType(payload[fieldSourceType].GetStringValue()),
		ChunkIndex: int(payload[fieldChunkIndex].GetIntegerValue()),
	}
	if ts := payload[fieldCrawledAt].GetIntegerValue(); ts > 0 {
		meta.CrawledAt = time.Unix(ts, 0)
	}
	return meta
}
