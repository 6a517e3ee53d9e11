package domain

import "time"

// RecordMetadata is the payload stored alongside each vector.
type RecordMetadata struct {
	URL        string
	Title      string
	SourceType SourceType
	ChunkIndex int
	CrawledAt  time.Time
}

// VectorRecord is one embedded chunk as persisted by the vector store.
// Records persist until the collection is explicitly cleared. IDs are
// unique within a collection version; an ID collision overwrites.
type VectorRecord struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  RecordMetadata
}

// SearchResult is one nearest-neighbour hit. Relevance is derived from
// the cosine distance as 1 - distance, clamped to [0, 1].
type SearchResult struct {
	Content  string
	Metadata RecordMetadata
	Distance float64
	// Relevance is 1 - Distance.
	Relevance float64
}

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results (default 5).
	Limit int

	// SourceType filters hits to one source type when non-empty.
	SourceType SourceType

	// MinRelevance drops hits with relevance below this floor.
	MinRelevance float64
}

// RAGContext is one retrieved passage handed to the language model.
// Built fresh per request; its lifetime is one request.
type RAGContext struct {
	Content   string
	URL       string
	Title     string
	Relevance float64
}
