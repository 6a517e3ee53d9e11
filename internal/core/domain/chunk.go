package domain

// Chunk is a bounded, contiguous slice of a document's text; the unit of
// retrieval. Offsets are relative to the source document text.
type Chunk struct {
	// Content is the chunk text, including any leading overlap carried
	// from the previous chunk.
	Content string

	// Index is the 0-based sequence number within the document.
	Index int

	// StartOffset is the character offset of the chunk's first sentence
	// in the source text.
	StartOffset int

	// EndOffset is the character offset just past the chunk's last
	// sentence in the source text.
	EndOffset int

	// WordCount is the number of whitespace-separated words.
	WordCount int
}

// ChunkStats summarises a segmentation run.
type ChunkStats struct {
	Count         int
	MeanSize      float64
	MeanWordCount float64
	TotalChars    int
}

// NewChunkStats computes summary statistics for a set of chunks.
func NewChunkStats(chunks []Chunk) ChunkStats {
	stats := ChunkStats{Count: len(chunks)}
	if len(chunks) == 0 {
		return stats
	}
	var words int
	for _, c := range chunks {
		stats.TotalChars += len(c.Content)
		words += c.WordCount
	}
	stats.MeanSize = float64(stats.TotalChars) / float64(len(chunks))
	stats.MeanWordCount = float64(words) / float64(len(chunks))
	return stats
}
