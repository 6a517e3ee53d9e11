package driven

import "context"

// Embedder maps text to a fixed-length vector for similarity comparison.
//
// Vectors are only comparable when produced by the same fitted instance:
// the store and search logic stay agnostic to how embeddings are made,
// but one collection must hold vectors from one vocabulary only.
//
// Implementations may include:
//   - TF-IDF bag-of-words (local, requires Fit)
//   - Ollama (nomic-embed-text, all-minilm; pretrained, Fit is a no-op)
type Embedder interface {
	// Fit builds the model's vocabulary from a corpus. It must complete
	// before any Embed call on a trainable implementation, and must not
	// be interleaved with concurrent Embed calls on the same instance.
	// Pretrained implementations treat Fit as a no-op.
	Fit(ctx context.Context, corpus []string) error

	// Embed generates a vector embedding for the given text.
	// Trainable implementations fail with domain.ErrVocabularyNotTrained
	// when called before Fit.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. For trainable
	// implementations this is only meaningful after Fit.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
