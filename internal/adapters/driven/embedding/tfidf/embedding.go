// Package tfidf provides a local bag-of-words embedder.
//
// It is an explicit placeholder for a trained neural embedding model: the
// vector store and search logic stay agnostic to how vectors are made.
// Vectors are only comparable when produced by the same fitted instance;
// refitting changes the vocabulary and invalidates earlier vectors.
package tfidf

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// minTokenLength drops tokens at or below this length during tokenising.
const minTokenLength = 2

// Embedder maps text to TF-IDF weighted vectors over a corpus-fitted
// vocabulary. Fit takes the write lock, so it is exclusive with
// concurrent Embed calls on the same instance.
type Embedder struct {
	mu     sync.RWMutex
	vocab  map[string]int // term -> vector position
	idf    []float64      // per-term inverse document frequency
	fitted bool
}

// New creates an unfitted embedder. Embed fails with
// domain.ErrVocabularyNotTrained until Fit is called.
func New() *Embedder {
	return &Embedder{}
}

// Fit builds the vocabulary and per-term IDF weights from a corpus.
// It must be re-called whenever the reference corpus changes; embeddings
// produced under different vocabularies are not comparable.
func (e *Embedder) Fit(_ context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return domain.ErrInvalidInput
	}

	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range tokenize(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	// Deterministic vector layout: vocabulary in sorted term order.
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocab[term] = i
		// Smoothed IDF: terms present in every document keep a positive
		// weight instead of flipping negative.
		idf[i] = math.Log(n/(1+float64(docFreq[term]))) + 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.vocab = vocab
	e.idf = idf
	e.fitted = true
	return nil
}

// Embed maps text to an L2-normalised TF-IDF vector over the fitted
// vocabulary. Unseen terms contribute nothing; a text with no known
// terms embeds to the zero vector. Repeated calls against the same
// fitted instance yield identical vectors.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.fitted {
		return nil, domain.ErrVocabularyNotTrained
	}

	tokens := tokenize(text)
	vector := make([]float32, len(e.idf))
	if len(tokens) == 0 {
		return vector, nil
	}

	counts := make(map[string]int)
	for _, term := range tokens {
		counts[term]++
	}

	var sumSquares float64
	for term, count := range counts {
		pos, ok := e.vocab[term]
		if !ok {
			continue
		}
		tf := float64(count) / float64(len(tokens))
		w := tf * e.idf[pos]
		vector[pos] = float32(w)
		sumSquares += w * w
	}

	// L2 normalise; the zero vector stays zero.
	if sumSquares > 0 {
		norm := float32(math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] /= norm
		}
	}

	return vector, nil
}

// EmbedBatch embeds each text against the current vocabulary.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the vocabulary size, or 0 before Fit.
func (e *Embedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.idf)
}

// ModelName returns the scheme identifier.
func (e *Embedder) ModelName() string {
	return "tfidf-bow"
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// It returns 0 for length-mismatched or zero-magnitude vectors.
func CosineSimilarity(a, b []float32) float64 {
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

// tokenize lowercases, strips punctuation and drops short tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
