// Package segmenter splits document text into overlapping, retrieval-sized
// chunks for independent embedding.
package segmenter

import (
	"strings"
	"unicode"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultMinChunkSize is the minimum chunk length; shorter text is dropped.
const DefaultMinChunkSize = 100

// approxCharsPerWord converts the character overlap budget into a word
// count when seeding the next chunk's leading overlap.
const approxCharsPerWord = 5

// Segmenter splits text into chunks. The sentence-aware mode closes a
// chunk at a sentence boundary and seeds the next one with the closed
// chunk's trailing words so consecutive chunks share context.
type Segmenter struct {
	chunkSize    int
	overlap      int
	minChunkSize int
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Segmenter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Segmenter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the minimum chunk length in characters.
func WithMinChunkSize(size int) Option {
	return func(s *Segmenter) {
		if size > 0 {
			s.minChunkSize = size
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		chunkSize:    DefaultChunkSize,
		overlap:      DefaultChunkOverlap,
		minChunkSize: DefaultMinChunkSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	if s.minChunkSize > s.chunkSize {
		s.minChunkSize = s.chunkSize
	}

	return s
}

// sentence is a contiguous span of the source text ending at terminal
// punctuation, with document-relative offsets.
type sentence struct {
	text  string
	start int
	end   int
}

// Chunks splits text into sentence-aware chunks. Sentences accumulate
// into a buffer; when the next sentence would push the buffer past the
// chunk size and the buffer already meets the minimum, the chunk closes
// and the next buffer is seeded with the closed chunk's trailing words.
//
// Empty or too-short input yields zero chunks. A single sentence longer
// than the chunk size is still emitted whole: content is never truncated
// to fit the budget.
func (s *Segmenter) Chunks(text string) []domain.Chunk {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	overlapWords := s.overlap / approxCharsPerWord

	var chunks []domain.Chunk
	var buf strings.Builder
	bufStart := -1 // offset of the first non-overlap sentence in the buffer
	bufEnd := 0

	flush := func() {
		content := buf.String()
		if len(content) < s.minChunkSize {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Content:     content,
			Index:       len(chunks),
			StartOffset: bufStart,
			EndOffset:   bufEnd,
			WordCount:   len(strings.Fields(content)),
		})
	}

	for _, sent := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(sent.text) > s.chunkSize && buf.Len() >= s.minChunkSize {
			flush()
			tail := trailingWords(buf.String(), overlapWords)
			buf.Reset()
			buf.WriteString(tail)
			bufStart = -1
		}

		if bufStart < 0 {
			bufStart = sent.start
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sent.text)
		bufEnd = sent.end
	}

	flush()
	return chunks
}

// FixedChunks slides a chunk-sized window with stride (chunkSize -
// overlap) across the raw text, ignoring sentence boundaries. Input
// shorter than the minimum chunk size yields zero chunks; a trailing
// window may be shorter than the minimum.
func (s *Segmenter) FixedChunks(text string) []domain.Chunk {
	if len(text) < s.minChunkSize {
		return nil
	}

	stride := s.chunkSize - s.overlap
	chunks := make([]domain.Chunk, 0, len(text)/stride+1)

	for start := 0; start < len(text); start += stride {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		content := text[start:end]
		chunks = append(chunks, domain.Chunk{
			Content:     content,
			Index:       len(chunks),
			StartOffset: start,
			EndOffset:   end,
			WordCount:   len(strings.Fields(content)),
		})
		if end == len(text) {
			break
		}
	}

	return chunks
}

// splitSentences splits text on terminal punctuation (. ! ?), recording
// document-relative offsets. Text without terminal punctuation becomes a
// single sentence.
func splitSentences(text string) []sentence {
	var sentences []sentence
	start := -1

	runes := []rune(text)
	offset := 0 // byte offset of the current rune
	for i := 0; i < len(runes); i++ {
		size := len(string(runes[i]))
		if start < 0 && !unicode.IsSpace(runes[i]) {
			start = offset
		}
		if start >= 0 && isTerminal(runes[i]) {
			// Consume any run of terminal punctuation ("..", "?!").
			end := offset + size
			for i+1 < len(runes) && isTerminal(runes[i+1]) {
				i++
				end += len(string(runes[i]))
			}
			raw := text[start:end]
			if trimmed := strings.TrimSpace(raw); trimmed != "" {
				sentences = append(sentences, sentence{text: trimmed, start: start, end: end})
			}
			start = -1
			offset = end
			continue
		}
		offset += size
	}

	// Trailing text without terminal punctuation.
	if start >= 0 {
		raw := text[start:]
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			sentences = append(sentences, sentence{text: trimmed, start: start, end: len(text)})
		}
	}

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// trailingWords returns the last n words of text joined by spaces.
func trailingWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
