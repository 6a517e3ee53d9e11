package tfidf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// modelFile is the on-disk form of a fitted model. The vocabulary and
// IDF table are small enough that plain JSON is fine.
type modelFile struct {
	Vocab map[string]int `json:"vocab"`
	IDF   []float64      `json:"idf"`
}

// Save writes the fitted vocabulary and IDF weights to path so a later
// process can embed queries against the same vector layout.
func (e *Embedder) Save(path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.fitted {
		return domain.ErrVocabularyNotTrained
	}

	data, err := json.Marshal(modelFile{Vocab: e.vocab, IDF: e.idf})
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Load replaces the embedder state with a previously saved model.
func (e *Embedder) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}

	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshal model: %w", err)
	}
	if len(m.Vocab) != len(m.IDF) {
		return fmt.Errorf("%w: vocabulary and idf size mismatch", domain.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.vocab = m.Vocab
	e.idf = m.IDF
	e.fitted = len(m.IDF) > 0
	return nil
}
