package driving

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// AnswerService produces grounded answers with cited sources.
type AnswerService interface {
	// Ask answers a question using retrieved contexts and the language
	// model, falling back deterministically when the model is
	// unavailable. It always returns an answer, never a bare failure,
	// unless the vector store itself is unreachable.
	Ask(ctx context.Context, question string, history []domain.ChatMessage) (*domain.Answer, error)
}
