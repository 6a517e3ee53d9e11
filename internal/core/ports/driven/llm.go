package driven

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// LLMService provides chat completion against an external language model.
// This is an optional service - when nil or unreachable, answers degrade
// to the deterministic fallback path.
//
// Implementations may include:
//   - Ollama (local models)
//   - Any service exposing a compatible chat-completion API
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the assistant
	// reply. The call must respect ctx cancellation: on deadline expiry
	// it aborts and returns the context error.
	Chat(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (string, error)

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// ListModels returns the model names available on the service.
	ListModels(ctx context.Context) ([]string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
