// Package ollama provides an LLM service adapter backed by an Ollama
// server's chat API.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 4 * time.Minute
)

// Config holds configuration for the Ollama LLM service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model to use (default: llama3.2).
	Model string

	// Timeout is the hard bound on one chat call (default: 4m).
	Timeout time.Duration
}

// LLMService provides chat completion using Ollama. Calls are bounded
// by the configured timeout and abort cleanly on expiry.
type LLMService struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// New creates a new Ollama LLM service.
func New(cfg Config) (*LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base URL: %w", err)
	}

	return &LLMService{
		client:  api.NewClient(base, &http.Client{}),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Chat conducts a multi-turn conversation and returns the assistant
// reply. The call is bounded by the service timeout on top of any
// caller deadline; expiry cancels the request and returns the context
// error so the caller can fall back.
func (s *LLMService) Chat(ctx context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	apiMessages := make([]api.Message, len(messages))
	for i, m := range messages {
		apiMessages[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    s.model,
		Messages: apiMessages,
		Stream:   &stream,
	}
	options := map[string]any{}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if len(options) > 0 {
		req.Options = options
	}

	var reply strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: chat: %w", domain.ErrModelUnavailable, err)
	}

	return reply.String(), nil
}

// Ping validates the server is reachable with a heartbeat request.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}

// ListModels returns the model names available on the server.
func (s *LLMService) ListModels(ctx context.Context) ([]string, error) {
	resp, err := s.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list models: %w", domain.ErrModelUnavailable, err)
	}
	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.Name
	}
	return names, nil
}

// ModelName returns the name of the chat model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	// The underlying HTTP client needs no explicit cleanup.
	return nil
}
