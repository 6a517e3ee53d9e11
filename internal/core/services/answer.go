package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
	"github.com/campusrag/campusrag/internal/core/ports/driving"
	"github.com/campusrag/campusrag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Retrieval and conversation defaults.
const (
	// contextLimit is how many passages are retrieved per question.
	contextLimit = 5

	// relevanceFloor drops passages too dissimilar to be useful.
	relevanceFloor = 0.3

	// historyExchanges is how many prior question/answer pairs are kept
	// in the prompt. Older turns are dropped to bound prompt growth.
	historyExchanges = 3

	// chatTimeout bounds the language model call. On expiry the answer
	// degrades instead of hanging the request.
	chatTimeout = 2 * time.Minute

	// fallbackSnippetLen is how much of a passage the degraded answer
	// quotes verbatim.
	fallbackSnippetLen = 300
)

const systemPrompt = `You are a helpful assistant answering questions about a university ` +
	`using excerpts from its official websites. Answer using ONLY the provided context. ` +
	`If the context does not contain the answer, say that you could not find the ` +
	`information on the university websites. Answer in the language the question was asked in.`

// AnswerService produces grounded answers with cited sources.
type AnswerService struct {
	embedder driven.Embedder
	store    driven.VectorStore
	llm      driven.LLMService
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional (can be nil); without it every answer
// takes the degraded path.
func NewAnswerService(embedder driven.Embedder, store driven.VectorStore, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		embedder: embedder,
		store:    store,
		llm:      llm,
	}
}

// Ask answers a question using retrieved contexts and the language model.
// It always returns an answer unless retrieval itself is impossible:
// when the model is unreachable or times out, the answer is synthesised
// from the retrieved passages and flagged Degraded.
func (s *AnswerService) Ask(ctx context.Context, question string, history []domain.ChatMessage) (*domain.Answer, error) {
	start := time.Now()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	logger.Section("Question Answering")
	logger.Debug("Question: %q", question)

	contexts, err := s.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	logger.Info("Retrieved %d relevant passages", len(contexts))

	answer := &domain.Answer{
		Sources: sourcesFrom(contexts),
	}

	if s.llm == nil {
		logger.Debug("No language model configured, using fallback")
		answer.Text = fallbackText(question, contexts)
		answer.Degraded = true
		answer.ProcessingTime = time.Since(start)
		return answer, nil
	}

	text, err := s.generate(ctx, question, history, contexts)
	if err != nil {
		logger.Warn("Language model unavailable, degrading: %v", err)
		answer.Text = fallbackText(question, contexts)
		answer.Degraded = true
	} else {
		answer.Text = text
	}

	answer.ProcessingTime = time.Since(start)
	return answer, nil
}

// retrieve embeds the question and returns the nearest passages above
// the relevance floor.
func (s *AnswerService) retrieve(ctx context.Context, question string) ([]domain.RAGContext, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := s.store.Query(ctx, vector, contextLimit, "")
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}

	contexts := make([]domain.RAGContext, 0, len(results))
	for _, r := range results {
		if r.Relevance < relevanceFloor {
			continue
		}
		contexts = append(contexts, domain.RAGContext{
			Content:   r.Content,
			URL:       r.Metadata.URL,
			Title:     r.Metadata.Title,
			Relevance: r.Relevance,
		})
	}
	return contexts, nil
}

// generate runs the chat completion with the retrieved contexts folded
// into the final user turn.
func (s *AnswerService) generate(
	ctx context.Context, question string, history []domain.ChatMessage, contexts []domain.RAGContext,
) (string, error) {
	messages := make([]domain.ChatMessage, 0, 2+2*historyExchanges)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, trimHistory(history)...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: buildPrompt(question, contexts),
	})

	chatCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	return s.llm.Chat(chatCtx, messages, driven.ChatOptions{Temperature: 0.2})
}

// trimHistory keeps only the most recent exchanges, dropping any system
// messages the caller may have included.
func trimHistory(history []domain.ChatMessage) []domain.ChatMessage {
	filtered := make([]domain.ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		filtered = append(filtered, m)
	}

	keep := 2 * historyExchanges
	if len(filtered) > keep {
		filtered = filtered[len(filtered)-keep:]
	}
	return filtered
}

// buildPrompt annotates the question with the retrieved passages.
func buildPrompt(question string, contexts []domain.RAGContext) string {
	if len(contexts) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Context from university websites:\n\n")
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] %s (%s, relevance %.0f%%)\n%s\n\n",
			i+1, c.Title, c.URL, c.Relevance*100, c.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// fallbackText synthesises a deterministic answer from the retrieved
// passages when the language model cannot be reached.
func fallbackText(question string, contexts []domain.RAGContext) string {
	if len(contexts) == 0 {
		return "I could not find information about this on the indexed university pages. " +
			"Try rephrasing the question or re-running the crawl."
	}

	var b strings.Builder
	b.WriteString("The assistant is currently unavailable, but these indexed pages appear relevant to ")
	fmt.Fprintf(&b, "%q:\n\n", question)

	shown := contexts
	if len(shown) > 2 {
		shown = shown[:2]
	}
	for _, c := range shown {
		fmt.Fprintf(&b, "%s (%s):\n%s\n\n", c.Title, c.URL, snippet(c.Content, fallbackSnippetLen))
	}
	return strings.TrimRight(b.String(), "\n")
}

// snippet truncates text at a rune boundary, appending an ellipsis.
func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

func sourcesFrom(contexts []domain.RAGContext) []domain.Source {
	seen := make(map[string]bool, len(contexts))
	sources := make([]domain.Source, 0, len(contexts))
	for _, c := range contexts {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		sources = append(sources, domain.Source{
			URL:       c.URL,
			Title:     c.Title,
			Relevance: c.Relevance,
		})
	}
	return sources
}
