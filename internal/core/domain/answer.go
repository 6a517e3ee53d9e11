package domain

import "time"

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Source cites one retrieved passage backing an answer.
type Source struct {
	URL       string
	Title     string
	Relevance float64
}

// Answer is the result of one question. A request always produces an
// Answer: when the language model is unavailable the Degraded flag is set
// and Text is synthesised from the retrieved contexts.
type Answer struct {
	Text           string
	Sources        []Source
	Degraded       bool
	ProcessingTime time.Duration
}
