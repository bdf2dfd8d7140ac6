// Package ai provides the chat-assist client interface and implementations.
package ai

import (
	"context"

	"github.com/it-era/intake/internal/domain"
)

// Client produces reply suggestions for chat messages.
type Client interface {
	// Suggest returns a structured reply suggestion for the (already
	// redacted) visitor message. The classification gives the model the
	// urgency/sector context the rules derived.
	Suggest(ctx context.Context, message string, classification domain.Classification) (*domain.ReplySuggestion, error)

	// HealthCheck verifies the AI service is reachable.
	HealthCheck(ctx context.Context) error
}

// PromptBuilder constructs the prompts sent to the AI service.
type PromptBuilder interface {
	// BuildSystemPrompt returns the system prompt.
	BuildSystemPrompt() string

	// BuildUserPrompt constructs the user prompt for one message.
	BuildUserPrompt(message string, classification domain.Classification) string
}

// ResponseValidator checks AI responses against the expected schema.
type ResponseValidator interface {
	// Validate returns an error when the suggestion violates the schema.
	Validate(suggestion *domain.ReplySuggestion) error
}
