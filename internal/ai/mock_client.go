// Package ai provides the chat-assist client interface and implementations.
package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
)

// MockClient implements the Client interface for testing and for
// deployments without an AI key.
type MockClient struct {
	logger *zap.Logger
}

// NewMockClient creates a new mock chat-assist client.
func NewMockClient(logger *zap.Logger) *MockClient {
	return &MockClient{
		logger: logger.Named("mock_ai_client"),
	}
}

// Suggest returns a canned suggestion.
func (c *MockClient) Suggest(ctx context.Context, message string, classification domain.Classification) (*domain.ReplySuggestion, error) {
	c.logger.Debug("mock AI suggestion", zap.Int("message_length", len(message)))

	return &domain.ReplySuggestion{
		Reply: "Grazie per il messaggio! Un nostro tecnico ti ricontatterà al più presto. " +
			"Nel frattempo puoi lasciarci qualche dettaglio in più sul problema.",
		Options: []string{
			"Descrivi il problema",
			"Richiedi un preventivo",
			"Parla con un operatore",
		},
		Handoff: classification.Urgency.AtLeast(domain.UrgencyHigh),
	}, nil
}

// HealthCheck always returns success for mock client.
func (c *MockClient) HealthCheck(ctx context.Context) error {
	return nil
}
