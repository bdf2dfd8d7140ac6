// Package ai provides the chat-assist client interface and implementations.
package ai

import (
	"fmt"

	"github.com/it-era/intake/internal/domain"
)

const (
	maxReplyLength = 1200
	maxOptions     = 4
	maxOptionLen   = 80
)

// DefaultValidator implements ResponseValidator with strict schema checks.
type DefaultValidator struct{}

// NewDefaultValidator creates a new response validator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// Validate checks if the AI response conforms to the expected schema.
func (v *DefaultValidator) Validate(suggestion *domain.ReplySuggestion) error {
	if suggestion == nil {
		return domain.WrapError("validate",
			fmt.Errorf("suggestion is nil"), false)
	}

	if suggestion.Reply == "" {
		return domain.WrapError("validate_reply",
			fmt.Errorf("%w: reply is required", domain.ErrInvalidAIResponse), false)
	}

	if len(suggestion.Reply) > maxReplyLength {
		return domain.WrapError("validate_reply",
			fmt.Errorf("%w: reply exceeds %d bytes", domain.ErrInvalidAIResponse, maxReplyLength), false)
	}

	if len(suggestion.Options) > maxOptions {
		return domain.WrapError("validate_options",
			fmt.Errorf("%w: at most %d options allowed, got %d",
				domain.ErrInvalidAIResponse, maxOptions, len(suggestion.Options)), false)
	}

	for i, option := range suggestion.Options {
		if option == "" {
			return domain.WrapError("validate_options",
				fmt.Errorf("%w: option[%d] is empty", domain.ErrInvalidAIResponse, i), false)
		}
		if len(option) > maxOptionLen {
			return domain.WrapError("validate_options",
				fmt.Errorf("%w: option[%d] exceeds %d bytes", domain.ErrInvalidAIResponse, i, maxOptionLen), false)
		}
	}

	return nil
}
