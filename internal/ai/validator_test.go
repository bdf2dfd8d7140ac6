// Package ai provides unit tests for the response validator.
package ai

import (
	"strings"
	"testing"

	"github.com/it-era/intake/internal/domain"
)

func TestDefaultValidator_Validate(t *testing.T) {
	v := NewDefaultValidator()

	tests := []struct {
		name       string
		suggestion *domain.ReplySuggestion
		wantErr    bool
	}{
		{
			name: "valid suggestion",
			suggestion: &domain.ReplySuggestion{
				Reply:   "Grazie, ti ricontattiamo subito.",
				Options: []string{"Richiedi preventivo", "Parla con un operatore"},
				Handoff: false,
			},
			wantErr: false,
		},
		{
			name: "valid without options",
			suggestion: &domain.ReplySuggestion{
				Reply: "Grazie per averci scritto.",
			},
			wantErr: false,
		},
		{
			name:       "nil suggestion",
			suggestion: nil,
			wantErr:    true,
		},
		{
			name: "empty reply",
			suggestion: &domain.ReplySuggestion{
				Reply: "",
			},
			wantErr: true,
		},
		{
			name: "reply too long",
			suggestion: &domain.ReplySuggestion{
				Reply: strings.Repeat("a", maxReplyLength+1),
			},
			wantErr: true,
		},
		{
			name: "too many options",
			suggestion: &domain.ReplySuggestion{
				Reply:   "Grazie.",
				Options: []string{"a", "b", "c", "d", "e"},
			},
			wantErr: true,
		},
		{
			name: "empty option",
			suggestion: &domain.ReplySuggestion{
				Reply:   "Grazie.",
				Options: []string{"Preventivo", ""},
			},
			wantErr: true,
		},
		{
			name: "oversized option",
			suggestion: &domain.ReplySuggestion{
				Reply:   "Grazie.",
				Options: []string{strings.Repeat("x", maxOptionLen+1)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.suggestion)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
