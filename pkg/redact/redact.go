// Package redact masks personal data in free text. Chat messages pass
// through here before they are sent to the AI provider, and the message
// field of intake-log entries is redacted the same way.
package redact

import (
	"regexp"
	"strings"
)

// Redactor handles text preprocessing and PII masking.
type Redactor struct {
	patterns []*regexp.Regexp
	maxSize  int
}

// Pattern definitions for personal data commonly pasted into chat.
var defaultPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),

	// Phone numbers (Italian landline/mobile shapes, with optional +39)
	regexp.MustCompile(`(\+39[\s.-]?)?\(?0\d{1,3}\)?[\s.-]?\d{5,8}`),
	regexp.MustCompile(`(\+39[\s.-]?)?3\d{2}[\s.-]?\d{6,7}`),

	// Italian fiscal codes
	regexp.MustCompile(`(?i)\b[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]\b`),

	// IBANs
	regexp.MustCompile(`(?i)\bIT\d{2}[A-Z]\d{10}[0-9A-Z]{12}\b`),

	// Credentials that end up pasted into support chats
	regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?([^\s'"]{4,})['"]?`),
	regexp.MustCompile(`(?i)(api[_-]?key|token)\s*[:=]\s*['"]?([a-zA-Z0-9_\-\.]{16,})['"]?`),
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-\.]+`),
}

const mask = "[RIMOSSO]"

// New creates a Redactor with default patterns.
func New(maxSize int) *Redactor {
	return &Redactor{
		patterns: defaultPatterns,
		maxSize:  maxSize,
	}
}

// Redact trims the text, enforces the size limit and masks every match.
func (r *Redactor) Redact(text string) string {
	text = strings.TrimSpace(text)

	if r.maxSize > 0 && len(text) > r.maxSize {
		text = text[:r.maxSize]
	}

	for _, pattern := range r.patterns {
		text = pattern.ReplaceAllStringFunc(text, maskValue)
	}

	return text
}

// maskValue keeps a key-value prefix visible so "password: x" still reads
// as a credential in the redacted output.
func maskValue(match string) string {
	if idx := strings.IndexAny(match, ":="); idx != -1 {
		return match[:idx+1] + mask
	}
	return mask
}

// IsEmpty checks if the text is empty or whitespace only.
func (r *Redactor) IsEmpty(text string) bool {
	return strings.TrimSpace(text) == ""
}
