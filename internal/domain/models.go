// Package domain contains the core domain models and types.
// These models represent the business logic contracts and are independent
// of any infrastructure concerns.
package domain

import "time"

// Urgency represents how quickly a lead expects to be handled.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// IsValid checks if the urgency value is one of the allowed values.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	default:
		return false
	}
}

// AtLeast reports whether u is at the same level as other or higher.
func (u Urgency) AtLeast(other Urgency) bool {
	return u.rank() >= other.rank()
}

func (u Urgency) rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// Sector identifies the business vertical a lead belongs to.
type Sector string

const (
	SectorMedical Sector = "medical"
	SectorLegal   Sector = "legal"
	SectorGeneral Sector = "general"
)

// IsValid checks if the sector value is one of the allowed values.
func (s Sector) IsValid() bool {
	switch s {
	case SectorMedical, SectorLegal, SectorGeneral:
		return true
	default:
		return false
	}
}

// Submission represents a user-originated contact request.
// It is built once at the HTTP boundary and never mutated afterwards.
type Submission struct {
	// Name is the submitter's name. Required, at least 2 characters.
	Name string `json:"name"`

	// Email is the submitter's address. Required, loosely validated.
	Email string `json:"email"`

	// Phone is optional; digits, spaces, +, - and parentheses only.
	Phone string `json:"phone,omitempty"`

	// City is optional free text.
	City string `json:"city,omitempty"`

	// Service is the requested service, if the form declared one.
	Service string `json:"service,omitempty"`

	// Message is the request body. Required, at least 10 characters.
	Message string `json:"message"`

	// PrivacyAccepted must be true for the submission to proceed.
	PrivacyAccepted bool `json:"privacy_accepted"`

	// SourcePage is the page the form was submitted from.
	SourcePage string `json:"src,omitempty"`

	// UserAgent is captured from the request headers.
	UserAgent string `json:"user_agent,omitempty"`

	// ClientIP is captured from the connection.
	ClientIP string `json:"client_ip,omitempty"`
}

// Notification is a composed email, ready for the dispatcher.
type Notification struct {
	// To is the recipient address.
	To string

	// Subject is the email subject line.
	Subject string

	// HTML is the rendered HTML body.
	HTML string

	// Text is the plaintext alternative body.
	Text string
}

// IntakeResult is the outcome of running a submission through the pipeline.
type IntakeResult struct {
	// OK indicates the submission was accepted and both emails delivered.
	OK bool

	// TicketID is set once validation passed, even when delivery failed,
	// so the user always has a reference.
	TicketID string

	// Errors holds every validation violation when validation failed.
	Errors []string

	// DeliveryFailed is true when at least one email send failed.
	DeliveryFailed bool
}

// LogEntry is the redacted record appended to the bounded intake log.
type LogEntry struct {
	TicketID   string    `json:"ticket_id"`
	Timestamp  time.Time `json:"timestamp"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	City       string    `json:"city,omitempty"`
	Service    string    `json:"service,omitempty"`
	SourcePage string    `json:"src,omitempty"`
	Message    string    `json:"message"`
	UserAgent  string    `json:"user_agent,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
}

// Classification is the advisory result of scoring one chat message.
// It is never persisted; it only steers the immediate reply.
type Classification struct {
	// Urgency is the banded urgency level derived from the score.
	Urgency Urgency `json:"urgency"`

	// Sector is the detected (or declared) business sector.
	Sector Sector `json:"sector"`

	// Score is the additive urgency score after multipliers.
	Score float64 `json:"score"`

	// SectorScore is the raw keyword score for the winning sector.
	SectorScore float64 `json:"sector_score"`

	// OutOfHours is true when the out-of-hours multiplier applied.
	OutOfHours bool `json:"out_of_hours"`
}

// ChatReply is what the chat service returns for one inbound message.
type ChatReply struct {
	// Reply is the text shown to the visitor.
	Reply string `json:"reply"`

	// Options are suggested quick replies, if any.
	Options []string `json:"options,omitempty"`

	// Escalate signals the widget to surface the emergency contact block.
	Escalate bool `json:"escalate"`

	// Priority is the urgency band driving the escalation decision.
	Priority Urgency `json:"priority"`

	// LeadScore is a 0-100 heuristic of how valuable the lead looks.
	LeadScore int `json:"lead_score"`

	// Source indicates whether the reply came from rules or AI assist.
	Source string `json:"source,omitempty"`
}

// ReplySuggestion is the structured output of the AI chat assist.
// This schema is enforced for all AI responses.
type ReplySuggestion struct {
	// Reply is the suggested reply text, in the visitor's language.
	Reply string `json:"reply"`

	// Options are up to four suggested quick replies.
	Options []string `json:"options,omitempty"`

	// Handoff indicates the AI recommends routing to a human.
	Handoff bool `json:"handoff"`
}
