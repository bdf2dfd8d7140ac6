package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
	"github.com/it-era/intake/internal/intakelog"
	"github.com/it-era/intake/internal/mail"
	"github.com/it-era/intake/pkg/redact"
)

const ownerAddress = "info@it-era.it"

var ticketIDPattern = regexp.MustCompile(`^IT\d{6}[A-Z0-9]{6}$`)

// fakeSender records every notification and can fail for one recipient.
type fakeSender struct {
	mu     sync.Mutex
	sent   []domain.Notification
	failTo string
}

func (f *fakeSender) Send(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	f.sent = append(f.sent, n)
	f.mu.Unlock()
	if f.failTo != "" && n.To == f.failTo {
		return errors.New("smtp gateway unavailable")
	}
	return nil
}

func (f *fakeSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, n := range f.sent {
		out = append(out, n.To)
	}
	return out
}

func validSubmission() domain.Submission {
	return domain.Submission{
		Name:            "Mario Rossi",
		Email:           "mario.rossi@example.com",
		Phone:           "+39 333 1234567",
		City:            "Vimercate",
		Service:         "assistenza-tecnica",
		Message:         "Il gestionale non si avvia da questa mattina su tutte le postazioni.",
		PrivacyAccepted: true,
		SourcePage:      "/assistenza",
	}
}

func newTestIntake(t *testing.T, sender mail.Sender, store intakelog.Store) *Intake {
	t.Helper()
	logger := zap.NewNop()
	return NewIntake(
		mail.NewComposer(ownerAddress),
		mail.NewDispatcher(sender, logger),
		store,
		redact.New(4096),
		logger,
	)
}

func TestIntake_Process_ValidSubmission(t *testing.T) {
	sender := &fakeSender{}
	store := intakelog.NewMemoryStore(100)
	svc := newTestIntake(t, sender, store)

	result := svc.Process(context.Background(), validSubmission())
	svc.Wait()

	if !result.OK {
		t.Fatalf("Process() OK = false, want true")
	}
	if !ticketIDPattern.MatchString(result.TicketID) {
		t.Errorf("TicketID = %q, does not match expected format", result.TicketID)
	}
	if result.DeliveryFailed {
		t.Errorf("DeliveryFailed = true, want false")
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	recipients := sender.recipients()
	if len(recipients) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(recipients))
	}
	seen := map[string]bool{}
	for _, to := range recipients {
		seen[to] = true
	}
	if !seen[ownerAddress] {
		t.Errorf("no notification sent to owner %s", ownerAddress)
	}
	if !seen["mario.rossi@example.com"] {
		t.Errorf("no confirmation sent to customer")
	}

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log has %d entries, want 1", len(entries))
	}
	if entries[0].TicketID != result.TicketID {
		t.Errorf("logged ticket = %q, want %q", entries[0].TicketID, result.TicketID)
	}
}

func TestIntake_Process_InvalidSubmission(t *testing.T) {
	sender := &fakeSender{}
	store := intakelog.NewMemoryStore(100)
	svc := newTestIntake(t, sender, store)

	sub := validSubmission()
	sub.Email = "not-an-email"
	sub.PrivacyAccepted = false

	result := svc.Process(context.Background(), sub)
	svc.Wait()

	if result.OK {
		t.Errorf("Process() OK = true for invalid submission")
	}
	if result.TicketID != "" {
		t.Errorf("TicketID = %q, want empty on rejection", result.TicketID)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, want 2 violations", result.Errors)
	}
	if got := len(sender.recipients()); got != 0 {
		t.Errorf("sent %d notifications for rejected submission, want 0", got)
	}
	entries, _ := store.Recent(context.Background(), 10)
	if len(entries) != 0 {
		t.Errorf("log has %d entries for rejected submission, want 0", len(entries))
	}
}

func TestIntake_Process_DeliveryFailure(t *testing.T) {
	tests := []struct {
		name   string
		failTo string
	}{
		{name: "owner send fails", failTo: ownerAddress},
		{name: "customer send fails", failTo: "mario.rossi@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{failTo: tt.failTo}
			store := intakelog.NewMemoryStore(100)
			svc := newTestIntake(t, sender, store)

			result := svc.Process(context.Background(), validSubmission())
			svc.Wait()

			if result.OK {
				t.Errorf("Process() OK = true despite delivery failure")
			}
			if !result.DeliveryFailed {
				t.Errorf("DeliveryFailed = false, want true")
			}
			if !ticketIDPattern.MatchString(result.TicketID) {
				t.Errorf("TicketID = %q, want valid ticket even on delivery failure", result.TicketID)
			}
			// Both sends must have been attempted.
			if got := len(sender.recipients()); got != 2 {
				t.Errorf("attempted %d sends, want 2", got)
			}
			// The lead is still recorded.
			entries, _ := store.Recent(context.Background(), 10)
			if len(entries) != 1 {
				t.Errorf("log has %d entries, want 1", len(entries))
			}
		})
	}
}

func TestIntake_Process_LogEntryIsRedacted(t *testing.T) {
	sender := &fakeSender{}
	store := intakelog.NewMemoryStore(100)
	svc := newTestIntake(t, sender, store)

	sub := validSubmission()
	sub.Message = "Non accedo più alla mail del collega giulia.bianchi@example.com, potete aiutarci?"

	result := svc.Process(context.Background(), sub)
	svc.Wait()

	if !result.OK {
		t.Fatalf("Process() failed: %+v", result)
	}
	entries, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log has %d entries, want 1", len(entries))
	}
	if strings.Contains(entries[0].Message, "giulia.bianchi@example.com") {
		t.Errorf("logged message still contains raw email address: %q", entries[0].Message)
	}
	if !strings.Contains(entries[0].Message, "[RIMOSSO]") {
		t.Errorf("logged message missing redaction marker: %q", entries[0].Message)
	}
}

func TestIntake_Process_LogStoreFailureDoesNotAffectResult(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestIntake(t, sender, failingStore{})

	result := svc.Process(context.Background(), validSubmission())
	svc.Wait()

	if !result.OK {
		t.Errorf("Process() OK = false when only the log store failed")
	}
}

func TestIntake_WithClock(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	sender := &fakeSender{}
	store := intakelog.NewMemoryStore(100)
	svc := newTestIntake(t, sender, store).WithClock(func() time.Time { return fixed })

	result := svc.Process(context.Background(), validSubmission())
	svc.Wait()

	if !strings.HasPrefix(result.TicketID, "IT250615") {
		t.Errorf("TicketID = %q, want date code 250615", result.TicketID)
	}
}

// failingStore always errors on Append.
type failingStore struct{}

func (failingStore) Append(context.Context, domain.LogEntry) error {
	return errors.New("store unavailable")
}

func (failingStore) Recent(context.Context, int) ([]domain.LogEntry, error) {
	return nil, errors.New("store unavailable")
}
