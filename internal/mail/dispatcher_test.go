// Package mail provides unit tests for the concurrent dispatcher.
package mail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
)

// recordingSender fails sends whose recipient is in failFor and records
// every recipient it saw.
type recordingSender struct {
	mu      sync.Mutex
	seen    []string
	failFor map[string]error
}

func (s *recordingSender) Send(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	s.seen = append(s.seen, n.To)
	s.mu.Unlock()
	if err, ok := s.failFor[n.To]; ok {
		return err
	}
	return nil
}

func TestDispatcher_Send_BothSucceed(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, zap.NewNop())

	outcome := d.Send(context.Background(),
		domain.Notification{To: "info@it-era.it"},
		domain.Notification{To: "mario@example.com"},
	)

	if outcome.Failed() {
		t.Errorf("Failed() = true, owner=%v customer=%v", outcome.OwnerErr, outcome.CustomerErr)
	}
	if len(sender.seen) != 2 {
		t.Errorf("sender saw %d sends, want 2", len(sender.seen))
	}
}

func TestDispatcher_Send_AllSettle(t *testing.T) {
	providerErr := errors.New("quota exceeded")

	tests := []struct {
		name         string
		failFor      map[string]error
		wantOwnerErr bool
		wantCustErr  bool
	}{
		{
			name:         "owner send fails, customer still delivered",
			failFor:      map[string]error{"info@it-era.it": providerErr},
			wantOwnerErr: true,
		},
		{
			name:        "customer send fails, owner still delivered",
			failFor:     map[string]error{"mario@example.com": providerErr},
			wantCustErr: true,
		},
		{
			name: "both fail",
			failFor: map[string]error{
				"info@it-era.it":    providerErr,
				"mario@example.com": providerErr,
			},
			wantOwnerErr: true,
			wantCustErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{failFor: tt.failFor}
			d := NewDispatcher(sender, zap.NewNop())

			outcome := d.Send(context.Background(),
				domain.Notification{To: "info@it-era.it"},
				domain.Notification{To: "mario@example.com"},
			)

			if !outcome.Failed() {
				t.Error("Failed() = false, want true")
			}
			if (outcome.OwnerErr != nil) != tt.wantOwnerErr {
				t.Errorf("OwnerErr = %v, wantErr %v", outcome.OwnerErr, tt.wantOwnerErr)
			}
			if (outcome.CustomerErr != nil) != tt.wantCustErr {
				t.Errorf("CustomerErr = %v, wantErr %v", outcome.CustomerErr, tt.wantCustErr)
			}

			// A failure on one side must never suppress the other send.
			if len(sender.seen) != 2 {
				t.Errorf("sender saw %d sends, want 2", len(sender.seen))
			}
		})
	}
}
