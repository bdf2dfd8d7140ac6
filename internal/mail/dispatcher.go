// Package mail composes and delivers notification emails.
package mail

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
)

// Outcome collects the independent results of the two sends.
type Outcome struct {
	// OwnerErr is the owner-notification send error, if any.
	OwnerErr error

	// CustomerErr is the customer-confirmation send error, if any.
	CustomerErr error
}

// Failed reports whether either send did not succeed.
func (o Outcome) Failed() bool {
	return o.OwnerErr != nil || o.CustomerErr != nil
}

// Dispatcher sends the two notifications of a submission concurrently.
// The sends settle independently: a failure in one never cancels the
// other, because a half-delivered lead still beats a lost one.
type Dispatcher struct {
	sender Sender
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given sender.
func NewDispatcher(sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger.Named("dispatcher"),
	}
}

// Send dispatches both notifications in parallel and waits for both
// outcomes.
func (d *Dispatcher) Send(ctx context.Context, owner domain.Notification, customer domain.Notification) Outcome {
	var outcome Outcome
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		outcome.OwnerErr = d.sender.Send(ctx, owner)
	}()
	go func() {
		defer wg.Done()
		outcome.CustomerErr = d.sender.Send(ctx, customer)
	}()
	wg.Wait()

	if outcome.OwnerErr != nil {
		d.logger.Error("owner notification failed", zap.Error(outcome.OwnerErr), zap.String("to", owner.To))
	}
	if outcome.CustomerErr != nil {
		d.logger.Error("customer confirmation failed", zap.Error(outcome.CustomerErr), zap.String("to", customer.To))
	}

	return outcome
}
