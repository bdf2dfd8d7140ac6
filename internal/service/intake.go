// Package service contains the business logic layer.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
	"github.com/it-era/intake/internal/intakelog"
	"github.com/it-era/intake/internal/mail"
	"github.com/it-era/intake/internal/ticket"
	"github.com/it-era/intake/internal/validate"
	"github.com/it-era/intake/pkg/redact"
)

const logAppendTimeout = 10 * time.Second

// Intake orchestrates the contact submission pipeline.
type Intake struct {
	composer   *mail.Composer
	dispatcher *mail.Dispatcher
	store      intakelog.Store
	redactor   *redact.Redactor
	logger     *zap.Logger
	now        func() time.Time
	background sync.WaitGroup
}

// NewIntake creates an Intake with all dependencies.
func NewIntake(
	composer *mail.Composer,
	dispatcher *mail.Dispatcher,
	store intakelog.Store,
	redactor *redact.Redactor,
	logger *zap.Logger,
) *Intake {
	return &Intake{
		composer:   composer,
		dispatcher: dispatcher,
		store:      store,
		redactor:   redactor,
		logger:     logger.Named("intake"),
		now:        time.Now,
	}
}

// Process runs a submission through the pipeline:
// 1. Validate, collecting every violation
// 2. Generate the ticket ID
// 3. Compose owner and customer notifications
// 4. Dispatch both concurrently
// 5. Append the redacted log entry in the background
//
// Logging is decoupled from the result on purpose: a lead must never be
// lost because the log store is down.
func (s *Intake) Process(ctx context.Context, sub domain.Submission) domain.IntakeResult {
	startTime := time.Now()

	violations := validate.Check(sub)
	if len(violations) > 0 {
		s.logger.Info("submission rejected",
			zap.Int("violations", len(violations)),
		)
		return domain.IntakeResult{
			OK:     false,
			Errors: violations,
		}
	}

	ticketID := ticket.Generate(s.now())
	logger := s.logger.With(zap.String("ticket_id", ticketID))

	owner, err := s.composer.ComposeOwner(sub, ticketID, s.now())
	if err != nil {
		logger.Error("compose owner notification failed", zap.Error(err))
		return domain.IntakeResult{TicketID: ticketID, DeliveryFailed: true}
	}
	customer, err := s.composer.ComposeCustomer(sub, ticketID)
	if err != nil {
		logger.Error("compose customer confirmation failed", zap.Error(err))
		return domain.IntakeResult{TicketID: ticketID, DeliveryFailed: true}
	}

	outcome := s.dispatcher.Send(ctx, owner, customer)

	// The log write must not delay the response; it runs detached with
	// its own deadline and swallows its errors.
	s.background.Add(1)
	go s.appendLogEntry(sub, ticketID)

	if outcome.Failed() {
		logger.Warn("submission delivery failed",
			zap.Bool("owner_failed", outcome.OwnerErr != nil),
			zap.Bool("customer_failed", outcome.CustomerErr != nil),
			zap.Duration("duration", time.Since(startTime)),
		)
		return domain.IntakeResult{
			TicketID:       ticketID,
			DeliveryFailed: true,
		}
	}

	logger.Info("submission accepted",
		zap.Duration("duration", time.Since(startTime)),
	)

	return domain.IntakeResult{
		OK:       true,
		TicketID: ticketID,
	}
}

// appendLogEntry writes the redacted record of the submission. Any
// failure here is logged and dropped.
func (s *Intake) appendLogEntry(sub domain.Submission, ticketID string) {
	defer s.background.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in log append", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), logAppendTimeout)
	defer cancel()

	entry := domain.LogEntry{
		TicketID:   ticketID,
		Timestamp:  s.now().UTC(),
		Name:       sub.Name,
		Email:      sub.Email,
		Phone:      sub.Phone,
		City:       sub.City,
		Service:    sub.Service,
		SourcePage: sub.SourcePage,
		Message:    s.redactor.Redact(sub.Message),
		UserAgent:  sub.UserAgent,
		ClientIP:   sub.ClientIP,
	}

	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Warn("intake log append failed",
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
	}
}

// Wait blocks until all detached log writes have settled. Called during
// graceful shutdown and by tests.
func (s *Intake) Wait() {
	s.background.Wait()
}

// WithClock overrides the time source. Used by tests.
func (s *Intake) WithClock(now func() time.Time) *Intake {
	s.now = now
	return s
}
