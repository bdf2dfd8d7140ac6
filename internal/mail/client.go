// Package mail composes and delivers notification emails.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/config"
	"github.com/it-era/intake/internal/domain"
)

// Sender delivers one composed notification.
type Sender interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// Client implements Sender against a Resend-compatible transactional
// email HTTP API.
type Client struct {
	config     *config.MailConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// Provider API request/response structures
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Name    string `json:"name"`
	} `json:"error"`
}

// NewClient creates an email client for the configured provider.
func NewClient(cfg *config.MailConfig, logger *zap.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("mail_client"),
	}
}

// Send delivers the notification, retrying transient provider failures
// with exponential backoff.
func (c *Client) Send(ctx context.Context, notification domain.Notification) error {
	body := sendRequest{
		From:    c.config.FromEmail,
		To:      []string{notification.To},
		Subject: notification.Subject,
		HTML:    notification.HTML,
		Text:    notification.Text,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return domain.WrapError("marshal_request", err, false)
	}

	url := fmt.Sprintf("%s/emails", c.config.BaseURL)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := time.Duration(attempt*attempt) * time.Second
			c.logger.Debug("retrying email send",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return domain.WrapError("context_cancelled", ctx.Err(), false)
			case <-time.After(backoff):
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if reqErr != nil {
			return domain.WrapError("create_request", reqErr, false)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

		lastErr = c.executeRequest(ctx, req)
		if lastErr == nil {
			return nil
		}

		if !domain.IsRetryable(lastErr) {
			break
		}
	}

	return lastErr
}

// executeRequest performs a single HTTP request to the email provider.
func (c *Client) executeRequest(ctx context.Context, req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.WrapError("mail_timeout", domain.ErrMailTimeout, true)
		}
		return domain.WrapError("http_request", err, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.WrapError("read_response", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return domain.WrapError("rate_limit", domain.ErrRateLimited, true)
		}
		if resp.StatusCode >= 500 {
			return domain.WrapError("mail_unavailable", domain.ErrMailUnavailable, true)
		}
		return domain.WrapError("mail_error",
			fmt.Errorf("email API returned status %d: %s", resp.StatusCode, string(respBody)), false)
	}

	var sendResp sendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return domain.WrapError("parse_response", err, false)
	}

	if sendResp.Error != nil {
		return domain.WrapError("mail_api_error",
			fmt.Errorf("%s: %s", sendResp.Error.Name, sendResp.Error.Message), false)
	}

	c.logger.Debug("email accepted by provider",
		zap.String("provider_id", sendResp.ID),
		zap.String("to", req.URL.Host),
	)

	return nil
}

// MockSender implements Sender without touching the network. Used in
// tests and when EMAIL_MOCK_MODE is on.
type MockSender struct {
	logger *zap.Logger
}

// NewMockSender creates a mock email sender.
func NewMockSender(logger *zap.Logger) *MockSender {
	return &MockSender{
		logger: logger.Named("mock_mail_sender"),
	}
}

// Send logs the would-be delivery and succeeds.
func (m *MockSender) Send(ctx context.Context, notification domain.Notification) error {
	m.logger.Info("mock email send",
		zap.String("to", notification.To),
		zap.String("subject", notification.Subject),
	)
	return nil
}
