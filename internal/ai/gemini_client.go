// Package ai provides the chat-assist client interface and implementations.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/config"
	"github.com/it-era/intake/internal/domain"
)

// GeminiClient implements the Client interface using Google's Gemini API.
type GeminiClient struct {
	config     *config.AIConfig
	httpClient *http.Client
	prompter   PromptBuilder
	validator  ResponseValidator
	logger     *zap.Logger
}

// Gemini API request/response structures

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiClient creates a new Gemini chat-assist client.
func NewGeminiClient(cfg *config.AIConfig, prompter PromptBuilder, validator ResponseValidator, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		prompter:  prompter,
		validator: validator,
		logger:    logger.Named("gemini_client"),
	}
}

// Suggest asks Gemini for a reply suggestion.
func (c *GeminiClient) Suggest(ctx context.Context, message string, classification domain.Classification) (*domain.ReplySuggestion, error) {
	startTime := time.Now()
	c.logger.Debug("starting Gemini suggestion", zap.Int("message_length", len(message)))

	// Gemini has no separate system role in the v1beta REST API; embed
	// the system prompt in front of the user prompt.
	combinedPrompt := fmt.Sprintf("%s\n\n---\n\n%s",
		c.prompter.BuildSystemPrompt(),
		c.prompter.BuildUserPrompt(message, classification),
	)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: combinedPrompt},
				},
			},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.3,
			MaxOutputTokens: c.config.MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.WrapError("marshal_request", err, false)
	}

	url := c.buildURL()

	// Execute request with retry logic
	var suggestion *domain.ReplySuggestion
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := time.Duration(attempt*attempt) * time.Second
			c.logger.Debug("retrying Gemini request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, domain.WrapError("context_cancelled", ctx.Err(), false)
			case <-time.After(backoff):
			}
		}

		suggestion, lastErr = c.executeRequest(ctx, url, jsonBody)
		if lastErr == nil {
			break
		}

		if !domain.IsRetryable(lastErr) {
			break
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}

	c.logger.Debug("Gemini suggestion completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Bool("handoff", suggestion.Handoff),
	)

	return suggestion, nil
}

// buildURL constructs the Gemini API URL.
func (c *GeminiClient) buildURL() string {
	baseURL := strings.TrimSuffix(c.config.BaseURL, "/")

	// Support both full URL and just the base
	if strings.Contains(baseURL, "/v1") || strings.Contains(baseURL, "/v1beta") {
		return fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, c.config.Model, c.config.APIKey)
	}

	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", baseURL, c.config.Model, c.config.APIKey)
}

// executeRequest performs a single HTTP request to the Gemini API.
func (c *GeminiClient) executeRequest(ctx context.Context, url string, jsonBody []byte) (*domain.ReplySuggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, domain.WrapError("create_request", err, false)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.WrapError("gemini_timeout", domain.ErrAITimeout, true)
		}
		return nil, domain.WrapError("http_request", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError("read_response", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, domain.WrapError("rate_limit", domain.ErrRateLimited, true)
		}
		if resp.StatusCode >= 500 {
			return nil, domain.WrapError("gemini_unavailable", domain.ErrAIUnavailable, true)
		}
		return nil, domain.WrapError("gemini_error",
			fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, truncate(string(body), 500)), false)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, domain.WrapError("parse_response", err, false)
	}

	if geminiResp.Error != nil {
		return nil, domain.WrapError("gemini_api_error",
			fmt.Errorf("[%d] %s: %s", geminiResp.Error.Code, geminiResp.Error.Status, geminiResp.Error.Message), false)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, domain.WrapError("empty_response", domain.ErrInvalidAIResponse, false)
	}

	candidate := geminiResp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, domain.WrapError("safety_filter",
			fmt.Errorf("response blocked by safety filter"), false)
	}

	var textContent strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			textContent.WriteString(part.Text)
		}
	}

	jsonContent := extractJSON(textContent.String())
	if jsonContent == "" {
		return nil, domain.WrapError("extract_json", domain.ErrInvalidAIResponse, false)
	}

	var suggestion domain.ReplySuggestion
	if err := json.Unmarshal([]byte(jsonContent), &suggestion); err != nil {
		return nil, domain.WrapError("unmarshal_suggestion", domain.ErrInvalidAIResponse, false)
	}

	if err := c.validator.Validate(&suggestion); err != nil {
		return nil, err
	}

	return &suggestion, nil
}

// HealthCheck verifies the Gemini API is reachable.
func (c *GeminiClient) HealthCheck(ctx context.Context) error {
	baseURL := strings.TrimSuffix(c.config.BaseURL, "/")
	url := fmt.Sprintf("%s/v1beta/models?key=%s", baseURL, c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError("health_check", domain.ErrAIUnavailable, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WrapError("health_check", domain.ErrAIUnavailable, true)
	}

	return nil
}
