// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/it-era/intake/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Mail holds transactional-email provider settings.
	Mail MailConfig

	// IntakeLog holds bounded intake-log store settings.
	IntakeLog IntakeLogConfig

	// AI holds chat-assist settings.
	AI AIConfig

	// Chat holds chat session settings.
	Chat ChatConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// MailConfig contains transactional-email provider settings.
type MailConfig struct {
	// APIKey authenticates against the email provider.
	APIKey string

	// BaseURL is the provider API root.
	BaseURL string

	// OwnerEmail receives the internal lead notification.
	OwnerEmail string

	// FromEmail is the sender address on both notifications.
	FromEmail string

	// Timeout is the maximum time to wait for the provider.
	Timeout time.Duration

	// MaxRetries is the number of retries on transient failures.
	MaxRetries int

	// MockMode disables real sends; deliveries are logged and succeed.
	MockMode bool
}

// IntakeLogConfig contains settings for the bounded intake log.
type IntakeLogConfig struct {
	// RedisAddr is the Redis host:port. Empty selects the in-memory store.
	RedisAddr string

	// RedisPassword authenticates against Redis, if set.
	RedisPassword string

	// RedisDB selects the Redis logical database.
	RedisDB int

	// Key is the list key holding the log entries.
	Key string

	// MaxEntries caps the log length; oldest entries are evicted first.
	MaxEntries int
}

// AIProvider represents the AI provider to use.
type AIProvider string

const (
	// AIProviderOpenAI uses OpenAI-compatible API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini uses Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// AIConfig contains chat-assist AI settings.
type AIConfig struct {
	// Provider specifies which AI provider to use (openai, gemini).
	Provider AIProvider

	// APIKey is the authentication key for the AI provider.
	APIKey string

	// BaseURL is the base URL for the AI API (optional, provider-specific defaults).
	BaseURL string

	// Model is the AI model to use.
	Model string

	// Timeout is the maximum time to wait for AI responses.
	Timeout time.Duration

	// MaxTokens is the maximum tokens for AI response.
	MaxTokens int

	// MaxRetries is the number of retries on transient failures.
	MaxRetries int

	// MockMode enables mock responses for testing without API calls.
	MockMode bool
}

// ChatConfig contains chat session settings.
type ChatConfig struct {
	// SessionTTL is how long an idle chat session is kept alive.
	SessionTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	provider := AIProvider(getEnvOrDefault("AI_PROVIDER", "openai"))

	// Set provider-specific defaults
	var defaultBaseURL, defaultModel string
	switch provider {
	case AIProviderGemini:
		defaultBaseURL = "https://generativelanguage.googleapis.com"
		defaultModel = "gemini-2.0-flash"
	default:
		provider = AIProviderOpenAI
		defaultBaseURL = "https://api.openai.com/v1"
		defaultModel = "gpt-4o-mini"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Mail: MailConfig{
			APIKey:     os.Getenv("EMAIL_API_KEY"),
			BaseURL:    getEnvOrDefault("EMAIL_BASE_URL", "https://api.resend.com"),
			OwnerEmail: getEnvOrDefault("OWNER_EMAIL", "info@it-era.it"),
			FromEmail:  getEnvOrDefault("FROM_EMAIL", "IT-ERA <noreply@it-era.it>"),
			Timeout:    getDurationOrDefault("EMAIL_TIMEOUT", 15*time.Second),
			MaxRetries: getIntOrDefault("EMAIL_MAX_RETRIES", 2),
			MockMode:   getBoolOrDefault("EMAIL_MOCK_MODE", false),
		},
		IntakeLog: IntakeLogConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getIntOrDefault("REDIS_DB", 0),
			Key:           getEnvOrDefault("INTAKE_LOG_KEY", "intake:log"),
			MaxEntries:    getIntOrDefault("INTAKE_LOG_MAX", 1000),
		},
		AI: AIConfig{
			Provider:   provider,
			APIKey:     os.Getenv("AI_API_KEY"),
			BaseURL:    getEnvOrDefault("AI_BASE_URL", defaultBaseURL),
			Model:      getEnvOrDefault("AI_MODEL", defaultModel),
			Timeout:    getDurationOrDefault("AI_TIMEOUT", 30*time.Second),
			MaxTokens:  getIntOrDefault("AI_MAX_TOKENS", 512),
			MaxRetries: getIntOrDefault("AI_MAX_RETRIES", 2),
			MockMode:   getBoolOrDefault("AI_MOCK_MODE", true),
		},
		Chat: ChatConfig{
			SessionTTL: getDurationOrDefault("CHAT_SESSION_TTL", 30*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Email API key is required unless mock mode is on
	if !c.Mail.MockMode && c.Mail.APIKey == "" {
		return fmt.Errorf("%w: EMAIL_API_KEY is required when not in mock mode", domain.ErrInvalidConfig)
	}

	if c.Mail.OwnerEmail == "" {
		return fmt.Errorf("%w: OWNER_EMAIL must not be empty", domain.ErrInvalidConfig)
	}

	if c.Mail.Timeout < time.Second {
		return fmt.Errorf("%w: EMAIL_TIMEOUT must be at least 1 second", domain.ErrInvalidConfig)
	}

	if c.IntakeLog.MaxEntries < 1 {
		return fmt.Errorf("%w: INTAKE_LOG_MAX must be at least 1", domain.ErrInvalidConfig)
	}

	// AI key is required only when chat assist is enabled for real
	if !c.AI.MockMode && c.AI.APIKey == "" {
		return fmt.Errorf("%w: AI_API_KEY is required when not in mock mode", domain.ErrInvalidConfig)
	}

	if c.AI.Timeout < time.Second {
		return fmt.Errorf("%w: AI_TIMEOUT must be at least 1 second", domain.ErrInvalidConfig)
	}

	if c.Chat.SessionTTL < time.Minute {
		return fmt.Errorf("%w: CHAT_SESSION_TTL must be at least 1 minute", domain.ErrInvalidConfig)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
