// IT-ERA intake service - server entry point
//
// Wires the contact-form pipeline and the chat widget backend and starts
// the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/it-era/intake/internal/ai"
	"github.com/it-era/intake/internal/classify"
	"github.com/it-era/intake/internal/config"
	"github.com/it-era/intake/internal/handler"
	"github.com/it-era/intake/internal/intakelog"
	"github.com/it-era/intake/internal/logger"
	"github.com/it-era/intake/internal/mail"
	"github.com/it-era/intake/internal/service"
	"github.com/it-era/intake/pkg/redact"
)

const maxRedactSize = 8192

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	isDev := os.Getenv("GIN_MODE") != "release"

	zapLogger, err := logger.New(isDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting intake service",
		zap.Bool("development", isDev),
	)

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.Bool("email_mock_mode", cfg.Mail.MockMode),
		zap.String("ai_provider", string(cfg.AI.Provider)),
		zap.Bool("ai_mock_mode", cfg.AI.MockMode),
		zap.Bool("redis_enabled", cfg.IntakeLog.RedisAddr != ""),
	)

	// Intake log store: Redis when configured, in-memory otherwise.
	var store intakelog.Store
	var redisClient *redis.Client
	if cfg.IntakeLog.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.IntakeLog.RedisAddr,
			Password: cfg.IntakeLog.RedisPassword,
			DB:       cfg.IntakeLog.RedisDB,
		})
		store = intakelog.NewRedisStore(redisClient, cfg.IntakeLog.Key, cfg.IntakeLog.MaxEntries)
	} else {
		zapLogger.Warn("REDIS_ADDR not set - intake log is in-memory only")
		store = intakelog.NewMemoryStore(cfg.IntakeLog.MaxEntries)
	}

	// Email sender
	var sender mail.Sender
	if cfg.Mail.MockMode {
		zapLogger.Warn("running in email mock mode - no emails are sent")
		sender = mail.NewMockSender(zapLogger)
	} else {
		sender = mail.NewClient(&cfg.Mail, zapLogger)
	}

	// AI chat assist
	var aiClient ai.Client
	if cfg.AI.MockMode {
		zapLogger.Warn("running in AI mock mode - chat suggestions are simulated")
		aiClient = ai.NewMockClient(zapLogger)
	} else {
		promptBuilder, err := ai.NewDefaultPromptBuilder()
		if err != nil {
			zapLogger.Fatal("failed to create prompt builder", zap.Error(err))
		}
		validator := ai.NewDefaultValidator()

		switch cfg.AI.Provider {
		case config.AIProviderGemini:
			aiClient = ai.NewGeminiClient(&cfg.AI, promptBuilder, validator, zapLogger)
		default:
			aiClient = ai.NewOpenAIClient(&cfg.AI, promptBuilder, validator, zapLogger)
		}
	}

	redactor := redact.New(maxRedactSize)

	// Services
	intakeSvc := service.NewIntake(
		mail.NewComposer(cfg.Mail.OwnerEmail),
		mail.NewDispatcher(sender, zapLogger),
		store,
		redactor,
		zapLogger,
	)
	chatSvc := service.NewChat(
		classify.New(zapLogger),
		aiClient,
		redactor,
		cfg.Chat.SessionTTL,
		zapLogger,
	)

	// Readiness checks against the external dependencies.
	readyChecks := map[string]handler.ReadyChecker{}
	if redisClient != nil {
		readyChecks["redis"] = func(c *gin.Context) error {
			return redisClient.Ping(c.Request.Context()).Err()
		}
	}
	if !cfg.AI.MockMode {
		readyChecks["ai"] = func(c *gin.Context) error {
			return aiClient.HealthCheck(c.Request.Context())
		}
	}

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(
		handler.NewContactHandler(intakeSvc, zapLogger),
		handler.NewChatHandler(chatSvc, zapLogger),
		handler.NewHealthHandler(zapLogger),
		handler.NewReadyHandler(readyChecks, zapLogger),
		zapLogger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	// Let detached log appends settle before closing the store.
	intakeSvc.Wait()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zapLogger.Error("failed to close redis client", zap.Error(err))
		}
	}

	zapLogger.Info("server stopped")
}
