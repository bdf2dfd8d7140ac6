package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyChecker reports whether a dependency is reachable.
type ReadyChecker func(c *gin.Context) error

// ReadyHandler handles readiness check requests.
type ReadyHandler struct {
	checks map[string]ReadyChecker
	logger *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler with named dependency checks.
func NewReadyHandler(checks map[string]ReadyChecker, logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		checks: checks,
		logger: logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. Any failing check makes the
// endpoint report 503 so the orchestrator holds traffic.
func (h *ReadyHandler) Handle(c *gin.Context) {
	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(c); err != nil {
			h.logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"failures": failures,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
