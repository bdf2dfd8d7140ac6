package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with all middleware and routes. Shared
// by main and the handler tests so both exercise the same wiring.
func NewRouter(
	contact *ContactHandler,
	chat *ChatHandler,
	health *HealthHandler,
	ready *ReadyHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware())

	router.GET("/health", health.Handle)
	router.GET("/ready", ready.Handle)

	api := router.Group("/api")
	{
		api.POST("/contact", contact.Handle)
		api.POST("/chat", chat.Handle)
	}

	router.NoMethod(MethodNotAllowed)

	return router
}
