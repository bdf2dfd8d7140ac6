package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
	"github.com/it-era/intake/internal/service"
)

const (
	actionStart   = "start"
	actionMessage = "message"
)

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`

	// LeadData is optional context attached by the widget.
	LeadData struct {
		Sector string `json:"sector"`
	} `json:"lead_data"`
}

// ChatHandler handles chat widget requests.
type ChatHandler struct {
	chat   *service.Chat
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.Chat, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger.Named("chat_handler"),
	}
}

// Handle processes POST /api/chat requests, dispatching on action.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Richiesta non valida",
		})
		return
	}

	switch req.Action {
	case actionStart:
		sessionID, reply := h.chat.Start()
		c.JSON(http.StatusOK, gin.H{
			"ok":         true,
			"session_id": sessionID,
			"reply":      reply,
		})

	case actionMessage:
		reply, err := h.chat.Message(c.Request.Context(), req.SessionID, req.Message, req.LeadData.Sector)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownSession) {
				c.JSON(http.StatusOK, gin.H{
					"ok":            false,
					"error":         "Sessione scaduta, ricomincia la conversazione",
					"restart":       true,
					"session_ended": true,
				})
				return
			}
			h.logger.Error("chat message failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "Errore interno, riprova più tardi",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":    true,
			"reply": reply,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Azione non riconosciuta",
		})
	}
}
