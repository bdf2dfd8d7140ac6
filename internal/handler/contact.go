package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
	"github.com/it-era/intake/internal/service"
)

const (
	successMessage = "Richiesta inviata con successo!"

	deliveryFailureMessage = "Si è verificato un problema nell'invio della richiesta. " +
		"Riprova più tardi oppure chiamaci al +39 039 888 2041."
)

// contactJSONRequest is the JSON body shape for the contact endpoint.
type contactJSONRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	City            string `json:"city"`
	Service         string `json:"service"`
	Message         string `json:"message"`
	SourcePage      string `json:"src"`
	PrivacyAccepted bool   `json:"privacy_accepted"`
}

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	intake *service.Intake
	logger *zap.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(intake *service.Intake, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		intake: intake,
		logger: logger.Named("contact_handler"),
	}
}

// Handle processes POST /api/contact requests. The body may be
// form-encoded (plain HTML form post) or JSON (fetch from the widget).
func (h *ContactHandler) Handle(c *gin.Context) {
	startTime := time.Now()
	logger := h.logger.With(zap.String("request_id", c.GetString("request_id")))

	sub, err := h.bindSubmission(c)
	if err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":     false,
			"errors": []string{"Richiesta non valida"},
		})
		return
	}

	result := h.intake.Process(c.Request.Context(), sub)

	switch {
	case result.OK:
		logger.Info("submission processed",
			zap.String("ticket_id", result.TicketID),
			zap.Duration("duration", time.Since(startTime)),
		)
		c.JSON(http.StatusOK, gin.H{
			"ok":       true,
			"ticketId": result.TicketID,
			"message":  successMessage,
		})

	case len(result.Errors) > 0:
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":     false,
			"errors": result.Errors,
		})

	default:
		// Delivery failed after validation. The ticket ID still goes out
		// so the caller has a reference when phoning in.
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":       false,
			"error":    deliveryFailureMessage,
			"ticketId": result.TicketID,
		})
	}
}

// bindSubmission maps the request body onto a Submission, choosing the
// decoder by Content-Type.
func (h *ContactHandler) bindSubmission(c *gin.Context) (domain.Submission, error) {
	var sub domain.Submission

	contentType := c.ContentType()
	if strings.Contains(contentType, "application/json") {
		var req contactJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return sub, err
		}
		sub = domain.Submission{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			City:            req.City,
			Service:         req.Service,
			Message:         req.Message,
			SourcePage:      req.SourcePage,
			PrivacyAccepted: req.PrivacyAccepted,
		}
	} else {
		// HTML checkboxes post "on" when ticked and nothing otherwise.
		privacy := c.PostForm("privacy_accepted")
		sub = domain.Submission{
			Name:            c.PostForm("name"),
			Email:           c.PostForm("email"),
			Phone:           c.PostForm("phone"),
			City:            c.PostForm("city"),
			Service:         c.PostForm("service"),
			Message:         c.PostForm("message"),
			SourcePage:      c.PostForm("src"),
			PrivacyAccepted: privacy == "on" || privacy == "true" || privacy == "1",
		}
	}

	sub.UserAgent = c.Request.UserAgent()
	sub.ClientIP = c.ClientIP()
	return sub, nil
}

// MethodNotAllowed is the catch-all for unsupported methods on API routes.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"ok":    false,
		"error": "Method not allowed",
	})
}
