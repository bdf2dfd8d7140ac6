package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/it-era/intake/internal/classify"
	"github.com/it-era/intake/internal/domain"
	"github.com/it-era/intake/internal/intakelog"
	"github.com/it-era/intake/internal/mail"
	"github.com/it-era/intake/internal/service"
	"github.com/it-era/intake/pkg/redact"
)

var ticketIDPattern = regexp.MustCompile(`^IT\d{6}[A-Z0-9]{6}$`)

// stubSender accepts every notification, or fails them all.
type stubSender struct {
	fail bool
}

func (s *stubSender) Send(context.Context, domain.Notification) error {
	if s.fail {
		return errors.New("provider unavailable")
	}
	return nil
}

func newTestRouter(t *testing.T, sender mail.Sender) (*gin.Engine, *service.Intake) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	intake := service.NewIntake(
		mail.NewComposer("info@it-era.it"),
		mail.NewDispatcher(sender, logger),
		intakelog.NewMemoryStore(100),
		redact.New(4096),
		logger,
	)
	chat := service.NewChat(classify.New(logger), nil, redact.New(4096), 30*time.Minute, logger)

	router := NewRouter(
		NewContactHandler(intake, logger),
		NewChatHandler(chat, logger),
		NewHealthHandler(logger),
		NewReadyHandler(nil, logger),
		logger,
	)
	return router, intake
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return body
}

func validForm() url.Values {
	return url.Values{
		"name":             {"Mario Rossi"},
		"email":            {"mario@example.com"},
		"phone":            {"+39 333 1234567"},
		"message":          {"Ho bisogno di assistenza per la rete aziendale."},
		"privacy_accepted": {"on"},
		"src":              {"/assistenza"},
	}
}

func TestContact_FormSubmission(t *testing.T) {
	router, intake := newTestRouter(t, &stubSender{})

	w := postForm(router, "/api/contact", validForm())
	intake.Wait()

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
	ticketID, _ := body["ticketId"].(string)
	if !ticketIDPattern.MatchString(ticketID) {
		t.Errorf("ticketId = %q, invalid format", ticketID)
	}
	if body["message"] != "Richiesta inviata con successo!" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestContact_JSONSubmission(t *testing.T) {
	router, intake := newTestRouter(t, &stubSender{})

	w := postJSON(router, "/api/contact", map[string]any{
		"name":             "Giulia Bianchi",
		"email":            "giulia@example.com",
		"message":          "Vorrei un preventivo per la migrazione cloud.",
		"privacy_accepted": true,
	})
	intake.Wait()

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
}

func TestContact_ValidationFailure(t *testing.T) {
	router, intake := newTestRouter(t, &stubSender{})

	form := validForm()
	form.Set("email", "not-an-email")
	form.Del("privacy_accepted")

	w := postForm(router, "/api/contact", form)
	intake.Wait()

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\n%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["ok"] != false {
		t.Errorf("ok = %v, want false", body["ok"])
	}
	violations, ok := body["errors"].([]any)
	if !ok || len(violations) != 2 {
		t.Errorf("errors = %v, want 2 violations", body["errors"])
	}
	if _, present := body["ticketId"]; present {
		t.Error("rejected submission must not carry a ticketId")
	}
}

func TestContact_DeliveryFailure(t *testing.T) {
	router, intake := newTestRouter(t, &stubSender{fail: true})

	w := postForm(router, "/api/contact", validForm())
	intake.Wait()

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500\n%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["ok"] != false {
		t.Errorf("ok = %v, want false", body["ok"])
	}
	ticketID, _ := body["ticketId"].(string)
	if !ticketIDPattern.MatchString(ticketID) {
		t.Errorf("ticketId = %q, want valid ticket on delivery failure", ticketID)
	}
	errText, _ := body["error"].(string)
	if errText == "" {
		t.Error("delivery failure response missing error text")
	}
}

func TestContact_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, &stubSender{})

	req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Method not allowed" {
		t.Errorf("error = %v, want %q", body["error"], "Method not allowed")
	}
}

func TestContact_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, &stubSender{})

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST allowed", got)
	}
}

func TestChat_StartAndMessage(t *testing.T) {
	router, _ := newTestRouter(t, &stubSender{})

	w := postJSON(router, "/api/chat", map[string]any{"action": "start"})
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d\n%s", w.Code, w.Body.String())
	}
	startBody := decodeBody(t, w)
	sessionID, _ := startBody["session_id"].(string)
	if sessionID == "" {
		t.Fatal("start returned no session_id")
	}

	w = postJSON(router, "/api/chat", map[string]any{
		"action":     "message",
		"session_id": sessionID,
		"message":    "Emergenza, ransomware sui server!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("message status = %d\n%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	reply, ok := body["reply"].(map[string]any)
	if !ok {
		t.Fatalf("reply missing: %v", body)
	}
	if reply["escalate"] != true {
		t.Errorf("escalate = %v, want true for critical message", reply["escalate"])
	}
	if reply["priority"] != string(domain.UrgencyCritical) {
		t.Errorf("priority = %v, want critical", reply["priority"])
	}
}

func TestChat_UnknownSession(t *testing.T) {
	router, _ := newTestRouter(t, &stubSender{})

	w := postJSON(router, "/api/chat", map[string]any{
		"action":     "message",
		"session_id": "gone",
		"message":    "ci siete?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["ok"] != false {
		t.Errorf("ok = %v, want false", body["ok"])
	}
	if body["restart"] != true {
		t.Errorf("restart = %v, want true", body["restart"])
	}
}

func TestChat_UnknownAction(t *testing.T) {
	router, _ := newTestRouter(t, &stubSender{})

	w := postJSON(router, "/api/chat", map[string]any{"action": "dance"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, &stubSender{})

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
	}
}

func TestReady_FailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	ready := NewReadyHandler(map[string]ReadyChecker{
		"redis": func(*gin.Context) error { return errors.New("connection refused") },
	}, logger)

	router := gin.New()
	router.GET("/ready", ready.Handle)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
