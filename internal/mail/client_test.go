// Package mail provides unit tests for the email provider client.
package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/config"
	"github.com/it-era/intake/internal/domain"
)

func testMailConfig(baseURL string) *config.MailConfig {
	return &config.MailConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		OwnerEmail: "info@it-era.it",
		FromEmail:  "IT-ERA <noreply@it-era.it>",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}
}

func testNotification() domain.Notification {
	return domain.Notification{
		To:      "mario@example.com",
		Subject: "Richiesta ricevuta",
		HTML:    "<p>ciao</p>",
		Text:    "ciao",
	}
}

func TestClient_Send(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		response   any
		wantErr    bool
	}{
		{
			name:       "accepted",
			statusCode: http.StatusOK,
			response:   sendResponse{ID: "re_123"},
			wantErr:    false,
		},
		{
			name:       "provider error payload",
			statusCode: http.StatusOK,
			response: map[string]any{
				"error": map[string]string{"name": "validation_error", "message": "invalid to"},
			},
			wantErr: true,
		},
		{
			name:       "bad request is not retried",
			statusCode: http.StatusBadRequest,
			response:   map[string]string{"message": "missing from"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/emails" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
					t.Errorf("Authorization = %q", auth)
				}

				var req sendRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if len(req.To) != 1 || req.To[0] != "mario@example.com" {
					t.Errorf("request To = %v", req.To)
				}

				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := NewClient(testMailConfig(server.URL), zap.NewNop())
			err := client.Send(context.Background(), testNotification())

			if (err != nil) != tt.wantErr {
				t.Errorf("Send() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Send_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(sendResponse{ID: "re_retry"})
	}))
	defer server.Close()

	client := NewClient(testMailConfig(server.URL), zap.NewNop())
	if err := client.Send(context.Background(), testNotification()); err != nil {
		t.Fatalf("Send() error = %v after retry", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("provider called %d times, want 2", got)
	}
}

func TestClient_Send_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "bad payload"})
	}))
	defer server.Close()

	client := NewClient(testMailConfig(server.URL), zap.NewNop())
	if err := client.Send(context.Background(), testNotification()); err == nil {
		t.Fatal("Send() expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}
