package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/middleware"
)

type decisionBody struct {
	Decision string `json:"decision"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		limit      int64
		wantErr    error
		wantStatus int
	}{
		{"valid", `{"decision":"endorse"}`, 0, nil, 0},
		{"empty", ``, 0, handlers.ErrEmptyBody, http.StatusBadRequest},
		{"malformed", `{"decision":`, 0, nil, http.StatusBadRequest},
		{"trailing data", `{"decision":"endorse"} {}`, 0, nil, http.StatusBadRequest},
		{"too large", `{"decision":"conditional_endorsement"}`, 8, handlers.ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("PUT", "/consultations/x/decision", strings.NewReader(tt.body))
			if tt.limit > 0 {
				req.Body = http.MaxBytesReader(rec, req.Body, tt.limit)
			}

			var dst decisionBody
			err := handlers.DecodeJSON(req, &dst)

			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				if dst.Decision != "endorse" {
					t.Errorf("decision: got %q", dst.Decision)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := handlers.DecodeStatus(err); got != tt.wantStatus {
				t.Errorf("DecodeStatus() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, decisionBody{Decision: "pending"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %s", ct)
	}

	var got decisionBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got.Decision != "pending" {
		t.Errorf("body: %s (%v)", rec.Body.String(), err)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusNotFound, "level=WARN"},
		{http.StatusBadGateway, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			rec := httptest.NewRecorder()
			rec.Header().Set(middleware.RequestIDHeader, "req-7")
			handlers.RespondError(rec, logger, tt.status, errors.New("consultation not found"))

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}

			var parsed map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if parsed["error"] != "consultation not found" {
				t.Errorf("error: got %q", parsed["error"])
			}

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) || !strings.Contains(out, "request_id=req-7") {
				t.Errorf("log line: %s", out)
			}
		})
	}
}
