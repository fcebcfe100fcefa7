package calendar_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/calendar"
	"github.com/JaimeStill/consult/internal/consultations"
)

type mockSource struct {
	allFn func(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error)
}

func (m *mockSource) All(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error) {
	return m.allFn(ctx, filters)
}

func setupMux(h *calendar.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func newTestHandler(src calendar.Source) *calendar.Handler {
	clock := func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }
	return calendar.NewHandler(src, slog.New(slog.NewTextHandler(io.Discard, nil)), clock)
}

func TestHandlerGrid(t *testing.T) {
	var captured consultations.Filters
	src := &mockSource{
		allFn: func(_ context.Context, f consultations.Filters) ([]consultations.Consultation, error) {
			captured = f
			return []consultations.Consultation{
				{ID: uuid.New(), Company: "Northridge Energy", Deadline: consultations.NewDate(2026, 4, 14)},
			}, nil
		},
	}

	mux := setupMux(newTestHandler(src))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/calendar?date=2026-03-10&view=month&nav=next&pending_only=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var grid struct {
		View  string `json:"view"`
		Label string `json:"label"`
		Total int    `json:"total"`
		Weeks [][]struct {
			Key           string `json:"key"`
			Consultations []struct {
				Urgency string `json:"urgency"`
			} `json:"consultations"`
		} `json:"weeks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&grid); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if grid.View != "month" || grid.Label != "April 2026" || grid.Total != 1 {
		t.Errorf("grid = %s %q total %d", grid.View, grid.Label, grid.Total)
	}

	if captured.DeadlineFrom == nil || captured.DeadlineFrom.Key() != "2026-03-30" {
		t.Errorf("deadline_from = %v", captured.DeadlineFrom)
	}
	if captured.DeadlineTo == nil || captured.DeadlineTo.Key() != "2026-05-03" {
		t.Errorf("deadline_to = %v", captured.DeadlineTo)
	}
	if captured.Decision == nil || *captured.Decision != consultations.DecisionPending {
		t.Errorf("decision filter = %v", captured.Decision)
	}
}

func TestHandlerGridDefaults(t *testing.T) {
	src := &mockSource{
		allFn: func(_ context.Context, _ consultations.Filters) ([]consultations.Consultation, error) {
			return nil, nil
		},
	}

	mux := setupMux(newTestHandler(src))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/calendar", nil))

	var grid struct {
		View  string          `json:"view"`
		Label string          `json:"label"`
		Weeks [][]interface{} `json:"weeks"`
	}
	json.NewDecoder(rec.Body).Decode(&grid)

	if grid.View != "week" || grid.Label != "Week 11: Mar 9 - Mar 15, 2026" {
		t.Errorf("grid = %s %q", grid.View, grid.Label)
	}
	if len(grid.Weeks) != 1 || len(grid.Weeks[0]) != 7 {
		t.Errorf("weeks shape = %d", len(grid.Weeks))
	}
}

func TestHandlerGridErrors(t *testing.T) {
	src := &mockSource{
		allFn: func(_ context.Context, _ consultations.Filters) ([]consultations.Consultation, error) {
			return nil, errors.New("connection refused")
		},
	}

	mux := setupMux(newTestHandler(src))

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"bad view", "/calendar?view=year", http.StatusBadRequest},
		{"bad nav", "/calendar?nav=up", http.StatusBadRequest},
		{"bad date", "/calendar?date=tomorrow", http.StatusBadRequest},
		{"source failure", "/calendar", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.url, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
