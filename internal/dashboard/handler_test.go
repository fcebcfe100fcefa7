package dashboard_test

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

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/internal/dashboard"
)

type mockSource struct {
	allFn func(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error)
}

func (m *mockSource) All(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error) {
	return m.allFn(ctx, filters)
}

func setupMux(source dashboard.Source) *http.ServeMux {
	h := dashboard.NewHandler(
		source,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		func() time.Time { return now },
	)

	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func TestHandlerGet(t *testing.T) {
	f := newFixture()
	var captured consultations.Filters

	source := &mockSource{
		allFn: func(_ context.Context, filters consultations.Filters) ([]consultations.Consultation, error) {
			captured = filters
			return f.all(), nil
		},
	}

	mux := setupMux(source)

	t.Run("simplified by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var body struct {
			Role       string `json:"role"`
			Simplified *struct {
				Active int               `json:"active"`
				Queue  []json.RawMessage `json:"queue"`
			} `json:"simplified"`
			Admin json.RawMessage `json:"admin"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Role != "simplified" || body.Simplified == nil {
			t.Fatalf("body = %+v", body)
		}
		if body.Simplified.Active != 4 || len(body.Simplified.Queue) != 4 {
			t.Errorf("simplified = %+v", body.Simplified)
		}
		if body.Admin != nil {
			t.Error("admin summary should be omitted")
		}
		if captured.AssignedOfficer != nil {
			t.Error("simplified view should load all consultations")
		}
	})

	t.Run("include sent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard?include_sent=true", nil))

		var body struct {
			Simplified struct {
				Queue []json.RawMessage `json:"queue"`
			} `json:"simplified"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Simplified.Queue) != 5 {
			t.Errorf("queue len = %d, want 5", len(body.Simplified.Queue))
		}
	})

	t.Run("officer scopes the source", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard?role=officer&officer_id=101", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.AssignedOfficer == nil || *captured.AssignedOfficer != "101" {
			t.Errorf("AssignedOfficer filter = %v", captured.AssignedOfficer)
		}

		var body struct {
			Officer struct {
				Assigned int `json:"assigned"`
			} `json:"officer"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Officer.Assigned != 3 {
			t.Errorf("Assigned = %d, want 3", body.Officer.Assigned)
		}
	})

	t.Run("admin fees", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard?role=admin", nil))

		var body struct {
			Admin struct {
				FeesCollected dashboard.Money `json:"fees_collected"`
			} `json:"admin"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Admin.FeesCollected.Display != "$8,500.00" {
			t.Errorf("FeesCollected = %+v", body.Admin.FeesCollected)
		}
	})
}

func TestHandlerGetErrors(t *testing.T) {
	source := &mockSource{
		allFn: func(context.Context, consultations.Filters) ([]consultations.Consultation, error) {
			return nil, errors.New("connection refused")
		},
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"unknown role", "?role=chief", http.StatusBadRequest},
		{"officer without id", "?role=officer", http.StatusBadRequest},
		{"bad include_sent", "?include_sent=maybe", http.StatusBadRequest},
		{"source failure", "?role=admin", http.StatusInternalServerError},
	}

	mux := setupMux(source)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard"+tt.query, nil))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
