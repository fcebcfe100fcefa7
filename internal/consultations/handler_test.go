package consultations_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/pagination"
)

type mockSystem struct {
	listFn          func(ctx context.Context, page pagination.PageRequest, filters consultations.Filters) (*pagination.PageResult[consultations.Consultation], error)
	allFn           func(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error)
	findFn          func(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error)
	createFn        func(ctx context.Context, cmd consultations.CreateCommand) (*consultations.Consultation, error)
	updateFn        func(ctx context.Context, id uuid.UUID, cmd consultations.DecisionCommand) (*consultations.Consultation, error)
	markEmailSentFn func(ctx context.Context, id uuid.UUID, cmd consultations.EmailSentCommand) (*consultations.Consultation, error)
}

func (m *mockSystem) Handler(inFlight consultations.InFlightChecker, clock func() time.Time) *consultations.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters consultations.Filters) (*pagination.PageResult[consultations.Consultation], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) All(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error) {
	return m.allFn(ctx, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd consultations.CreateCommand) (*consultations.Consultation, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) UpdateDecision(ctx context.Context, id uuid.UUID, cmd consultations.DecisionCommand) (*consultations.Consultation, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) MarkEmailSent(ctx context.Context, id uuid.UUID, cmd consultations.EmailSentCommand) (*consultations.Consultation, error) {
	return m.markEmailSentFn(ctx, id, cmd)
}

func fixedClock() time.Time { return midnight }

func newTestHandler(sys consultations.System) *consultations.Handler {
	return consultations.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		nil,
		fixedClock,
	)
}

func setupMux(h *consultations.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleConsultation() consultations.Consultation {
	return consultations.Consultation{
		ID:            uuid.MustParse("7d4a1c2e-9b3f-4e8a-a1d2-3c4b5e6f7a80"),
		Company:       "Northridge Energy",
		Project:       "Pipeline Expansion",
		ProjectType:   "oil_gas",
		Deadline:      today().AddDays(3),
		PaymentStatus: consultations.PaymentPending,
		CreatedAt:     midnight.AddDate(0, -1, 0),
		UpdatedAt:     midnight.AddDate(0, -1, 0),
	}
}

type rowJSON struct {
	ID            uuid.UUID `json:"id"`
	Decision      *string   `json:"decision"`
	Deadline      string    `json:"deadline"`
	DaysRemaining int       `json:"days_remaining"`
	Status        string    `json:"status"`
	Urgency       string    `json:"urgency"`
	EmailAction   string    `json:"email_action"`
	DecisionLabel string    `json:"decision_label"`
}

func TestHandlerList(t *testing.T) {
	c := sampleConsultation()
	var captured consultations.Filters

	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f consultations.Filters) (*pagination.PageResult[consultations.Consultation], error) {
			captured = f
			result := pagination.NewPageResult([]consultations.Consultation{c}, 1, 1, 20)
			return &result, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	t.Run("returns annotated rows", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/consultations?decision=pending&email_sent=false", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[rowJSON]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(result.Data) != 1 {
			t.Fatalf("data length = %d", len(result.Data))
		}

		row := result.Data[0]
		if row.Decision != nil {
			t.Errorf("decision = %v, want null", *row.Decision)
		}
		if row.Deadline != "2026-03-13" {
			t.Errorf("deadline = %s", row.Deadline)
		}
		if row.DaysRemaining != 3 || row.Urgency != "action_required" || row.Status != "due_soon" {
			t.Errorf("row = %+v", row)
		}
		if row.EmailAction != "decide_first" || row.DecisionLabel != "No Decision" {
			t.Errorf("row = %+v", row)
		}

		if captured.Decision == nil || *captured.Decision != consultations.DecisionPending {
			t.Errorf("decision filter = %v", captured.Decision)
		}
		if captured.EmailSent == nil || *captured.EmailSent {
			t.Errorf("email_sent filter = %v", captured.EmailSent)
		}
	})

	t.Run("rejects invalid decision filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/consultations?decision=approved", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	var captured consultations.Filters
	var capturedPage pagination.PageRequest

	sys := &mockSystem{
		listFn: func(_ context.Context, p pagination.PageRequest, f consultations.Filters) (*pagination.PageResult[consultations.Consultation], error) {
			captured = f
			capturedPage = p
			result := pagination.NewPageResult[consultations.Consultation](nil, 0, p.Page, p.PageSize)
			return &result, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	body := `{"page":2,"page_size":500,"search":"ridge","decision":"unable_to_endorse","deadline_from":"2026-03-01"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/consultations/search", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if capturedPage.PageSize != 100 {
		t.Errorf("page size = %d, want clamp to 100", capturedPage.PageSize)
	}
	if captured.Decision == nil || *captured.Decision != consultations.DecisionNotEndorsed {
		t.Errorf("decision = %v", captured.Decision)
	}
	if captured.DeadlineFrom == nil || captured.DeadlineFrom.Key() != "2026-03-01" {
		t.Errorf("deadline_from = %v", captured.DeadlineFrom)
	}
}

func TestHandlerFind(t *testing.T) {
	c := sampleConsultation()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*consultations.Consultation, error) {
			if id == c.ID {
				return &c, nil
			}
			return nil, consultations.ErrNotFound
		},
	}

	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/consultations/" + c.ID.String(), http.StatusOK},
		{"not found", "/consultations/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", "/consultations/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd consultations.CreateCommand) (*consultations.Consultation, error) {
			c := sampleConsultation()
			c.Company = cmd.Company
			c.Deadline = cmd.Deadline
			c.PaymentStatus = cmd.PaymentStatus
			return &c, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"company":"Cedar Mining","project":"Open Pit","deadline":"2026-04-01","consultation_fee":250000}`, http.StatusCreated},
		{"missing company", `{"project":"Open Pit","deadline":"2026-04-01"}`, http.StatusBadRequest},
		{"bad decision", `{"company":"A","project":"B","deadline":"2026-04-01","decision":"yes"}`, http.StatusBadRequest},
		{"bad date", `{"company":"A","project":"B","deadline":"April 1"}`, http.StatusBadRequest},
		{"bad email", `{"company":"A","project":"B","deadline":"2026-04-01","contact_email":"nope"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", "/consultations", bytes.NewBufferString(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerUpdateDecision(t *testing.T) {
	c := sampleConsultation()
	var captured consultations.DecisionCommand

	sys := &mockSystem{
		updateFn: func(_ context.Context, id uuid.UUID, cmd consultations.DecisionCommand) (*consultations.Consultation, error) {
			if id != c.ID {
				return nil, consultations.ErrNotFound
			}
			captured = cmd
			updated := c
			updated.Decision = cmd.Decision
			return &updated, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	t.Run("maps legacy label and reports result", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"decision":"conditional_endorsement"}`)
		mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/consultations/"+c.ID.String()+"/decision", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}

		var row rowJSON
		json.NewDecoder(rec.Body).Decode(&row)
		if row.EmailAction != "draft" || row.Status != "completed" {
			t.Errorf("row = %+v", row)
		}
		if captured.Decision != consultations.DecisionConditional {
			t.Errorf("captured = %q", captured.Decision)
		}
	})

	t.Run("rejects unknown decision", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"decision":"approve"}`)
		mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/consultations/"+c.ID.String()+"/decision", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("sink failure is reported", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"decision":"pending"}`)
		mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/consultations/"+uuid.NewString()+"/decision", body))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerQueue(t *testing.T) {
	sentAt := midnight
	endorsed := sampleConsultation()
	endorsed.ID = uuid.New()
	endorsed.Decision = consultations.DecisionEndorse
	endorsed.Deadline = today().AddDays(1)

	pending := sampleConsultation()
	pending.ID = uuid.New()
	pending.Deadline = today().AddDays(5)

	sent := sampleConsultation()
	sent.ID = uuid.New()
	sent.Decision = consultations.DecisionEndorse
	sent.EmailSent = true
	sent.EmailSentAt = &sentAt

	sys := &mockSystem{
		allFn: func(_ context.Context, _ consultations.Filters) ([]consultations.Consultation, error) {
			return []consultations.Consultation{endorsed, sent, pending}, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/consultations/queue", nil))

	var rows []rowJSON
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ID != pending.ID || rows[1].ID != endorsed.ID {
		t.Errorf("order = %v, %v", rows[0].ID, rows[1].ID)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/consultations/queue?include_sent=true", nil))
	rows = nil
	json.NewDecoder(rec.Body).Decode(&rows)
	if len(rows) != 3 {
		t.Errorf("include_sent rows = %d, want 3", len(rows))
	}
}

func TestHandlerDecisions(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/consultations/decisions", nil))

	var options []consultations.DecisionOption
	if err := json.NewDecoder(rec.Body).Decode(&options); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(options) != 4 {
		t.Fatalf("options = %d, want 4", len(options))
	}
	if options[3].Value != consultations.DecisionNotEndorsed || options[3].Label != "Not Endorsed" {
		t.Errorf("last option = %+v", options[3])
	}
}
