package emails_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/internal/emails"
)

var errTest = errors.New("boom")

func TestRender(t *testing.T) {
	base := emails.Request{
		ID:       uuid.MustParse("7d4a1c2e-9b3f-4e8a-a1d2-3c4b5e6f7a80"),
		Company:  "Northridge <Energy> & Co",
		Project:  "Pipeline Expansion",
		Deadline: consultations.NewDate(2026, time.March, 20),
	}

	tests := []struct {
		name     string
		decision consultations.Decision
		contains []string
		excludes []string
	}{
		{
			name:     "endorse",
			decision: consultations.DecisionEndorse,
			contains: []string{"Endorse with No Concerns", "March 20, 2026", "no concerns", "Northridge &lt;Energy&gt; &amp; Co"},
			excludes: []string{"unable to endorse", "<Energy>"},
		},
		{
			name:     "not endorsed",
			decision: consultations.DecisionNotEndorsed,
			contains: []string{"Not Endorsed", "unable to endorse"},
		},
		{
			name:     "conditional without conditions",
			decision: consultations.DecisionConditional,
			contains: []string{"Conditional Endorsement", "Conditions to be added"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.Decision = tt.decision

			html, err := emails.Render(req)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(html, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(html, s) {
					t.Errorf("body contains %q", s)
				}
			}
		})
	}
}

func TestSubject(t *testing.T) {
	req := emails.Request{Project: "Wind Farm", Decision: consultations.DecisionEndorse}
	if got := emails.Subject(req); got != "Consultation decision: Wind Farm" {
		t.Errorf("Subject() = %q", got)
	}

	req.Decision = consultations.DecisionConditional
	if got := emails.Subject(req); got != "Conditional endorsement: Wind Farm" {
		t.Errorf("Subject() = %q", got)
	}
}

func TestDraftKey(t *testing.T) {
	id := uuid.MustParse("7d4a1c2e-9b3f-4e8a-a1d2-3c4b5e6f7a80")
	at := time.Date(2026, time.March, 10, 9, 5, 6, 7_000_000, time.FixedZone("MST", -7*3600))

	want := "drafts/7d4a1c2e-9b3f-4e8a-a1d2-3c4b5e6f7a80/20260310T160506.007Z.html"
	if got := emails.DraftKey(id, at); got != want {
		t.Errorf("DraftKey() = %q, want %q", got, want)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"in flight", emails.ErrInFlight, 409},
		{"already sent", consultations.ErrAlreadySent, 409},
		{"not resolved", emails.ErrNotResolved, 422},
		{"empty batch", emails.ErrEmptyBatch, 400},
		{"batch size", emails.ErrBatchSize, 400},
		{"not found", consultations.ErrNotFound, 404},
		{"other", errTest, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emails.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
