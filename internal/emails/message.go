package emails

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/mailer"
)

const (
	decisionTemplate = "decision.html"
	draftTemplate    = "draft.html"
	draftContentType = "text/html; charset=utf-8"
	deadlineLayout   = "January 2, 2006"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Request is the dispatch payload for a single consultation decision.
type Request struct {
	ID           uuid.UUID              `json:"id"`
	Company      string                 `json:"company"`
	Project      string                 `json:"project"`
	Decision     consultations.Decision `json:"decision"`
	Deadline     consultations.Date     `json:"deadline"`
	ContactEmail *string                `json:"contact_email,omitempty"`
	Conditions   []string               `json:"conditions,omitempty"`
}

// RequestFor builds the dispatch payload for c.
func RequestFor(c *consultations.Consultation, conditions []string) Request {
	return Request{
		ID:           c.ID,
		Company:      c.Company,
		Project:      c.Project,
		Decision:     c.Decision,
		Deadline:     c.Deadline,
		ContactEmail: c.ContactEmail,
		Conditions:   conditions,
	}
}

// Response reports the outcome of a dispatch. Failures carry Error and never
// an EmailID.
type Response struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	EmailID  string `json:"email_id,omitempty"`
	Draft    bool   `json:"draft"`
	DraftKey string `json:"draft_key,omitempty"`
}

// DraftPrefix returns the storage prefix holding the drafts of a consultation.
func DraftPrefix(id uuid.UUID) string {
	return fmt.Sprintf("drafts/%s/", id)
}

// DraftKey returns the storage key of a draft rendered at t.
func DraftKey(id uuid.UUID, t time.Time) string {
	return DraftPrefix(id) + t.UTC().Format("20060102T150405.000Z") + ".html"
}

// Subject returns the email subject line for req.
func Subject(req Request) string {
	if req.Decision == consultations.DecisionConditional {
		return fmt.Sprintf("Conditional endorsement: %s", req.Project)
	}
	return fmt.Sprintf("Consultation decision: %s", req.Project)
}

type content struct {
	ID            string
	Company       string
	Project       string
	DecisionLabel string
	Deadline      string
	NotEndorsed   bool
	Conditions    []string
}

// Render produces the HTML body for req. Conditional endorsements render the
// draft reply; every other final decision renders the decision notice.
func Render(req Request) (string, error) {
	name := decisionTemplate
	if req.Decision == consultations.DecisionConditional {
		name = draftTemplate
	}

	data := content{
		ID:            req.ID.String(),
		Company:       req.Company,
		Project:       req.Project,
		DecisionLabel: req.Decision.Label(),
		Deadline:      req.Deadline.Format(deadlineLayout),
		NotEndorsed:   req.Decision == consultations.DecisionNotEndorsed,
		Conditions:    req.Conditions,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func message(req Request, html string) mailer.Message {
	msg := mailer.Message{
		Subject: Subject(req),
		HTML:    html,
		Metadata: map[string]string{
			"consultation_id": req.ID.String(),
			"company":         req.Company,
			"project":         req.Project,
			"decision":        string(req.Decision),
			"deadline":        req.Deadline.Key(),
		},
	}
	if req.ContactEmail != nil && *req.ContactEmail != "" {
		msg.To = []string{*req.ContactEmail}
		msg.Metadata["contact_email"] = *req.ContactEmail
	}
	return msg
}
