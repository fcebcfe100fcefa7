// Package consultations implements the consultation domain: the record shape,
// deadline and decision classification, and data access for consultation
// requests awaiting a decision from the Nation.
package consultations

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks whether the consultation fee has been collected.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

// Consultation is a request from a proponent company that requires a decision
// by its deadline. EmailSentAt is non-nil exactly when EmailSent is true.
type Consultation struct {
	ID              uuid.UUID     `json:"id"`
	Company         string        `json:"company"`
	Project         string        `json:"project"`
	ProjectType     string        `json:"project_type"`
	ContactEmail    *string       `json:"contact_email"`
	Deadline        Date          `json:"deadline"`
	Decision        Decision      `json:"decision"`
	EmailSent       bool          `json:"email_sent"`
	EmailSentAt     *time.Time    `json:"email_sent_at"`
	EmailID         *string       `json:"email_id"`
	AssignedOfficer *string       `json:"assigned_officer"`
	OfficerName     *string       `json:"officer_name"`
	ConsultationFee int64         `json:"consultation_fee"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Resolved reports whether a non-pending decision has been recorded.
func (c Consultation) Resolved() bool {
	return c.Decision.Resolved()
}

// CreateCommand carries the intake fields for a new consultation.
type CreateCommand struct {
	Company         string        `json:"company"`
	Project         string        `json:"project"`
	ProjectType     string        `json:"project_type"`
	ContactEmail    *string       `json:"contact_email"`
	Deadline        Date          `json:"deadline"`
	Decision        Decision      `json:"decision"`
	AssignedOfficer *string       `json:"assigned_officer"`
	ConsultationFee int64         `json:"consultation_fee"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
}

// Validate checks required fields and normalizes optional ones.
func (c *CreateCommand) Validate() error {
	c.Company = strings.TrimSpace(c.Company)
	c.Project = strings.TrimSpace(c.Project)

	if c.Company == "" {
		return fmt.Errorf("%w: company required", ErrInvalidConsultation)
	}
	if c.Project == "" {
		return fmt.Errorf("%w: project required", ErrInvalidConsultation)
	}
	if c.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline required", ErrInvalidConsultation)
	}
	if c.ConsultationFee < 0 {
		return fmt.Errorf("%w: consultation_fee must not be negative", ErrInvalidConsultation)
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = PaymentPending
	}
	if !c.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown payment_status %q", ErrInvalidConsultation, c.PaymentStatus)
	}
	if c.ContactEmail != nil {
		if _, err := mail.ParseAddress(*c.ContactEmail); err != nil {
			return fmt.Errorf("%w: invalid contact_email", ErrInvalidConsultation)
		}
	}
	if c.ProjectType == "" {
		c.ProjectType = "other"
	}
	return nil
}

// DecisionCommand replaces the recorded decision of a consultation.
type DecisionCommand struct {
	Decision Decision `json:"decision"`
}

// EmailSentCommand records a successful decision email dispatch.
type EmailSentCommand struct {
	EmailID string
	SentAt  time.Time
}

// Matches reports whether term occurs in the company or project, ignoring case.
// An empty term matches everything.
func (c Consultation) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Company), term) ||
		strings.Contains(strings.ToLower(c.Project), term)
}

// ReviewQueue returns the records to review: those whose email is unsent
// (or all when includeSent), matching search, in review order.
func ReviewQueue(records []Consultation, search string, includeSent bool, now time.Time) []Consultation {
	queue := make([]Consultation, 0, len(records))
	for _, c := range records {
		if !includeSent && c.EmailSent {
			continue
		}
		if !c.Matches(search) {
			continue
		}
		queue = append(queue, c)
	}
	SortForReview(queue, now)
	return queue
}
