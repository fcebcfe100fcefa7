package consultations

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/consult/pkg/query"
	"github.com/JaimeStill/consult/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "consultations", "c").
	Project("id", "ID").
	Project("company", "Company").
	Project("project", "Project").
	Project("project_type", "ProjectType").
	Project("contact_email", "ContactEmail").
	Project("deadline", "Deadline").
	Project("decision", "Decision").
	Project("email_sent", "EmailSent").
	Project("email_sent_at", "EmailSentAt").
	Project("email_id", "EmailID").
	Project("assigned_officer", "AssignedOfficer").
	Project("consultation_fee", "ConsultationFee").
	Project("payment_status", "PaymentStatus").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "officers", "o", "LEFT JOIN", "c.assigned_officer = o.id").
	Project("name", "OfficerName")

var defaultSort = query.SortField{
	Field:      "Deadline",
	Descending: false,
}

// Filters contains optional filtering criteria for consultation queries.
// Nil fields are ignored. Company uses case-insensitive contains matching;
// the pending decision filter also matches records with no decision.
type Filters struct {
	Decision        *Decision `json:"decision,omitempty"`
	EmailSent       *bool     `json:"email_sent,omitempty"`
	Company         *string   `json:"company,omitempty"`
	AssignedOfficer *string   `json:"assigned_officer,omitempty"`
	ProjectType     *string   `json:"project_type,omitempty"`
	PaymentStatus   *string   `json:"payment_status,omitempty"`
	DeadlineFrom    *Date     `json:"deadline_from,omitempty"`
	DeadlineTo      *Date     `json:"deadline_to,omitempty"`
}

// Apply adds filter conditions to a query builder. Stored decisions never
// carry the legacy label, so a parsed decision matches by equality.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Decision != nil {
		switch d := *f.Decision; d {
		case DecisionNone, DecisionPending:
			b.WhereEqualsOrNull("Decision", string(DecisionPending))
		default:
			b.WhereEquals("Decision", string(d))
		}
	}

	if f.DeadlineFrom != nil {
		b.WhereGTE("Deadline", f.DeadlineFrom.Time)
	}
	if f.DeadlineTo != nil {
		b.WhereLTE("Deadline", f.DeadlineTo.Time)
	}

	return b.
		WhereEquals("EmailSent", f.EmailSent).
		WhereContains("Company", f.Company).
		WhereEquals("AssignedOfficer", f.AssignedOfficer).
		WhereEquals("ProjectType", f.ProjectType).
		WhereEquals("PaymentStatus", f.PaymentStatus)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed booleans are ignored; malformed decisions and dates are rejected.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if d := values.Get("decision"); d != "" {
		parsed, err := ParseDecision(d)
		if err != nil {
			return f, err
		}
		f.Decision = &parsed
	}

	if es := values.Get("email_sent"); es != "" {
		if v, err := strconv.ParseBool(es); err == nil {
			f.EmailSent = &v
		}
	}

	if c := values.Get("company"); c != "" {
		f.Company = &c
	}

	if ao := values.Get("assigned_officer"); ao != "" {
		f.AssignedOfficer = &ao
	}

	if pt := values.Get("project_type"); pt != "" {
		f.ProjectType = &pt
	}

	if ps := values.Get("payment_status"); ps != "" {
		f.PaymentStatus = &ps
	}

	if from := values.Get("deadline_from"); from != "" {
		d, err := ParseDate(from)
		if err != nil {
			return f, err
		}
		f.DeadlineFrom = &d
	}

	if to := values.Get("deadline_to"); to != "" {
		d, err := ParseDate(to)
		if err != nil {
			return f, err
		}
		f.DeadlineTo = &d
	}

	return f, nil
}

func scanConsultation(s repository.Scanner) (Consultation, error) {
	var c Consultation
	err := s.Scan(
		&c.ID,
		&c.Company,
		&c.Project,
		&c.ProjectType,
		&c.ContactEmail,
		&c.Deadline,
		&c.Decision,
		&c.EmailSent,
		&c.EmailSentAt,
		&c.EmailID,
		&c.AssignedOfficer,
		&c.ConsultationFee,
		&c.PaymentStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.OfficerName,
	)
	return c, err
}
