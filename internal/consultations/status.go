package consultations

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DecisionStatus is the coarse status shown on status badges.
type DecisionStatus string

const (
	StatusCompleted DecisionStatus = "completed"
	StatusOverdue   DecisionStatus = "overdue"
	StatusDueSoon   DecisionStatus = "due_soon"
	StatusPending   DecisionStatus = "pending"
)

// Urgency is the finer classification used for calendar cards and row colour.
type Urgency string

const (
	UrgencyCompleted      Urgency = "completed"
	UrgencyOverdue        Urgency = "overdue"
	UrgencyDueToday       Urgency = "due_today"
	UrgencyActionRequired Urgency = "action_required"
	UrgencyNormal         Urgency = "normal"
)

// EmailAction is the affordance offered for communicating a decision.
type EmailAction string

const (
	EmailActionSent        EmailAction = "sent"
	EmailActionDecideFirst EmailAction = "decide_first"
	EmailActionSending     EmailAction = "sending"
	EmailActionDraft       EmailAction = "draft"
	EmailActionSend        EmailAction = "send"
)

// Enabled reports whether the affordance can be triggered.
func (a EmailAction) Enabled() bool {
	return a == EmailActionDraft || a == EmailActionSend
}

const day = 24 * time.Hour

// DueSoonDays is the window, in days, for due_soon and action_required.
const DueSoonDays = 7

func daysBetween(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(day)
}

// DaysUntilDeadline is the whole days from now to the start of the deadline
// day, rounded up. It drives ClassifyDecisionStatus.
func DaysUntilDeadline(deadline Date, now time.Time) int {
	return int(math.Ceil(daysBetween(now, deadline.Midnight(now.Location()))))
}

// DaysRemaining is the whole days from now to the end of the deadline day,
// rounded down. It drives ClassifyUrgency and the review sort, and is 0 for
// the whole of the deadline day.
func DaysRemaining(deadline Date, now time.Time) int {
	return int(math.Floor(daysBetween(now, deadline.End(now.Location()))))
}

// ClassifyDecisionStatus derives the badge status. A resolved decision is always
// completed; otherwise one day or less left counts as overdue.
func ClassifyDecisionStatus(decision Decision, deadline Date, now time.Time) DecisionStatus {
	if decision.Resolved() {
		return StatusCompleted
	}

	days := DaysUntilDeadline(deadline, now)
	switch {
	case days <= 1:
		return StatusOverdue
	case days <= DueSoonDays:
		return StatusDueSoon
	default:
		return StatusPending
	}
}

// ClassifyUrgency derives the urgency bucket of a consultation.
func ClassifyUrgency(decision Decision, deadline Date, now time.Time) Urgency {
	if decision.Resolved() {
		return UrgencyCompleted
	}

	days := DaysRemaining(deadline, now)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyDueToday
	case days <= DueSoonDays:
		return UrgencyActionRequired
	default:
		return UrgencyNormal
	}
}

// SortForReview orders records in place: undecided before resolved, then by
// ascending DaysRemaining. The sort is stable.
func SortForReview(records []Consultation, now time.Time) {
	slices.SortStableFunc(records, func(a, b Consultation) int {
		ar, br := a.Resolved(), b.Resolved()
		if ar != br {
			if br {
				return -1
			}
			return 1
		}
		return DaysRemaining(a.Deadline, now) - DaysRemaining(b.Deadline, now)
	})
}

// ResolveEmailAction selects the email affordance for c.
func ResolveEmailAction(c Consultation, inFlight bool) EmailAction {
	switch {
	case c.EmailSent:
		return EmailActionSent
	case !c.Resolved():
		return EmailActionDecideFirst
	case inFlight:
		return EmailActionSending
	case c.Decision == DecisionConditional:
		return EmailActionDraft
	default:
		return EmailActionSend
	}
}

// Row is the read-side projection of a consultation with every derived field
// computed against a single now. Derived fields are never stored.
type Row struct {
	Consultation
	DaysRemaining int            `json:"days_remaining"`
	Status        DecisionStatus `json:"status"`
	Urgency       Urgency        `json:"urgency"`
	EmailAction   EmailAction    `json:"email_action"`
	DecisionLabel string         `json:"decision_label"`
}

// Annotate computes the derived fields of c at now.
func Annotate(c Consultation, now time.Time, inFlight bool) Row {
	return Row{
		Consultation:  c,
		DaysRemaining: DaysRemaining(c.Deadline, now),
		Status:        ClassifyDecisionStatus(c.Decision, c.Deadline, now),
		Urgency:       ClassifyUrgency(c.Decision, c.Deadline, now),
		EmailAction:   ResolveEmailAction(c, inFlight),
		DecisionLabel: c.Decision.Label(),
	}
}

// AnnotateAll annotates records in order. A nil checker treats nothing as in flight.
func AnnotateAll(records []Consultation, now time.Time, checker InFlightChecker) []Row {
	rows := make([]Row, len(records))
	for i, c := range records {
		inFlight := checker != nil && checker.InFlight(c.ID)
		rows[i] = Annotate(c, now, inFlight)
	}
	return rows
}

// InFlightChecker reports whether a decision email is currently being sent.
type InFlightChecker interface {
	InFlight(id uuid.UUID) bool
}
