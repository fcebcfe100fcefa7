package consultations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/pkg/pagination"
)

// System defines the public contract for consultation domain operations.
// It is the data source and decision update sink for every view.
type System interface {
	Handler(inFlight InFlightChecker, clock func() time.Time) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Consultation], error)

	// All returns every consultation matching filters, ordered by deadline.
	All(ctx context.Context, filters Filters) ([]Consultation, error)

	Find(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Create(ctx context.Context, cmd CreateCommand) (*Consultation, error)

	// UpdateDecision replaces the decision and returns the updated record.
	UpdateDecision(ctx context.Context, id uuid.UUID, cmd DecisionCommand) (*Consultation, error)

	// MarkEmailSent flips email_sent once. Returns ErrAlreadySent if it is already set.
	MarkEmailSent(ctx context.Context, id uuid.UUID, cmd EmailSentCommand) (*Consultation, error)
}
