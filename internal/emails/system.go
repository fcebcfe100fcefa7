// Package emails dispatches decision emails for resolved consultations. It
// guards each consultation against concurrent sends, stores conditional
// endorsement drafts in blob storage, and records successful dispatches.
package emails

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/storage"
)

// Source is the slice of the consultation system the dispatcher reads and updates.
type Source interface {
	Find(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, cmd consultations.EmailSentCommand) (*consultations.Consultation, error)
}

// Result is the outcome of sending the email of a stored consultation.
// Consultation is the record after the attempt.
type Result struct {
	Response
	Consultation *consultations.Consultation `json:"-"`
}

// BatchItem is the per-consultation outcome of a batch send.
type BatchItem struct {
	ID uuid.UUID `json:"id"`
	Response
}

// System defines the public contract for decision email dispatch.
type System interface {
	Handler(clock func() time.Time) *Handler

	// Dispatch delivers req under the dispatch timeout. It never returns an
	// error; failures are reported in the Response.
	Dispatch(ctx context.Context, req Request) Response

	// Send loads the consultation, dispatches its decision email, and marks it
	// sent on success. A failed dispatch returns a Result with Success false and
	// leaves the record unchanged.
	Send(ctx context.Context, id uuid.UUID, conditions []string) (*Result, error)

	// SendBatch sends each id independently with bounded concurrency.
	SendBatch(ctx context.Context, ids []uuid.UUID) ([]BatchItem, error)

	// InFlight reports whether a dispatch for id is currently running.
	InFlight(id uuid.UUID) bool

	// Drafts lists the stored drafts of a consultation.
	Drafts(ctx context.Context, id uuid.UUID) ([]storage.Blob, error)
}
