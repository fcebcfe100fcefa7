package emails

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/consult/internal/consultations"
)

// Domain errors for decision email dispatch.
var (
	ErrInFlight    = errors.New("decision email already in flight")
	ErrNotResolved = errors.New("consultation has no final decision")
	ErrEmptyBatch  = errors.New("batch requires at least one id")
	ErrBatchSize   = errors.New("batch exceeds maximum size")
)

// MapHTTPStatus maps email domain errors to appropriate HTTP status codes.
// Consultation errors surfaced by the source are mapped through their own domain.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInFlight) || errors.Is(err, consultations.ErrAlreadySent) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNotResolved) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrEmptyBatch) || errors.Is(err, ErrBatchSize) {
		return http.StatusBadRequest
	}
	return consultations.MapHTTPStatus(err)
}
