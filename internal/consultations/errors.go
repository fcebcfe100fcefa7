package consultations

import (
	"errors"
	"net/http"
)

// Domain errors for consultation operations.
var (
	ErrNotFound            = errors.New("consultation not found")
	ErrDuplicate           = errors.New("consultation already exists")
	ErrInvalidDecision     = errors.New("invalid decision")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidConsultation = errors.New("invalid consultation")
	ErrAlreadySent         = errors.New("decision email already sent")
)

// MapHTTPStatus maps consultation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrAlreadySent) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidDecision) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidConsultation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
