package calendar

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/consult/internal/consultations"
)

var (
	ErrInvalidView       = errors.New("view must be week or month")
	ErrInvalidNavigation = errors.New("nav must be prev, next, or today")
)

// MapHTTPStatus maps calendar errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidView) ||
		errors.Is(err, ErrInvalidNavigation) ||
		errors.Is(err, consultations.ErrInvalidDate) ||
		errors.Is(err, consultations.ErrInvalidDecision) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
