package dashboard

import (
	"errors"
	"net/http"
)

// Domain errors for dashboard requests.
var (
	ErrInvalidRole     = errors.New("invalid dashboard role")
	ErrOfficerRequired = errors.New("officer dashboard requires officer_id")
	ErrInvalidQuery    = errors.New("invalid dashboard query")
)

// MapHTTPStatus maps dashboard errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrOfficerRequired) ||
		errors.Is(err, ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
