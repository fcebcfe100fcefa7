package storage

import (
	"errors"
	"net/http"
	"strings"
)

// MaxKeyLength is the longest blob name the service accepts.
const MaxKeyLength = 1024

var (
	// ErrNotFound is returned when no blob exists at the key.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey rejects operations addressed to an empty key.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey rejects keys with a leading slash, a ".." sequence, or control characters.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrKeyTooLong rejects keys longer than MaxKeyLength.
	ErrKeyTooLong = errors.New("storage key exceeds maximum length")
)

// MapHTTPStatus translates storage errors for handlers. Key errors are the
// caller's fault; anything unrecognized is a server error.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrKeyTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return validatePrefix(key)
}

// validatePrefix applies the key rules to a List prefix, where empty is allowed.
func validatePrefix(prefix string) error {
	if len(prefix) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.HasPrefix(prefix, "/") || strings.Contains(prefix, "..") {
		return ErrInvalidKey
	}
	if strings.ContainsFunc(prefix, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return ErrInvalidKey
	}
	return nil
}
