// Package handlers holds the JSON request and response helpers shared by the
// domain HTTP handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/consult/pkg/middleware"
)

var (
	// ErrEmptyBody is returned by DecodeJSON for a request without a body.
	ErrEmptyBody = errors.New("request body required")
	// ErrBodyTooLarge is returned by DecodeJSON when the body exceeds the MaxBody limit.
	ErrBodyTooLarge = errors.New("request body too large")
)

// DecodeJSON decodes a single JSON value from the request body into dst.
// Trailing data after the value is rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err != nil {
			return decodeError(err)
		}
		return fmt.Errorf("decode body: unexpected data after JSON value")
	}
	return nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	case errors.As(err, &tooLarge):
		return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	default:
		return fmt.Errorf("decode body: %w", err)
	}
}

// DecodeStatus maps a DecodeJSON error to its response status.
func DecodeStatus(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err against the request id and writes {"error": "..."}.
// Server errors log at error, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	level := slog.LevelWarn
	msg := "request rejected"
	if status >= http.StatusInternalServerError {
		level, msg = slog.LevelError, "handler error"
	}
	logger.Log(context.Background(), level, msg,
		"status", status,
		"request_id", w.Header().Get(middleware.RequestIDHeader),
		"error", err,
	)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
