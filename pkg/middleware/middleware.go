// Package middleware provides the HTTP middleware stack used by each module
// along with the request logging, panic recovery, CORS, and body limit layers.
package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps a handler with additional behavior.
type Middleware = func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware. The first layer added
// is the outermost.
type System interface {
	Use(mw Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	layers []Middleware
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw Middleware) {
	s.layers = append(s.layers, mw)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(s.layers) {
		handler = mw(handler)
	}
	return handler
}
