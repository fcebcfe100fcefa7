package module

import (
	"net/http"
	"slices"
	"strings"
)

// Router dispatches to the mounted module with the longest matching prefix,
// falling back to a native ServeMux for health probes and other unmounted paths.
type Router struct {
	modules []*Module
	native  *http.ServeMux
}

// NewRouter creates a Router with no modules and an empty native mux.
func NewRouter() *Router {
	return &Router{native: http.NewServeMux()}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers m, replacing any module already mounted at the same prefix.
func (r *Router) Mount(m *Module) {
	r.modules = slices.DeleteFunc(r.modules, func(existing *Module) bool {
		return existing.prefix == m.prefix
	})
	r.modules = append(r.modules, m)
	slices.SortFunc(r.modules, func(a, b *Module) int {
		return len(b.prefix) - len(a.prefix)
	})
}

// Prefixes lists mounted module prefixes, longest first.
func (r *Router) Prefixes() []string {
	prefixes := make([]string, len(r.modules))
	for i, m := range r.modules {
		prefixes[i] = m.prefix
	}
	return prefixes
}

// ServeHTTP trims a trailing slash, then dispatches to the matching module
// or the native mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if path := req.URL.Path; len(path) > 1 && strings.HasSuffix(path, "/") {
		req.URL.Path = strings.TrimSuffix(path, "/")
	}

	for _, m := range r.modules {
		if m.Matches(req.URL.Path) {
			m.Serve(w, req)
			return
		}
	}

	r.native.ServeHTTP(w, req)
}
