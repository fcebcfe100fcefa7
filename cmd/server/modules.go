package main

import (
	"net/http"

	"github.com/JaimeStill/consult/internal/api"
	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/internal/infrastructure"
	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/module"
)

// Modules holds the HTTP modules mounted on the top-level router.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter serves the probes outside any module: /healthz always answers,
// /readyz answers 503 until ready reports true.
func buildRouter(version string, ready func() bool) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "ready"
		if !ready() {
			status, body = http.StatusServiceUnavailable, "not ready"
		}
		handlers.RespondJSON(w, status, map[string]string{"status": body})
	})

	return router
}
