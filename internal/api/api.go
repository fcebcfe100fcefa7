// Package api assembles the API module: domain systems, route registration,
// the generated OpenAPI document, and the module middleware stack.
package api

import (
	"net/http"

	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/internal/infrastructure"
	"github.com/JaimeStill/consult/pkg/middleware"
	"github.com/JaimeStill/consult/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.MaxBody(cfg.API.MaxBodySizeBytes()))

	return m, nil
}
