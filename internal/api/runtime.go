package api

import (
	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/internal/infrastructure"
	"github.com/JaimeStill/consult/pkg/pagination"
)

// Runtime extends Infrastructure with API-scoped logging and the
// configuration sections the domain systems read.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Email      *config.EmailConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Email:          &cfg.Email,
	}
}
