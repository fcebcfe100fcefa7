package api

import (
	"fmt"
	"maps"
	"net/http"

	"github.com/JaimeStill/consult/internal/calendar"
	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/internal/dashboard"
	"github.com/JaimeStill/consult/internal/emails"
	"github.com/JaimeStill/consult/pkg/openapi"
	"github.com/JaimeStill/consult/pkg/routes"
)

// groups returns every route group served by the API module.
func groups(domain *Domain, runtime *Runtime) []routes.Group {
	clock := runtime.Clock

	return []routes.Group{
		domain.Consultations.Handler(domain.Emails, clock).Routes(),
		domain.Emails.Handler(clock).Routes(),
		calendar.NewHandler(domain.Consultations, runtime.Logger, clock).Routes(),
		dashboard.NewHandler(domain.Consultations, domain.Emails, runtime.Logger, clock).Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	all := groups(domain, runtime)
	routes.Register(mux, all...)

	spec, err := buildSpec(cfg, all)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	schemas := consultations.Schemas()
	maps.Copy(schemas, emails.Schemas())
	maps.Copy(schemas, calendar.Schemas())
	maps.Copy(schemas, dashboard.Schemas())
	spec.Components.AddSchemas(schemas)

	routes.Document(spec, "", groups...)

	data, err := spec.JSON()
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
