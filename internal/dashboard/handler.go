package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/routes"
)

// Source supplies the consultations summarized by a dashboard.
type Source interface {
	All(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error)
}

// Handler provides the HTTP endpoint for role dashboards.
type Handler struct {
	source   Source
	inFlight consultations.InFlightChecker
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. A nil clock uses time.Now.
func NewHandler(source Source, inFlight consultations.InFlightChecker, logger *slog.Logger, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		source:   source,
		inFlight: inFlight,
		logger:   logger.With("handler", "dashboard"),
		now:      clock,
	}
}

// Routes returns the route group definition for dashboard endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/dashboard",
		Tags:   []string{"Dashboard"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get, OpenAPI: Spec.Get},
		},
	}
}

// QueryFromValues parses ?role=&officer_id=&search=&include_sent=.
func QueryFromValues(get func(string) string) (Query, error) {
	role, err := ParseRole(get("role"))
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Role:      role,
		OfficerID: get("officer_id"),
		Search:    get("search"),
	}

	if v := get("include_sent"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Query{}, fmt.Errorf("%w: include_sent %q", ErrInvalidQuery, v)
		}
		q.IncludeSent = b
	}

	if q.Role == RoleOfficer && q.OfficerID == "" {
		return Query{}, ErrOfficerRequired
	}
	return q, nil
}

// Get renders the dashboard for the requested role.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := QueryFromValues(r.URL.Query().Get)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var filters consultations.Filters
	if q.Role == RoleOfficer {
		filters.AssignedOfficer = &q.OfficerID
	}

	records, err := h.source.All(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, consultations.MapHTTPStatus(err), err)
		return
	}

	d, err := Build(q, records, h.now(), h.inFlight)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}
