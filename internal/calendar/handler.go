package calendar

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/routes"
)

// Source supplies the consultations placed on a calendar.
type Source interface {
	All(ctx context.Context, filters consultations.Filters) ([]consultations.Consultation, error)
}

// Handler provides the HTTP endpoint for calendar grids.
type Handler struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler. A nil clock uses time.Now.
func NewHandler(source Source, logger *slog.Logger, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		source: source,
		logger: logger.With("handler", "calendar"),
		now:    clock,
	}
}

// Routes returns the route group definition for calendar endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/calendar",
		Tags:   []string{"Calendar"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Grid, OpenAPI: Spec.Grid},
		},
	}
}

// Grid renders the calendar for ?date=&view=&nav=. Only consultations within
// the visible range are loaded; pending_only=true hides resolved ones.
func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	now := h.now()

	state, err := StateFromQuery(values.Get("date"), values.Get("view"), values.Get("nav"), now)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	filters, err := consultations.FiltersFromQuery(values)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	span := Range(state)
	filters.DeadlineFrom = &span.Start
	filters.DeadlineTo = &span.End

	if pendingOnly, _ := strconv.ParseBool(values.Get("pending_only")); pendingOnly {
		pending := consultations.DecisionPending
		filters.Decision = &pending
	}

	records, err := h.source.All(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Build(state, records, now))
}

// StateFromQuery resolves a State from raw parameters. An empty date anchors at now.
func StateFromQuery(date, view, nav string, now time.Time) (State, error) {
	v, err := ParseView(view)
	if err != nil {
		return State{}, err
	}

	anchor := now
	if date != "" {
		d, err := consultations.ParseDate(date)
		if err != nil {
			return State{}, err
		}
		anchor = d.Midnight(now.Location())
	}

	return State{Anchor: anchor, View: v}.Navigate(nav, now)
}
