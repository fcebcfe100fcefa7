package consultations

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/pagination"
	"github.com/JaimeStill/consult/pkg/routes"
)

// Handler provides HTTP endpoints for consultation operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	inFlight   InFlightChecker
	now        func() time.Time
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// DecisionOption describes a selectable decision for decision editors.
type DecisionOption struct {
	Value Decision `json:"value"`
	Label string   `json:"label"`
}

// NewHandler creates a Handler. A nil clock uses time.Now.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	inFlight InFlightChecker,
	clock func() time.Time,
) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "consultations"),
		pagination: pagination,
		inFlight:   inFlight,
		now:        clock,
	}
}

// Routes returns the route group definition for consultation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/consultations",
		Tags:   []string{"Consultations"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: Spec.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: Spec.Search},
			{Method: "GET", Pattern: "/queue", Handler: h.Queue, OpenAPI: Spec.Queue},
			{Method: "GET", Pattern: "/export", Handler: h.Export, OpenAPI: Spec.Export},
			{Method: "GET", Pattern: "/decisions", Handler: h.Decisions, OpenAPI: Spec.Decisions},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "PUT", Pattern: "/{id}/decision", Handler: h.UpdateDecision, OpenAPI: Spec.UpdateDecision},
		},
	}
}

// List returns a paginated, annotated list of consultations filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondPage(w, r, page, filters)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	req.PageRequest.Normalize(h.pagination)
	h.respondPage(w, r, req.PageRequest, req.Filters)
}

// Find returns a single annotated consultation by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.annotate(*c))
}

// Create registers a new consultation from the intake payload.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	if err := cmd.Validate(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, h.annotate(*c))
}

// UpdateDecision replaces the decision of a consultation and returns the updated row.
func (h *Handler) UpdateDecision(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd DecisionCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	c, err := h.sys.UpdateDecision(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.annotate(*c))
}

// Queue returns the review queue: unsent consultations (all with include_sent=true)
// matching search, pending first and soonest deadline first.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	includeSent, _ := strconv.ParseBool(values.Get("include_sent"))

	filters, err := FiltersFromQuery(values)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	all, err := h.sys.All(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	now := h.now()
	queue := ReviewQueue(all, values.Get("search"), includeSent, now)
	handlers.RespondJSON(w, http.StatusOK, AnnotateAll(queue, now, h.inFlight))
}

// Export returns every consultation matching the query filters as a JSON array.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	all, err := h.sys.All(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, all)
}

// Decisions lists the selectable decision values with their labels.
func (h *Handler) Decisions(w http.ResponseWriter, r *http.Request) {
	options := make([]DecisionOption, 0, len(Decisions()))
	for _, d := range Decisions() {
		options = append(options, DecisionOption{Value: d, Label: d.Label()})
	}
	handlers.RespondJSON(w, http.StatusOK, options)
}

func (h *Handler) respondPage(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	now := h.now()
	handlers.RespondJSON(w, http.StatusOK, pagination.Map(*result, func(items []Consultation) []Row {
		return AnnotateAll(items, now, h.inFlight)
	}))
}

func (h *Handler) annotate(c Consultation) Row {
	inFlight := h.inFlight != nil && h.inFlight.InFlight(c.ID)
	return Annotate(c, h.now(), inFlight)
}
