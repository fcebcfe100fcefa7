package emails

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/routes"
)

// Handler provides HTTP endpoints for decision email dispatch.
type Handler struct {
	sys    System
	logger *slog.Logger
	now    func() time.Time
}

// SendRequest is the optional body of a single send.
type SendRequest struct {
	Conditions []string `json:"conditions"`
}

// BatchRequest lists the consultations of a batch send.
type BatchRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// SendResponse is the dispatch outcome with the consultation annotated after the attempt.
type SendResponse struct {
	Response
	Consultation *consultations.Row `json:"consultation,omitempty"`
}

// NewHandler creates a Handler. A nil clock uses time.Now.
func NewHandler(sys System, logger *slog.Logger, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "emails"),
		now:    clock,
	}
}

// Routes returns the route group definition for email endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/consultations",
		Tags:   []string{"Emails"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/emails", Handler: h.SendBatch, OpenAPI: Spec.Batch},
			{Method: "POST", Pattern: "/{id}/email", Handler: h.Send, OpenAPI: Spec.Send},
			{Method: "GET", Pattern: "/{id}/drafts", Handler: h.Drafts, OpenAPI: Spec.Drafts},
		},
	}
}

// Send dispatches the decision email of one consultation. A failed dispatch
// responds 502 with the failure in the body.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req SendRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	result, err := h.sys.Send(r.Context(), id, req.Conditions)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp := SendResponse{Response: result.Response}
	if result.Consultation != nil {
		row := consultations.Annotate(*result.Consultation, h.now(), false)
		resp.Consultation = &row
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	handlers.RespondJSON(w, status, resp)
}

// SendBatch dispatches the decision emails of several consultations.
func (h *Handler) SendBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	items, err := h.sys.SendBatch(r.Context(), req.IDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Drafts lists the stored drafts of one consultation.
func (h *Handler) Drafts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	blobs, err := h.sys.Drafts(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, blobs)
}
