package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/consult/pkg/handlers"
	"github.com/JaimeStill/consult/pkg/openapi"
	"github.com/JaimeStill/consult/pkg/routes"
	"github.com/JaimeStill/consult/pkg/storage"
)

const draftsRoot = "drafts/"

var draftSpec = struct {
	List     *openapi.Operation
	Download *openapi.Operation
}{
	List: &openapi.Operation{
		Summary:    "List stored drafts",
		Parameters: []*openapi.Parameter{openapi.QueryParam("prefix", "string", "Key prefix below drafts/, usually a consultation id", false)},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArrayJSON("Draft blobs", "Blob"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Download: &openapi.Operation{
		Summary:    "Download a stored draft",
		Parameters: []*openapi.Parameter{openapi.KeyParam("key", "Draft key below drafts/")},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Draft HTML",
				Content:     map[string]*openapi.MediaType{"text/html": {Schema: &openapi.Schema{Type: "string"}}},
			},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// storageHandler exposes the conditional endorsement drafts held in blob storage.
type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "drafts"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/drafts",
		Tags:   []string{"Drafts"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list, OpenAPI: draftSpec.List},
			{Method: "GET", Pattern: "/{key...}", Handler: h.download, OpenAPI: draftSpec.Download},
		},
	}
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimPrefix(r.URL.Query().Get("prefix"), draftsRoot)

	blobs, err := h.store.List(r.Context(), draftsRoot+prefix)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, blobs)
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := draftsRoot + r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("draft download interrupted", "key", key, "error", err)
	}
}
