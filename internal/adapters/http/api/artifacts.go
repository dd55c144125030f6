package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
)

// ArtifactsHandler serves computed outputs.
type ArtifactsHandler struct {
	deps ArtifactDependencies
}

// NewArtifactsHandler creates a new artifacts handler.
func NewArtifactsHandler(deps ArtifactDependencies) *ArtifactsHandler {
	return &ArtifactsHandler{deps: deps}
}

type artifactsResponse struct {
	Artifacts []views.Artifact `json:"artifacts"`
}

// HandleList handles GET /artifacts requests.
func (h *ArtifactsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_artifacts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	arts, err := h.deps.Artifacts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, artifactsResponse{Artifacts: arts})
}

// HandleGet handles GET /artifacts/{output} requests.
func (h *ArtifactsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_artifact"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/artifacts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	a, err := h.deps.Artifact(r.Context(), views.OutputID(id))
	if err != nil {
		if errors.Is(err, reactive.ErrUnknownOutput) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}
