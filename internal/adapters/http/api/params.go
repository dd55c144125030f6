package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/edupanel/internal/domain/params"
)

const maxBodyBytes = 1 << 20

// ParamsHandler serves the parameter state and accepts change events.
type ParamsHandler struct {
	deps ParamsDependencies
}

// NewParamsHandler creates a new params handler.
func NewParamsHandler(deps ParamsDependencies) *ParamsHandler {
	return &ParamsHandler{deps: deps}
}

type paramsResponse struct {
	Params params.Params  `json:"params"`
	Domain params.Choices `json:"domain"`
}

// HandleParams handles GET and POST /params.
func (h *ParamsHandler) HandleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.post(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ParamsHandler) get(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_params"
	p, err := h.deps.Params(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	d, err := h.deps.Domain(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse{Params: p, Domain: d})
}

// post applies a change event given as a JSON object of parameter names
// to new values, e.g. {"year": 2019, "countries": ["Spain"]}.
func (h *ParamsHandler) post(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_params"
	changes, err := decodeChanges(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		code := "bad_request"
		if errors.Is(err, params.ErrInvalidParameter) {
			code = "invalid_parameter"
		}
		writeError(w, http.StatusBadRequest, code, WrapKind(op, ErrBadRequest, err))
		return
	}

	up, err := h.deps.UpdateParams(r.Context(), changes)
	if err != nil {
		if errors.Is(err, params.ErrInvalidParameter) {
			writeError(w, http.StatusBadRequest, "invalid_parameter", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, up)
}

func decodeChanges(body io.Reader) (params.Changes, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no parameters given")
	}
	changes := make(params.Changes, len(raw))
	for k, v := range raw {
		n, err := params.ParseName(k)
		if err != nil {
			return nil, err
		}
		changes[n] = v
	}
	return changes, nil
}
