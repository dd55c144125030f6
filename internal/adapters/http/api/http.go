// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
)

// ParamsDependencies reads and changes the parameter state.
type ParamsDependencies interface {
	Domain(ctx context.Context) (params.Choices, error)
	Params(ctx context.Context) (params.Params, error)
	UpdateParams(ctx context.Context, changes params.Changes) (reactive.Update, error)
}

// ArtifactDependencies reads computed outputs.
type ArtifactDependencies interface {
	Artifact(ctx context.Context, id views.OutputID) (views.Artifact, error)
	Artifacts(ctx context.Context) ([]views.Artifact, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ParamsDependencies
	ArtifactDependencies
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	paramsHandler    *ParamsHandler
	artifactsHandler *ArtifactsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		paramsHandler:    NewParamsHandler(deps),
		artifactsHandler: NewArtifactsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/params", MetricsMiddleware(s.paramsHandler.HandleParams, "params"))
	mux.HandleFunc("/artifacts", MetricsMiddleware(s.artifactsHandler.HandleList, "artifacts"))
	mux.HandleFunc("/artifacts/", MetricsMiddleware(s.artifactsHandler.HandleGet, "artifact"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
