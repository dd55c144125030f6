// Package service wires the dataset, the panel store and the reactive
// controller into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/edupanel/internal/adapters/dataset"
	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
	"github.com/okian/edupanel/pkg/logger"
	"github.com/okian/edupanel/pkg/metrics"
)

const defaultCountryCount = 5

// Service owns one dashboard session. Parameter events are serialized:
// each one finishes its recomputation before the next is accepted.
type Service struct {
	mu sync.Mutex

	// Configuration
	dataPath     string
	countryCount int
	records      panel.Table

	// State
	store      *panel.Store
	controller *reactive.Controller
	started    bool
	startedAt  time.Time
	sessionID  uuid.UUID
	events     int
	rejected   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDataPath sets the panel file read on Start.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithDefaultCountryCount sets how many countries the initial selection holds.
func WithDefaultCountryCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.countryCount = n
		}
	}
}

// WithRecords serves an in-memory dataset instead of reading a file.
func WithRecords(records panel.Table) Option {
	return func(s *Service) {
		s.records = records.Clone()
	}
}

// New constructs a Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{countryCount: defaultCountryCount}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset, builds the store and computes the initial
// artifacts. A data integrity failure aborts the start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	began := time.Now()
	raw, err := s.read(ctx)
	if err != nil {
		return s.fail(ctx, "dataset", err)
	}
	store, err := panel.Load(raw)
	if err != nil {
		return s.fail(ctx, "panel", err)
	}
	loadMs := float64(time.Since(began).Microseconds()) / 1000
	metrics.RecordDatasetLoadDuration(loadMs)
	metrics.UpdateDatasetRows(store.Len())
	metrics.UpdateDatasetYears(len(store.DistinctYears()))
	metrics.UpdateDatasetCountries(len(store.DistinctCountries()))

	s.sessionID = uuid.New()
	ctrl, err := reactive.New(ctx, store, params.Defaults(store, s.countryCount),
		reactive.WithLogger(s.logger.Named("reactive")),
	)
	if err != nil {
		return s.fail(ctx, "reactive", err)
	}

	s.store = store
	s.controller = ctrl
	s.started = true
	s.startedAt = time.Now()
	s.events, s.rejected = 0, 0
	s.logger.Info(ctx, "dashboard service started",
		logger.String("session", s.sessionID.String()),
		logger.String("dataset", s.source()),
		logger.Int("rows", store.Len()),
		logger.Int("years", len(store.DistinctYears())),
		logger.Int("countries", len(store.DistinctCountries())),
		logger.Float64("loadMs", loadMs),
	)
	return nil
}

func (s *Service) read(ctx context.Context) (panel.Table, error) {
	if s.records != nil {
		return s.records.Clone(), nil
	}
	if s.dataPath == "" {
		return nil, ErrNoDataset
	}
	return dataset.Load(ctx, s.dataPath)
}

func (s *Service) source() string {
	if s.records != nil {
		return "memory"
	}
	return s.dataPath
}

func (s *Service) fail(ctx context.Context, component string, err error) error {
	kind := "error"
	if errors.Is(err, panel.ErrDataIntegrity) {
		kind = "integrity"
	}
	metrics.RecordErrorByComponent(component, kind)
	s.logger.Error(ctx, "dashboard service failed to start",
		logger.String("component", component),
		logger.String("dataset", s.source()),
		logger.Error(err),
	)
	return fmt.Errorf("start %s: %w", component, err)
}

// Stop releases the session state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.controller = nil
	s.store = nil
	s.logger.Info(context.Background(), "dashboard service stopped",
		logger.String("session", s.sessionID.String()),
		logger.Int("events", s.events),
		logger.Int("rejected", s.rejected),
	)
}

// Domain returns the selectable values of every parameter.
func (s *Service) Domain(_ context.Context) (params.Choices, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return params.Choices{}, ErrNotStarted
	}
	return params.ChoicesFor(s.store), nil
}

// Params returns the current parameter state.
func (s *Service) Params(_ context.Context) (params.Params, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return params.Params{}, ErrNotStarted
	}
	return s.controller.Params(), nil
}

// UpdateParams applies one change event. Invalid events are rejected as a
// whole and the prior state is kept.
func (s *Service) UpdateParams(ctx context.Context, changes params.Changes) (reactive.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return reactive.Update{}, ErrNotStarted
	}
	up, err := s.controller.Apply(ctx, changes)
	if err != nil {
		s.rejected++
		return up, err
	}
	s.events++
	return up, nil
}

// Artifact returns the current artifact of one output.
func (s *Service) Artifact(ctx context.Context, id views.OutputID) (views.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return views.Artifact{}, ErrNotStarted
	}
	return s.controller.Artifact(ctx, id)
}

// Artifacts returns every current artifact in declaration order.
func (s *Service) Artifacts(ctx context.Context) ([]views.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.controller.Artifacts(ctx), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"started": s.started,
		"dataset": s.source(),
	}
	if s.started {
		stats["session"] = s.sessionID.String()
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
		stats["rows"] = s.store.Len()
		stats["years"] = len(s.store.DistinctYears())
		stats["countries"] = len(s.store.DistinctCountries())
		stats["outputs"] = len(s.controller.Graph().Outputs())
		stats["events"] = s.events
		stats["rejectedEvents"] = s.rejected
	}
	return stats
}
