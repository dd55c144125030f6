package reactive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/views"
	"github.com/okian/edupanel/pkg/logger"
	"github.com/okian/edupanel/pkg/metrics"
)

// Source is the loaded panel as seen by the controller.
type Source interface {
	params.Domain
	Table() panel.Table
}

// Update reports the outcome of one accepted change event.
type Update struct {
	Params     params.Params    `json:"params"`
	Changed    []params.Name    `json:"changed"`
	Recomputed []views.OutputID `json:"recomputed"`
}

// Controller holds the current parameter state and one artifact per
// output, each computed from that state. It is not safe for concurrent
// use; callers serialize events.
type Controller struct {
	graph  *Graph
	domain params.Domain
	table  panel.Table

	params  params.Params
	cache   map[views.OutputID]views.Artifact
	version uint64

	newID  func() uuid.UUID
	logger logger.Logger
}

// New builds a controller at the default state and computes every output
// once.
func New(ctx context.Context, src Source, defaults params.Params, opts ...Option) (*Controller, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidGraph)
	}
	c := &Controller{
		domain: src,
		table:  src.Table(),
		params: defaults,
		newID:  uuid.New,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.graph == nil {
		g, err := NewGraph(views.Definitions())
		if err != nil {
			return nil, err
		}
		c.graph = g
	}

	c.cache = make(map[views.OutputID]views.Artifact, len(c.graph.defs))
	for _, d := range c.graph.defs {
		c.recompute(ctx, d)
	}
	c.logger.Info(ctx, "reactive graph ready",
		logger.Int("outputs", len(c.graph.defs)),
		logger.Int("rows", len(c.table)),
	)
	return c, nil
}

// Graph returns the dependency graph in use.
func (c *Controller) Graph() *Graph { return c.graph }

// Params returns the current parameter state.
func (c *Controller) Params() params.Params { return c.params }

// Apply validates changes against the dataset and, if every value is
// valid, moves to the new state and recomputes the stale outputs before
// returning. An invalid event leaves state and artifacts untouched.
func (c *Controller) Apply(ctx context.Context, changes params.Changes) (Update, error) {
	next, changed, err := c.params.Apply(changes, c.domain)
	if err != nil {
		var pe *params.Error
		name := "unknown"
		if errors.As(err, &pe) {
			name = string(pe.Name)
		}
		metrics.RecordInvalidParameter(name)
		c.logger.Warn(ctx, "parameter change rejected", logger.String("param", name), logger.Error(err))
		return Update{Params: c.params}, err
	}

	c.params = next
	names := make([]string, len(changed))
	for i, n := range changed {
		names[i] = string(n)
		metrics.RecordParameterChange(string(n))
	}

	stale := c.graph.Stale(changed)
	for _, id := range stale {
		d, _ := c.graph.Definition(id)
		c.recompute(ctx, d)
	}
	c.logger.Info(ctx, "parameters changed",
		logger.Strings("changed", names),
		logger.Int("recomputed", len(stale)),
	)
	return Update{Params: c.params, Changed: changed, Recomputed: stale}, nil
}

// Artifact returns the artifact for id. The cached artifact is served only
// if its key still matches the current state; otherwise it is rebuilt.
func (c *Controller) Artifact(ctx context.Context, id views.OutputID) (views.Artifact, error) {
	d, ok := c.graph.Definition(id)
	if !ok {
		return views.Artifact{}, fmt.Errorf("%w: %q", ErrUnknownOutput, id)
	}
	a, ok := c.cache[id]
	if !ok || a.Key != c.key(d) {
		metrics.RecordStaleArtifact(string(id))
		c.logger.Warn(ctx, "stale artifact rebuilt on read", logger.String("output", string(id)))
		a = c.recompute(ctx, d)
	}
	metrics.RecordArtifactServed(string(id))
	return a, nil
}

// Artifacts returns every artifact in declaration order.
func (c *Controller) Artifacts(ctx context.Context) []views.Artifact {
	out := make([]views.Artifact, 0, len(c.graph.defs))
	for _, d := range c.graph.defs {
		a, _ := c.Artifact(ctx, d.ID)
		out = append(out, a)
	}
	return out
}

func (c *Controller) key(d views.Definition) string {
	return string(d.ID) + "?" + c.params.Key(d.DependsOn)
}

func (c *Controller) recompute(ctx context.Context, d views.Definition) views.Artifact {
	start := time.Now()
	a := d.Build(c.table, c.params)

	c.version++
	a.Output = d.ID
	a.Kind = d.Kind
	a.Key = c.key(d)
	a.Version = c.version
	a.ComputationID = c.newID()
	c.cache[d.ID] = a

	metrics.RecordRecompute(string(d.ID), string(a.Status))
	metrics.RecordRecomputeLatency(string(d.ID), float64(time.Since(start).Microseconds())/1000)
	if a.Anomalies != nil {
		metrics.UpdateAnomalyCount(string(a.Anomalies.Metric), a.Anomalies.AnomalyCount)
	}
	c.logger.Debug(ctx, "output recomputed",
		logger.String("output", string(d.ID)),
		logger.Uint64("version", a.Version),
		logger.String("status", string(a.Status)),
		logger.String("key", a.Key),
	)
	return a
}
