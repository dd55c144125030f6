// Package views declares the dashboard outputs: which parameters each one
// reads and how its render-ready artifact is built from the enriched table.
package views

import (
	"github.com/google/uuid"

	"github.com/okian/edupanel/internal/domain/aggregate"
	"github.com/okian/edupanel/internal/domain/anomaly"
	"github.com/okian/edupanel/internal/domain/panel"
)

// OutputID names a declared output.
type OutputID string

// Kind tells the renderer which payload field is populated.
type Kind string

const (
	KindKPI        Kind = "kpi"
	KindScatter    Kind = "scatter"
	KindLine       Kind = "line"
	KindBar        Kind = "bar"
	KindChoropleth Kind = "choropleth"
	KindAnomaly    Kind = "anomaly"
)

// Status tags whether the artifact carries data.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

// Reason explains an unavailable artifact.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonEmptyResult      Reason = "empty_result"
	ReasonInsufficientData Reason = "insufficient_data"
)

// Artifact is a fully computed, render-ready output. Key, Version and
// ComputationID are stamped by the controller that computed it.
type Artifact struct {
	Output        OutputID  `json:"output"`
	Kind          Kind      `json:"kind"`
	Key           string    `json:"key"`
	Version       uint64    `json:"version"`
	ComputationID uuid.UUID `json:"computation_id"`

	Status  Status `json:"status"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`

	Title  string `json:"title"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`

	KPIs      []aggregate.KPI `json:"kpis,omitempty"`
	Scatter   []ScatterPoint  `json:"scatter,omitempty"`
	Line      []LinePoint     `json:"line,omitempty"`
	Bars      []BarPoint      `json:"bars,omitempty"`
	Map       []MapPoint      `json:"map,omitempty"`
	Anomalies *AnomalyTable   `json:"anomalies,omitempty"`
}

// Available reports whether the artifact carries data.
func (a Artifact) Available() bool { return a.Status == StatusOK }

// Err returns the sentinel matching an unavailable artifact's reason, or nil.
func (a Artifact) Err() error {
	switch a.Reason {
	case ReasonEmptyResult:
		return ErrEmptyResult
	case ReasonInsufficientData:
		return anomaly.ErrInsufficientData
	default:
		return nil
	}
}

// ScatterPoint is one marker: x, y, optional bubble size and a category.
type ScatterPoint struct {
	Country  string      `json:"country"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Size     panel.Value `json:"size"`
	Category string      `json:"category"`
}

// LinePoint is one vertex of a per-category line.
type LinePoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Category string  `json:"category"`
}

// BarPoint is one bar.
type BarPoint struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// MapPoint colors one location; a missing value renders as no data.
type MapPoint struct {
	Location string      `json:"location"`
	Value    panel.Value `json:"value"`
}

// AnomalyTable is the classification of a metric plus its fences.
type AnomalyTable struct {
	Metric       panel.Metric   `json:"metric"`
	Bounds       anomaly.Bounds `json:"bounds"`
	Rows         []anomaly.Row  `json:"rows"`
	AnomalyCount int            `json:"anomaly_count"`
}

func unavailable(a Artifact, reason Reason, msg string) Artifact {
	a.Status = StatusUnavailable
	a.Reason = reason
	a.Message = msg
	return a
}
