// Package anomaly flags observations outside the IQR fences of a metric.
package anomaly

import (
	"fmt"
	"sort"

	"github.com/okian/edupanel/internal/domain/panel"
)

// fenceFactor scales the IQR to obtain the lower and upper fences.
const fenceFactor = 1.5

// minValues is the smallest sample for which quartiles are meaningful.
const minValues = 2

// Class is the outcome of classifying one observation.
type Class string

const (
	ClassNormal Class = ""
	ClassBelow  Class = "Below normal range"
	ClassAbove  Class = "Above normal range"
)

// Explanation returns the human-readable reason, empty for normal values.
func (c Class) Explanation() string {
	switch c {
	case ClassBelow:
		return string(c) + " (Q1 - 1.5×IQR)"
	case ClassAbove:
		return string(c) + " (Q3 + 1.5×IQR)"
	default:
		return ""
	}
}

// Bounds are the quartiles and fences for a metric.
type Bounds struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Row is one classified observation.
type Row struct {
	Country     string  `json:"country"`
	Year        int     `json:"year"`
	Value       float64 `json:"value"`
	Anomalous   bool    `json:"anomalous"`
	Class       Class   `json:"class,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
}

// Result is the classification of every non-missing observation of a metric.
type Result struct {
	Metric panel.Metric `json:"metric"`
	Bounds Bounds       `json:"bounds"`
	Rows   []Row        `json:"rows"`
}

// Anomalies returns the anomalous rows in table order.
func (r Result) Anomalies() []Row {
	out := make([]Row, 0)
	for _, row := range r.Rows {
		if row.Anomalous {
			out = append(out, row)
		}
	}
	return out
}

// Detect applies the IQR rule to metric across all rows of t. Rows with a
// missing value are dropped first; fewer than two remaining values fail
// with ErrInsufficientData.
func Detect(t panel.Table, metric panel.Metric) (Result, error) {
	rows := make([]Row, 0, len(t))
	values := make([]float64, 0, len(t))
	for _, r := range t {
		v, ok := metric.Of(r).Get()
		if !ok {
			continue
		}
		rows = append(rows, Row{Country: r.Country, Year: r.Year, Value: v})
		values = append(values, v)
	}
	if len(values) < minValues {
		return Result{}, fmt.Errorf("%s: %d values: %w", metric, len(values), ErrInsufficientData)
	}

	b := ComputeBounds(values)
	for i := range rows {
		c := b.Classify(rows[i].Value)
		rows[i].Class = c
		rows[i].Anomalous = c != ClassNormal
		rows[i].Explanation = c.Explanation()
	}
	return Result{Metric: metric, Bounds: b, Rows: rows}, nil
}

// ComputeBounds derives quartiles and fences from values. values is not
// modified. The caller guarantees at least one value.
func ComputeBounds(values []float64) Bounds {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - fenceFactor*iqr,
		Upper: q3 + fenceFactor*iqr,
	}
}

// Classify places v relative to the fences. Values equal to a fence are normal.
func (b Bounds) Classify(v float64) Class {
	switch {
	case v < b.Lower:
		return ClassBelow
	case v > b.Upper:
		return ClassAbove
	default:
		return ClassNormal
	}
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between the closest ranks: rank = q*(n-1).
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*w
}
