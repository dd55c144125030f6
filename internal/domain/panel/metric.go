package panel

import (
	"fmt"
	"strings"
)

// Metric names a numeric column of the enriched table.
type Metric string

// Recognized metrics. Names match the source file header.
const (
	MetricYear                        Metric = "Year"
	MetricExpenditure                 Metric = "Expenditure"
	MetricBachelorRate                Metric = "BachelorRate"
	MetricMasterRate                  Metric = "MasterRate"
	MetricEmploymentRateFemales       Metric = "EmploymentRate_Females"
	MetricEmploymentRateMales         Metric = "EmploymentRate_Males"
	MetricEfficiencyGraduation        Metric = "Efficiency_Graduation"
	MetricEfficiencyEmploymentFemales Metric = "Efficiency_Employment_Females"
	MetricEfficiencyEmploymentMales   Metric = "Efficiency_Employment_Males"
)

// MetricInfo describes how a metric is read and presented.
type MetricInfo struct {
	Metric  Metric `json:"metric"`
	Label   string `json:"label"`
	Unit    string `json:"unit,omitempty"`
	Derived bool   `json:"derived"`

	get func(Record) Value
}

var catalogue = []MetricInfo{
	{Metric: MetricYear, Label: "Year", get: func(r Record) Value { return Some(float64(r.Year)) }},
	{Metric: MetricExpenditure, Label: "Education Expenditure", Unit: "Million €", get: func(r Record) Value { return r.Expenditure }},
	{Metric: MetricBachelorRate, Label: "Bachelor Graduation Rate", Unit: "%", get: func(r Record) Value { return r.BachelorRate }},
	{Metric: MetricMasterRate, Label: "Master Graduation Rate", Unit: "%", get: func(r Record) Value { return r.MasterRate }},
	{Metric: MetricEmploymentRateFemales, Label: "Employment Rate (Females)", Unit: "%", get: func(r Record) Value { return r.EmploymentRateFemales }},
	{Metric: MetricEmploymentRateMales, Label: "Employment Rate (Males)", Unit: "%", get: func(r Record) Value { return r.EmploymentRateMales }},
	{Metric: MetricEfficiencyGraduation, Label: "Graduation Efficiency", Unit: "% per Million €", Derived: true, get: func(r Record) Value { return r.EfficiencyGraduation }},
	{Metric: MetricEfficiencyEmploymentFemales, Label: "Employment Efficiency (Females)", Unit: "% per Million €", Derived: true, get: func(r Record) Value { return r.EfficiencyEmploymentFemales }},
	{Metric: MetricEfficiencyEmploymentMales, Label: "Employment Efficiency (Males)", Unit: "% per Million €", Derived: true, get: func(r Record) Value { return r.EfficiencyEmploymentMales }},
}

var byName = func() map[Metric]int {
	m := make(map[Metric]int, len(catalogue))
	for i, info := range catalogue {
		m[info.Metric] = i
	}
	return m
}()

// RawMetrics are the loaded (non-derived) measurement columns.
var RawMetrics = []Metric{
	MetricExpenditure,
	MetricBachelorRate,
	MetricMasterRate,
	MetricEmploymentRateFemales,
	MetricEmploymentRateMales,
}

// Metrics returns every recognized metric in catalogue order.
func Metrics() []Metric {
	out := make([]Metric, len(catalogue))
	for i, info := range catalogue {
		out[i] = info.Metric
	}
	return out
}

// ParseMetric resolves a column name. Matching is exact after trimming spaces.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.TrimSpace(s))
	if _, ok := byName[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Valid reports whether m is in the catalogue.
func (m Metric) Valid() bool {
	_, ok := byName[m]
	return ok
}

// Info returns the catalogue entry for m. Unknown metrics yield a zero info
// whose accessor always reports missing.
func (m Metric) Info() MetricInfo {
	i, ok := byName[m]
	if !ok {
		return MetricInfo{Metric: m, Label: string(m), get: func(Record) Value { return Missing() }}
	}
	return catalogue[i]
}

// Of reads m from r.
func (m Metric) Of(r Record) Value { return m.Info().get(r) }

// Label returns the display label, with the unit in parentheses when known.
func (m Metric) Label() string {
	info := m.Info()
	if info.Unit == "" {
		return info.Label
	}
	return info.Label + " (" + info.Unit + ")"
}
