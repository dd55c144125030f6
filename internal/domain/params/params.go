// Package params defines the user-controlled selector state that drives
// the dashboard views, and validates change events against the dataset.
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/edupanel/internal/domain/panel"
)

// Name identifies one parameter.
type Name string

const (
	Year          Name = "year"
	Countries     Name = "countries"
	DegreeMode    Name = "degree_mode"
	Degree        Name = "degree"
	Country       Name = "country"
	MapMetric     Name = "map_metric"
	XAxis         Name = "x_axis"
	YAxis         Name = "y_axis"
	AnomalyMetric Name = "anomaly_metric"
)

// Names lists every parameter in canonical order.
var Names = []Name{Year, Countries, DegreeMode, Degree, Country, MapMetric, XAxis, YAxis, AnomalyMetric}

// ParseName resolves a parameter name.
func ParseName(s string) (Name, error) {
	n := Name(strings.TrimSpace(s))
	if !slices.Contains(Names, n) {
		return "", &Error{Name: n, Value: s, Reason: "unknown parameter"}
	}
	return n, nil
}

// DegreeModeValue selects which graduation rates the investment view plots.
type DegreeModeValue string

const (
	ModeBachelor DegreeModeValue = "bachelor"
	ModeMaster   DegreeModeValue = "master"
	ModeBoth     DegreeModeValue = "both"
)

// Metric domains per parameter.
var (
	DegreeMetrics  = []panel.Metric{panel.MetricBachelorRate, panel.MetricMasterRate}
	MapMetrics     = panel.RawMetrics
	AxisMetrics    = panel.Metrics()
	AnomalyMetrics = slices.DeleteFunc(panel.Metrics(), func(m panel.Metric) bool { return m == panel.MetricYear })
	DegreeModes    = []DegreeModeValue{ModeBachelor, ModeMaster, ModeBoth}
)

// Domain is the set of selectable years and countries.
type Domain interface {
	DistinctYears() []int
	DistinctCountries() []string
	HasYear(year int) bool
	HasCountry(country string) bool
}

// Params is the current value of every selector. It is a value type:
// changes produce a new Params.
type Params struct {
	Year          int             `json:"year"`
	Countries     []string        `json:"countries"`
	DegreeMode    DegreeModeValue `json:"degree_mode"`
	Degree        panel.Metric    `json:"degree"`
	Country       string          `json:"country"`
	MapMetric     panel.Metric    `json:"map_metric"`
	XAxis         panel.Metric    `json:"x_axis"`
	YAxis         panel.Metric    `json:"y_axis"`
	AnomalyMetric panel.Metric    `json:"anomaly_metric"`
}

// Defaults returns the session start state: the earliest year, the first
// countryCount countries in sorted order, and the first country alone for
// single-country views.
func Defaults(d Domain, countryCount int) Params {
	p := Params{
		DegreeMode:    ModeBoth,
		Degree:        panel.MetricBachelorRate,
		MapMetric:     panel.MetricExpenditure,
		XAxis:         panel.MetricExpenditure,
		YAxis:         panel.MetricBachelorRate,
		AnomalyMetric: panel.MetricExpenditure,
		Countries:     []string{},
	}
	if years := d.DistinctYears(); len(years) > 0 {
		p.Year = years[0]
	}
	countries := d.DistinctCountries()
	if len(countries) > 0 {
		p.Country = countries[0]
	}
	if countryCount > len(countries) {
		countryCount = len(countries)
	}
	if countryCount > 0 {
		p.Countries = slices.Clone(countries[:countryCount])
	}
	return p
}

// Changes maps parameter names to new raw values, as decoded from JSON:
// numbers for year, strings for enums and country, string lists for countries.
type Changes map[Name]any

// Apply validates and applies changes. The receiver is never modified; on
// any invalid value the whole event is rejected. The returned names are the
// parameters whose value actually changed, in canonical order.
func (p Params) Apply(changes Changes, d Domain) (Params, []Name, error) {
	for n := range changes {
		if !slices.Contains(Names, n) {
			return p, nil, &Error{Name: n, Value: changes[n], Reason: "unknown parameter"}
		}
	}

	next := p.clone()
	changed := make([]Name, 0, len(changes))
	for _, n := range Names {
		raw, ok := changes[n]
		if !ok {
			continue
		}
		if err := next.set(n, raw, d); err != nil {
			return p, nil, err
		}
		if next.fragment(n) != p.fragment(n) {
			changed = append(changed, n)
		}
	}
	return next, changed, nil
}

func (p *Params) set(n Name, raw any, d Domain) error {
	invalid := func(reason string) error { return &Error{Name: n, Value: raw, Reason: reason} }

	switch n {
	case Year:
		y, err := toInt(raw)
		if err != nil {
			return invalid(err.Error())
		}
		if !d.HasYear(y) {
			return invalid("year not in dataset")
		}
		p.Year = y
	case Countries:
		list, err := toStrings(raw)
		if err != nil {
			return invalid(err.Error())
		}
		for _, c := range list {
			if !d.HasCountry(c) {
				return invalid(fmt.Sprintf("country %q not in dataset", c))
			}
		}
		p.Countries = normalizeSet(list)
	case DegreeMode:
		s, ok := raw.(string)
		if !ok || !slices.Contains(DegreeModes, DegreeModeValue(s)) {
			return invalid("expected one of bachelor, master, both")
		}
		p.DegreeMode = DegreeModeValue(s)
	case Country:
		s, ok := raw.(string)
		if !ok || !d.HasCountry(s) {
			return invalid("country not in dataset")
		}
		p.Country = s
	case Degree:
		return p.setMetric(&p.Degree, n, raw, DegreeMetrics)
	case MapMetric:
		return p.setMetric(&p.MapMetric, n, raw, MapMetrics)
	case XAxis:
		return p.setMetric(&p.XAxis, n, raw, AxisMetrics)
	case YAxis:
		return p.setMetric(&p.YAxis, n, raw, AxisMetrics)
	case AnomalyMetric:
		return p.setMetric(&p.AnomalyMetric, n, raw, AnomalyMetrics)
	}
	return nil
}

func (p *Params) setMetric(dst *panel.Metric, n Name, raw any, allowed []panel.Metric) error {
	s, ok := raw.(string)
	if !ok {
		return &Error{Name: n, Value: raw, Reason: "expected a metric name"}
	}
	m, err := panel.ParseMetric(s)
	if err != nil || !slices.Contains(allowed, m) {
		return &Error{Name: n, Value: raw, Reason: "metric not selectable here"}
	}
	*dst = m
	return nil
}

// Get returns the typed value of n.
func (p Params) Get(n Name) any {
	switch n {
	case Year:
		return p.Year
	case Countries:
		return slices.Clone(p.Countries)
	case DegreeMode:
		return p.DegreeMode
	case Degree:
		return p.Degree
	case Country:
		return p.Country
	case MapMetric:
		return p.MapMetric
	case XAxis:
		return p.XAxis
	case YAxis:
		return p.YAxis
	case AnomalyMetric:
		return p.AnomalyMetric
	}
	return nil
}

// Key fingerprints the values of names. Two states produce the same key
// for names exactly when those parameters hold equal values.
func (p Params) Key(names []Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n) + "=" + p.fragment(n)
	}
	return strings.Join(parts, "&")
}

func (p Params) fragment(n Name) string {
	if n == Countries {
		quoted := make([]string, len(p.Countries))
		for i, c := range p.Countries {
			quoted[i] = strconv.Quote(c)
		}
		return "[" + strings.Join(quoted, ",") + "]"
	}
	return fmt.Sprint(p.Get(n))
}

func (p Params) clone() Params {
	c := p
	c.Countries = slices.Clone(p.Countries)
	return c
}

func normalizeSet(items []string) []string {
	out := slices.Clone(items)
	sort.Strings(out)
	return slices.Compact(out)
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return floatToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("not an integer")
		}
		return floatToInt(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("not an integer")
		}
		return i, nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", raw)
}

// floatToInt accepts integral floats such as 2019.0.
func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, expected string", i, it)
			}
			out[i] = s
		}
		return out, nil
	case nil:
		return []string{}, nil
	}
	return nil, fmt.Errorf("expected a list of strings, got %T", raw)
}
