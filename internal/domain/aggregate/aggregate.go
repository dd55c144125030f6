// Package aggregate computes per-country summary statistics and the
// headline KPIs derived from them.
package aggregate

import (
	"fmt"

	"github.com/okian/edupanel/internal/domain/panel"
)

// Means maps country -> metric -> mean.
type Means map[string]map[panel.Metric]panel.Value

// Leader is the country holding the highest value of a ranking.
type Leader struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

type acc struct {
	sum float64
	n   int
}

// CountryMeans returns the arithmetic mean of each column per country over
// all years present, ignoring missing values. A country with no
// observations for a column gets a missing mean.
func CountryMeans(t panel.Table, columns ...panel.Metric) Means {
	sums := make(map[string]map[panel.Metric]*acc)
	for _, r := range t {
		byCol, ok := sums[r.Country]
		if !ok {
			byCol = make(map[panel.Metric]*acc, len(columns))
			for _, c := range columns {
				byCol[c] = &acc{}
			}
			sums[r.Country] = byCol
		}
		for _, c := range columns {
			if v, ok := c.Of(r).Get(); ok {
				byCol[c].sum += v
				byCol[c].n++
			}
		}
	}

	out := make(Means, len(sums))
	for country, byCol := range sums {
		means := make(map[panel.Metric]panel.Value, len(byCol))
		for c, a := range byCol {
			if a.n == 0 {
				means[c] = panel.Missing()
				continue
			}
			means[c] = panel.Some(a.sum / float64(a.n))
		}
		out[country] = means
	}
	return out
}

// ArgmaxBy returns the country with the largest present value, scanning
// countries in order. Ties keep the earliest country.
func ArgmaxBy(order []string, values map[string]panel.Value) (Leader, error) {
	var (
		best  Leader
		found bool
	)
	for _, c := range order {
		v, ok := values[c].Get()
		if !ok {
			continue
		}
		if !found || v > best.Value {
			best = Leader{Country: c, Value: v}
			found = true
		}
	}
	if !found {
		return Leader{}, ErrNoData
	}
	return best, nil
}

// ArgmaxByMean returns the country with the highest mean of column. Ties
// are broken by the table's first-appearance country order, which for a
// table read from the store is the canonical order.
func ArgmaxByMean(t panel.Table, column panel.Metric) (Leader, error) {
	means := CountryMeans(t, column)
	values := make(map[string]panel.Value, len(means))
	for c, m := range means {
		values[c] = m[column]
	}
	l, err := ArgmaxBy(t.Countries(), values)
	if err != nil {
		return Leader{}, fmt.Errorf("argmax %s: %w", column, err)
	}
	return l, nil
}
