// Package filter projects the enriched panel into the slices individual
// views need. Every function returns a newly allocated table and never
// fails on an empty result; callers check emptiness themselves.
package filter

import (
	"github.com/okian/edupanel/internal/domain/panel"
)

// Where keeps the rows satisfying keep, preserving order.
func Where[S ~[]E, E any](rows S, keep func(E) bool) S {
	out := make(S, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByYear keeps the rows observed in year.
func ByYear(t panel.Table, year int) panel.Table {
	return Where(t, func(r panel.Record) bool { return r.Year == year })
}

// ByCountries keeps the rows whose country is in countries. An empty set
// matches nothing.
func ByCountries(t panel.Table, countries []string) panel.Table {
	set := toSet(countries)
	return Where(t, func(r panel.Record) bool {
		_, ok := set[r.Country]
		return ok
	})
}

// ByYearAndCountries keeps rows satisfying both predicates.
func ByYearAndCountries(t panel.Table, year int, countries []string) panel.Table {
	set := toSet(countries)
	return Where(t, func(r panel.Record) bool {
		_, ok := set[r.Country]
		return ok && r.Year == year
	})
}

// DropMissing removes rows where any of the required metrics is missing.
func DropMissing(t panel.Table, required ...panel.Metric) panel.Table {
	return Where(t, func(r panel.Record) bool {
		for _, m := range required {
			if m.Of(r).IsMissing() {
				return false
			}
		}
		return true
	})
}

// LongByYear keeps the long-form rows observed in year.
func LongByYear(rows []panel.EmploymentRecord, year int) []panel.EmploymentRecord {
	return Where(rows, func(r panel.EmploymentRecord) bool { return r.Year == year })
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
