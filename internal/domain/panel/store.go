package panel

import (
	"fmt"
	"slices"
	"sort"
)

// Store owns the canonical enriched table. It is immutable after Load and
// safe for concurrent readers.
type Store struct {
	table     Table
	years     []int
	countries []string
	canonical []string
}

// Load validates raw records and builds the enriched store. Duplicate
// (Country, Year) pairs, empty countries and negative expenditure fail with
// an *IntegrityError wrapping ErrDataIntegrity, as does an empty dataset.
func Load(raw Table) (*Store, error) {
	if len(raw) == 0 {
		return nil, &IntegrityError{Reason: "dataset has no rows"}
	}
	seen := make(map[key]int, len(raw))
	for i, r := range raw {
		row := i + 1
		if r.Country == "" {
			return nil, &IntegrityError{Row: row, Column: "Country", Reason: "empty country"}
		}
		if e, ok := r.Expenditure.Get(); ok && e < 0 {
			return nil, &IntegrityError{Row: row, Column: "Expenditure", Reason: fmt.Sprintf("negative expenditure %v", e)}
		}
		k := key{country: r.Country, year: r.Year}
		if first, dup := seen[k]; dup {
			return nil, &IntegrityError{
				Row:    row,
				Reason: fmt.Sprintf("duplicate (%s, %d), first seen at row %d", r.Country, r.Year, first),
			}
		}
		seen[k] = row
	}

	table := Derive(raw)
	s := &Store{
		table:     table,
		canonical: table.Countries(),
	}

	yearSet := make(map[int]struct{})
	for _, r := range table {
		if _, ok := yearSet[r.Year]; !ok {
			yearSet[r.Year] = struct{}{}
			s.years = append(s.years, r.Year)
		}
	}
	sort.Ints(s.years)

	s.countries = slices.Clone(s.canonical)
	sort.Strings(s.countries)
	return s, nil
}

type key struct {
	country string
	year    int
}

// Table returns a copy of the enriched table in dataset row order.
func (s *Store) Table() Table { return s.table.Clone() }

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.table) }

// DistinctYears returns the years present, ascending.
func (s *Store) DistinctYears() []int { return slices.Clone(s.years) }

// DistinctCountries returns the countries present, sorted.
func (s *Store) DistinctCountries() []string { return slices.Clone(s.countries) }

// CanonicalCountries returns the countries in dataset row order,
// deduplicated. It is the tie-break order for rankings.
func (s *Store) CanonicalCountries() []string { return slices.Clone(s.canonical) }

// HasYear reports whether year occurs in the dataset.
func (s *Store) HasYear(year int) bool {
	_, ok := slices.BinarySearch(s.years, year)
	return ok
}

// HasCountry reports whether country occurs in the dataset.
func (s *Store) HasCountry(country string) bool {
	_, ok := slices.BinarySearch(s.countries, country)
	return ok
}
