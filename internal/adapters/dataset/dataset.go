// Package dataset reads the country-year panel file into raw records.
// CSV and XLSX (first sheet) are supported; both carry one header row
// followed by one row per (Country, Year).
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/edupanel/internal/domain/panel"
)

// Source columns.
const (
	colYear         = "Year"
	colCountry      = "Country"
	colExpenditure  = "Expenditure"
	colBachelor     = "BachelorRate"
	colMaster       = "MasterRate"
	colEmployFemale = "EmploymentRate_Females"
	colEmployMale   = "EmploymentRate_Males"
)

var requiredColumns = []string{colYear, colCountry, colExpenditure, colBachelor, colMaster, colEmployFemale, colEmployMale}

// Derived columns may appear in exported files; they are recomputed on load.
var ignoredColumns = map[string]bool{
	string(panel.MetricEfficiencyGraduation):        true,
	string(panel.MetricEfficiencyEmploymentFemales): true,
	string(panel.MetricEfficiencyEmploymentMales):   true,
}

// Load reads the dataset at path, choosing the reader by file extension.
func Load(ctx context.Context, path string) (panel.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var read func(io.Reader) (panel.Table, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		read = ReadCSV
	case ".xlsx":
		read = ReadXLSX
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	return read(f)
}

// ReadCSV decodes a comma-separated panel.
func ReadCSV(r io.Reader) (panel.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return decode(rows)
}

// ReadXLSX decodes the first worksheet of an Excel workbook.
func ReadXLSX(r io.Reader) (panel.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrRead)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", ErrRead, sheets[0], err)
	}
	return decode(rows)
}

func decode(rows [][]string) (panel.Table, error) {
	if len(rows) == 0 {
		return nil, &panel.IntegrityError{Reason: "missing header row"}
	}
	idx, err := header(rows[0])
	if err != nil {
		return nil, err
	}

	table := make(panel.Table, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		rec, err := record(i+1, cells, len(rows[0]), idx)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	return table, nil
}

func header(cells []string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, c := range cells {
		name := strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		if ignoredColumns[name] {
			continue
		}
		if !isRequired(name) {
			return nil, &panel.IntegrityError{Column: name, Reason: fmt.Sprintf("unknown column %q", name)}
		}
		if _, dup := idx[name]; dup {
			return nil, &panel.IntegrityError{Column: name, Reason: fmt.Sprintf("column %q appears twice", name)}
		}
		idx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, &panel.IntegrityError{Column: name, Reason: fmt.Sprintf("missing column %q", name)}
		}
	}
	return idx, nil
}

func isRequired(name string) bool {
	for _, c := range requiredColumns {
		if c == name {
			return true
		}
	}
	return false
}

// record decodes one data row. Short rows are padded with missing cells;
// rows wider than the header are malformed.
func record(row int, cells []string, width int, idx map[string]int) (panel.Record, error) {
	if len(cells) > width {
		return panel.Record{}, &panel.IntegrityError{Row: row, Reason: fmt.Sprintf("row has %d fields, header has %d", len(cells), width)}
	}
	cell := func(name string) string {
		if i := idx[name]; i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	number := func(name string) (panel.Value, error) {
		v, err := parseValue(cell(name))
		if err != nil {
			return panel.Value{}, &panel.IntegrityError{Row: row, Column: name, Reason: err.Error()}
		}
		return v, nil
	}

	rec := panel.Record{Country: cell(colCountry)}
	if rec.Country == "" {
		return rec, &panel.IntegrityError{Row: row, Column: colCountry, Reason: "empty country"}
	}
	year, err := parseYear(cell(colYear))
	if err != nil {
		return rec, &panel.IntegrityError{Row: row, Column: colYear, Reason: err.Error()}
	}
	rec.Year = year

	for _, f := range []struct {
		name string
		dst  *panel.Value
	}{
		{colExpenditure, &rec.Expenditure},
		{colBachelor, &rec.BachelorRate},
		{colMaster, &rec.MasterRate},
		{colEmployFemale, &rec.EmploymentRateFemales},
		{colEmployMale, &rec.EmploymentRateMales},
	} {
		v, err := number(f.name)
		if err != nil {
			return rec, err
		}
		*f.dst = v
	}
	return rec, nil
}

func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}

func parseValue(s string) (panel.Value, error) {
	if isMissing(s) {
		return panel.Missing(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return panel.Value{}, fmt.Errorf("not a number: %q", s)
	}
	return panel.Some(f), nil
}

func parseYear(s string) (int, error) {
	if isMissing(s) {
		return 0, fmt.Errorf("missing year")
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	// Spreadsheet exports may render integral years as floats.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a year: %q", s)
	}
	return int(f), nil
}
