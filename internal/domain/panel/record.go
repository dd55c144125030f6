// Package panel owns the country × year education/employment dataset: its
// record shape, metric catalogue, derived efficiency columns and the
// immutable store every other component reads from.
package panel

// Record is one (Country, Year) observation.
type Record struct {
	Country string `json:"country"`
	Year    int    `json:"year"`

	Expenditure           Value `json:"expenditure"`
	BachelorRate          Value `json:"bachelor_rate"`
	MasterRate            Value `json:"master_rate"`
	EmploymentRateFemales Value `json:"employment_rate_females"`
	EmploymentRateMales   Value `json:"employment_rate_males"`

	// Derived by Derive.
	EfficiencyGraduation        Value `json:"efficiency_graduation"`
	EfficiencyEmploymentFemales Value `json:"efficiency_employment_females"`
	EfficiencyEmploymentMales   Value `json:"efficiency_employment_males"`
}

// Table is an ordered set of records. Records hold no references, so a
// copied Table never aliases the store.
type Table []Record

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Countries returns the distinct countries of t in first-appearance order.
func (t Table) Countries() []string {
	seen := make(map[string]struct{}, len(t))
	out := make([]string, 0)
	for _, r := range t {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		out = append(out, r.Country)
	}
	return out
}

// Sex labels the two halves of the long-form employment reshaping.
type Sex string

const (
	SexFemale Sex = "Female"
	SexMale   Sex = "Male"
)

// EmploymentRecord is one row of the long-form (one per sex) employment table.
type EmploymentRecord struct {
	Year           int    `json:"year"`
	Country        string `json:"country"`
	BachelorRate   Value  `json:"bachelor_rate"`
	MasterRate     Value  `json:"master_rate"`
	Sex            Sex    `json:"sex"`
	EmploymentRate Value  `json:"employment_rate"`
}

// LongForm reshapes every record into two rows, one per sex. All female
// rows come first, then all male rows, each block in table order.
func LongForm(t Table) []EmploymentRecord {
	out := make([]EmploymentRecord, 0, 2*len(t))
	for _, r := range t {
		out = append(out, longRow(r, SexFemale, r.EmploymentRateFemales))
	}
	for _, r := range t {
		out = append(out, longRow(r, SexMale, r.EmploymentRateMales))
	}
	return out
}

func longRow(r Record, sex Sex, rate Value) EmploymentRecord {
	return EmploymentRecord{
		Year:           r.Year,
		Country:        r.Country,
		BachelorRate:   r.BachelorRate,
		MasterRate:     r.MasterRate,
		Sex:            sex,
		EmploymentRate: rate,
	}
}
