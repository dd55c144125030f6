package panel

// Derive returns a copy of t with the efficiency columns computed from the
// raw columns. It never mutates t and is idempotent: deriving an already
// derived table yields identical values.
func Derive(t Table) Table {
	out := t.Clone()
	for i := range out {
		r := &out[i]
		r.EfficiencyGraduation = ratio(r.BachelorRate, r.Expenditure)
		r.EfficiencyEmploymentFemales = ratio(r.EmploymentRateFemales, r.Expenditure)
		r.EfficiencyEmploymentMales = ratio(r.EmploymentRateMales, r.Expenditure)
	}
	return out
}
