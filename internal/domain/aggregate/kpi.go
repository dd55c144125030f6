package aggregate

import (
	"github.com/okian/edupanel/internal/domain/panel"
)

// KPI identifiers for the headline cards.
const (
	KPIHighestInvestment = "highest_investment"
	KPIHighestEmployment = "highest_employment"
	KPIHighestEfficiency = "highest_graduation_efficiency"
)

// KPI is one headline card: a label plus the leading country and value.
type KPI struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Country   string      `json:"country,omitempty"`
	Value     panel.Value `json:"value"`
	Unit      string      `json:"unit,omitempty"`
	Available bool        `json:"available"`
}

// Headlines computes the three headline KPIs over the whole table.
func Headlines(t panel.Table) []KPI {
	order := t.Countries()
	means := CountryMeans(t,
		panel.MetricExpenditure,
		panel.MetricEmploymentRateFemales,
		panel.MetricEmploymentRateMales,
		panel.MetricEfficiencyGraduation,
	)

	column := func(m panel.Metric) map[string]panel.Value {
		out := make(map[string]panel.Value, len(means))
		for c, byCol := range means {
			out[c] = byCol[m]
		}
		return out
	}

	employment := make(map[string]panel.Value, len(means))
	for c, byCol := range means {
		employment[c] = meanOf(byCol[panel.MetricEmploymentRateFemales], byCol[panel.MetricEmploymentRateMales])
	}

	return []KPI{
		card(KPIHighestInvestment, "Highest Investment", "Million €", order, column(panel.MetricExpenditure)),
		card(KPIHighestEmployment, "Highest Employment Rate", "%", order, employment),
		card(KPIHighestEfficiency, "Highest Graduation Efficiency", "% per Million €", order, column(panel.MetricEfficiencyGraduation)),
	}
}

func card(id, label, unit string, order []string, values map[string]panel.Value) KPI {
	k := KPI{ID: id, Label: label, Unit: unit}
	l, err := ArgmaxBy(order, values)
	if err != nil {
		return k
	}
	k.Country = l.Country
	k.Value = panel.Some(l.Value)
	k.Available = true
	return k
}

// meanOf averages the present values; all missing yields missing.
func meanOf(vs ...panel.Value) panel.Value {
	var a acc
	for _, v := range vs {
		if f, ok := v.Get(); ok {
			a.sum += f
			a.n++
		}
	}
	if a.n == 0 {
		return panel.Missing()
	}
	return panel.Some(a.sum / float64(a.n))
}
