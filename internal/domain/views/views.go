package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/edupanel/internal/domain/aggregate"
	"github.com/okian/edupanel/internal/domain/anomaly"
	"github.com/okian/edupanel/internal/domain/filter"
	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
)

// Declared outputs.
const (
	OutputKPIs                        OutputID = "kpis"
	OutputInvestmentGraduation        OutputID = "investment_graduation"
	OutputGraduationEmployment        OutputID = "graduation_employment"
	OutputEmploymentTrend             OutputID = "employment_trend"
	OutputEfficiencyGraduation        OutputID = "efficiency_graduation"
	OutputEfficiencyEmploymentFemales OutputID = "efficiency_employment_females"
	OutputEfficiencyEmploymentMales   OutputID = "efficiency_employment_males"
	OutputChoropleth                  OutputID = "choropleth"
	OutputCustomScatter               OutputID = "custom_scatter"
	OutputAnomalies                   OutputID = "anomalies"
)

// BuildFunc computes an artifact from the enriched table and the current
// parameters. It must only read the parameters it declares.
type BuildFunc func(t panel.Table, p params.Params) Artifact

// Definition declares one output and the parameters it depends on.
type Definition struct {
	ID        OutputID
	Kind      Kind
	DependsOn []params.Name
	Build     BuildFunc
}

// Definitions returns the dashboard outputs in recomputation order.
func Definitions() []Definition {
	return []Definition{
		{ID: OutputKPIs, Kind: KindKPI, Build: buildKPIs},
		{
			ID:        OutputInvestmentGraduation,
			Kind:      KindScatter,
			DependsOn: []params.Name{params.Year, params.Countries, params.DegreeMode},
			Build:     buildInvestmentGraduation,
		},
		{
			ID:        OutputGraduationEmployment,
			Kind:      KindScatter,
			DependsOn: []params.Name{params.Year, params.Degree},
			Build:     buildGraduationEmployment,
		},
		{
			ID:        OutputEmploymentTrend,
			Kind:      KindLine,
			DependsOn: []params.Name{params.Country},
			Build:     buildEmploymentTrend,
		},
		efficiency(OutputEfficiencyGraduation, panel.MetricEfficiencyGraduation),
		efficiency(OutputEfficiencyEmploymentFemales, panel.MetricEfficiencyEmploymentFemales),
		efficiency(OutputEfficiencyEmploymentMales, panel.MetricEfficiencyEmploymentMales),
		{
			ID:        OutputChoropleth,
			Kind:      KindChoropleth,
			DependsOn: []params.Name{params.Year, params.MapMetric},
			Build:     buildChoropleth,
		},
		{
			ID:        OutputCustomScatter,
			Kind:      KindScatter,
			DependsOn: []params.Name{params.Year, params.Countries, params.XAxis, params.YAxis},
			Build:     buildCustomScatter,
		},
		{
			ID:        OutputAnomalies,
			Kind:      KindAnomaly,
			DependsOn: []params.Name{params.AnomalyMetric},
			Build:     buildAnomalies,
		},
	}
}

func newArtifact(id OutputID, kind Kind, title string) Artifact {
	return Artifact{Output: id, Kind: kind, Status: StatusOK, Title: title}
}

func buildKPIs(t panel.Table, _ params.Params) Artifact {
	a := newArtifact(OutputKPIs, KindKPI, "Key Insights")
	a.KPIs = aggregate.Headlines(t)
	for _, k := range a.KPIs {
		if k.Available {
			return a
		}
	}
	return unavailable(a, ReasonInsufficientData, "No headline figures can be computed from the dataset.")
}

func buildInvestmentGraduation(t panel.Table, p params.Params) Artifact {
	y, size := panel.MetricBachelorRate, panel.Metric("")
	var title string
	switch p.DegreeMode {
	case params.ModeMaster:
		y = panel.MetricMasterRate
		title = "Education Investment vs. Master Graduation"
	case params.ModeBoth:
		size = panel.MetricMasterRate
		title = "Investment vs. Bachelor (Y) + Master (Size)"
	default:
		title = "Education Investment vs. Bachelor Graduation"
	}

	a := newArtifact(OutputInvestmentGraduation, KindScatter, fmt.Sprintf("%s – %d", title, p.Year))
	a.XLabel = panel.MetricExpenditure.Label()
	a.YLabel = y.Label()

	rows := filter.DropMissing(filter.ByYearAndCountries(t, p.Year, p.Countries), panel.MetricExpenditure, y)
	if len(rows) == 0 {
		return empty(a, "No data available for the selected filters.")
	}
	a.Scatter = make([]ScatterPoint, 0, len(rows))
	for _, r := range rows {
		pt := ScatterPoint{
			Country:  r.Country,
			X:        panel.MetricExpenditure.Of(r).Or(0),
			Y:        y.Of(r).Or(0),
			Category: r.Country,
		}
		if size != "" {
			pt.Size = size.Of(r)
		}
		a.Scatter = append(a.Scatter, pt)
	}
	return a
}

func buildGraduationEmployment(t panel.Table, p params.Params) Artifact {
	a := newArtifact(OutputGraduationEmployment, KindScatter,
		fmt.Sprintf("Graduation Rate vs Employment Rate by Gender – %d", p.Year))
	a.XLabel = p.Degree.Label()
	a.YLabel = "Employment Rate (%)"

	degree := func(r panel.EmploymentRecord) panel.Value {
		if p.Degree == panel.MetricMasterRate {
			return r.MasterRate
		}
		return r.BachelorRate
	}
	rows := filter.Where(filter.LongByYear(panel.LongForm(t), p.Year), func(r panel.EmploymentRecord) bool {
		return !degree(r).IsMissing() && !r.EmploymentRate.IsMissing()
	})
	if len(rows) == 0 {
		return empty(a, "No data available for the selected year.")
	}
	a.Scatter = make([]ScatterPoint, 0, len(rows))
	for _, r := range rows {
		a.Scatter = append(a.Scatter, ScatterPoint{
			Country:  r.Country,
			X:        degree(r).Or(0),
			Y:        r.EmploymentRate.Or(0),
			Category: string(r.Sex),
		})
	}
	return a
}

func buildEmploymentTrend(t panel.Table, p params.Params) Artifact {
	a := newArtifact(OutputEmploymentTrend, KindLine,
		fmt.Sprintf("Employment Rate by Gender in %s Over Time", p.Country))
	a.XLabel = "Year"
	a.YLabel = "Employment Rate (%)"

	rows := filter.DropMissing(filter.ByCountries(t, []string{p.Country}),
		panel.MetricEmploymentRateFemales, panel.MetricEmploymentRateMales)
	if len(rows) == 0 {
		return empty(a, "No data available for the selected country.")
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })

	long := panel.LongForm(rows)
	a.Line = make([]LinePoint, 0, len(long))
	for _, r := range long {
		a.Line = append(a.Line, LinePoint{X: float64(r.Year), Y: r.EmploymentRate.Or(0), Category: string(r.Sex)})
	}
	return a
}

func efficiency(id OutputID, m panel.Metric) Definition {
	label := m.Info().Label
	return Definition{
		ID:        id,
		Kind:      KindBar,
		DependsOn: []params.Name{params.Year},
		Build: func(t panel.Table, p params.Params) Artifact {
			a := newArtifact(id, KindBar, fmt.Sprintf("%s by Country – %d", label, p.Year))
			a.XLabel = "Country"
			a.YLabel = m.Label()

			rows := filter.DropMissing(filter.ByYear(t, p.Year), m)
			if len(rows) == 0 {
				return empty(a, "No data available for the selected year.")
			}
			a.Bars = make([]BarPoint, 0, len(rows))
			for _, r := range rows {
				a.Bars = append(a.Bars, BarPoint{Category: r.Country, Value: m.Of(r).Or(0)})
			}
			sort.SliceStable(a.Bars, func(i, j int) bool {
				if a.Bars[i].Value != a.Bars[j].Value {
					return a.Bars[i].Value > a.Bars[j].Value
				}
				return a.Bars[i].Category < a.Bars[j].Category
			})
			return a
		},
	}
}

func buildChoropleth(t panel.Table, p params.Params) Artifact {
	a := newArtifact(OutputChoropleth, KindChoropleth,
		fmt.Sprintf("%s in Europe, %d", p.MapMetric.Info().Label, p.Year))
	a.YLabel = p.MapMetric.Label()

	rows := filter.ByYear(t, p.Year)
	if len(rows) == 0 {
		return empty(a, "No data available for the selected year.")
	}
	a.Map = make([]MapPoint, 0, len(rows))
	for _, r := range rows {
		v := p.MapMetric.Of(r)
		// A zero on the map means not reported.
		if f, ok := v.Get(); ok && f == 0 {
			v = panel.Missing()
		}
		a.Map = append(a.Map, MapPoint{Location: r.Country, Value: v})
	}
	return a
}

func buildCustomScatter(t panel.Table, p params.Params) Artifact {
	a := newArtifact(OutputCustomScatter, KindScatter,
		fmt.Sprintf("%s vs %s – %d", p.YAxis.Info().Label, p.XAxis.Info().Label, p.Year))
	a.XLabel = p.XAxis.Label()
	a.YLabel = p.YAxis.Label()

	rows := filter.ByYear(t, p.Year)
	if len(p.Countries) > 0 {
		rows = filter.ByCountries(rows, p.Countries)
	}
	rows = filter.DropMissing(rows, p.XAxis, p.YAxis)
	if len(rows) == 0 {
		return empty(a, "No data available for the selected options.")
	}
	a.Scatter = make([]ScatterPoint, 0, len(rows))
	for _, r := range rows {
		a.Scatter = append(a.Scatter, ScatterPoint{
			Country:  r.Country,
			X:        p.XAxis.Of(r).Or(0),
			Y:        p.YAxis.Of(r).Or(0),
			Category: r.Country,
		})
	}
	return a
}

func buildAnomalies(t panel.Table, p params.Params) Artifact {
	label := p.AnomalyMetric.Info().Label
	a := newArtifact(OutputAnomalies, KindAnomaly, "Anomaly Detection for "+label)
	a.XLabel = "Year"
	a.YLabel = p.AnomalyMetric.Label()

	res, err := anomaly.Detect(t, p.AnomalyMetric)
	if err != nil {
		return unavailable(a, ReasonInsufficientData,
			fmt.Sprintf("Not enough %s values to compute quartiles.", strings.ToLower(label)))
	}
	n := len(res.Anomalies())
	a.Anomalies = &AnomalyTable{
		Metric:       res.Metric,
		Bounds:       res.Bounds,
		Rows:         res.Rows,
		AnomalyCount: n,
	}
	if n == 0 {
		a.Message = "No anomalies found for this metric."
	}
	return a
}

func empty(a Artifact, msg string) Artifact {
	return unavailable(a, ReasonEmptyResult, msg)
}
