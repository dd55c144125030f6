package params

import (
	"slices"

	"github.com/okian/edupanel/internal/domain/panel"
)

// Choices lists what every parameter may be set to.
type Choices struct {
	Years          []int              `json:"years"`
	Countries      []string           `json:"countries"`
	DegreeModes    []DegreeModeValue  `json:"degree_modes"`
	Degrees        []panel.Metric     `json:"degrees"`
	MapMetrics     []panel.Metric     `json:"map_metrics"`
	AxisMetrics    []panel.Metric     `json:"axis_metrics"`
	AnomalyMetrics []panel.Metric     `json:"anomaly_metrics"`
	Metrics        []panel.MetricInfo `json:"metrics"`
}

// ChoicesFor builds the choices offered by d.
func ChoicesFor(d Domain) Choices {
	infos := make([]panel.MetricInfo, 0, len(AxisMetrics))
	for _, m := range panel.Metrics() {
		infos = append(infos, m.Info())
	}
	return Choices{
		Years:          d.DistinctYears(),
		Countries:      d.DistinctCountries(),
		DegreeModes:    slices.Clone(DegreeModes),
		Degrees:        slices.Clone(DegreeMetrics),
		MapMetrics:     slices.Clone(MapMetrics),
		AxisMetrics:    slices.Clone(AxisMetrics),
		AnomalyMetrics: slices.Clone(AnomalyMetrics),
		Metrics:        infos,
	}
}
