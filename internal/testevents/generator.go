package testevents

import (
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
)

// Generator produces random change events drawn from a parameter domain.
type Generator struct {
	choices      params.Choices
	rnd          *rand.Rand
	invalidRatio float64
}

// NewGenerator creates a generator over choices. Equal seeds yield equal
// event sequences.
func NewGenerator(choices params.Choices, seed uint64, invalidRatio float64) *Generator {
	return &Generator{
		choices:      choices,
		rnd:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		invalidRatio: invalidRatio,
	}
}

// Generate returns n events.
func (g *Generator) Generate(n int) []Event {
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, g.Next())
	}
	return events
}

// Next returns one event changing between one and maxChangesPerEvent
// parameters.
func (g *Generator) Next() Event {
	ev := Event{EventID: uuid.NewString(), Changes: params.Changes{}}
	names := slices.Clone(params.Names)
	g.rnd.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	for _, n := range names[:1+g.rnd.IntN(maxChangesPerEvent)] {
		ev.Changes[n] = g.value(n)
	}
	if g.invalidRatio > 0 && g.rnd.Float64() < g.invalidRatio {
		n := names[0]
		ev.Changes[n] = g.invalid(n)
		ev.Invalid = true
	}
	return ev
}

func (g *Generator) value(n params.Name) any {
	c := g.choices
	switch n {
	case params.Year:
		return pick(g.rnd, c.Years)
	case params.Countries:
		return g.subset(c.Countries)
	case params.DegreeMode:
		return string(pick(g.rnd, c.DegreeModes))
	case params.Degree:
		return string(pick(g.rnd, c.Degrees))
	case params.Country:
		return pick(g.rnd, c.Countries)
	case params.MapMetric:
		return string(pick(g.rnd, c.MapMetrics))
	case params.XAxis, params.YAxis:
		return string(pick(g.rnd, c.AxisMetrics))
	case params.AnomalyMetric:
		return string(pick(g.rnd, c.AnomalyMetrics))
	}
	return nil
}

// invalid returns a value outside n's domain.
func (g *Generator) invalid(n params.Name) any {
	switch n {
	case params.Year:
		if len(g.choices.Years) == 0 {
			return 0
		}
		return g.choices.Years[len(g.choices.Years)-1] + 1 + g.rnd.IntN(10)
	case params.Countries:
		return []string{"Atlantis-" + strconv.Itoa(g.rnd.IntN(1000))}
	case params.Country:
		return "Atlantis-" + strconv.Itoa(g.rnd.IntN(1000))
	case params.DegreeMode:
		return "doctorate"
	case params.Degree:
		return string(panel.MetricExpenditure)
	case params.AnomalyMetric:
		return string(panel.MetricYear)
	default:
		return "not_a_metric"
	}
}

// subset returns a random, possibly empty, selection from items.
func (g *Generator) subset(items []string) []string {
	out := []string{}
	for _, it := range items {
		if g.rnd.IntN(2) == 0 {
			out = append(out, it)
		}
	}
	return out
}

func pick[T any](rnd *rand.Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rnd.IntN(len(items))]
}
