package params_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
	. "github.com/smartystreets/goconvey/convey"
)

func store() *panel.Store {
	var t panel.Table
	for _, c := range []string{"Spain", "Austria", "Italy", "Belgium"} {
		for _, y := range []int{2019, 2017, 2018} {
			t = append(t, panel.Record{Country: c, Year: y, Expenditure: panel.Some(100)})
		}
	}
	s, err := panel.Load(t)
	if err != nil {
		panic(err)
	}
	return s
}

func TestDefaults(t *testing.T) {
	Convey("Given a loaded store", t, func() {
		s := store()

		Convey("When building the default state", func() {
			p := params.Defaults(s, 2)

			Convey("Then it starts at the earliest year with the first sorted countries", func() {
				So(p.Year, ShouldEqual, 2017)
				So(p.Countries, ShouldResemble, []string{"Austria", "Belgium"})
				So(p.Country, ShouldEqual, "Austria")
				So(p.DegreeMode, ShouldEqual, params.ModeBoth)
				So(p.Degree, ShouldEqual, panel.MetricBachelorRate)
				So(p.XAxis, ShouldEqual, panel.MetricExpenditure)
				So(p.YAxis, ShouldEqual, panel.MetricBachelorRate)
				So(p.AnomalyMetric, ShouldEqual, panel.MetricExpenditure)
			})
		})

		Convey("When asking for more countries than exist", func() {
			p := params.Defaults(s, 10)
			So(len(p.Countries), ShouldEqual, 4)
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given the default state", t, func() {
		s := store()
		p := params.Defaults(s, 2)

		Convey("When changing the year with a JSON number", func() {
			next, changed, err := p.Apply(params.Changes{params.Year: float64(2019)}, s)

			Convey("Then only the year changes", func() {
				So(err, ShouldBeNil)
				So(next.Year, ShouldEqual, 2019)
				So(changed, ShouldResemble, []params.Name{params.Year})
				So(p.Year, ShouldEqual, 2017)
			})
		})

		Convey("When the year arrives as a decoded JSON number", func() {
			for _, raw := range []json.Number{"2019", "2019.0", "2.019e3"} {
				next, changed, err := p.Apply(params.Changes{params.Year: raw}, s)
				So(err, ShouldBeNil)
				So(next.Year, ShouldEqual, 2019)
				So(changed, ShouldResemble, []params.Name{params.Year})
			}
		})

		Convey("When setting a parameter to its current value", func() {
			_, changed, err := p.Apply(params.Changes{params.Year: 2017, params.Countries: []any{"Belgium", "Austria"}}, s)

			Convey("Then nothing is reported as changed", func() {
				So(err, ShouldBeNil)
				So(changed, ShouldBeEmpty)
			})
		})

		Convey("When countries contain duplicates", func() {
			next, _, err := p.Apply(params.Changes{params.Countries: []string{"Spain", "Italy", "Spain"}}, s)
			So(err, ShouldBeNil)
			So(next.Countries, ShouldResemble, []string{"Italy", "Spain"})
		})

		Convey("When several parameters change at once", func() {
			next, changed, err := p.Apply(params.Changes{
				params.AnomalyMetric: "Efficiency_Graduation",
				params.DegreeMode:    "master",
				params.XAxis:         "Year",
			}, s)
			So(err, ShouldBeNil)
			So(next.AnomalyMetric, ShouldEqual, panel.MetricEfficiencyGraduation)
			So(changed, ShouldResemble, []params.Name{params.DegreeMode, params.XAxis, params.AnomalyMetric})
		})

		Convey("When any value is out of domain", func() {
			cases := []params.Changes{
				{params.Year: 1990},
				{params.Year: 2018.5},
				{params.Year: json.Number("2018.5")},
				{params.Year: json.Number("1e400")},
				{params.Countries: []any{"Atlantis"}},
				{params.DegreeMode: "phd"},
				{params.Degree: "Expenditure"},
				{params.MapMetric: "Efficiency_Graduation"},
				{params.AnomalyMetric: "Year"},
				{params.XAxis: "Country"},
				{params.Country: 7},
				{"colour": "red"},
				{params.Year: 2019, params.DegreeMode: "phd"},
			}

			Convey("Then the event is rejected and the prior state is retained", func() {
				for _, c := range cases {
					next, changed, err := p.Apply(c, s)
					So(errors.Is(err, params.ErrInvalidParameter), ShouldBeTrue)
					So(changed, ShouldBeNil)
					So(next, ShouldResemble, p)
				}
			})
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Given two states", t, func() {
		s := store()
		a := params.Defaults(s, 2)
		b, _, err := a.Apply(params.Changes{params.Year: 2018}, s)
		So(err, ShouldBeNil)

		Convey("Then keys differ only where the selected parameters differ", func() {
			So(a.Key([]params.Name{params.Country, params.AnomalyMetric}), ShouldEqual, b.Key([]params.Name{params.Country, params.AnomalyMetric}))
			So(a.Key([]params.Name{params.Year}), ShouldNotEqual, b.Key([]params.Name{params.Year}))
			So(a.Key([]params.Name{params.Year, params.Countries}), ShouldEqual, `year=2017&countries=["Austria","Belgium"]`)
		})
	})

	Convey("Given parameter names", t, func() {
		n, err := params.ParseName("x_axis")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, params.XAxis)
		_, err = params.ParseName("z_axis")
		So(errors.Is(err, params.ErrInvalidParameter), ShouldBeTrue)
	})
}

func TestChoicesFor(t *testing.T) {
	Convey("Given a loaded store", t, func() {
		c := params.ChoicesFor(store())

		Convey("Then the choices mirror the store and the metric domains", func() {
			So(c.Years, ShouldResemble, []int{2017, 2018, 2019})
			So(c.Countries, ShouldResemble, []string{"Austria", "Belgium", "Italy", "Spain"})
			So(c.DegreeModes, ShouldResemble, params.DegreeModes)
			So(c.Degrees, ShouldResemble, params.DegreeMetrics)
			So(c.AnomalyMetrics, ShouldNotContain, panel.MetricYear)
			So(c.Metrics, ShouldHaveLength, len(panel.Metrics()))
		})

		Convey("Then the returned slices are copies", func() {
			c.DegreeModes[0] = "doctorate"
			So(params.DegreeModes[0], ShouldEqual, params.ModeBachelor)
		})
	})
}
