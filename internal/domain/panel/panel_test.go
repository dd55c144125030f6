package panel_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/edupanel/internal/domain/panel"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(country string, year int, exp, bach float64) panel.Record {
	return panel.Record{
		Country:               country,
		Year:                  year,
		Expenditure:           panel.Some(exp),
		BachelorRate:          panel.Some(bach),
		MasterRate:            panel.Some(bach / 2),
		EmploymentRateFemales: panel.Some(70),
		EmploymentRateMales:   panel.Some(80),
	}
}

func TestDerive(t *testing.T) {
	Convey("Given raw records", t, func() {
		raw := panel.Table{
			rec("A", 2018, 100, 30),
			rec("B", 2018, 0, 25),
			{Country: "C", Year: 2018, BachelorRate: panel.Some(10)},
			{Country: "D", Year: 2018, Expenditure: panel.Some(50)},
		}

		Convey("When deriving efficiency columns", func() {
			out := panel.Derive(raw)

			Convey("Then ratios are exact for positive expenditure", func() {
				v, ok := out[0].EfficiencyGraduation.Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 0.3, 1e-9)
				f, _ := out[0].EfficiencyEmploymentFemales.Get()
				So(f, ShouldAlmostEqual, 0.7, 1e-9)
				m, _ := out[0].EfficiencyEmploymentMales.Get()
				So(m, ShouldAlmostEqual, 0.8, 1e-9)
			})

			Convey("And zero expenditure yields missing, never infinity", func() {
				So(out[1].EfficiencyGraduation.IsMissing(), ShouldBeTrue)
				So(out[1].EfficiencyEmploymentFemales.IsMissing(), ShouldBeTrue)
				So(out[1].EfficiencyEmploymentMales.IsMissing(), ShouldBeTrue)
			})

			Convey("And missing expenditure yields missing", func() {
				So(out[2].EfficiencyGraduation.IsMissing(), ShouldBeTrue)
			})

			Convey("And a missing numerator yields missing", func() {
				So(out[3].EfficiencyGraduation.IsMissing(), ShouldBeTrue)
			})

			Convey("And the input is not mutated", func() {
				So(raw[0].EfficiencyGraduation.IsMissing(), ShouldBeTrue)
			})

			Convey("And deriving again is idempotent", func() {
				So(panel.Derive(out), ShouldResemble, out)
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a dataset", t, func() {
		Convey("When (Country, Year) pairs are unique", func() {
			store, err := panel.Load(panel.Table{
				rec("Spain", 2019, 100, 30),
				rec("Austria", 2018, 100, 30),
				rec("Spain", 2018, 100, 30),
			})

			Convey("Then it loads with ordered years and countries", func() {
				So(err, ShouldBeNil)
				So(store.Len(), ShouldEqual, 3)
				So(store.DistinctYears(), ShouldResemble, []int{2018, 2019})
				So(store.DistinctCountries(), ShouldResemble, []string{"Austria", "Spain"})
				So(store.CanonicalCountries(), ShouldResemble, []string{"Spain", "Austria"})
				So(store.HasYear(2019), ShouldBeTrue)
				So(store.HasYear(2020), ShouldBeFalse)
				So(store.HasCountry("Austria"), ShouldBeTrue)
				So(store.HasCountry("Italy"), ShouldBeFalse)
			})

			Convey("And the enriched table carries derived metrics", func() {
				v, ok := store.Table()[0].EfficiencyGraduation.Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 0.3, 1e-9)
			})

			Convey("And callers cannot mutate the stored rows", func() {
				tbl := store.Table()
				tbl[0].Country = "Mutated"
				So(store.Table()[0].Country, ShouldEqual, "Spain")
			})
		})

		Convey("When a (Country, Year) pair repeats", func() {
			_, err := panel.Load(panel.Table{
				rec("Spain", 2019, 100, 30),
				rec("Spain", 2019, 110, 31),
			})

			Convey("Then it fails with a data integrity error", func() {
				So(errors.Is(err, panel.ErrDataIntegrity), ShouldBeTrue)
				var ie *panel.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Row, ShouldEqual, 2)
				So(err.Error(), ShouldContainSubstring, "first seen at row 1")
			})
		})

		Convey("When expenditure is negative", func() {
			_, err := panel.Load(panel.Table{rec("Spain", 2019, -1, 30)})
			So(errors.Is(err, panel.ErrDataIntegrity), ShouldBeTrue)
		})

		Convey("When the dataset is empty", func() {
			_, err := panel.Load(nil)
			So(errors.Is(err, panel.ErrDataIntegrity), ShouldBeTrue)
		})
	})
}

func TestLongForm(t *testing.T) {
	Convey("Given two records", t, func() {
		tbl := panel.Table{rec("A", 2018, 100, 30), rec("B", 2018, 100, 40)}

		Convey("When reshaping to long form", func() {
			long := panel.LongForm(tbl)

			Convey("Then each record produces exactly two rows", func() {
				So(len(long), ShouldEqual, 4)
				So(long[0].Sex, ShouldEqual, panel.SexFemale)
				So(long[0].Country, ShouldEqual, "A")
				So(long[1].Sex, ShouldEqual, panel.SexFemale)
				So(long[2].Sex, ShouldEqual, panel.SexMale)
				So(long[2].Country, ShouldEqual, "A")
				v, _ := long[2].EmploymentRate.Get()
				So(v, ShouldEqual, 80)
				b, _ := long[3].BachelorRate.Get()
				So(b, ShouldEqual, 40)
			})
		})
	})
}

func TestMetricCatalogue(t *testing.T) {
	Convey("Given the metric catalogue", t, func() {
		Convey("When parsing a known column", func() {
			m, err := panel.ParseMetric(" EmploymentRate_Males ")
			So(err, ShouldBeNil)
			So(m, ShouldEqual, panel.MetricEmploymentRateMales)
			So(m.Label(), ShouldEqual, "Employment Rate (Males) (%)")
		})

		Convey("When parsing an unknown column", func() {
			_, err := panel.ParseMetric("Country")
			So(errors.Is(err, panel.ErrUnknownMetric), ShouldBeTrue)
		})

		Convey("When reading metrics from a record", func() {
			r := rec("A", 2019, 100, 30)
			So(panel.MetricYear.Of(r), ShouldResemble, panel.Some(2019))
			So(panel.MetricExpenditure.Of(r), ShouldResemble, panel.Some(100))
			So(panel.Metric("Bogus").Of(r).IsMissing(), ShouldBeTrue)
			So(len(panel.Metrics()), ShouldEqual, 9)
		})
	})
}

func TestValue(t *testing.T) {
	Convey("Given optional values", t, func() {
		So(panel.Some(math.NaN()).IsMissing(), ShouldBeTrue)
		So(panel.Some(math.Inf(1)).IsMissing(), ShouldBeTrue)
		So(panel.Missing().Or(-1), ShouldEqual, -1)

		b, err := json.Marshal([]panel.Value{panel.Some(1.5), panel.Missing()})
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "[1.5,null]")

		var vs []panel.Value
		So(json.Unmarshal([]byte("[2,null]"), &vs), ShouldBeNil)
		So(vs[0], ShouldResemble, panel.Some(2))
		So(vs[1].IsMissing(), ShouldBeTrue)
	})
}
