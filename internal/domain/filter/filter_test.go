package filter_test

import (
	"fmt"
	"testing"

	"github.com/okian/edupanel/internal/domain/filter"
	"github.com/okian/edupanel/internal/domain/panel"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() panel.Table {
	var t panel.Table
	for _, c := range []string{"Austria", "Belgium", "Croatia", "Denmark"} {
		for y := 2017; y <= 2019; y++ {
			t = append(t, panel.Record{
				Country:      c,
				Year:         y,
				Expenditure:  panel.Some(float64(100 + y - 2017)),
				BachelorRate: panel.Some(30),
			})
		}
	}
	t[1].BachelorRate = panel.Missing()
	return panel.Derive(t)
}

func keys(t panel.Table) map[string]bool {
	out := make(map[string]bool, len(t))
	for _, r := range t {
		out[fmt.Sprintf("%s/%d", r.Country, r.Year)] = true
	}
	return out
}

func TestFilters(t *testing.T) {
	Convey("Given a panel table", t, func() {
		tbl := sample()

		Convey("When filtering by year", func() {
			out := filter.ByYear(tbl, 2018)
			So(len(out), ShouldEqual, 4)
			for _, r := range out {
				So(r.Year, ShouldEqual, 2018)
			}
		})

		Convey("When filtering by countries", func() {
			out := filter.ByCountries(tbl, []string{"Belgium", "Denmark"})
			So(len(out), ShouldEqual, 6)
			So(out.Countries(), ShouldResemble, []string{"Belgium", "Denmark"})
		})

		Convey("When filtering by an empty country set", func() {
			So(len(filter.ByCountries(tbl, nil)), ShouldEqual, 0)
		})

		Convey("When composing year and country filters in either order", func() {
			cases := []struct {
				year      int
				countries []string
			}{
				{2017, []string{"Austria"}},
				{2018, []string{"Belgium", "Croatia", "Nowhere"}},
				{2019, nil},
				{1999, []string{"Austria", "Denmark"}},
			}
			for _, tc := range cases {
				a := filter.ByCountries(filter.ByYear(tbl, tc.year), tc.countries)
				b := filter.ByYear(filter.ByCountries(tbl, tc.countries), tc.year)
				c := filter.ByYearAndCountries(tbl, tc.year, tc.countries)
				So(keys(a), ShouldResemble, keys(b))
				So(keys(a), ShouldResemble, keys(c))
			}
		})

		Convey("When dropping rows with missing required columns", func() {
			out := filter.DropMissing(tbl, panel.MetricBachelorRate, panel.MetricEfficiencyGraduation)
			So(len(out), ShouldEqual, len(tbl)-1)
			So(keys(out)["Austria/2018"], ShouldBeFalse)
		})

		Convey("When no row matches", func() {
			out := filter.ByYear(tbl, 1990)
			So(out, ShouldNotBeNil)
			So(len(out), ShouldEqual, 0)
		})

		Convey("When filtering long-form rows by year", func() {
			long := filter.LongByYear(panel.LongForm(tbl), 2019)
			So(len(long), ShouldEqual, 8)
		})

		Convey("Then the source table is left untouched", func() {
			before := tbl.Clone()
			_ = filter.ByYear(tbl, 2018)
			_ = filter.DropMissing(tbl, panel.MetricBachelorRate)
			So(tbl, ShouldResemble, before)
		})
	})
}
