package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/okian/edupanel/internal/app"
	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/views"
	"github.com/okian/edupanel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

func records() panel.Table {
	rec := func(c string, y int, exp, bach float64) panel.Record {
		return panel.Record{
			Country: c, Year: y,
			Expenditure:           panel.Some(exp),
			BachelorRate:          panel.Some(bach),
			MasterRate:            panel.Some(bach / 2),
			EmploymentRateFemales: panel.Some(70),
			EmploymentRateMales:   panel.Some(74),
		}
	}
	return panel.Table{
		rec("Spain", 2018, 100, 30),
		rec("Spain", 2019, 100, 40),
		rec("France", 2018, 200, 35),
		rec("France", 2019, 210, 36),
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over an in-memory dataset", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithRecords(records()), service.WithDefaultCountryCount(1))
		defer svc.Stop()

		Convey("When it has not been started", func() {
			_, err := svc.Params(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Artifacts(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When it is started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the default state follows the dataset", func() {
				p, err := svc.Params(ctx)
				So(err, ShouldBeNil)
				So(p.Year, ShouldEqual, 2018)
				So(p.Countries, ShouldResemble, []string{"France"})
				So(p.Country, ShouldEqual, "France")
			})

			Convey("Then the domain lists years, countries and metric choices", func() {
				d, err := svc.Domain(ctx)
				So(err, ShouldBeNil)
				So(d.Years, ShouldResemble, []int{2018, 2019})
				So(d.Countries, ShouldResemble, []string{"France", "Spain"})
				So(d.AnomalyMetrics, ShouldNotContain, panel.MetricYear)
				So(len(d.Metrics), ShouldEqual, len(panel.Metrics()))
			})

			Convey("Then stats describe the session", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["rows"], ShouldEqual, 4)
				So(stats["outputs"], ShouldEqual, 10)
				So(stats["dataset"], ShouldEqual, "memory")
			})

			Convey("And it is stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Artifact(ctx, views.OutputKPIs)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_UpdateParams(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithRecords(records()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a valid event arrives", func() {
			up, err := svc.UpdateParams(ctx, params.Changes{params.Year: 2019})
			So(err, ShouldBeNil)

			Convey("Then dependent artifacts reflect the new state", func() {
				So(up.Changed, ShouldResemble, []params.Name{params.Year})
				a, err := svc.Artifact(ctx, views.OutputEfficiencyGraduation)
				So(err, ShouldBeNil)
				So(a.Bars[0].Category, ShouldEqual, "Spain")
				So(a.Bars[0].Value, ShouldAlmostEqual, 0.4, 1e-9)
				So(svc.GetStats()["events"], ShouldEqual, 1)
			})
		})

		Convey("When an invalid event arrives", func() {
			before, _ := svc.Params(ctx)
			_, err := svc.UpdateParams(ctx, params.Changes{params.Country: "Atlantis"})

			Convey("Then it is rejected and the state is kept", func() {
				So(errors.Is(err, params.ErrInvalidParameter), ShouldBeTrue)
				after, _ := svc.Params(ctx)
				So(after, ShouldResemble, before)
				So(svc.GetStats()["rejectedEvents"], ShouldEqual, 1)
			})
		})
	})
}

func TestService_StartFailures(t *testing.T) {
	Convey("Given datasets that cannot be served", t, func() {
		ctx := context.Background()

		Convey("When rows repeat a (Country, Year) pair", func() {
			dup := append(records(), records()[0])
			err := service.New(service.WithRecords(dup)).Start(ctx)
			So(errors.Is(err, panel.ErrDataIntegrity), ShouldBeTrue)
		})

		Convey("When no dataset is configured", func() {
			err := service.New().Start(ctx)
			So(errors.Is(err, service.ErrNoDataset), ShouldBeTrue)
		})
	})
}
