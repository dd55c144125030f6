package testevents

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/okian/edupanel/internal/adapters/http/api"
	service "github.com/okian/edupanel/internal/app"
	"github.com/okian/edupanel/internal/domain/panel"
	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
	"github.com/okian/edupanel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

type choiceDomain struct{ c params.Choices }

func (d choiceDomain) DistinctYears() []int { return d.c.Years }
func (d choiceDomain) DistinctCountries() []string { return d.c.Countries }
func (d choiceDomain) HasYear(y int) bool { return slices.Contains(d.c.Years, y) }
func (d choiceDomain) HasCountry(c string) bool { return slices.Contains(d.c.Countries, c) }

func testChoices() params.Choices {
	return params.ChoicesFor(choiceDomain{params.Choices{
		Years:     []int{2017, 2018, 2019},
		Countries: []string{"France", "Italy", "Spain"},
	}})
}

func table() panel.Table {
	var t panel.Table
	for y := 2017; y <= 2019; y++ {
		for i, c := range []string{"France", "Italy", "Spain"} {
			f := float64(i)
			t = append(t, panel.Record{
				Country: c, Year: y,
				Expenditure:           panel.Some(100 + 10*f + float64(y-2017)),
				BachelorRate:          panel.Some(30 + f),
				MasterRate:            panel.Some(15 + f),
				EmploymentRateFemales: panel.Some(65 + f),
				EmploymentRateMales:   panel.Some(72 + f),
			})
		}
	}
	return t
}

func TestGenerator(t *testing.T) {
	Convey("Given a generator over a small domain", t, func() {
		choices := testChoices()
		d := choiceDomain{choices}
		base := params.Defaults(d, 2)

		Convey("When two generators share a seed", func() {
			a := NewGenerator(choices, 7, 0.2).Generate(50)
			b := NewGenerator(choices, 7, 0.2).Generate(50)

			Convey("Then they produce the same changes", func() {
				So(a, ShouldHaveLength, 50)
				for i := range a {
					So(a[i].Changes, ShouldResemble, b[i].Changes)
					So(a[i].Invalid, ShouldEqual, b[i].Invalid)
				}
			})
		})

		Convey("When invalid events are disabled", func() {
			events := NewGenerator(choices, 1, 0).Generate(200)

			Convey("Then every event applies cleanly", func() {
				for _, ev := range events {
					So(ev.Invalid, ShouldBeFalse)
					So(len(ev.Changes), ShouldBeBetweenOrEqual, 1, maxChangesPerEvent)
					_, _, err := base.Apply(ev.Changes, d)
					So(err, ShouldBeNil)
				}
			})
		})

		Convey("When every event is invalid", func() {
			events := NewGenerator(choices, 3, 1).Generate(100)

			Convey("Then every event is rejected", func() {
				for _, ev := range events {
					So(ev.Invalid, ShouldBeTrue)
					_, _, err := base.Apply(ev.Changes, d)
					So(errors.Is(err, params.ErrInvalidParameter), ShouldBeTrue)
				}
			})
		})
	})
}

func TestVerification(t *testing.T) {
	Convey("Given the dashboard graph", t, func() {
		graph, err := reactive.NewGraph(views.Definitions())
		So(err, ShouldBeNil)

		Convey("When an update recomputes the year dependents", func() {
			up := reactive.Update{
				Changed:    []params.Name{params.Year},
				Recomputed: graph.Dependents(params.Year),
			}
			So(VerifyUpdate(graph, up), ShouldBeNil)

			Convey("Then dropping one output is reported", func() {
				up.Recomputed = up.Recomputed[1:]
				So(errors.Is(VerifyUpdate(graph, up), ErrInconsistent), ShouldBeTrue)
			})
		})

		Convey("When a no-op update recomputes nothing", func() {
			So(VerifyUpdate(graph, reactive.Update{}), ShouldBeNil)
		})

		Convey("When artifacts are checked against the parameter state", func() {
			p := params.Defaults(choiceDomain{testChoices()}, 2)
			var arts []views.Artifact
			for i, id := range graph.Outputs() {
				d, _ := graph.Definition(id)
				arts = append(arts, views.Artifact{Output: id, Key: string(id) + "?" + p.Key(d.DependsOn), Version: uint64(i + 1)})
			}
			So(VerifyArtifacts(graph, p, arts), ShouldBeEmpty)

			Convey("Then a stale key, a shared version and a missing output are reported", func() {
				arts[0].Key = "stale"
				arts[2].Version = arts[1].Version
				errs := VerifyArtifacts(graph, p, arts[:len(arts)-1])
				So(errs, ShouldHaveLength, 3)
				for _, e := range errs {
					So(errors.Is(e, ErrInconsistent), ShouldBeTrue)
				}
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running dashboard service behind its HTTP API", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithRecords(table()), service.WithLogger(logger.Discard()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When random events are replayed concurrently", func() {
			stats, err := Run(ctx, &Config{
				BaseURL:      srv.URL,
				NumEvents:    120,
				Workers:      8,
				Timeout:      5 * time.Second,
				Seed:         11,
				InvalidRatio: 0.25,
			})

			Convey("Then every answer agrees with the graph and the final state", func() {
				So(err, ShouldBeNil)
				So(stats.EventsSubmitted, ShouldEqual, 120)
				So(stats.EventsFailed, ShouldEqual, 0)
				So(stats.EventsAccepted+stats.EventsRejected, ShouldEqual, 120)
				So(stats.EventsRejected, ShouldBeGreaterThan, 0)
				So(stats.Mismatches, ShouldEqual, 0)
				So(svc.GetStats()["events"], ShouldEqual, stats.EventsAccepted)
				So(svc.GetStats()["rejectedEvents"], ShouldEqual, stats.EventsRejected)
			})
		})

		Convey("When the service is unreachable", func() {
			_, err := Run(ctx, &Config{BaseURL: "http://127.0.0.1:1", NumEvents: 1, Workers: 1, Timeout: time.Second})

			Convey("Then the run fails at the health check", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
