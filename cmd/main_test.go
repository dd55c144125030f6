package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/edupanel/internal/config"
	"github.com/okian/edupanel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const panelCSV = `Year,Country,Expenditure,BachelorRate,MasterRate,EmploymentRate_Females,EmploymentRate_Males
2018,Spain,100,30,15,70,74
2019,Spain,100,40,20,71,75
2018,France,200,35,17,72,76
2019,France,210,36,18,73,77
`

func writePanel(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "panel.csv")
	if err := os.WriteFile(path, []byte(panelCSV), 0o600); err != nil {
		t.Fatalf("write panel: %v", err)
	}
	return path
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration pointing at a panel file", t, func() {
		ctx := context.Background()
		path := writePanel(t)
		_ = os.Setenv("EDUPANEL_DATA_PATH", path)
		_ = os.Setenv("EDUPANEL_DEFAULT_COUNTRY_COUNT", "2")
		defer func() {
			_ = os.Unsetenv("EDUPANEL_DATA_PATH")
			_ = os.Unsetenv("EDUPANEL_DEFAULT_COUNTRY_COUNT")
		}()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.DataPath, convey.ShouldEqual, path)

		convey.Convey("When the service and mux are wired", func() {
			svc := newService(cfg, logger.Discard())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			srv := httptest.NewServer(newMux(ctx, svc))
			defer srv.Close()

			convey.Convey("Then the API serves the initial parameters", func() {
				resp, err := http.Get(srv.URL + "/params")
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

				var body struct {
					Params struct {
						Year      int      `json:"year"`
						Countries []string `json:"countries"`
					} `json:"params"`
				}
				convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
				convey.So(body.Params.Year, convey.ShouldEqual, 2018)
				convey.So(body.Params.Countries, convey.ShouldHaveLength, 2)
			})

			convey.Convey("Then an event recomputes only dependent outputs", func() {
				resp, err := http.Post(srv.URL+"/params", "application/json", strings.NewReader(`{"year": 2019}`))
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then the landing page is served at the root", func() {
				resp, err := http.Get(srv.URL + "/")
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then the API docs are mounted", func() {
				resp, err := http.Get(srv.URL + "/openapi.yaml")
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
