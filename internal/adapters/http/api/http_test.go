package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/goalwatch/internal/adapters/http/api"
	"github.com/okian/goalwatch/internal/adapters/repository"
	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
)

type mockDeps struct {
	paused    bool
	lastLimit int
	completed []int64
}

func (m *mockDeps) GetStats(context.Context) service.Stats {
	return service.Stats{Started: true, Paused: m.paused, Workers: 4, Cycles: 12}
}

func (m *mockDeps) Alerts(_ context.Context, limit int) ([]repository.Alert, error) {
	m.lastLimit = limit
	return []repository.Alert{{ID: "a1", FixtureID: 5, Match: "Alpha vs Beta", Status: repository.StatusActive}}, nil
}

func (m *mockDeps) Alert(_ context.Context, id int64) (repository.Alert, error) {
	if id != 5 {
		return repository.Alert{}, fmt.Errorf("fixture %d: %w", id, repository.ErrNotFound)
	}
	return repository.Alert{ID: "a1", FixtureID: 5, AlertedAt: time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC)}, nil
}

func (m *mockDeps) CompleteAlert(_ context.Context, id int64) error {
	if id != 5 {
		return repository.ErrNotFound
	}
	m.completed = append(m.completed, id)
	return nil
}

func (m *mockDeps) Pause(context.Context)  { m.paused = true }
func (m *mockDeps) Resume(context.Context) { m.paused = false }
func (m *mockDeps) Paused() bool           { return m.paused }

func (m *mockDeps) FixtureState(_ context.Context, id int64) (dedupe.Entry, bool) {
	if id != 7 {
		return dedupe.Entry{}, false
	}
	return dedupe.Entry{
		State:          dedupe.State{Score: "0-0", Minute: 66, LastEventMinute: 61},
		Confidence:     0.8,
		Classification: model.StrongCandidate,
	}, true
}

func (m *mockDeps) Evaluate(snap model.Snapshot) engine.Verdict {
	if snap.Fixture.ID == 666 {
		panic("engine exploded")
	}
	return engine.Verdict{Reason: engine.ReasonBelowThreshold, Score: 9, Threshold: model.Threshold{Base: 12, Effective: 11}}
}

func newHandler(deps *mockDeps) http.Handler {
	return api.NewServer(deps, api.WithLogger(logger.Nop())).Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(sonic.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(&mockDeps{})

		Convey("When /healthz is requested", func() {
			w := do(h, http.MethodGet, "/healthz", "")

			Convey("Then Prometheus metrics are served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
			})
		})

		Convey("When /stats is requested", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then service statistics are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["started"], ShouldEqual, true)
				So(body["workers"], ShouldEqual, 4.0)
				So(body["cycles"], ShouldEqual, 12.0)
			})
		})
	})
}

func TestAlerts(t *testing.T) {
	Convey("Given the API handler", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When alerts are listed without a limit", func() {
			w := do(h, http.MethodGet, "/alerts", "")

			Convey("Then the default limit is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 50)
				var alerts []repository.Alert
				So(sonic.Unmarshal(w.Body.Bytes(), &alerts), ShouldBeNil)
				So(alerts, ShouldHaveLength, 1)
				So(alerts[0].Match, ShouldEqual, "Alpha vs Beta")
			})
		})

		Convey("When an explicit limit is given", func() {
			w := do(h, http.MethodGet, "/alerts?limit=5", "")

			Convey("Then it is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 5)
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"0", "abc", "501"} {
				w := do(h, http.MethodGet, "/alerts?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When a known alert is fetched", func() {
			w := do(h, http.MethodGet, "/alerts/5", "")

			Convey("Then it is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["id"], ShouldEqual, "a1")
			})
		})

		Convey("When an unknown alert is fetched", func() {
			w := do(h, http.MethodGet, "/alerts/6", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When an alert is completed", func() {
			w := do(h, http.MethodPost, "/alerts/5/complete", "")

			Convey("Then no content is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(deps.completed, ShouldResemble, []int64{5})
			})
		})

		Convey("When an unknown alert is completed", func() {
			w := do(h, http.MethodPost, "/alerts/9/complete", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestFixtures(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(&mockDeps{})

		Convey("When a cached fixture is requested", func() {
			w := do(h, http.MethodGet, "/fixtures/7", "")

			Convey("Then its last reported state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["fixture_id"], ShouldEqual, 7.0)
				last := body["last_reported"].(map[string]any)
				So(last["classification"], ShouldEqual, "strong_candidate")
				state := last["state"].(map[string]any)
				So(state["minute"], ShouldEqual, 66.0)
			})
		})

		Convey("When an unknown fixture is requested", func() {
			w := do(h, http.MethodGet, "/fixtures/8", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the fixture id is not numeric", func() {
			w := do(h, http.MethodGet, "/fixtures/abc", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAnalyze(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHandler(&mockDeps{})

		Convey("When a valid snapshot is posted", func() {
			body := `{"fixture":{"id":42,"minute":65,"home":{"id":1,"name":"A"},"away":{"id":2,"name":"B"},"score":{"home":0,"away":0}},"statistics":[],"events":[]}`
			w := do(h, http.MethodPost, "/analyze", body)

			Convey("Then the verdict is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["qualified"], ShouldEqual, false)
				So(out["reason"], ShouldEqual, "below_threshold")
				So(out["score"], ShouldEqual, 9.0)
				So(out, ShouldNotContainKey, "result")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(h, http.MethodPost, "/analyze", "{not json")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the fixture id is missing", func() {
			w := do(h, http.MethodPost, "/analyze", `{"fixture":{"minute":65}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldContainSubstring, "ID")
		})

		Convey("When the engine panics", func() {
			w := do(h, http.MethodPost, "/analyze", `{"fixture":{"id":666,"minute":65}}`)

			Convey("Then the panic is recovered as a server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the wrong method is used", func() {
			w := do(h, http.MethodGet, "/analyze", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestPauseResume(t *testing.T) {
	Convey("Given the API handler", t, func() {
		deps := &mockDeps{}
		h := newHandler(deps)

		Convey("When the scanner is paused", func() {
			w := do(h, http.MethodPost, "/pause", "")

			Convey("Then the pause is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["paused"], ShouldEqual, true)
				So(deps.paused, ShouldBeTrue)
			})

			Convey("And when it is resumed", func() {
				w := do(h, http.MethodPost, "/resume", "")

				Convey("Then scanning is back on", func() {
					So(decode(w)["paused"], ShouldEqual, false)
					So(deps.paused, ShouldBeFalse)
				})
			})
		})
	})
}
