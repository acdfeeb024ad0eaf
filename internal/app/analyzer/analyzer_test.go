package analyzer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/goalwatch/internal/app/analyzer"
	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
)

type stubProvider struct {
	mu        sync.Mutex
	stats     model.StatisticsSet
	events    model.EventLog
	form      map[int64][]model.PastMatch
	h2h       []model.PastMatch
	statsErr  error
	eventsErr error
	formErr   error
	calls     map[string]int
}

func newStubProvider() *stubProvider {
	return &stubProvider{stats: calmStats(), form: map[int64][]model.PastMatch{}, calls: map[string]int{}}
}

func (p *stubProvider) hit(name string) {
	p.mu.Lock()
	p.calls[name]++
	p.mu.Unlock()
}

func (p *stubProvider) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *stubProvider) Statistics(context.Context, int64) (model.StatisticsSet, error) {
	p.hit("stats")
	return p.stats, p.statsErr
}

func (p *stubProvider) Events(context.Context, int64) (model.EventLog, error) {
	p.hit("events")
	if p.eventsErr != nil {
		return nil, p.eventsErr
	}
	return p.events, nil
}

func (p *stubProvider) TeamForm(_ context.Context, teamID int64, _ int) ([]model.PastMatch, error) {
	p.hit("form")
	return p.form[teamID], p.formErr
}

func (p *stubProvider) HeadToHead(context.Context, int64, int64, int) ([]model.PastMatch, error) {
	p.hit("h2h")
	return p.h2h, p.formErr
}

func calmStats() model.StatisticsSet {
	return model.StatisticsSet{
		{Team: model.Team{ID: 10}, Values: map[string]any{
			extract.TotalShots: 6, extract.ShotsOnGoal: 2, extract.CornerKicks: 3,
			extract.BallPossession: "52%", extract.PassAccuracy: "82%", extract.Fouls: 6,
			extract.TotalPasses: 260, extract.BlockedShots: 1,
		}},
		{Team: model.Team{ID: 20}, Values: map[string]any{
			extract.TotalShots: 4, extract.ShotsOnGoal: 1, extract.CornerKicks: 2,
			extract.BallPossession: "48%", extract.PassAccuracy: "78%", extract.Fouls: 7,
			extract.TotalPasses: 220, extract.BlockedShots: 2,
		}},
	}
}

func fixture(minute int, score model.Score) model.FixtureSnapshot {
	return model.FixtureSnapshot{
		ID:     1035123,
		Minute: minute,
		Home:   model.Team{ID: 10, Name: "Alpha"},
		Away:   model.Team{ID: 20, Name: "Beta"},
		Score:  score,
		League: model.League{ID: 39, Name: "Premier League", Country: "England"},
	}
}

func goals(n int) *int { return &n }

var fixedNow = time.Date(2026, 3, 14, 16, 5, 0, 0, time.UTC)

func newAnalyzer(p analyzer.Provider, cfg engine.Config, opts ...analyzer.Option) *analyzer.Analyzer {
	base := []analyzer.Option{
		analyzer.WithLogger(logger.Nop()),
		analyzer.WithClock(func() time.Time { return fixedNow }),
		analyzer.WithIDGenerator(func() string { return "result-1" }),
	}
	a, err := analyzer.New(p, cfg, append(base, opts...)...)
	So(err, ShouldBeNil)
	return a
}

func TestAnalyze(t *testing.T) {
	Convey("Given an analyzer over a calm goalless match", t, func() {
		ctx := context.Background()
		p := newStubProvider()
		a := newAnalyzer(p, engine.DefaultConfig())

		Convey("When the fixture is analyzed", func() {
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then it qualifies with a stamped result", func() {
				So(err, ShouldBeNil)
				So(out.Qualified(), ShouldBeTrue)
				So(out.Result.ID, ShouldEqual, "result-1")
				So(out.Result.AnalyzedAt, ShouldEqual, fixedNow)
				So(out.Result.Classification, ShouldEqual, model.StrongCandidate)
				So(out.Score, ShouldEqual, 24)
				So(out.Threshold, ShouldEqual, 11)
			})

			Convey("Then the reported state is cached", func() {
				entry, ok := a.State(ctx, 1035123)
				So(ok, ShouldBeTrue)
				So(entry.State, ShouldResemble, dedupe.State{Score: "0-0", Minute: 65})
				So(entry.Classification, ShouldEqual, model.StrongCandidate)
				So(a.CacheSize(), ShouldEqual, int64(1))
			})

			Convey("Then a second identical analysis is suppressed without scoring", func() {
				again, err := a.Analyze(ctx, fixture(65, model.Score{}))
				So(err, ShouldBeNil)
				So(again.Reason, ShouldEqual, engine.ReasonUnchanged)
				So(again.Result, ShouldBeNil)
				So(p.count("form"), ShouldEqual, 2)
			})

			Convey("Then forgetting the fixture allows a fresh report", func() {
				a.Forget(ctx, 1035123)
				again, err := a.Analyze(ctx, fixture(65, model.Score{}))
				So(err, ShouldBeNil)
				So(again.Qualified(), ShouldBeTrue)
			})
		})

		Convey("When the history lookups succeed", func() {
			p.h2h = []model.PastMatch{
				{HomeTeamID: 10, AwayTeamID: 20, HomeGoals: goals(0), AwayGoals: goals(1)},
				{HomeTeamID: 20, AwayTeamID: 10, HomeGoals: goals(1), AwayGoals: goals(0)},
			}
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then the head to head criterion scores", func() {
				So(err, ShouldBeNil)
				So(out.Qualified(), ShouldBeTrue)
				So(out.Result.H2HAvgGoals, ShouldEqual, 1.0)
				So(out.Result.Breakdown.Points(engine.CritH2H), ShouldEqual, 1)
				So(out.Score, ShouldEqual, 25)
			})
		})

		Convey("When every history lookup fails", func() {
			p.formErr = errors.New("quota exhausted")
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then neutral defaults are used and the analysis still completes", func() {
				So(err, ShouldBeNil)
				So(out.Qualified(), ShouldBeTrue)
				So(out.Result.HomeFormGoals, ShouldEqual, 1.0)
				So(out.Result.AwayFormGoals, ShouldEqual, 1.0)
				So(out.Result.H2HAvgGoals, ShouldEqual, 2.5)
				So(out.Score, ShouldEqual, 24)
			})
		})

		Convey("When statistics cannot be fetched", func() {
			p.statsErr = errors.New("connection refused")
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then the outcome is a provider error", func() {
				So(out.Reason, ShouldEqual, engine.ReasonProviderError)
				So(crerr.Is(err, analyzer.ErrFetchFailed), ShouldBeTrue)
			})
		})

		Convey("When the event log cannot be fetched", func() {
			p.eventsErr = errors.New("events endpoint 503")
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then the analysis continues with an empty event log", func() {
				So(err, ShouldBeNil)
				So(out.Reason, ShouldEqual, engine.ReasonQualified)
				So(out.Qualified(), ShouldBeTrue)
				So(out.Score, ShouldEqual, 24)
				So(p.count("events"), ShouldEqual, 1)
			})
		})

		Convey("When both statistics and events fail", func() {
			p.statsErr = errors.New("connection refused")
			p.eventsErr = errors.New("events endpoint 503")
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then only the statistics failure is reported", func() {
				So(out.Reason, ShouldEqual, engine.ReasonProviderError)
				So(crerr.Is(err, analyzer.ErrFetchFailed), ShouldBeTrue)
			})
		})

		Convey("When the provider has no statistics yet", func() {
			p.stats = nil
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then the fixture is skipped", func() {
				So(err, ShouldBeNil)
				So(out.Reason, ShouldEqual, engine.ReasonNoStatistics)
				So(p.count("form"), ShouldEqual, 0)
			})
		})

		Convey("When the score is excluded", func() {
			out, err := a.Analyze(ctx, fixture(70, model.Score{Home: 2, Away: 2}))

			Convey("Then nothing is fetched", func() {
				So(err, ShouldBeNil)
				So(out.Reason, ShouldEqual, engine.ReasonExcludedScore)
				So(p.count("stats"), ShouldEqual, 0)
			})
		})

		Convey("When the fixture has no teams", func() {
			fx := fixture(65, model.Score{})
			fx.Away = model.Team{}
			out, _ := a.Analyze(ctx, fx)

			Convey("Then it is rejected as invalid", func() {
				So(out.Reason, ShouldEqual, engine.ReasonInvalidFixture)
			})
		})

		Convey("When the fixture id is missing", func() {
			fx := fixture(65, model.Score{})
			fx.ID = 0
			out, _ := a.Analyze(ctx, fx)

			Convey("Then it is rejected as invalid", func() {
				So(out.Reason, ShouldEqual, engine.ReasonInvalidFixture)
			})
		})

		Convey("When only one team has statistics", func() {
			p.stats = calmStats()[:1]
			out, _ := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then the analysis stops before history lookups", func() {
				So(out.Reason, ShouldEqual, engine.ReasonInsufficientStats)
				So(p.count("form"), ShouldEqual, 0)
			})
		})
	})
}

func TestConfidenceDelta(t *testing.T) {
	Convey("Given a fixture previously reported at a different state", t, func() {
		ctx := context.Background()
		cache := dedupe.NewInMemoryCache()
		cache.Store(ctx, 1035123, dedupe.Entry{
			State:          dedupe.State{Score: "0-0", Minute: 63},
			Confidence:     0.79,
			Classification: model.StrongCandidate,
		})

		Convey("When the confidence delta gate is disabled", func() {
			a := newAnalyzer(newStubProvider(), engine.DefaultConfig(), analyzer.WithCache(cache))
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then any state change is reported again", func() {
				So(err, ShouldBeNil)
				So(out.Qualified(), ShouldBeTrue)
			})
		})

		Convey("When the delta gate is enabled", func() {
			cfg := engine.DefaultConfig()
			cfg.CacheDeltaConfidence = 0.05
			a := newAnalyzer(newStubProvider(), cfg, analyzer.WithCache(cache))
			out, err := a.Analyze(ctx, fixture(65, model.Score{}))

			Convey("Then a small confidence move is suppressed", func() {
				So(err, ShouldBeNil)
				So(out.Reason, ShouldEqual, engine.ReasonUnchangedConfidence)
				So(out.Result, ShouldBeNil)
				entry, _ := cache.Get(ctx, 1035123)
				So(entry.State.Minute, ShouldEqual, 63)
			})
		})
	})
}

func TestSetConfig(t *testing.T) {
	Convey("Given a running analyzer", t, func() {
		a := newAnalyzer(newStubProvider(), engine.DefaultConfig())
		before := a.Engine()

		Convey("When a valid configuration is applied", func() {
			cfg := engine.DefaultConfig()
			cfg.Classify.MaxScore = 40
			So(a.SetConfig(cfg), ShouldBeNil)

			Convey("Then the engine is swapped", func() {
				So(a.Engine(), ShouldNotEqual, before)
				So(a.Engine().Config().Classify.MaxScore, ShouldEqual, 40)
			})
		})

		Convey("When an invalid configuration is applied", func() {
			cfg := engine.DefaultConfig()
			cfg.Scores.Excluded = []string{"x-y"}
			err := a.SetConfig(cfg)

			Convey("Then the previous engine stays in place", func() {
				So(err, ShouldNotBeNil)
				So(a.Engine(), ShouldEqual, before)
			})
		})
	})
}
