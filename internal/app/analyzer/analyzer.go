// Package analyzer sequences one fixture analysis: prechecks, provider
// lookups, the deduplication cache and the pure engine.
package analyzer

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

// Provider is the sports data collaborator the analyzer reads from.
type Provider interface {
	Statistics(ctx context.Context, fixtureID int64) (model.StatisticsSet, error)
	Events(ctx context.Context, fixtureID int64) (model.EventLog, error)
	TeamForm(ctx context.Context, teamID int64, n int) ([]model.PastMatch, error)
	HeadToHead(ctx context.Context, teamA, teamB int64, n int) ([]model.PastMatch, error)
}

// Outcome is the result of one Analyze call. Result is set only when the
// fixture qualified and should be reported.
type Outcome struct {
	FixtureID int64
	Reason    engine.Reason
	Score     int
	Threshold int
	Result    *model.AnalysisResult
}

// Qualified reports whether the outcome carries a result to dispatch.
func (o Outcome) Qualified() bool { return o.Reason == engine.ReasonQualified && o.Result != nil }

// Analyzer is safe for concurrent use across fixtures.
type Analyzer struct {
	provider Provider
	cache    dedupe.Cache
	engine   atomic.Pointer[engine.Engine]
	validate *validator.Validate

	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// New builds an Analyzer around an engine configuration.
func New(p Provider, cfg engine.Config, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		provider: p,
		validate: validator.New(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = dedupe.NewInMemoryCache()
	}
	if a.log == nil {
		a.log = logger.Get().Named("analyzer")
	}
	if err := a.SetConfig(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// SetConfig swaps the engine configuration. Analyses already running keep
// the engine they started with.
func (a *Analyzer) SetConfig(cfg engine.Config) error {
	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	a.engine.Store(e)
	return nil
}

// Engine returns the engine currently in use.
func (a *Analyzer) Engine() *engine.Engine { return a.engine.Load() }

// State returns the cached state of a fixture, if it was ever reported.
func (a *Analyzer) State(ctx context.Context, fixtureID int64) (dedupe.Entry, bool) {
	return a.cache.Get(ctx, fixtureID)
}

// Forget drops the cached state of a fixture.
func (a *Analyzer) Forget(ctx context.Context, fixtureID int64) {
	a.cache.Forget(ctx, fixtureID)
}

// CacheSize returns the number of fixtures held in the deduplication cache.
func (a *Analyzer) CacheSize() int64 { return a.cache.Size() }

// Analyze evaluates one live fixture. An error is returned only when the
// provider could not deliver statistics; a failed event lookup continues
// with an empty log. Every other non-qualification is a Reason on the
// outcome.
func (a *Analyzer) Analyze(ctx context.Context, fx model.FixtureSnapshot) (Outcome, error) {
	start := time.Now()
	eng := a.engine.Load()

	out, err := a.analyze(ctx, eng, fx)

	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordAnalysis(string(out.Reason))
	switch {
	case out.Qualified():
		metrics.RecordQualified(string(out.Result.Classification))
	case out.Reason == engine.ReasonUnchanged || out.Reason == engine.ReasonUnchangedConfidence:
		metrics.RecordCacheSuppressed()
		a.log.Debug(ctx, "fixture unchanged", logger.Int64("fixture_id", fx.ID), logger.String("reason", string(out.Reason)))
	default:
		a.log.Debug(ctx, "fixture not qualified",
			logger.Int64("fixture_id", fx.ID),
			logger.String("reason", string(out.Reason)),
			logger.Int("score", out.Score),
			logger.Int("threshold", out.Threshold),
		)
	}
	return out, err
}

func (a *Analyzer) analyze(ctx context.Context, eng *engine.Engine, fx model.FixtureSnapshot) (Outcome, error) { //nolint:gocritic // hugeParam
	out := Outcome{FixtureID: fx.ID}

	if err := a.validate.Struct(fx); err != nil {
		out.Reason = engine.ReasonInvalidFixture
		return out, nil
	}
	if r := eng.Precheck(fx); r != "" {
		out.Reason = r
		return out, nil
	}

	stats, events, err := a.fetch(ctx, fx.ID)
	if err != nil {
		out.Reason = engine.ReasonProviderError
		return out, err
	}
	if len(stats) == 0 {
		out.Reason = engine.ReasonNoStatistics
		return out, nil
	}

	state := dedupe.StateOf(fx, events)
	if a.cache.Unchanged(ctx, fx.ID, state) {
		out.Reason = engine.ReasonUnchanged
		return out, nil
	}

	assessment := eng.Assess(engine.Input{Fixture: fx, Stats: stats, Events: events})
	form := eng.Config().Form.Neutral()
	if assessment.Reason == "" {
		form = a.form(ctx, eng.Config().Form, fx)
	}
	v := eng.Finalize(assessment, form)
	out.Reason = v.Reason
	out.Score = v.Score
	out.Threshold = v.Threshold.Effective
	if !v.Qualified() {
		return out, nil
	}

	if a.withinDelta(ctx, eng.Config().CacheDeltaConfidence, fx.ID, v.Result) {
		out.Reason = engine.ReasonUnchangedConfidence
		return out, nil
	}

	a.cache.Store(ctx, fx.ID, dedupe.Entry{
		State:          state,
		Confidence:     v.Result.Confidence,
		Classification: v.Result.Classification,
	})

	res := *v.Result
	res.ID = a.newID()
	res.AnalyzedAt = a.now().UTC()
	out.Result = &res
	return out, nil
}

func (a *Analyzer) fetch(ctx context.Context, fixtureID int64) (model.StatisticsSet, model.EventLog, error) {
	var (
		stats  model.StatisticsSet
		events model.EventLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = a.provider.Statistics(gctx, fixtureID)
		return err
	})
	// Events failures degrade to an empty log.
	var eventsErr error
	g.Go(func() error {
		events, eventsErr = a.provider.Events(gctx, fixtureID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, crerr.Mark(crerr.Wrapf(err, "fixture_id=%d", fixtureID), ErrFetchFailed)
	}
	if eventsErr != nil {
		a.fallback(ctx, "events", fixtureID, eventsErr)
		events = model.EventLog{}
	}
	return stats, events, nil
}

// form looks up team form and head-to-head. Any failed lookup falls back
// to the neutral figure for that input only.
func (a *Analyzer) form(ctx context.Context, cfg engine.FormConfig, fx model.FixtureSnapshot) model.Form { //nolint:gocritic // hugeParam
	f := cfg.Neutral()

	if m, err := a.provider.TeamForm(ctx, fx.Home.ID, cfg.Matches); err != nil {
		a.fallback(ctx, "home_form", fx.ID, err)
	} else {
		f.HomeGoals = engine.TeamFormGoals(fx.Home.ID, m, cfg)
	}
	if m, err := a.provider.TeamForm(ctx, fx.Away.ID, cfg.Matches); err != nil {
		a.fallback(ctx, "away_form", fx.ID, err)
	} else {
		f.AwayGoals = engine.TeamFormGoals(fx.Away.ID, m, cfg)
	}
	if m, err := a.provider.HeadToHead(ctx, fx.Home.ID, fx.Away.ID, cfg.Matches); err != nil {
		a.fallback(ctx, "h2h", fx.ID, err)
	} else {
		f.H2HGoals = engine.H2HAverage(m, cfg)
	}
	return f
}

func (a *Analyzer) fallback(ctx context.Context, lookup string, fixtureID int64, err error) {
	metrics.RecordFormLookupFallback()
	a.log.Warn(ctx, "provider lookup failed, using default",
		logger.String("lookup", lookup),
		logger.Int64("fixture_id", fixtureID),
		logger.Error(err),
	)
}

// withinDelta reports whether a fresh result only restates the last
// reported one. A zero delta disables the check.
func (a *Analyzer) withinDelta(ctx context.Context, delta float64, fixtureID int64, r *model.AnalysisResult) bool {
	if delta <= 0 {
		return false
	}
	prev, ok := a.cache.Get(ctx, fixtureID)
	if !ok || prev.Classification != r.Classification {
		return false
	}
	return math.Abs(r.Confidence-prev.Confidence) < delta
}
