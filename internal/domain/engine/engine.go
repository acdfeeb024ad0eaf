// Package engine composes extraction, scoring, risk, threshold and
// classification into the pure fixture evaluation pipeline. Nothing here
// performs I/O.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/goalwatch/internal/domain/classify"
	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/risk"
	"github.com/okian/goalwatch/internal/domain/scoring"
	"github.com/okian/goalwatch/internal/domain/threshold"
)

// Reason explains why an analysis did or did not produce a result.
type Reason string

// Analysis outcomes.
const (
	ReasonInvalidFixture      Reason = "invalid_fixture"
	ReasonExcludedScore       Reason = "excluded_score"
	ReasonScoreNotAllowed     Reason = "score_not_allowed"
	ReasonNoStatistics        Reason = "no_statistics"
	ReasonInsufficientStats   Reason = "insufficient_statistics"
	ReasonUnchanged           Reason = "unchanged"
	ReasonUnchangedConfidence Reason = "unchanged_confidence"
	ReasonRiskCeiling         Reason = "risk_ceiling"
	ReasonBelowThreshold      Reason = "below_threshold"
	ReasonUnstable            Reason = "unstable"
	ReasonLowConfidence       Reason = "low_confidence"
	ReasonProviderError       Reason = "provider_error"
	ReasonQualified           Reason = "qualified"
)

// Form criterion names.
const (
	CritTeamForm = "team_form"
	CritH2H      = "h2h"
)

// Input is the fetched data for one fixture.
type Input struct {
	Fixture model.FixtureSnapshot
	Stats   model.StatisticsSet
	Events  model.EventLog
}

// Assessment is the history-independent half of an evaluation: score plus
// the risk gate. Reason is set when evaluation stops here.
type Assessment struct {
	Input
	XG          model.XG
	Scored      scoring.Result
	Risk        model.RiskMetrics
	RiskPenalty int
	Score       int
	Reason      Reason
}

// Verdict is the final outcome. Result is nil unless Reason is qualified.
type Verdict struct {
	Result    *model.AnalysisResult
	Reason    Reason
	Score     int
	Threshold model.Threshold
	Stability model.StabilityResult
}

// Qualified reports whether the verdict carries a reportable result.
func (v Verdict) Qualified() bool { return v.Reason == ReasonQualified && v.Result != nil }

// Engine evaluates fixtures against one immutable configuration.
type Engine struct {
	cfg      Config
	scorer   *scoring.Scorer
	allowed  map[model.Score]struct{}
	excluded map[model.Score]struct{}
}

// New validates the score patterns and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Classify.MaxScore <= 0 {
		return nil, fmt.Errorf("%w: max score must be positive", ErrInvalidConfig)
	}
	allowed, err := parsePatterns(cfg.Scores.Allowed, true)
	if err != nil {
		return nil, err
	}
	excluded, err := parsePatterns(cfg.Scores.Excluded, false)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		scorer:   scoring.New(scoring.WithConfig(cfg.Scoring)),
		allowed:  allowed,
		excluded: excluded,
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// ParseScore parses a "home-away" pattern.
func ParseScore(s string) (model.Score, error) {
	h, a, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return model.Score{}, fmt.Errorf("%w: %q", ErrInvalidScorePattern, s)
	}
	home, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || home < 0 {
		return model.Score{}, fmt.Errorf("%w: %q", ErrInvalidScorePattern, s)
	}
	away, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil || away < 0 {
		return model.Score{}, fmt.Errorf("%w: %q", ErrInvalidScorePattern, s)
	}
	return model.Score{Home: home, Away: away}, nil
}

func parsePatterns(patterns []string, mirror bool) (map[model.Score]struct{}, error) {
	out := make(map[model.Score]struct{}, len(patterns)*2)
	for _, p := range patterns {
		s, err := ParseScore(p)
		if err != nil {
			return nil, err
		}
		out[s] = struct{}{}
		if mirror {
			out[model.Score{Home: s.Away, Away: s.Home}] = struct{}{}
		}
	}
	return out, nil
}

// ScoreFilter returns an empty Reason when the score is eligible. Exclusion
// is checked first and bypasses scoring entirely.
func (e *Engine) ScoreFilter(s model.Score) Reason {
	if _, ok := e.excluded[s]; ok {
		return ReasonExcludedScore
	}
	if len(e.allowed) == 0 {
		return ""
	}
	if _, ok := e.allowed[s]; !ok {
		return ReasonScoreNotAllowed
	}
	return ""
}

// Precheck validates the fixture and score pattern before any data is fetched.
func (e *Engine) Precheck(fx model.FixtureSnapshot) Reason {
	if !fx.HasTeams() {
		return ReasonInvalidFixture
	}
	return e.ScoreFilter(fx.Score)
}

// Assess scores the fixture and applies the risk gate.
func (e *Engine) Assess(in Input) Assessment {
	a := Assessment{Input: in}
	if !in.Stats.Complete() {
		a.XG = model.XG{Insufficient: true}
		a.Reason = ReasonInsufficientStats
		return a
	}
	a.XG = extract.EstimateXG(in.Stats)
	a.Scored = e.scorer.Score(scoring.Input{
		Stats:  in.Stats,
		Events: in.Events,
		Score:  in.Fixture.Score,
		Minute: in.Fixture.Minute,
		XG:     a.XG,
	})
	a.Risk = risk.Assess(in.Events, in.Fixture.Minute, e.cfg.Risk)
	a.Score = a.Scored.Final

	if e.cfg.Risk.Rejected(a.Risk.Index) {
		a.Reason = ReasonRiskCeiling
		return a
	}
	if e.cfg.Risk.Warned(a.Risk.Index) {
		p := e.cfg.Risk.WarningPenalty
		a.Score = max(0, a.Score-p)
		a.RiskPenalty = -p
	}
	return a
}

// Finalize adds the form criteria, applies the temporal threshold and
// stability guard, and classifies.
func (e *Engine) Finalize(a Assessment, form model.Form) Verdict {
	if a.Reason != "" {
		return Verdict{Reason: a.Reason, Score: a.Score}
	}
	fc := e.cfg.Form
	formEntries := []model.ScoreEntry{
		{Name: CritTeamForm, Points: pointsIf(form.HomeGoals <= fc.TeamGoalsMax && form.AwayGoals <= fc.TeamGoalsMax, fc.TeamFormPoints)},
		{Name: CritH2H, Points: pointsIf(form.H2HGoals <= fc.H2HGoalsMax, fc.H2HPoints)},
	}
	total := a.Score
	for _, fe := range formEntries {
		total += fe.Points
	}
	total = min(max(0, total), e.cfg.Classify.MaxScore)

	th := threshold.Effective(a.Fixture.Minute, a.Risk.Index, e.cfg.Threshold)
	v := Verdict{Score: total, Threshold: th}
	if total < th.Effective {
		v.Reason = ReasonBelowThreshold
		return v
	}

	v.Stability = risk.StabilityIndex(total, th.Effective, a.Risk, e.cfg.Risk)
	confidence := classify.Confidence(total, e.cfg.Classify)
	cv := classify.Classify(confidence, e.cfg.Risk.Warned(a.Risk.Index), v.Stability, e.cfg.Classify)
	if !cv.Classification.Qualifies() {
		v.Reason = ReasonLowConfidence
		if cv.Unstable {
			v.Reason = ReasonUnstable
		}
		return v
	}

	breakdown := a.Scored.Breakdown
	breakdown.RiskPenalty = a.RiskPenalty
	breakdown.Form = formEntries
	breakdown.Total = total

	v.Reason = ReasonQualified
	v.Result = e.report(a, form, breakdown, th, v.Stability, confidence, cv.Classification)
	return v
}

// Evaluate runs the full pure pipeline, including the fixture and score
// prechecks.
func (e *Engine) Evaluate(in Input, form model.Form) Verdict {
	if r := e.Precheck(in.Fixture); r != "" {
		return Verdict{Reason: r}
	}
	if len(in.Stats) == 0 {
		return Verdict{Reason: ReasonNoStatistics}
	}
	return e.Finalize(e.Assess(in), form)
}

func pointsIf(ok bool, points int) int {
	if ok {
		return points
	}
	return 0
}
