// Package scoring converts extracted match metrics and event-window counts
// into a bounded point total with an auditable breakdown.
package scoring

import (
	"math"
	"strings"

	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/timeline"
)

// Criterion and penalty names recorded in the breakdown.
const (
	CritTotalXG            = "total_xg"
	CritTotalShots         = "total_shots"
	CritShotsOnTarget      = "shots_on_target"
	CritCorners            = "corners"
	CritPossessionDiff     = "possession_diff"
	CritSecondHalfXG       = "second_half_xg"
	CritSecondHalfShots    = "second_half_shots"
	CritSecondHalfSOT      = "second_half_sot"
	CritLast15Shots        = "last_15min_shots"
	CritSecondHalfCorners  = "second_half_corners"
	CritSecondHalfPossDiff = "second_half_poss_diff"
	CritXGSlope            = "xg_slope"
	CritTurnoversDown      = "turnovers_down"
	CritConversionDown     = "attack_conversion_down"
	CritFoulsPassDown      = "fouls_pass_down"
	CritLeadKillMode       = "lead_kill_mode"
	CritDrawMode           = "draw_mode"
	CritFalsePressure      = "false_pressure"
	CritCompactDefense     = "compact_defense"
	CritShotQuality        = "shot_quality_collapse"

	PenaltyRedCard     = "penalty_red_card"
	PenaltyXGDiff      = "penalty_xg_diff"
	PenaltySecondHalf  = "penalty_2h_penalty"
	PenaltySlopeRising = "penalty_xg_slope_rising"
)

// BonusEarlyGoals is attached when goals came early and the tempo died.
const BonusEarlyGoals = "early goals, dead tempo"

// Defaults substituted for absent statistics.
const (
	defaultPossession   = 50
	defaultPassAccuracy = 70
	defaultPasses       = 1
)

// Proportional estimates used only when the event log is empty.
const (
	SecondHalfShotShare     = 0.45
	SecondHalfOnTargetShare = 0.5
	Last15ShotShare         = 0.2
	SecondHalfCornerShare   = 0.5
)

// Window boundaries in minutes.
const (
	secondHalfStart = 45
	last15Window    = 15
)

// Input is everything the scorer reads. XG comes from extract.EstimateXG.
type Input struct {
	Stats  model.StatisticsSet
	Events model.EventLog
	Score  model.Score
	Minute int
	XG     model.XG
}

// Counts are the intermediate figures the scorer derived, reused for reporting.
type Counts struct {
	TotalShots         int
	ShotsOnTarget      int
	Corners            int
	PossessionDiff     float64
	SecondHalfShots    int
	SecondHalfOnTarget int
	Last15Shots        int
	SecondHalfCorners  int
	XGSlope            float64
}

// Result is the scored outcome of one fixture.
type Result struct {
	Breakdown model.ScoreBreakdown
	Final     int
	BonusTag  string
	Counts    Counts
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithConfig replaces the scoring table.
func WithConfig(cfg Config) Option {
	return func(s *Scorer) {
		s.cfg = cfg
	}
}

// Scorer applies the weighted multi-criterion table. It is pure and safe for
// concurrent use.
type Scorer struct {
	cfg Config
}

// New creates a Scorer with the default table unless overridden.
func New(opts ...Option) *Scorer {
	s := &Scorer{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the scoring table in use.
func (s *Scorer) Config() Config { return s.cfg }

type tally struct {
	criteria  []model.ScoreEntry
	penalties []model.ScoreEntry
	raw       int
	penalty   int
}

func (t *tally) add(name string, points int) {
	t.criteria = append(t.criteria, model.ScoreEntry{Name: name, Points: points})
	t.raw += points
}

func (t *tally) flag(name string, ok bool, points int) {
	if !ok {
		points = 0
	}
	t.add(name, points)
}

func (t *tally) penalize(name string, ok bool, points int) {
	if !ok {
		return
	}
	t.penalties = append(t.penalties, model.ScoreEntry{Name: name, Points: points})
	t.penalty += points
}

// Score evaluates every criterion and penalty. With fewer than two teams'
// statistics it returns a zero result.
func (s *Scorer) Score(in Input) Result {
	if !in.Stats.Complete() {
		return Result{Breakdown: model.ScoreBreakdown{}}
	}
	c := s.counts(in)
	cfg := s.cfg
	var t tally

	mw := cfg.MatchWide
	t.add(CritTotalXG, mw.CombinedXG.Score(in.XG.Combined))
	t.add(CritTotalShots, mw.TotalShots.Score(float64(c.TotalShots)))
	t.add(CritShotsOnTarget, mw.ShotsOnTarget.Score(float64(c.ShotsOnTarget)))
	t.add(CritCorners, mw.Corners.Score(float64(c.Corners)))
	t.add(CritPossessionDiff, mw.PossessionDiff.Score(c.PossessionDiff))

	sh := cfg.SecondHalf
	t.add(CritSecondHalfXG, sh.XG.Score(in.XG.SecondHalf))
	t.add(CritSecondHalfShots, sh.Shots.Score(float64(c.SecondHalfShots)))
	t.add(CritSecondHalfSOT, sh.ShotsOnTarget.Score(float64(c.SecondHalfOnTarget)))
	t.add(CritLast15Shots, sh.Last15Shots.Score(float64(c.Last15Shots)))
	t.add(CritSecondHalfCorners, sh.Corners.Score(float64(c.SecondHalfCorners)))
	t.add(CritSecondHalfPossDiff, sh.PossessionDiff.Score(c.PossessionDiff))

	mo := cfg.Momentum
	t.flag(CritXGSlope, c.XGSlope <= mo.MaxSlope, mo.SlopePoints)
	t.flag(CritTurnoversDown, s.turnoversDown(in.Stats), mo.TurnoverPoints)
	t.flag(CritConversionDown, s.conversionDown(c), mo.ConversionPoints)
	t.flag(CritFoulsPassDown, s.slowTempo(in.Stats), mo.SlowTempoPoints)

	ps := cfg.Psychology
	t.flag(CritLeadKillMode, s.killMode(in.Stats, in.Score), ps.KillPoints)
	t.flag(CritDrawMode, in.Score.Level() && float64(c.TotalShots) < ps.DrawMaxShots, ps.DrawPoints)

	su := cfg.Support
	t.flag(CritFalsePressure, s.falsePressure(in.Events, in.Minute), su.FalsePressurePoints)
	t.flag(CritCompactDefense, c.PossessionDiff <= su.CompactPossessionDiff, su.CompactPoints)
	t.flag(CritShotQuality, s.shotQualityCollapse(in.Stats, c), su.BlockedPoints)

	pe := cfg.Penalties
	t.penalize(PenaltyRedCard, s.redCardPressure(in.Events), pe.RedCard)
	t.penalize(PenaltyXGDiff, math.Abs(in.XG.Home-in.XG.Away) > pe.MaxXGDiff, pe.XGDiff)
	t.penalize(PenaltySecondHalf, secondHalfPenalty(in.Events), pe.SecondHalfPenalty)
	t.penalize(PenaltySlopeRising, c.XGSlope > pe.RisingSlope, pe.SlopeRising)

	final := max(0, t.raw+t.penalty)
	res := Result{
		Breakdown: model.ScoreBreakdown{
			Criteria:     t.criteria,
			Penalties:    t.penalties,
			Raw:          t.raw,
			PenaltyTotal: t.penalty,
			Final:        final,
			Total:        final,
		},
		Final:  final,
		Counts: c,
	}
	if in.Score.Total() >= cfg.Bonus.MinGoals && in.XG.SecondHalf <= cfg.Bonus.MaxSecondHalfXG {
		res.BonusTag = BonusEarlyGoals
	}
	return res
}

// counts derives every figure the table bands on. Empty event logs fall back
// to fixed shares of the match totals for the second-half and late windows.
func (s *Scorer) counts(in Input) Counts {
	var c Counts
	c.TotalShots = int(extract.ValueOr(in.Stats, extract.TotalShots, extract.Both, 0))
	c.ShotsOnTarget = int(extract.ValueOr(in.Stats, extract.ShotsOnGoal, extract.Both, 0))
	c.Corners = int(extract.ValueOr(in.Stats, extract.CornerKicks, extract.Both, 0))
	c.PossessionDiff = PossessionDiff(in.Stats)
	c.XGSlope = timeline.Slope(in.Events, in.Minute)

	if len(in.Events) == 0 {
		c.SecondHalfShots = share(c.TotalShots, SecondHalfShotShare)
		c.SecondHalfOnTarget = share(c.ShotsOnTarget, SecondHalfOnTargetShare)
		c.Last15Shots = share(c.TotalShots, Last15ShotShare)
		c.SecondHalfCorners = share(c.Corners, SecondHalfCornerShare)
		return c
	}
	c.SecondHalfShots = timeline.CountInWindow(in.Events, secondHalfStart, in.Minute, timeline.IsShot)
	c.SecondHalfOnTarget = timeline.CountInWindow(in.Events, secondHalfStart, in.Minute, timeline.IsOnTarget)
	c.Last15Shots = timeline.CountInWindow(in.Events, in.Minute-last15Window, in.Minute, timeline.IsShot)
	c.SecondHalfCorners = timeline.CountInWindow(in.Events, secondHalfStart, in.Minute, timeline.IsCorner)
	return c
}

func share(total int, ratio float64) int {
	return int(float64(total) * ratio)
}

// PossessionDiff is the absolute possession gap, assuming 50% per side when a
// figure is missing.
func PossessionDiff(stats model.StatisticsSet) float64 {
	home := extract.ValueOr(stats, extract.BallPossession, extract.Home, defaultPossession)
	away := extract.ValueOr(stats, extract.BallPossession, extract.Away, defaultPossession)
	return math.Abs(home - away)
}

func (s *Scorer) turnoversDown(stats model.StatisticsSet) bool {
	home := extract.ValueOr(stats, extract.PassAccuracy, extract.Home, defaultPassAccuracy)
	away := extract.ValueOr(stats, extract.PassAccuracy, extract.Away, defaultPassAccuracy)
	return (home+away)/2 > s.cfg.Momentum.PassAccuracy
}

func (s *Scorer) conversionDown(c Counts) bool {
	if c.TotalShots == 0 {
		return true
	}
	return float64(c.ShotsOnTarget)/float64(c.TotalShots) < s.cfg.Momentum.MaxConversion
}

func (s *Scorer) slowTempo(stats model.StatisticsSet) bool {
	fouls := extract.ValueOr(stats, extract.Fouls, extract.Both, 0)
	passes := extract.ValueOr(stats, extract.TotalPasses, extract.Both, defaultPasses)
	return fouls < s.cfg.Momentum.MaxFouls && passes > s.cfg.Momentum.MinPasses
}

func (s *Scorer) killMode(stats model.StatisticsSet, score model.Score) bool {
	if score.Level() {
		return false
	}
	side := extract.Home
	if score.Away > score.Home {
		side = extract.Away
	}
	possession := extract.ValueOr(stats, extract.BallPossession, side, defaultPossession)
	passAcc := extract.ValueOr(stats, extract.PassAccuracy, side, defaultPassAccuracy)
	return possession > s.cfg.Psychology.KillPossession && passAcc > s.cfg.Psychology.KillPassAccuracy
}

// falsePressure looks for corners without quality chances in the last ten
// minutes.
func (s *Scorer) falsePressure(events model.EventLog, minute int) bool {
	if len(events) == 0 || minute < timeline.SlopeWindow {
		return false
	}
	su := s.cfg.Support
	from := minute - timeline.SlopeWindow
	var corners, onTarget, shots int
	for _, e := range events {
		if e.MinuteOr(0) < from {
			continue
		}
		switch {
		case strings.EqualFold(e.Detail, "Corner"):
			corners++
		case strings.EqualFold(e.Detail, "Normal Goal"), strings.EqualFold(e.Detail, "Shot on target"):
			onTarget++
		}
		if strings.Contains(e.Type, "Shot") {
			shots++
		}
	}
	if corners < su.FalsePressureCorners || onTarget > su.FalsePressureOnTarget || shots == 0 {
		return false
	}
	perShot := float64(onTarget) * extract.OnTargetXG / float64(shots)
	return perShot <= su.FalsePressureXGPerShot
}

func (s *Scorer) shotQualityCollapse(stats model.StatisticsSet, c Counts) bool {
	if c.TotalShots == 0 {
		return false
	}
	blocked := extract.ValueOr(stats, extract.BlockedShots, extract.Both, 0)
	return blocked/float64(c.TotalShots) >= s.cfg.Support.BlockedRatio
}

// redCardPressure reports whether the side reduced to ten men is still being
// attacked: enough shots or goals after the last red card.
func (s *Scorer) redCardPressure(events model.EventLog) bool {
	last := -1
	for i, e := range events {
		if timeline.IsRedCard(e) {
			last = i
		}
	}
	if last < 0 {
		return false
	}
	redMinute := events[last].MinuteOr(0)
	actions := 0
	for _, e := range events {
		if e.MinuteOr(0) > redMinute && (e.Type == "Shot" || e.Type == "Goal") {
			actions++
		}
	}
	return actions >= s.cfg.Penalties.RedCardActions
}

func secondHalfPenalty(events model.EventLog) bool {
	for _, e := range events {
		if timeline.IsPenalty(e) && e.MinuteOr(0) >= secondHalfStart {
			return true
		}
	}
	return false
}
