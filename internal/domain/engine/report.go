package engine

import (
	"math"

	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/scoring"
	"github.com/okian/goalwatch/internal/domain/threshold"
	"github.com/okian/goalwatch/internal/domain/timeline"
)

// Human readable reason tags.
const (
	TagTempoCollapse    = "tempo collapse"
	TagKillMode         = "kill-mode"
	TagFalsePressure    = "false pressure"
	TagDrawAcceptance   = "draw acceptance"
	TagEarlyGoals       = "early goals dead tempo"
	TagTempoStabilized  = "tempo stabilized"
	TagTempoCaution     = "tempo caution"
	TagStabilityCushion = "stability cushion"
	TagMonitorPressure  = "monitor pressure"
	TagLateWindow       = "late window tolerance"
	TagLowRisk          = "low-risk cushion"
)

const (
	stabilizedRisk = 0.35
	reportWindow   = 10
)

// Shares of match totals reported for the last ten minutes when the event
// log is empty.
const (
	Last10ShotShare     = 0.15
	Last10OnTargetShare = 0.2
	Last10CornerShare   = 0.2
)

func (e *Engine) reasons(a Assessment, b model.ScoreBreakdown, th model.Threshold, st model.StabilityResult) []string {
	var out []string
	add := func(ok bool, tag string) {
		if ok {
			out = append(out, tag)
		}
	}
	add(b.Points(scoring.CritXGSlope) > 0, TagTempoCollapse)
	add(b.Points(scoring.CritLeadKillMode) > 0, TagKillMode)
	add(b.Points(scoring.CritFalsePressure) > 0, TagFalsePressure)
	add(b.Points(scoring.CritDrawMode) > 0, TagDrawAcceptance)
	add(a.Scored.BonusTag != "", TagEarlyGoals)

	switch {
	case a.Risk.Index <= stabilizedRisk:
		out = append(out, TagTempoStabilized)
	case e.cfg.Risk.Warned(a.Risk.Index):
		out = append(out, TagTempoCaution)
	}
	switch {
	case st.Margin >= e.cfg.Classify.StrongMargin:
		out = append(out, TagStabilityCushion)
	case st.Index < e.cfg.Classify.MinStability+0.1:
		out = append(out, TagMonitorPressure)
	}

	add(th.Has(threshold.LateWindow), TagLateWindow)
	add(th.Has(threshold.LowRisk), TagLowRisk)
	return out
}

func (e *Engine) reportStats(a Assessment) model.ReportStats {
	c := a.Scored.Counts
	minute := a.Fixture.Minute
	rs := model.ReportStats{
		XGTotal:          a.XG.Combined,
		XGLast10:         extract.Round(math.Abs(a.Risk.XGSlope), 2),
		PossessionDiff:   c.PossessionDiff,
		RiskIndex:        a.Risk.Index,
		TempoIndex:       a.Risk.TempoIndex,
		DangerousActions: a.Risk.DangerousActions,
		PressureEvents:   a.Risk.PressureEvents,
		CardsLast10:      a.Risk.CardsRecent,
	}
	if len(a.Events) == 0 {
		rs.ShotsLast10 = int(float64(c.TotalShots) * Last10ShotShare)
		rs.OnTargetLast10 = int(float64(c.ShotsOnTarget) * Last10OnTargetShare)
		rs.CornersLast10 = int(float64(c.Corners) * Last10CornerShare)
		return rs
	}
	rs.ShotsLast10 = timeline.CountInWindow(a.Events, minute-reportWindow, minute, timeline.IsShot)
	rs.OnTargetLast10 = timeline.CountInWindow(a.Events, minute-reportWindow, minute, timeline.IsOnTarget)
	rs.CornersLast10 = timeline.CountInWindow(a.Events, minute-reportWindow, minute, timeline.IsCorner)
	return rs
}

func (e *Engine) report(
	a Assessment,
	form model.Form,
	b model.ScoreBreakdown,
	th model.Threshold,
	st model.StabilityResult,
	confidence float64,
	class model.Classification,
) *model.AnalysisResult {
	fx := a.Fixture
	c := a.Scored.Counts
	tags := []string{}
	if a.Scored.BonusTag != "" {
		tags = append(tags, a.Scored.BonusTag)
	}
	return &model.AnalysisResult{
		FixtureID:      fx.ID,
		HomeTeam:       nameOr(fx.Home.Name, "Unknown"),
		AwayTeam:       nameOr(fx.Away.Name, "Unknown"),
		Minute:         fx.Minute,
		Score:          fx.Score.String(),
		League:         nameOr(fx.League.Name, "Unknown"),
		LeagueCountry:  nameOr(fx.League.Country, "N/A"),
		XG:             a.XG,
		TotalShots:     c.TotalShots,
		ShotsOnTarget:  c.ShotsOnTarget,
		SecondHalfShot: c.SecondHalfShots,
		Last15Shots:    c.Last15Shots,
		TotalCorners:   c.Corners,
		PossessionDiff: c.PossessionDiff,
		HomeFormGoals:  form.HomeGoals,
		AwayFormGoals:  form.AwayGoals,
		H2HAvgGoals:    form.H2HGoals,
		MatchScore:     b.Total,
		MaxScore:       e.cfg.Classify.MaxScore,
		Confidence:     extract.Round(confidence, 2),
		Classification: class,
		Reasons:        e.reasons(a, b, th, st),
		Risk:           a.Risk,
		Stability:      st,
		Breakdown:      b,
		Threshold:      th,
		Stats:          e.reportStats(a),
		Tags:           tags,
	}
}

func nameOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
