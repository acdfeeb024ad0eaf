package model

import "time"

// Classification is the verdict attached to an analysed fixture.
type Classification string

// Classifications ordered by descending confidence demands.
const (
	StrongCandidate Classification = "strong_candidate"
	Candidate       Classification = "candidate"
	WeakCandidate   Classification = "weak_candidate"
	Reject          Classification = "reject"
)

// Rank orders classifications; a higher rank demands more confidence.
func (c Classification) Rank() int {
	switch c {
	case StrongCandidate:
		return 3
	case Candidate:
		return 2
	case WeakCandidate:
		return 1
	default:
		return 0
	}
}

// Qualifies reports whether the classification is reportable.
func (c Classification) Qualifies() bool { return c.Rank() > 0 }

// ScoreEntry is one named contribution to the score.
type ScoreEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ScoreBreakdown records every contribution to a fixture's score.
type ScoreBreakdown struct {
	Criteria     []ScoreEntry `json:"criteria"`
	Penalties    []ScoreEntry `json:"penalties,omitempty"`
	Raw          int          `json:"raw_score"`
	PenaltyTotal int          `json:"penalty_total"`
	Final        int          `json:"final_score"`
	RiskPenalty  int          `json:"risk_penalty"`
	Form         []ScoreEntry `json:"form,omitempty"`
	Total        int          `json:"total_score"`
}

// Points returns the points recorded under name across all sections.
func (b ScoreBreakdown) Points(name string) int {
	for _, list := range [][]ScoreEntry{b.Criteria, b.Penalties, b.Form} {
		for _, e := range list {
			if e.Name == name {
				return e.Points
			}
		}
	}
	return 0
}

// Has reports whether an entry with name was recorded.
func (b ScoreBreakdown) Has(name string) bool {
	for _, list := range [][]ScoreEntry{b.Criteria, b.Penalties, b.Form} {
		for _, e := range list {
			if e.Name == name {
				return true
			}
		}
	}
	return false
}

// TempoMetrics summarises recent tempo and pressure signals.
type TempoMetrics struct {
	WindowMinutes    int     `json:"window_minutes"`
	DangerousActions int     `json:"dangerous_actions"`
	PressureEvents   int     `json:"pressure_events"`
	CardsRecent      int     `json:"cards_recent"`
	TempoIndex       float64 `json:"tempo_index"`
	XGSlope          float64 `json:"xg_slope"`
}

// RiskMetrics is the tempo summary plus the composite risk index in [0,1].
type RiskMetrics struct {
	TempoMetrics
	Index float64 `json:"risk_index"`
}

// StabilityResult answers how comfortably a score clears the threshold.
type StabilityResult struct {
	Index  float64 `json:"stability_index"`
	Margin float64 `json:"stability_margin"`
}

// Adjustment is one recorded change to the qualification threshold.
type Adjustment struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

// Threshold is the base requirement and the effective value after relief.
type Threshold struct {
	Base        int          `json:"base"`
	Effective   int          `json:"effective"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`
}

// Has reports whether the named adjustment was applied.
func (t Threshold) Has(name string) bool {
	for _, a := range t.Adjustments {
		if a.Name == name {
			return true
		}
	}
	return false
}

// XG is the expected goals estimate for a fixture.
type XG struct {
	Combined     float64 `json:"combined"`
	SecondHalf   float64 `json:"second_half"`
	Home         float64 `json:"home"`
	Away         float64 `json:"away"`
	Insufficient bool    `json:"insufficient,omitempty"`
}

// ReportStats is the compact statistics block attached to an alert.
type ReportStats struct {
	XGTotal          float64 `json:"xg_total"`
	XGLast10         float64 `json:"xg_last10"`
	ShotsLast10      int     `json:"shots_last10"`
	OnTargetLast10   int     `json:"on_target_last10"`
	CornersLast10    int     `json:"corners_last10"`
	PossessionDiff   float64 `json:"possession_diff"`
	RiskIndex        float64 `json:"risk_index"`
	TempoIndex       float64 `json:"tempo_index"`
	DangerousActions int     `json:"dangerous_actions_last10"`
	PressureEvents   int     `json:"pressure_events_last10"`
	CardsLast10      int     `json:"cards_last10"`
}

// AnalysisResult is the record produced for a qualifying fixture.
type AnalysisResult struct {
	ID             string          `json:"id,omitempty"`
	FixtureID      int64           `json:"fixture_id"`
	HomeTeam       string          `json:"home_team"`
	AwayTeam       string          `json:"away_team"`
	Minute         int             `json:"minute"`
	Score          string          `json:"score"`
	League         string          `json:"league"`
	LeagueCountry  string          `json:"league_country"`
	XG             XG              `json:"xg"`
	TotalShots     int             `json:"total_shots"`
	ShotsOnTarget  int             `json:"shots_on_target"`
	SecondHalfShot int             `json:"second_half_shots"`
	Last15Shots    int             `json:"last_15min_shots"`
	TotalCorners   int             `json:"total_corners"`
	PossessionDiff float64         `json:"possession_diff"`
	HomeFormGoals  float64         `json:"home_form_goals"`
	AwayFormGoals  float64         `json:"away_form_goals"`
	H2HAvgGoals    float64         `json:"h2h_avg_goals"`
	MatchScore     int             `json:"match_score"`
	MaxScore       int             `json:"max_score"`
	Confidence     float64         `json:"confidence"`
	Classification Classification  `json:"classification"`
	Reasons        []string        `json:"reasons"`
	Risk           RiskMetrics     `json:"risk"`
	Stability      StabilityResult `json:"stability"`
	Breakdown      ScoreBreakdown  `json:"score_breakdown"`
	Threshold      Threshold       `json:"thresholds"`
	Stats          ReportStats     `json:"stats"`
	Tags           []string        `json:"tags"`
	AnalyzedAt     time.Time       `json:"analyzed_at,omitempty"`
}

// Match returns "Home vs Away".
func (r AnalysisResult) Match() string { return r.HomeTeam + " vs " + r.AwayTeam }
