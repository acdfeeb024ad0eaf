package model

// TeamStatistics holds the raw, loosely typed statistics for one team.
// Values may be numbers, numeric strings, percentages ("55%") or "N/A".
type TeamStatistics struct {
	Team   Team           `json:"team"`
	Values map[string]any `json:"values"`
}

// StatisticsSet is the ordered (home, away) pair of team statistics.
type StatisticsSet []TeamStatistics

// Complete reports whether both teams' statistics are present.
func (s StatisticsSet) Complete() bool { return len(s) >= 2 }
