package engine

import (
	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
)

// Neutral returns the form inputs used when history is unavailable.
func (c FormConfig) Neutral() model.Form {
	return model.Form{
		HomeGoals: c.NeutralTeamGoals,
		AwayGoals: c.NeutralTeamGoals,
		H2HGoals:  c.NeutralH2HGoals,
	}
}

// TeamFormGoals averages the goals teamID scored over its recent matches.
// Matches with unknown goals still count toward the denominator; a zero
// total falls back to the neutral figure.
func TeamFormGoals(teamID int64, matches []model.PastMatch, cfg FormConfig) float64 {
	if len(matches) == 0 {
		return cfg.NeutralTeamGoals
	}
	total := 0
	for _, m := range matches {
		goals := m.AwayGoals
		if m.HomeTeamID == teamID {
			goals = m.HomeGoals
		}
		if goals != nil {
			total += *goals
		}
	}
	if total == 0 {
		return cfg.NeutralTeamGoals
	}
	return extract.Round(float64(total)/float64(len(matches)), 2)
}

// H2HAverage averages total goals over meetings with both scores known.
func H2HAverage(matches []model.PastMatch, cfg FormConfig) float64 {
	total, valid := 0, 0
	for _, m := range matches {
		if m.HomeGoals == nil || m.AwayGoals == nil {
			continue
		}
		total += *m.HomeGoals + *m.AwayGoals
		valid++
	}
	if valid == 0 {
		return cfg.NeutralH2HGoals
	}
	return extract.Round(float64(total)/float64(valid), 2)
}
