package extract

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/goalwatch/internal/domain/model"
)

// Shot weights used when the provider does not report expected goals.
const (
	OnTargetXG  = 0.35
	OffTargetXG = 0.05
	// SecondHalfShare is a fixed proportion of combined xG, not a measurement
	// from second-half shot data.
	SecondHalfShare = 0.35
)

// xgAliases lists the explicit expected-goals names in priority order,
// matched case-insensitively.
var xgAliases = []string{"expected_goals", "expected goals", "xg"}

// EstimateXG derives per-team, combined and second-half expected goals.
// Fewer than two teams yields zeros with Insufficient set.
func EstimateXG(set model.StatisticsSet) model.XG {
	if len(set) < 2 {
		return model.XG{Insufficient: true}
	}
	var (
		total float64
		teams [2]float64
	)
	for i, team := range set[:2] {
		v := teamXG(team)
		total += v
		teams[i] = Round(v, 2)
	}
	return model.XG{
		Combined:   Round(total, 2),
		SecondHalf: Round(total*SecondHalfShare, 2),
		Home:       teams[0],
		Away:       teams[1],
	}
}

func teamXG(team model.TeamStatistics) float64 {
	if v, ok := explicitXG(team.Values); ok {
		return v
	}
	onTarget, _ := ParseNumeric(team.Values[ShotsOnGoal])
	shots, _ := ParseNumeric(team.Values[TotalShots])
	offTarget := max(0, int(math.Round(shots))-int(math.Round(onTarget)))
	return math.Round(onTarget)*OnTargetXG + float64(offTarget)*OffTargetXG
}

// explicitXG returns the highest priority expected-goals value. Names that
// normalize to the same alias are tried in sorted order.
func explicitXG(values map[string]any) (float64, bool) {
	byAlias := make(map[string][]string, len(xgAliases))
	for name := range values {
		key := strings.ToLower(strings.TrimSpace(name))
		if slices.Contains(xgAliases, key) {
			byAlias[key] = append(byAlias[key], name)
		}
	}
	for _, alias := range xgAliases {
		names := byAlias[alias]
		slices.Sort(names)
		for _, name := range names {
			if v, ok := ParseNumeric(values[name]); ok {
				return v, true
			}
		}
	}
	return 0, false
}
