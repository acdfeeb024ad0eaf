package engine

import (
	"github.com/okian/goalwatch/internal/domain/classify"
	"github.com/okian/goalwatch/internal/domain/risk"
	"github.com/okian/goalwatch/internal/domain/scoring"
	"github.com/okian/goalwatch/internal/domain/threshold"
)

// FormConfig tunes the team form and head-to-head criteria.
type FormConfig struct {
	TeamGoalsMax     float64 `koanf:"team_goals_max" validate:"gte=0"`
	H2HGoalsMax      float64 `koanf:"h2h_goals_max" validate:"gte=0"`
	TeamFormPoints   int     `koanf:"team_form_points" validate:"gte=0"`
	H2HPoints        int     `koanf:"h2h_points" validate:"gte=0"`
	NeutralTeamGoals float64 `koanf:"neutral_team_goals" validate:"gte=0"`
	NeutralH2HGoals  float64 `koanf:"neutral_h2h_goals" validate:"gte=0"`
	Matches          int     `koanf:"matches" validate:"gt=0,lte=20"`
}

// ScoreConfig lists the "home-away" score patterns eligible for analysis.
// An empty Allowed list admits every score that is not Excluded. Allowed
// patterns also admit their mirror.
type ScoreConfig struct {
	Allowed  []string `koanf:"allowed"`
	Excluded []string `koanf:"excluded"`
}

// Config is the complete engine tuning surface.
type Config struct {
	Scoring   scoring.Config   `koanf:"scoring"`
	Risk      risk.Config      `koanf:"risk"`
	Threshold threshold.Config `koanf:"threshold"`
	Classify  classify.Config  `koanf:"classify"`
	Form      FormConfig       `koanf:"form"`
	Scores    ScoreConfig      `koanf:"scores"`
	// CacheDeltaConfidence gates re-reporting on confidence movement when
	// above zero. Zero keeps the plain state-equality check.
	CacheDeltaConfidence float64 `koanf:"cache_delta_confidence" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		Scoring:   scoring.DefaultConfig(),
		Risk:      risk.DefaultConfig(),
		Threshold: threshold.DefaultConfig(),
		Classify:  classify.DefaultConfig(),
		Form: FormConfig{
			TeamGoalsMax:     1.3,
			H2HGoalsMax:      2.1,
			TeamFormPoints:   1,
			H2HPoints:        1,
			NeutralTeamGoals: 1.0,
			NeutralH2HGoals:  2.5,
			Matches:          5,
		},
		Scores: ScoreConfig{
			Allowed:  []string{"0-0", "1-0", "0-1", "1-1", "2-0", "0-2", "2-1", "1-2"},
			Excluded: []string{"2-2", "3-2", "2-3", "3-3"},
		},
	}
}
