package scoring

// Band awards Points when a metric is at or below Max.
type Band struct {
	Max    float64 `koanf:"max" json:"max"`
	Points int     `koanf:"points" json:"points"`
}

// Bands are checked in order; the first band whose Max is not exceeded wins.
// A metric above the last band scores zero.
type Bands []Band

// Score returns the banded points for v.
func (b Bands) Score(v float64) int {
	for _, band := range b {
		if v <= band.Max {
			return band.Points
		}
	}
	return 0
}

// MaxPoints returns the largest award in the band list.
func (b Bands) MaxPoints() int {
	best := 0
	for _, band := range b {
		best = max(best, band.Points)
	}
	return best
}

// MatchWide bands apply to full-match figures.
type MatchWide struct {
	CombinedXG     Bands `koanf:"combined_xg" validate:"required,dive"`
	TotalShots     Bands `koanf:"total_shots" validate:"required,dive"`
	ShotsOnTarget  Bands `koanf:"shots_on_target" validate:"required,dive"`
	Corners        Bands `koanf:"corners" validate:"required,dive"`
	PossessionDiff Bands `koanf:"possession_diff" validate:"required,dive"`
}

// SecondHalf bands apply to second-half and late-window figures.
type SecondHalf struct {
	XG             Bands `koanf:"xg" validate:"required,dive"`
	Shots          Bands `koanf:"shots" validate:"required,dive"`
	ShotsOnTarget  Bands `koanf:"shots_on_target" validate:"required,dive"`
	Last15Shots    Bands `koanf:"last_15min_shots" validate:"required,dive"`
	Corners        Bands `koanf:"corners" validate:"required,dive"`
	PossessionDiff Bands `koanf:"possession_diff" validate:"required,dive"`
}

// Momentum tunes the tempo dynamics group.
type Momentum struct {
	MaxSlope         float64 `koanf:"max_slope"`
	SlopePoints      int     `koanf:"slope_points" validate:"gte=0"`
	PassAccuracy     float64 `koanf:"pass_accuracy" validate:"gte=0,lte=100"`
	TurnoverPoints   int     `koanf:"turnover_points" validate:"gte=0"`
	MaxConversion    float64 `koanf:"max_conversion" validate:"gte=0,lte=1"`
	ConversionPoints int     `koanf:"conversion_points" validate:"gte=0"`
	MaxFouls         float64 `koanf:"max_fouls" validate:"gte=0"`
	MinPasses        float64 `koanf:"min_passes" validate:"gte=0"`
	SlowTempoPoints  int     `koanf:"slow_tempo_points" validate:"gte=0"`
}

// Psychology tunes the game-state group.
type Psychology struct {
	KillPossession   float64 `koanf:"kill_possession" validate:"gte=0,lte=100"`
	KillPassAccuracy float64 `koanf:"kill_pass_accuracy" validate:"gte=0,lte=100"`
	KillPoints       int     `koanf:"kill_points" validate:"gte=0"`
	DrawMaxShots     float64 `koanf:"draw_max_shots" validate:"gte=0"`
	DrawPoints       int     `koanf:"draw_points" validate:"gte=0"`
}

// Support tunes the supporting bonuses.
type Support struct {
	FalsePressureCorners   int     `koanf:"false_pressure_corners" validate:"gte=0"`
	FalsePressureOnTarget  int     `koanf:"false_pressure_on_target" validate:"gte=0"`
	FalsePressureXGPerShot float64 `koanf:"false_pressure_xg_per_shot" validate:"gte=0"`
	FalsePressurePoints    int     `koanf:"false_pressure_points" validate:"gte=0"`
	CompactPossessionDiff  float64 `koanf:"compact_possession_diff" validate:"gte=0"`
	CompactPoints          int     `koanf:"compact_points" validate:"gte=0"`
	BlockedRatio           float64 `koanf:"blocked_ratio" validate:"gte=0,lte=1"`
	BlockedPoints          int     `koanf:"blocked_points" validate:"gte=0"`
}

// Penalties are negative adjustments applied after the positive sum.
type Penalties struct {
	RedCard           int     `koanf:"red_card" validate:"lte=0"`
	RedCardActions    int     `koanf:"red_card_actions" validate:"gt=0"`
	XGDiff            int     `koanf:"xg_diff" validate:"lte=0"`
	MaxXGDiff         float64 `koanf:"max_xg_diff" validate:"gte=0"`
	SecondHalfPenalty int     `koanf:"second_half_penalty" validate:"lte=0"`
	SlopeRising       int     `koanf:"slope_rising" validate:"lte=0"`
	RisingSlope       float64 `koanf:"rising_slope"`
}

// Bonus controls the metadata tag for early goals followed by a dead tempo.
type Bonus struct {
	MinGoals        int     `koanf:"min_goals" validate:"gte=0"`
	MaxSecondHalfXG float64 `koanf:"max_second_half_xg" validate:"gte=0"`
}

// Config holds every scoring tunable.
type Config struct {
	MatchWide  MatchWide  `koanf:"match_wide"`
	SecondHalf SecondHalf `koanf:"second_half"`
	Momentum   Momentum   `koanf:"momentum"`
	Psychology Psychology `koanf:"psychology"`
	Support    Support    `koanf:"support"`
	Penalties  Penalties  `koanf:"penalties"`
	Bonus      Bonus      `koanf:"bonus"`
}

// DefaultConfig returns the stock scoring table.
func DefaultConfig() Config {
	return Config{
		MatchWide: MatchWide{
			CombinedXG:     Bands{{1.6, 3}, {1.9, 2}, {2.2, 1}},
			TotalShots:     Bands{{10, 2}, {14, 1}},
			ShotsOnTarget:  Bands{{3, 2}, {5, 1}},
			Corners:        Bands{{7, 1}},
			PossessionDiff: Bands{{18, 1}},
		},
		SecondHalf: SecondHalf{
			XG:             Bands{{0.35, 3}, {0.5, 2}, {0.6, 1}},
			Shots:          Bands{{3, 2}, {5, 1}},
			ShotsOnTarget:  Bands{{1, 2}, {2, 1}},
			Last15Shots:    Bands{{2, 2}, {3, 1}},
			Corners:        Bands{{3, 1}},
			PossessionDiff: Bands{{15, 1}},
		},
		Momentum: Momentum{
			MaxSlope:         0,
			SlopePoints:      2,
			PassAccuracy:     75,
			TurnoverPoints:   1,
			MaxConversion:    0.30,
			ConversionPoints: 1,
			MaxFouls:         15,
			MinPasses:        400,
			SlowTempoPoints:  1,
		},
		Psychology: Psychology{
			KillPossession:   55,
			KillPassAccuracy: 80,
			KillPoints:       2,
			DrawMaxShots:     10,
			DrawPoints:       1,
		},
		Support: Support{
			FalsePressureCorners:   2,
			FalsePressureOnTarget:  1,
			FalsePressureXGPerShot: 0.08,
			FalsePressurePoints:    1,
			CompactPossessionDiff:  15,
			CompactPoints:          1,
			BlockedRatio:           0.45,
			BlockedPoints:          1,
		},
		Penalties: Penalties{
			RedCard:           -3,
			RedCardActions:    3,
			XGDiff:            -2,
			MaxXGDiff:         1.3,
			SecondHalfPenalty: -4,
			SlopeRising:       -3,
			RisingSlope:       0.10,
		},
		Bonus: Bonus{MinGoals: 2, MaxSecondHalfXG: 0.5},
	}
}
