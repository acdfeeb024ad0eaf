// Package risk turns tempo signals into a bounded risk index and measures
// how comfortably a qualifying score clears its threshold.
package risk

import (
	"math"

	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/timeline"
)

// Caps normalise each tempo signal into [0,1].
type Caps struct {
	DangerousActions float64 `koanf:"dangerous_actions" validate:"gt=0"`
	PressureEvents   float64 `koanf:"pressure_events" validate:"gt=0"`
	Cards            float64 `koanf:"cards" validate:"gt=0"`
	Slope            float64 `koanf:"slope" validate:"gt=0"`
}

// Weights combine the normalised signals.
type Weights struct {
	Tempo    float64 `koanf:"tempo" validate:"gte=0"`
	Pressure float64 `koanf:"pressure" validate:"gte=0"`
	Cards    float64 `koanf:"cards" validate:"gte=0"`
	Slope    float64 `koanf:"slope" validate:"gte=0"`
}

// Stability tunes the stability index.
type Stability struct {
	Base        float64 `koanf:"base"`
	Normalizer  float64 `koanf:"normalizer" validate:"gt=0"`
	RiskWeight  float64 `koanf:"risk_weight" validate:"gte=0"`
	TempoWeight float64 `koanf:"tempo_weight" validate:"gte=0"`
	CardWeight  float64 `koanf:"card_weight" validate:"gte=0"`
}

// Config holds the risk and stability tunables.
type Config struct {
	Tempo          timeline.TempoConfig `koanf:"tempo"`
	Caps           Caps                 `koanf:"caps"`
	Weights        Weights              `koanf:"weights"`
	Ceiling        float64              `koanf:"ceiling" validate:"gt=0,lte=1"`
	Warning        float64              `koanf:"warning" validate:"gte=0,lte=1,ltefield=Ceiling"`
	WarningPenalty int                  `koanf:"warning_penalty" validate:"gte=0"`
	Stability      Stability            `koanf:"stability"`
}

// DefaultConfig returns the stock risk model.
func DefaultConfig() Config {
	return Config{
		Tempo:          timeline.DefaultTempoConfig(),
		Caps:           Caps{DangerousActions: 6, PressureEvents: 8, Cards: 3, Slope: 0.3},
		Weights:        Weights{Tempo: 0.35, Pressure: 0.25, Cards: 0.2, Slope: 0.2},
		Ceiling:        0.85,
		Warning:        0.6,
		WarningPenalty: 1,
		Stability: Stability{
			Base:        0.45,
			Normalizer:  6,
			RiskWeight:  0.35,
			TempoWeight: 0.5,
			CardWeight:  0.15,
		},
	}
}

// Assess summarises the tempo window and computes the risk index.
func Assess(events model.EventLog, minute int, cfg Config) model.RiskMetrics {
	tm := timeline.Tempo(events, minute, cfg.Tempo)
	return model.RiskMetrics{TempoMetrics: tm, Index: Index(tm, cfg)}
}

// Index is the weighted, clipped combination of the normalised tempo signals.
func Index(tm model.TempoMetrics, cfg Config) float64 {
	tempo := ratio(float64(tm.DangerousActions), math.Max(1, cfg.Caps.DangerousActions))
	pressure := ratio(float64(tm.PressureEvents), math.Max(1, cfg.Caps.PressureEvents))
	cards := ratio(float64(tm.CardsRecent), math.Max(1, cfg.Caps.Cards))
	slope := ratio(math.Max(0, tm.XGSlope), math.Max(0.01, cfg.Caps.Slope))

	w := cfg.Weights
	idx := tempo*w.Tempo + pressure*w.Pressure + cards*w.Cards + slope*w.Slope
	return extract.Round(extract.Clip(idx, 0, 1), 3)
}

func ratio(v, limit float64) float64 {
	return math.Min(1, v/limit)
}

// Rejected reports whether the index breaches the hard ceiling.
func (c Config) Rejected(index float64) bool { return index > c.Ceiling }

// Warned reports whether the index is above the warning threshold.
func (c Config) Warned(index float64) bool { return index > c.Warning }

// StabilityIndex measures the score cushion over the effective threshold,
// net of risk, tempo and card pressure.
func StabilityIndex(score, threshold int, rm model.RiskMetrics, cfg Config) model.StabilityResult {
	st := cfg.Stability
	margin := float64(score - threshold)
	normalized := extract.Clip(margin/math.Max(1, st.Normalizer), 0, 1)
	tempo := math.Max(0, rm.TempoIndex)
	cardPressure := float64(rm.CardsRecent) / math.Max(1, cfg.Caps.Cards)

	raw := st.Base + normalized -
		rm.Index*st.RiskWeight -
		tempo*st.TempoWeight -
		cardPressure*st.CardWeight

	return model.StabilityResult{
		Index:  extract.Clip(extract.Round(raw, 3), 0, 1),
		Margin: extract.Round(margin, 2),
	}
}
