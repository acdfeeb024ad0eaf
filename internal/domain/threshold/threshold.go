// Package threshold relaxes the qualification requirement as a match ages
// and when it is calm.
package threshold

import "github.com/okian/goalwatch/internal/domain/model"

// Adjustment names recorded on the threshold.
const (
	Minute80   = "minute_80"
	Minute70   = "minute_70"
	LateWindow = "late_window"
	LowRisk    = "low_risk"
)

// Config holds the threshold tunables. Reliefs are positive point amounts.
type Config struct {
	Base             int     `koanf:"base" validate:"gt=0"`
	Minute70         int     `koanf:"minute_70" validate:"gte=0"`
	Minute80         int     `koanf:"minute_80" validate:"gte=0"`
	LateWindowMinute int     `koanf:"late_window_minute" validate:"gte=0"`
	LateWindowRelief int     `koanf:"late_window_relief" validate:"gte=0"`
	LowRiskBoundary  float64 `koanf:"low_risk_boundary" validate:"gte=0,lte=1"`
	LowRiskRelief    int     `koanf:"low_risk_relief" validate:"gte=0"`
	Floor            int     `koanf:"floor" validate:"gte=0,ltefield=Base"`
}

// DefaultConfig returns the stock threshold schedule.
func DefaultConfig() Config {
	return Config{
		Base:             12,
		Minute70:         1,
		Minute80:         2,
		LateWindowMinute: 75,
		LateWindowRelief: 1,
		LowRiskBoundary:  0.25,
		LowRiskRelief:    1,
		Floor:            9,
	}
}

// Effective applies the minute and risk reliefs to the base requirement.
// The minute-70 and minute-80 reliefs are exclusive. Past minute 80 the
// larger of the two applies, so relief never shrinks as the match ages.
func Effective(minute int, riskIndex float64, cfg Config) model.Threshold {
	t := model.Threshold{Base: cfg.Base, Effective: cfg.Base}
	relieve := func(name string, amount int) {
		if amount == 0 {
			return
		}
		t.Effective -= amount
		t.Adjustments = append(t.Adjustments, model.Adjustment{Name: name, Delta: -amount})
	}

	switch {
	case minute >= 80 && cfg.Minute80 >= cfg.Minute70:
		relieve(Minute80, cfg.Minute80)
	case minute >= 70:
		relieve(Minute70, cfg.Minute70)
	}
	if minute >= cfg.LateWindowMinute {
		relieve(LateWindow, cfg.LateWindowRelief)
	}
	if riskIndex <= cfg.LowRiskBoundary {
		relieve(LowRisk, cfg.LowRiskRelief)
	}

	t.Effective = max(cfg.Floor, t.Effective)
	return t
}
