package timeline

import (
	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
)

// Slope window sizes, in minutes.
const (
	SlopeWindow    = 10
	slopeHalf      = 5
	slopeScale     = 0.1
	minSlopeEvents = 2
)

// Slope compares dangerous actions in the last five minutes with the five
// before. Positive means tempo is rising. Untimed events count as minute 0.
func Slope(events model.EventLog, minute int) float64 {
	if len(events) == 0 || minute < SlopeWindow {
		return 0
	}
	from := minute - SlopeWindow
	mid := minute - slopeHalf
	var recentCount, recent, prev int
	for _, e := range events {
		m := e.MinuteOr(0)
		if m < from {
			continue
		}
		recentCount++
		if !IsDangerous(e) {
			continue
		}
		if m >= mid {
			recent++
		} else {
			prev++
		}
	}
	if recentCount < minSlopeEvents {
		return 0
	}
	return float64(recent-prev) * slopeScale
}

// TempoConfig tunes the tempo summary.
type TempoConfig struct {
	WindowMinutes  int     `koanf:"window_minutes" validate:"gt=0"`
	PressureFactor float64 `koanf:"pressure_factor" validate:"gte=0"`
}

// DefaultTempoConfig returns the stock tempo window.
func DefaultTempoConfig() TempoConfig {
	return TempoConfig{WindowMinutes: 12, PressureFactor: 0.6}
}

// Tempo summarises dangerous actions, pressure and cards over the trailing
// window ending at minute.
func Tempo(events model.EventLog, minute int, cfg TempoConfig) model.TempoMetrics {
	if cfg.WindowMinutes <= 0 {
		cfg = DefaultTempoConfig()
	}
	start := minute - cfg.WindowMinutes
	dangerous := CountInWindow(events, start, minute, IsShot)
	pressure := CountInWindow(events, start, minute, IsPressure)
	cards := CountInWindow(events, start, minute, IsCard)
	window := max(1, minute-max(0, start))
	index := (float64(dangerous) + cfg.PressureFactor*float64(pressure)) / float64(window)
	return model.TempoMetrics{
		WindowMinutes:    window,
		DangerousActions: dangerous,
		PressureEvents:   pressure,
		CardsRecent:      cards,
		TempoIndex:       extract.Round(index, 3),
		XGSlope:          Slope(events, minute),
	}
}
