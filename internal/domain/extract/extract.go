// Package extract pulls typed numeric values out of loosely typed team
// statistics and estimates expected goals from them.
package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/goalwatch/internal/domain/model"
)

// Statistic names as reported by the data provider.
const (
	TotalShots     = "Total Shots"
	ShotsOnGoal    = "Shots on Goal"
	BlockedShots   = "Blocked Shots"
	CornerKicks    = "Corner Kicks"
	BallPossession = "Ball Possession"
	PassAccuracy   = "Passes %"
	TotalPasses    = "Total passes"
	Fouls          = "Fouls"
)

// Side selects which team a lookup reads.
type Side int

// Lookup sides.
const (
	Both Side = iota
	Home
	Away
)

// ParseNumeric normalises a raw statistic value to a float.
// Missing, "N/A", empty and unparseable values report ok=false.
func ParseNumeric(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, "%", ""))
		if s == "" || strings.EqualFold(s, "n/a") {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	case interface{ Float64() (float64, error) }:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Lookup returns the named statistic for one side, or the sum over both
// teams when side is Both. ok is false when no usable value exists; callers
// pick their own fallback.
func Lookup(set model.StatisticsSet, name string, side Side) (float64, bool) {
	switch side {
	case Home, Away:
		idx := int(side) - 1
		if idx >= len(set) {
			return 0, false
		}
		return ParseNumeric(set[idx].Values[name])
	default:
		var (
			total float64
			found bool
		)
		for _, team := range set {
			if v, ok := ParseNumeric(team.Values[name]); ok {
				total += v
				found = true
			}
		}
		return total, found
	}
}

// ValueOr is Lookup with an explicit default for absent values.
func ValueOr(set model.StatisticsSet, name string, side Side, def float64) float64 {
	if v, ok := Lookup(set, name, side); ok {
		return v
	}
	return def
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
