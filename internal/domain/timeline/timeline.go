// Package timeline counts event categories inside minute windows of a
// fixture's event feed and derives tempo signals from them.
package timeline

import (
	"strings"

	"github.com/okian/goalwatch/internal/domain/model"
)

// Predicate selects events of one category.
type Predicate func(model.Event) bool

// CountInWindow counts timed events in [start, end] matching pred.
// start is clamped to 0 and end to at least start.
func CountInWindow(events model.EventLog, start, end int, pred Predicate) int {
	start = max(0, start)
	end = max(start, end)
	n := 0
	for _, e := range events {
		if e.Minute == nil {
			continue
		}
		if m := *e.Minute; m >= start && m <= end && pred(e) {
			n++
		}
	}
	return n
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// IsShot matches shot attempts, goals included.
func IsShot(e model.Event) bool {
	typ, detail := lower(e.Type), lower(e.Detail)
	return strings.Contains(typ, "shot") ||
		strings.Contains(detail, "shot") ||
		strings.Contains(detail, "goal") ||
		typ == "goal"
}

// IsOnTarget matches goals, on-target shots and non-missed penalties.
func IsOnTarget(e model.Event) bool {
	typ, detail := lower(e.Type), lower(e.Detail)
	return strings.Contains(detail, "goal") ||
		strings.Contains(detail, "shot on target") ||
		typ == "goal" ||
		(strings.Contains(detail, "penalty") && !strings.Contains(detail, "missed"))
}

// IsCorner matches corner kicks.
func IsCorner(e model.Event) bool { return lower(e.Detail) == "corner" }

// IsCard matches any card.
func IsCard(e model.Event) bool { return strings.Contains(lower(e.Detail), "card") }

// IsRedCard matches red cards.
func IsRedCard(e model.Event) bool { return lower(e.Detail) == "red card" }

// IsPenalty matches penalty kick events.
func IsPenalty(e model.Event) bool { return strings.Contains(lower(e.Detail), "penalty") }

// IsPressure matches set-piece pressure: corners, dangerous attacks, free kicks.
func IsPressure(e model.Event) bool {
	d := lower(e.Detail)
	return d == "corner" || d == "dangerous attack" || strings.Contains(d, "free kick")
}

// IsDangerous matches the event types that drive the xG slope.
func IsDangerous(e model.Event) bool {
	switch e.Type {
	case "Goal", "Shot", "Var":
		return true
	}
	return false
}
