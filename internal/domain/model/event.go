package model

// Event is one entry of a fixture's event feed.
// Minute is nil when the feed did not carry an elapsed time.
type Event struct {
	Minute *int   `json:"minute,omitempty"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
	TeamID int64  `json:"team_id,omitempty"`
}

// MinuteOr returns the event minute or def when it is unknown.
func (e Event) MinuteOr(def int) int {
	if e.Minute == nil {
		return def
	}
	return *e.Minute
}

// Timed reports whether the event carries an elapsed minute.
func (e Event) Timed() bool { return e.Minute != nil }

// EventLog is the chronological event feed for a fixture. It may have gaps.
type EventLog []Event

// LastMinute returns the latest known event minute, or 0 for an empty log.
func (l EventLog) LastMinute() int {
	last := 0
	for _, e := range l {
		if e.Minute != nil && *e.Minute > last {
			last = *e.Minute
		}
	}
	return last
}

// At is a helper for building timed events.
func At(minute int, typ, detail string) Event {
	m := minute
	return Event{Minute: &m, Type: typ, Detail: detail}
}

// PastMatch summarizes a finished fixture used for form and head-to-head.
// Goals are nil when the provider did not report them.
type PastMatch struct {
	HomeTeamID int64 `json:"home_team_id"`
	AwayTeamID int64 `json:"away_team_id"`
	HomeGoals  *int  `json:"home_goals,omitempty"`
	AwayGoals  *int  `json:"away_goals,omitempty"`
}

// Form carries the supplementary historical inputs for a fixture.
type Form struct {
	HomeGoals float64 `json:"home_goals"`
	AwayGoals float64 `json:"away_goals"`
	H2HGoals  float64 `json:"h2h_goals"`
}

// Snapshot bundles everything the engine needs for an offline evaluation.
type Snapshot struct {
	Fixture    FixtureSnapshot `json:"fixture" validate:"required"`
	Statistics StatisticsSet   `json:"statistics"`
	Events     EventLog        `json:"events"`
	Form       *Form           `json:"form,omitempty"`
}
