// Package model contains domain models passed between layers.
package model

import "strconv"

// Team identifies one side of a fixture.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// League identifies the competition a fixture belongs to.
type League struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Score is the current goal count for both sides.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Total returns the number of goals scored so far.
func (s Score) Total() int { return s.Home + s.Away }

// Level reports whether the teams are level.
func (s Score) Level() bool { return s.Home == s.Away }

// String renders the score as "home-away".
func (s Score) String() string {
	return strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
}

// FixtureSnapshot is the per-scan view of a live fixture. It is built by the
// caller each cycle and never mutated.
type FixtureSnapshot struct {
	ID     int64  `json:"id" validate:"required,gt=0"`
	Minute int    `json:"minute" validate:"gte=0,lte=130"`
	Home   Team   `json:"home"`
	Away   Team   `json:"away"`
	Score  Score  `json:"score"`
	League League `json:"league"`
}

// HasTeams reports whether both team identities are known.
func (f FixtureSnapshot) HasTeams() bool {
	return f.Home.ID != 0 && f.Away.ID != 0
}

// Label returns a short human readable description.
func (f FixtureSnapshot) Label() string {
	return f.Home.Name + " vs " + f.Away.Name + " (" + strconv.Itoa(f.Minute) + "')"
}
