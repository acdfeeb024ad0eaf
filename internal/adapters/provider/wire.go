package provider

import (
	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/okian/goalwatch/internal/domain/model"
)

// envelope is the API-Football v3 response wrapper. Errors is either an
// empty list or an object keyed by error kind.
type envelope[T any] struct {
	Errors   any `json:"errors"`
	Results  int `json:"results"`
	Response T   `json:"response"`
}

type wireTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wireGoals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type wireFixture struct {
	Fixture struct {
		ID     int64 `json:"id"`
		Status struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"league"`
	Teams struct {
		Home wireTeam `json:"home"`
		Away wireTeam `json:"away"`
	} `json:"teams"`
	Goals wireGoals `json:"goals"`
}

type wireStatistics struct {
	Team       wireTeam `json:"team"`
	Statistics []struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	} `json:"statistics"`
}

type wireEvent struct {
	Time struct {
		Elapsed *int `json:"elapsed"`
		Extra   *int `json:"extra"`
	} `json:"time"`
	Team   wireTeam `json:"team"`
	Type   string   `json:"type"`
	Detail string   `json:"detail"`
}

func decode[T any](raw []byte) (T, error) {
	var env envelope[T]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return env.Response, crerr.Mark(crerr.Wrap(err, "decode provider payload"), ErrInvalidResponse)
	}
	if hasErrors(env.Errors) {
		return env.Response, crerr.Mark(crerr.Newf("provider reported errors: %v", env.Errors), ErrProviderUnavailable)
	}
	return env.Response, nil
}

func hasErrors(v any) bool {
	switch e := v.(type) {
	case nil:
		return false
	case []any:
		return len(e) > 0
	case map[string]any:
		return len(e) > 0
	case string:
		return e != ""
	default:
		return true
	}
}

func goals(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (w wireFixture) snapshot() model.FixtureSnapshot {
	minute := 0
	if w.Fixture.Status.Elapsed != nil {
		minute = *w.Fixture.Status.Elapsed
	}
	return model.FixtureSnapshot{
		ID:     w.Fixture.ID,
		Minute: minute,
		Home:   model.Team{ID: w.Teams.Home.ID, Name: w.Teams.Home.Name},
		Away:   model.Team{ID: w.Teams.Away.ID, Name: w.Teams.Away.Name},
		Score:  model.Score{Home: goals(w.Goals.Home), Away: goals(w.Goals.Away)},
		League: model.League{ID: w.League.ID, Name: w.League.Name, Country: w.League.Country},
	}
}

func (w wireFixture) pastMatch() model.PastMatch {
	return model.PastMatch{
		HomeTeamID: w.Teams.Home.ID,
		AwayTeamID: w.Teams.Away.ID,
		HomeGoals:  w.Goals.Home,
		AwayGoals:  w.Goals.Away,
	}
}

func (w wireStatistics) teamStatistics() model.TeamStatistics {
	values := make(map[string]any, len(w.Statistics))
	for _, s := range w.Statistics {
		values[s.Type] = s.Value
	}
	return model.TeamStatistics{
		Team:   model.Team{ID: w.Team.ID, Name: w.Team.Name},
		Values: values,
	}
}

func (w wireEvent) event() model.Event {
	return model.Event{
		Minute: w.Time.Elapsed,
		Type:   w.Type,
		Detail: w.Detail,
		TeamID: w.Team.ID,
	}
}
