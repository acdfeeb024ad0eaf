package model_test

import (
	"testing"

	model "github.com/okian/goalwatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScore(t *testing.T) {
	convey.Convey("Given a score", t, func() {
		s := model.Score{Home: 2, Away: 1}

		convey.So(s.String(), convey.ShouldEqual, "2-1")
		convey.So(s.Total(), convey.ShouldEqual, 3)
		convey.So(s.Level(), convey.ShouldBeFalse)
		convey.So(model.Score{}.Level(), convey.ShouldBeTrue)
	})
}

func TestFixtureSnapshot(t *testing.T) {
	convey.Convey("Given fixture snapshots", t, func() {
		convey.Convey("When both teams are known", func() {
			fx := model.FixtureSnapshot{ID: 1, Minute: 64, Home: model.Team{ID: 10, Name: "Alpha"}, Away: model.Team{ID: 11, Name: "Beta"}}

			convey.So(fx.HasTeams(), convey.ShouldBeTrue)
			convey.So(fx.Label(), convey.ShouldEqual, "Alpha vs Beta (64')")
		})

		convey.Convey("When a team id is missing", func() {
			fx := model.FixtureSnapshot{ID: 1, Home: model.Team{ID: 10}}

			convey.So(fx.HasTeams(), convey.ShouldBeFalse)
		})
	})
}

func TestEventLog(t *testing.T) {
	convey.Convey("Given an event log with gaps", t, func() {
		log := model.EventLog{
			model.At(12, "Goal", "Normal Goal"),
			{Type: "Card", Detail: "Yellow Card"},
			model.At(58, "subst", "Substitution 1"),
			model.At(41, "Card", "Yellow Card"),
		}

		convey.Convey("Then the last minute ignores untimed events and order", func() {
			convey.So(log.LastMinute(), convey.ShouldEqual, 58)
		})

		convey.Convey("Then MinuteOr falls back for untimed events", func() {
			convey.So(log[1].MinuteOr(0), convey.ShouldEqual, 0)
			convey.So(log[1].Timed(), convey.ShouldBeFalse)
			convey.So(log[0].MinuteOr(0), convey.ShouldEqual, 12)
		})

		convey.Convey("Then an empty log reports zero", func() {
			convey.So(model.EventLog{}.LastMinute(), convey.ShouldEqual, 0)
		})
	})
}

func TestClassification(t *testing.T) {
	convey.Convey("Given the classification ladder", t, func() {
		convey.So(model.StrongCandidate.Rank(), convey.ShouldBeGreaterThan, model.Candidate.Rank())
		convey.So(model.Candidate.Rank(), convey.ShouldBeGreaterThan, model.WeakCandidate.Rank())
		convey.So(model.WeakCandidate.Qualifies(), convey.ShouldBeTrue)
		convey.So(model.Reject.Qualifies(), convey.ShouldBeFalse)
		convey.So(model.Classification("bogus").Rank(), convey.ShouldEqual, 0)
	})
}

func TestScoreBreakdown(t *testing.T) {
	convey.Convey("Given a breakdown", t, func() {
		b := model.ScoreBreakdown{
			Criteria:  []model.ScoreEntry{{Name: "total_xg", Points: 3}, {Name: "draw_mode", Points: 0}},
			Penalties: []model.ScoreEntry{{Name: "penalty_xg_diff", Points: -2}},
			Form:      []model.ScoreEntry{{Name: "h2h", Points: 1}},
		}

		convey.So(b.Points("total_xg"), convey.ShouldEqual, 3)
		convey.So(b.Points("penalty_xg_diff"), convey.ShouldEqual, -2)
		convey.So(b.Points("h2h"), convey.ShouldEqual, 1)
		convey.So(b.Points("missing"), convey.ShouldEqual, 0)
		convey.So(b.Has("draw_mode"), convey.ShouldBeTrue)
		convey.So(b.Has("penalty_red_card"), convey.ShouldBeFalse)
	})
}
