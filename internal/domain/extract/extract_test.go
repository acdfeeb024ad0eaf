package extract_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/goalwatch/internal/domain/extract"
	"github.com/okian/goalwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func stats(home, away map[string]any) model.StatisticsSet {
	return model.StatisticsSet{
		{Team: model.Team{ID: 1, Name: "Home"}, Values: home},
		{Team: model.Team{ID: 2, Name: "Away"}, Values: away},
	}
}

func TestParseNumeric(t *testing.T) {
	Convey("Given raw statistic values", t, func() {
		cases := []struct {
			in   any
			want float64
			ok   bool
		}{
			{in: 7, want: 7, ok: true},
			{in: int64(12), want: 12, ok: true},
			{in: 3.5, want: 3.5, ok: true},
			{in: "55%", want: 55, ok: true},
			{in: " 81 % ", want: 81, ok: true},
			{in: "0.92", want: 0.92, ok: true},
			{in: json.Number("14"), want: 14, ok: true},
			{in: nil, ok: false},
			{in: "N/A", ok: false},
			{in: "", ok: false},
			{in: "%", ok: false},
			{in: "fast", ok: false},
			{in: true, ok: false},
			{in: math.NaN(), ok: false},
			{in: math.Inf(1), ok: false},
			{in: []int{1}, ok: false},
		}

		Convey("Then each value normalises or reports absent", func() {
			for _, c := range cases {
				got, ok := extract.ParseNumeric(c.in)
				So(ok, ShouldEqual, c.ok)
				if c.ok {
					So(got, ShouldEqual, c.want)
				} else {
					So(got, ShouldEqual, 0)
				}
			}
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a statistics set", t, func() {
		set := stats(
			map[string]any{extract.TotalShots: 6, extract.BallPossession: "58%", extract.Fouls: "N/A"},
			map[string]any{extract.TotalShots: "5", extract.BallPossession: "42%", extract.Fouls: nil},
		)

		Convey("When reading one side", func() {
			home, ok := extract.Lookup(set, extract.BallPossession, extract.Home)
			So(ok, ShouldBeTrue)
			So(home, ShouldEqual, 58)

			away, ok := extract.Lookup(set, extract.BallPossession, extract.Away)
			So(ok, ShouldBeTrue)
			So(away, ShouldEqual, 42)
		})

		Convey("When summing both sides", func() {
			total, ok := extract.Lookup(set, extract.TotalShots, extract.Both)
			So(ok, ShouldBeTrue)
			So(total, ShouldEqual, 11)
		})

		Convey("When the statistic is unparseable everywhere", func() {
			_, ok := extract.Lookup(set, extract.Fouls, extract.Both)
			So(ok, ShouldBeFalse)
			So(extract.ValueOr(set, extract.Fouls, extract.Both, 15), ShouldEqual, 15)
		})

		Convey("When the statistic is missing", func() {
			_, ok := extract.Lookup(set, extract.CornerKicks, extract.Home)
			So(ok, ShouldBeFalse)
		})

		Convey("When the away team is absent from the set", func() {
			_, ok := extract.Lookup(set[:1], extract.TotalShots, extract.Away)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestEstimateXG(t *testing.T) {
	Convey("Given shot statistics without explicit xG", t, func() {
		set := stats(
			map[string]any{extract.TotalShots: 6, extract.ShotsOnGoal: 2},
			map[string]any{extract.TotalShots: 5, extract.ShotsOnGoal: 1},
		)

		Convey("Then xG is estimated from shots", func() {
			xg := extract.EstimateXG(set)
			So(xg.Insufficient, ShouldBeFalse)
			So(xg.Home, ShouldAlmostEqual, 0.9, 0.001)
			So(xg.Away, ShouldAlmostEqual, 0.55, 0.001)
			So(xg.Combined, ShouldAlmostEqual, 1.45, 0.001)
			So(xg.SecondHalf, ShouldBeBetweenOrEqual, 0.50, 0.51)
		})
	})

	Convey("Given an explicit expected goals figure", t, func() {
		set := stats(
			map[string]any{"expected_goals": "1.24", extract.TotalShots: 20, extract.ShotsOnGoal: 9},
			map[string]any{"Expected Goals": 0.4},
		)

		Convey("Then the explicit value wins", func() {
			xg := extract.EstimateXG(set)
			So(xg.Home, ShouldAlmostEqual, 1.24, 0.001)
			So(xg.Away, ShouldAlmostEqual, 0.4, 0.001)
			So(xg.Combined, ShouldAlmostEqual, 1.64, 0.001)
		})
	})

	Convey("Given two expected goals aliases for the same team", t, func() {
		set := stats(
			map[string]any{"Expected Goals": "0.40", "xG": 1.9},
			map[string]any{"XG": 0.7, "xg": 0.2, extract.TotalShots: 9},
		)

		Convey("Then the alias priority decides on every run", func() {
			for i := 0; i < 200; i++ {
				xg := extract.EstimateXG(set)
				So(xg.Home, ShouldAlmostEqual, 0.4, 0.001)
				So(xg.Away, ShouldAlmostEqual, 0.7, 0.001)
				So(xg.Combined, ShouldAlmostEqual, 1.1, 0.001)
			}
		})
	})

	Convey("Given more shots on target than total shots", t, func() {
		set := stats(
			map[string]any{extract.TotalShots: 1, extract.ShotsOnGoal: 3},
			map[string]any{},
		)

		Convey("Then off-target shots clamp at zero", func() {
			xg := extract.EstimateXG(set)
			So(xg.Home, ShouldAlmostEqual, 1.05, 0.001)
			So(xg.Away, ShouldEqual, 0)
		})
	})

	Convey("Given fewer than two teams", t, func() {
		xg := extract.EstimateXG(stats(map[string]any{extract.TotalShots: 9}, nil)[:1])

		Convey("Then everything is zero and flagged insufficient", func() {
			So(xg.Insufficient, ShouldBeTrue)
			So(xg.Combined, ShouldEqual, 0)
			So(xg.SecondHalf, ShouldEqual, 0)
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given rounding helpers", t, func() {
		So(extract.Round(1.23456, 2), ShouldAlmostEqual, 1.23, 1e-9)
		So(extract.Round(0.4567, 3), ShouldAlmostEqual, 0.457, 1e-9)
		So(extract.Clip(1.7, 0, 1), ShouldEqual, 1)
		So(extract.Clip(-0.2, 0, 1), ShouldEqual, 0)
	})
}
