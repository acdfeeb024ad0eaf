package risk_test

import (
	"testing"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIndex(t *testing.T) {
	cfg := risk.DefaultConfig()

	Convey("Given a quiet tempo window", t, func() {
		So(risk.Index(model.TempoMetrics{}, cfg), ShouldEqual, 0)
	})

	Convey("Given a saturated tempo window", t, func() {
		tm := model.TempoMetrics{DangerousActions: 12, PressureEvents: 20, CardsRecent: 5, XGSlope: 0.9}

		Convey("Then every signal caps at one and the index at one", func() {
			So(risk.Index(tm, cfg), ShouldEqual, 1)
		})
	})

	Convey("Given a busy but not saturated window", t, func() {
		tm := model.TempoMetrics{DangerousActions: 6, PressureEvents: 8, CardsRecent: 3, XGSlope: 0.2}
		idx := risk.Index(tm, cfg)

		Convey("Then it breaches the hard ceiling", func() {
			So(idx, ShouldAlmostEqual, 0.933, 0.001)
			So(cfg.Rejected(idx), ShouldBeTrue)
		})
	})

	Convey("Given a falling slope", t, func() {
		tm := model.TempoMetrics{XGSlope: -0.4}

		Convey("Then negative slope contributes nothing", func() {
			So(risk.Index(tm, cfg), ShouldEqual, 0)
		})
	})

	Convey("Given zero caps", t, func() {
		zero := cfg
		zero.Caps = risk.Caps{}
		tm := model.TempoMetrics{CardsRecent: 1}

		Convey("Then caps are floored instead of dividing by zero", func() {
			So(risk.Index(tm, zero), ShouldAlmostEqual, 0.2, 1e-9)
		})
	})
}

func TestGates(t *testing.T) {
	Convey("Given the default gates", t, func() {
		cfg := risk.DefaultConfig()

		So(cfg.Rejected(0.92), ShouldBeTrue)
		So(cfg.Rejected(0.85), ShouldBeFalse)
		So(cfg.Warned(0.61), ShouldBeTrue)
		So(cfg.Warned(0.6), ShouldBeFalse)
	})
}

func TestAssess(t *testing.T) {
	Convey("Given a short event feed", t, func() {
		events := model.EventLog{
			model.At(60, "Shot", "Shot off target"),
			model.At(61, "Corner", "Corner"),
			model.At(64, "Card", "Yellow Card"),
			model.At(65, "Free Kick", "Free Kick"),
		}

		rm := risk.Assess(events, 66, risk.DefaultConfig())

		Convey("Then tempo and risk are summarised together", func() {
			So(rm.DangerousActions, ShouldEqual, 1)
			So(rm.PressureEvents, ShouldEqual, 2)
			So(rm.CardsRecent, ShouldEqual, 1)
			So(rm.XGSlope, ShouldAlmostEqual, -0.1, 1e-9)
			So(rm.Index, ShouldAlmostEqual, 0.1875, 0.001)
		})
	})
}

func TestStabilityIndex(t *testing.T) {
	cfg := risk.DefaultConfig()

	Convey("Given a comfortable margin in a calm match", t, func() {
		rm := model.RiskMetrics{TempoMetrics: model.TempoMetrics{TempoIndex: 0.1, CardsRecent: 1}, Index: 0.2}
		st := risk.StabilityIndex(16, 12, rm, cfg)

		So(st.Margin, ShouldEqual, 4)
		So(st.Index, ShouldAlmostEqual, 0.947, 0.001)
	})

	Convey("Given a near miss", t, func() {
		st := risk.StabilityIndex(11, 12, model.RiskMetrics{}, cfg)

		Convey("Then the margin is negative and the cushion is zero", func() {
			So(st.Margin, ShouldEqual, -1)
			So(st.Index, ShouldAlmostEqual, 0.45, 1e-9)
		})
	})

	Convey("Given a volatile match", t, func() {
		rm := model.RiskMetrics{TempoMetrics: model.TempoMetrics{TempoIndex: 1, CardsRecent: 3}, Index: 1}
		st := risk.StabilityIndex(12, 12, rm, cfg)

		Convey("Then the index clips at zero", func() {
			So(st.Index, ShouldEqual, 0)
		})
	})

	Convey("Given a huge margin", t, func() {
		st := risk.StabilityIndex(30, 9, model.RiskMetrics{}, cfg)

		Convey("Then the index clips at one", func() {
			So(st.Index, ShouldEqual, 1)
			So(st.Margin, ShouldEqual, 21)
		})
	})
}
