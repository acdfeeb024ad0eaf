package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/goalwatch/pkg/resilience"
	. "github.com/smartystreets/goconvey/convey"
)

var errBoom = errors.New("boom")

func TestBreaker(t *testing.T) {
	Convey("Given a breaker that opens after two failures", t, func() {
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		var transitions []string
		b := resilience.New(
			resilience.Config{Enabled: true, FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenProbes: 1},
			resilience.WithClock(func() time.Time { return now }),
			resilience.WithStateChange(func(from, to resilience.State) {
				transitions = append(transitions, from.String()+"->"+to.String())
			}),
		)

		So(b.Allow(), ShouldBeNil)
		b.Failure()
		So(b.State(), ShouldEqual, resilience.StateClosed)

		Convey("When a success interrupts the failures", func() {
			b.Success()
			b.Failure()

			Convey("Then the count restarts", func() {
				So(b.State(), ShouldEqual, resilience.StateClosed)
			})
		})

		Convey("When the threshold is reached", func() {
			b.Failure()

			Convey("Then calls are rejected", func() {
				So(b.State(), ShouldEqual, resilience.StateOpen)
				So(errors.Is(b.Allow(), resilience.ErrOpen), ShouldBeTrue)
			})

			Convey("And the cool-down passes", func() {
				now = now.Add(6 * time.Second)

				So(b.State(), ShouldEqual, resilience.StateHalfOpen)
				So(b.Allow(), ShouldBeNil)

				Convey("Then only one probe is let through", func() {
					So(errors.Is(b.Allow(), resilience.ErrOpen), ShouldBeTrue)
				})

				Convey("Then a successful probe closes it", func() {
					b.Success()
					So(b.State(), ShouldEqual, resilience.StateClosed)
					So(transitions, ShouldResemble, []string{"closed->open", "open->half_open", "half_open->closed"})
				})

				Convey("Then a failed probe reopens it", func() {
					b.Failure()
					So(b.State(), ShouldEqual, resilience.StateOpen)
				})
			})
		})
	})

	Convey("Given a disabled breaker", t, func() {
		b := resilience.New(resilience.Config{Enabled: false, FailureThreshold: 1})
		for i := 0; i < 5; i++ {
			b.Failure()
		}
		So(b.Allow(), ShouldBeNil)
		So(b.State(), ShouldEqual, resilience.StateClosed)
	})
}

func TestBreakerDo(t *testing.T) {
	Convey("Given a breaker guarding a call", t, func() {
		b := resilience.New(resilience.Config{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute})

		Convey("When the caller cancels", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := b.Do(ctx, func(ctx context.Context) error { return ctx.Err() })

			Convey("Then the breaker stays closed", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(b.State(), ShouldEqual, resilience.StateClosed)
			})
		})

		Convey("When the dependency fails", func() {
			err := b.Do(context.Background(), func(context.Context) error { return errBoom })

			Convey("Then the error is returned and the breaker opens", func() {
				So(errors.Is(err, errBoom), ShouldBeTrue)
				So(b.State(), ShouldEqual, resilience.StateOpen)

				called := false
				err = b.Do(context.Background(), func(context.Context) error { called = true; return nil })
				So(errors.Is(err, resilience.ErrOpen), ShouldBeTrue)
				So(called, ShouldBeFalse)
			})
		})
	})
}

func TestConfigNormalize(t *testing.T) {
	Convey("Given a zero config", t, func() {
		c := resilience.Config{Enabled: true}.Normalize()

		So(c.FailureThreshold, ShouldEqual, 5)
		So(c.OpenTimeout, ShouldEqual, 30*time.Second)
		So(c.HalfOpenProbes, ShouldEqual, 1)
		So(c.Enabled, ShouldBeTrue)
	})
}
