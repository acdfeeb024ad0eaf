package notify

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

// Dispatcher fans an alert out to every sink concurrently. Delivery succeeds
// when at least one sink accepts it.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each delivery attempt.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(dp *Dispatcher) {
		if l != nil {
			dp.log = l
		}
	}
}

// NewDispatcher creates a dispatcher. With no sinks, alerts go to a LogSink.
func NewDispatcher(sinks []Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sinks:   sinks,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Get().Named("notify")
	}
	if len(d.sinks) == 0 {
		d.sinks = []Sink{NewLogSink(d.log)}
	}
	return d
}

// Sinks returns the configured sink names.
func (d *Dispatcher) Sinks() []string {
	out := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		out = append(out, s.Name())
	}
	return out
}

type delivery struct {
	sink string
	err  error
}

// Dispatch delivers r to every sink and returns ErrDispatchFailed only when
// all of them fail.
func (d *Dispatcher) Dispatch(ctx context.Context, r model.AnalysisResult) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	p := pool.NewWithResults[delivery]().WithMaxGoroutines(len(d.sinks))
	for _, s := range d.sinks {
		p.Go(func() delivery {
			return delivery{sink: s.Name(), err: s.Send(ctx, r)}
		})
	}

	var errs error
	delivered := 0
	for _, res := range p.Wait() {
		if res.err != nil {
			metrics.RecordDispatch(res.sink, "error")
			d.log.Error(ctx, "alert delivery failed",
				logger.String("sink", res.sink),
				logger.Int64("fixture_id", r.FixtureID),
				logger.Error(res.err))
			errs = crerr.CombineErrors(errs, crerr.Wrap(res.err, res.sink))
			continue
		}
		metrics.RecordDispatch(res.sink, "ok")
		delivered++
	}
	if delivered == 0 {
		return crerr.Mark(crerr.Wrapf(errs, "fixture %d", r.FixtureID), ErrDispatchFailed)
	}
	return nil
}
