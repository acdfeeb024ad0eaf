package notify

import (
	"context"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
)

// LogSink writes alerts to the structured log. Used when no remote sink is configured.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a log-only sink.
func NewLogSink(l logger.Logger) *LogSink {
	return &LogSink{log: l}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, r model.AnalysisResult) error {
	s.log.Info(ctx, "alert",
		logger.Int64("fixture_id", r.FixtureID),
		logger.String("match", r.Match()),
		logger.String("league", r.League),
		logger.Int("minute", r.Minute),
		logger.String("score", r.Score),
		logger.String("classification", string(r.Classification)),
		logger.Float64("confidence", r.Confidence),
		logger.Any("reasons", r.Reasons),
	)
	return nil
}
