// Package sinks implements concrete progress consumers: structured
// logging and Prometheus metrics. Each sink satisfies the
// progress.Sink interface and is safe for repeated Consume/Close
// cycles.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/progress"
)

// LogSink emits one structured log line per progress event. It is the
// default sink for interactive scrape runs.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.Stringer("run_id", evt.RunUUID()),
			zap.String("stage", string(evt.Stage)),
			zap.String("store", evt.Store),
			zap.Int("page", evt.Page),
			zap.Int("products", evt.Products),
			zap.Int64("bytes", evt.Bytes),
			zap.String("status_class", string(evt.StatusClass)),
			zap.Duration("dur", evt.Dur),
			zap.String("note", evt.Note),
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
