package progress

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// defaultSinkTimeout bounds how long one sink may block an Emit or
// Close call.
const defaultSinkTimeout = 5 * time.Second

// Broadcaster fans events out to its sinks synchronously. Scrape runs
// are sequential and low volume, so there is no buffering; Emit calls
// every sink inline and drops the event for a sink that errors, logging
// the failure. A nil *Broadcaster is a valid no-op emitter.
type Broadcaster struct {
	sinks   []Sink
	logger  *zap.Logger
	timeout time.Duration
}

// NewBroadcaster wires the given sinks behind one Emitter.
func NewBroadcaster(logger *zap.Logger, sinks ...Sink) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		sinks:   sinks,
		logger:  logger,
		timeout: defaultSinkTimeout,
	}
}

// Emit validates the event and delivers it to every sink. Invalid
// events are dropped with a warning rather than failing the scrape.
func (b *Broadcaster) Emit(evt Event) {
	if b == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		b.logger.Warn("dropping invalid progress event",
			zap.String("stage", string(evt.Stage)),
			zap.Error(err),
		)
		return
	}
	batch := []Event{evt}
	for _, sink := range b.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		if err := sink.Consume(ctx, batch); err != nil {
			b.logger.Warn("progress sink consume failed",
				zap.String("stage", string(evt.Stage)),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Close closes every sink, returning the first error encountered.
func (b *Broadcaster) Close(ctx context.Context) error {
	if b == nil {
		return nil
	}
	var firstErr error
	for _, sink := range b.sinks {
		if err := sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
