package leads

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/leadbot/core/logger"
)

// Backend is a sink with a name for logging.
type Backend interface {
	Sink
	Name() string
}

// MultiSink writes each record to every backend in order.
// The first failure stops the chain and fails the record.
type MultiSink struct {
	backends []Backend
}

// NewMultiSink requires at least one backend.
func NewMultiSink(backends ...Backend) (*MultiSink, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	return &MultiSink{backends: backends}, nil
}

// Record implements Sink.
func (m *MultiSink) Record(ctx context.Context, rec Record) error {
	for _, b := range m.backends {
		start := time.Now()
		if err := b.Record(ctx, rec); err != nil {
			err = storageErr(b.Name(), err)
			logger.Error(ctx, "leads", "record",
				slog.String("status", "fail"),
				slog.String("backend", b.Name()),
				slog.Duration("duration", logger.Took(start)),
				logger.Err(err),
			)
			return err
		}
		logger.Info(ctx, "leads", "record",
			slog.String("status", "ok"),
			slog.String("backend", b.Name()),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}
