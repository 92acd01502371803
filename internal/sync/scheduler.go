package sync

import (
	"context"
	"log/slog"
	"time"
)

// Ticker is the engine surface driven by the Scheduler.
type Ticker interface {
	Tick(ctx context.Context) time.Duration
	MarkChanged()
}

// Scheduler drives an engine from a single goroutine: exactly one tick is in
// flight at a time and change signals only set the engine's pending flag.
type Scheduler struct {
	engine  Ticker
	signals <-chan struct{}
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. signals may be nil when there is no
// local change source (pull mode).
func NewScheduler(engine Ticker, signals <-chan struct{}, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{engine: engine, signals: signals, logger: logger}
}

// Run ticks until ctx is canceled. The first tick fires immediately; each
// later tick fires after the delay returned by the previous one. Cancellation
// during a tick waits for that tick to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Debug("scheduler starting")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped")
			return nil

		case _, ok := <-s.signals:
			if !ok {
				s.signals = nil
				continue
			}

			s.engine.MarkChanged()

		case <-timer.C:
			next := s.engine.Tick(ctx)
			if ctx.Err() != nil {
				s.logger.Debug("scheduler stopped")
				return nil
			}

			timer.Reset(next)
		}
	}
}
