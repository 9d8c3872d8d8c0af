package reconcile

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"supplyscope/internal/history"
)

// Scheduler drives one reconciliation cycle per fixed interval. A cycle
// that outlives the interval causes the colliding tick to be skipped
// entirely rather than queued, so cycles never overlap and the next tick
// starts from a clean slate.
type Scheduler struct {
	interval time.Duration
	engine   *Engine
	history  *history.Store
	logger   *zap.Logger

	inFlight atomic.Bool
}

func NewScheduler(interval time.Duration, engine *Engine, hist *history.Store, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		interval: interval,
		engine:   engine,
		history:  hist,
		logger:   logger,
	}
}

// Run blocks until ctx is done, executing one cycle immediately and then
// one per interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("previous cycle still running, skipping tick")
		return
	}

	go func() {
		defer s.inFlight.Store(false)

		start := time.Now()
		s.engine.RunCycle(ctx)
		if s.history != nil {
			if err := s.history.FlushIfDue(); err != nil {
				s.logger.Warn("history flush failed", zap.Error(err))
			}
		}
		if elapsed := time.Since(start); elapsed > s.interval {
			s.logger.Warn("cycle exceeded poll interval", zap.Duration("elapsed", elapsed))
		}
	}()
}
