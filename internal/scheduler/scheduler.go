package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Refresher is anything that can reload its data on a timer.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScheduler builds a scheduler that calls refresher every interval. Each
// call is bounded by timeout when it is positive.
func NewScheduler(refresher Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start blocks until ctx is cancelled. Unlike a sync loop it does not refresh
// immediately: the caller has already loaded once when the timer starts.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Debug("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("refresh failed", "error", err)
	}
}
