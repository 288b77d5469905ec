// Package worker runs background reconciliation of checkouts.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/metrics"
	"course-marketplace/internal/repository"

	"github.com/robfig/cron/v3"
)

// CheckoutSweeper expires AUTHORIZED checkouts that were never confirmed by an
// order, releasing the (user, course) pair for a new purchase attempt.
type CheckoutSweeper struct {
	checkoutRepo repository.CheckoutRepository
	staleAfter   time.Duration
	schedule     string
	metrics      metrics.Recorder
	logger       *slog.Logger
	cron         *cron.Cron
	now          func() time.Time
}

func NewCheckoutSweeper(
	checkoutRepo repository.CheckoutRepository,
	cfg config.Checkout,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *CheckoutSweeper {
	return &CheckoutSweeper{
		checkoutRepo: checkoutRepo,
		staleAfter:   cfg.StaleAfter,
		schedule:     cfg.SweepSchedule,
		metrics:      recorder,
		logger:       logger,
		now:          time.Now,
	}
}

// Run expires stale checkouts once. Idempotent.
func (s *CheckoutSweeper) Run(ctx context.Context) (int64, error) {
	start := s.now()
	cutoff := start.Add(-s.staleAfter)

	expired, err := s.checkoutRepo.ExpireStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("checkout sweep failed",
			slog.String("error", err.Error()),
			slog.Duration("stale_after", s.staleAfter),
		)
		return 0, fmt.Errorf("expire stale checkouts: %w", err)
	}

	s.metrics.RecordCheckoutsExpired(expired)
	s.logger.Info("checkout sweep finished",
		slog.Int64("expired_count", expired),
		slog.Duration("stale_after", s.staleAfter),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return expired, nil
}

// Start schedules Run on the configured cron spec.
func (s *CheckoutSweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(s.schedule, func() {
		_, _ = s.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule checkout sweep %q: %w", s.schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("checkout sweeper started", slog.String("schedule", s.schedule))
	return nil
}

// Stop stops scheduling and waits for a running sweep, bounded by ctx.
func (s *CheckoutSweeper) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("checkout sweeper did not stop in time")
	}
}
