package service

import (
	"context"
	"time"
)

const (
	sweepInterval = 24 * time.Hour
	// Accounts with no login for this long are parked as INACTIVE.
	inactivityMonths = 1
)

// RunStatusSweeper periodically parks stale ACTIVE accounts as INACTIVE. It
// sweeps once on start, then every 24 hours, and returns when the context is
// cancelled. Run it in its own goroutine.
func (s *Service) RunStatusSweeper(ctx context.Context) error {
	s.SweepStatuses(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepStatuses(ctx)
		}
	}
}

// SweepStatuses runs one sweep: ACTIVE employees whose last login is more
// than a month old become INACTIVE.
func (s *Service) SweepStatuses(ctx context.Context) {
	cutoff := time.Now().AddDate(0, -inactivityMonths, 0)
	changed, err := s.store.MarkInactiveSince(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "employee status sweep failed", "error", err)
		return
	}
	if changed > 0 {
		s.logger.InfoContext(ctx, "employee status sweep",
			"marked_inactive", changed,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
}
