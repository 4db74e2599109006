// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// DefaultSweepInterval is how often the sweeper removes expired sessions.
const DefaultSweepInterval = time.Hour

// Sweeper periodically deletes expired sessions. Verification already
// rejects expired tokens, so the sweeper only reclaims storage.
type Sweeper struct {
	manager  *SessionManager
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper that runs every interval.
func NewSweeper(manager *SessionManager, interval time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if manager == nil {
		return nil, oops.Code("SWEEPER_INVALID").Errorf("session manager is required")
	}
	if interval <= 0 {
		return nil, oops.Code("SWEEPER_INVALID").With("interval", interval.String()).Errorf("interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{manager: manager, interval: interval, logger: logger}, nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
// A failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.manager.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		SweepFailures.Inc()
		s.logger.WarnContext(ctx, "expired session sweep failed",
			"operation", "sweep_expired_sessions",
			"error", err.Error(),
		)
		return
	}
	SessionsSwept.Add(float64(n))
	if n > 0 {
		s.logger.InfoContext(ctx, "expired sessions removed", "count", n)
	}
}
