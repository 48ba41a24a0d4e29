package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// LogScheduler records the auto-release time without enqueuing anything. It is
// used when no queue is configured; the recovery sweep releases due escrows.
type LogScheduler struct {
	Logger *slog.Logger
}

// NewLogScheduler creates a LogScheduler.
func NewLogScheduler(logger *slog.Logger) *LogScheduler {
	return &LogScheduler{Logger: logger}
}

var _ Scheduler = (*LogScheduler)(nil)

func (s *LogScheduler) Schedule(ctx context.Context, escrowID string, fireAt time.Time) error {
	s.Logger.InfoContext(ctx, "auto-release left to the recovery sweep", "escrow_id", escrowID, "fire_at", fireAt)
	return nil
}
