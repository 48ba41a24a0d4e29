package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Consumer handles delivered auto-release messages.
type Consumer struct {
	Releaser  AutoReleaser
	Scheduler Scheduler
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewConsumer creates a Consumer that re-enqueues early messages through s.
func NewConsumer(r AutoReleaser, s Scheduler, logger *slog.Logger) *Consumer {
	return &Consumer{Releaser: r, Scheduler: s, Now: time.Now, Logger: logger}
}

// Handle releases the escrow once the message is due. An error asks the
// queue to redeliver the message.
func (c *Consumer) Handle(ctx context.Context, body string) error {
	msg, err := ParseMessage(body)
	if err != nil {
		return err
	}

	if now := c.Now(); now.Before(msg.FireAt) {
		c.Logger.DebugContext(ctx, "auto-release not due yet, re-enqueuing", "escrow_id", msg.EscrowID, "fire_at", msg.FireAt)
		if err := c.Scheduler.Schedule(ctx, msg.EscrowID, msg.FireAt); err != nil {
			return fmt.Errorf("failed to re-enqueue auto-release for escrow %s: %w", msg.EscrowID, err)
		}
		return nil
	}

	released, err := c.Releaser.AutoRelease(ctx, msg.EscrowID)
	if err != nil {
		return fmt.Errorf("auto-release of escrow %s failed: %w", msg.EscrowID, err)
	}
	if !released {
		c.Logger.InfoContext(ctx, "auto-release message consumed without a release", "escrow_id", msg.EscrowID)
	}
	return nil
}
