package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// DueLister finds escrows whose auto-release time has passed.
type DueLister interface {
	ListDueForAutoRelease(ctx context.Context, now time.Time) ([]models.Escrow, error)
}

// SweepResult summarises one recovery pass.
type SweepResult struct {
	Found    int
	Released int
	Skipped  int
	Failed   int
}

// Sweeper recovers auto-releases whose scheduled message was lost.
type Sweeper struct {
	Source   DueLister
	Releaser AutoReleaser
	Logger   *slog.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(source DueLister, releaser AutoReleaser, logger *slog.Logger) *Sweeper {
	return &Sweeper{Source: source, Releaser: releaser, Logger: logger}
}

// Sweep fires every escrow due at now. One failure never stops the batch;
// failures are counted and left for the next pass.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	due, err := s.Source.ListDueForAutoRelease(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list escrows due for release: %w", err)
	}

	result := SweepResult{Found: len(due)}
	for _, e := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		released, err := s.Releaser.AutoRelease(ctx, e.Id)
		switch {
		case err != nil:
			result.Failed++
			s.Logger.ErrorContext(ctx, "auto-release failed during sweep", "escrow_id", e.Id, "error", err)
		case released:
			result.Released++
		default:
			result.Skipped++
		}
	}

	s.Logger.InfoContext(ctx, "auto-release sweep finished", "found", result.Found, "released", result.Released, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}
