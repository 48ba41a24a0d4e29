package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/scheduler/mocks"
	"github.com/stretchr/testify/assert"
)

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		source := new(mocks.DueLister)
		releaser := new(mocks.AutoReleaser)
		source.On("ListDueForAutoRelease", ctx, now).Return([]models.Escrow{{Id: "esc-1"}, {Id: "esc-2"}}, nil).Once()
		releaser.On("AutoRelease", ctx, "esc-1").Return(true, nil).Once()
		releaser.On("AutoRelease", ctx, "esc-2").Return(true, nil).Once()

		result, err := NewSweeper(source, releaser, discardLogger()).Sweep(ctx, now)

		assert.NoError(t, err)
		assert.Equal(t, SweepResult{Found: 2, Released: 2}, result)
		source.AssertExpectations(t)
		releaser.AssertExpectations(t)
	})

	t.Run("Continues Past Failures", func(t *testing.T) {
		source := new(mocks.DueLister)
		releaser := new(mocks.AutoReleaser)
		source.On("ListDueForAutoRelease", ctx, now).Return([]models.Escrow{{Id: "esc-1"}, {Id: "esc-2"}, {Id: "esc-3"}}, nil).Once()
		releaser.On("AutoRelease", ctx, "esc-1").Return(true, nil).Once()
		releaser.On("AutoRelease", ctx, "esc-2").Return(false, errors.New("gateway down")).Once()
		releaser.On("AutoRelease", ctx, "esc-3").Return(true, nil).Once()

		result, err := NewSweeper(source, releaser, discardLogger()).Sweep(ctx, now)

		assert.NoError(t, err)
		assert.Equal(t, SweepResult{Found: 3, Released: 2, Failed: 1}, result)
		releaser.AssertExpectations(t)
	})

	t.Run("Counts Skips Apart From Releases", func(t *testing.T) {
		source := new(mocks.DueLister)
		releaser := new(mocks.AutoReleaser)
		source.On("ListDueForAutoRelease", ctx, now).Return([]models.Escrow{{Id: "esc-1"}, {Id: "esc-2"}}, nil).Once()
		releaser.On("AutoRelease", ctx, "esc-1").Return(false, nil).Once()
		releaser.On("AutoRelease", ctx, "esc-2").Return(true, nil).Once()

		result, err := NewSweeper(source, releaser, discardLogger()).Sweep(ctx, now)

		assert.NoError(t, err)
		assert.Equal(t, SweepResult{Found: 2, Released: 1, Skipped: 1}, result)
		releaser.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		source := new(mocks.DueLister)
		releaser := new(mocks.AutoReleaser)
		source.On("ListDueForAutoRelease", ctx, now).Return(nil, errors.New("dynamodb error")).Once()

		_, err := NewSweeper(source, releaser, discardLogger()).Sweep(ctx, now)

		assert.ErrorContains(t, err, "failed to list escrows due for release")
		releaser.AssertNotCalled(t, "AutoRelease")
	})
}
