package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/ledger"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
	"github.com/chris/order-escrow/pkg/transitions"
)

const (
	releaseManual = "manual"
	releaseAuto   = "auto_release"
)

// AutoReleaseActorID identifies releases fired by the scheduler.
const AutoReleaseActorID = "auto-release"

// ReleaseEscrow pays the policy's release amount to the merchant. The RELEASED
// write and the ledger credit are one atomic unit, so an escrow is credited at
// most once; a second call fails with a StateConflictError.
func (s *Service) ReleaseEscrow(ctx context.Context, actor Actor, escrowID string) (*models.Escrow, error) {
	if err := actor.requirePrivileged("release escrow funds"); err != nil {
		return nil, err
	}
	return s.release(ctx, actor, escrowID, releaseManual)
}

// AutoRetryDelay is how far a refused auto-release is pushed back, so escrows
// that cannot release yet do not hold the head of every recovery pass.
const AutoRetryDelay = time.Hour

// AutoRelease is the scheduler's entry point. An escrow that has moved on,
// vanished, or does not satisfy its policy yet is left alone and reported as
// not released; only failures worth a redelivery are returned. A policy refusal
// also defers the escrow's auto-release time by AutoRetryDelay.
func (s *Service) AutoRelease(ctx context.Context, escrowID string) (bool, error) {
	e, err := s.store.GetEscrow(ctx, escrowID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.WarnContext(ctx, "auto-release for unknown escrow skipped", "escrow_id", escrowID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if e.Status != models.RELEASE_REQUESTED {
		s.logger.DebugContext(ctx, "auto-release skipped, escrow moved on", "escrow_id", escrowID, "status", string(e.Status))
		return false, nil
	}

	_, err = s.release(ctx, SystemActor(AutoReleaseActorID), escrowID, releaseAuto)
	switch {
	case err == nil:
		return true, nil
	case escrowerr.IsStateConflict(err), escrowerr.IsNotFound(err):
		s.logger.DebugContext(ctx, "auto-release lost the race", "escrow_id", escrowID, "error", err)
		return false, nil
	case escrowerr.IsValidation(err):
		s.logger.WarnContext(ctx, "auto-release not permitted yet", "escrow_id", escrowID, "reason", err.Error())
		return false, s.deferAutoRelease(ctx, escrowID)
	}
	return false, err
}

// deferAutoRelease moves a still-requested escrow's auto-release time to
// AutoRetryDelay from now. Losing a race to another writer is not an error.
func (s *Service) deferAutoRelease(ctx context.Context, escrowID string) error {
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e := snap.escrow
		if e.Status != models.RELEASE_REQUESTED {
			return nil
		}
		now := s.clock()
		retryAt := now.Add(AutoRetryDelay)
		e.Timing.AutoReleaseAt = &retryAt
		e.UpdatedAt = now
		return s.transition(ctx, e.Status, snap)
	})
	if escrowerr.IsStateConflict(err) || escrowerr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to defer auto-release of escrow %s: %w", escrowID, err)
	}
	s.logger.InfoContext(ctx, "auto-release deferred", "escrow_id", escrowID, "retry_in", AutoRetryDelay.String())
	return nil
}

func (s *Service) release(ctx context.Context, actor Actor, escrowID, reason string) (*models.Escrow, error) {
	var released *models.Escrow
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e, o := snap.escrow, snap.order
		if err := notFinal(e, models.RELEASED); err != nil {
			return err
		}
		if reason == releaseAuto && e.Status != models.RELEASE_REQUESTED {
			return &escrowerr.StateConflictError{From: string(e.Status), To: string(models.RELEASED), Reason: "escrow is no longer awaiting release"}
		}
		if e.Status == models.DISPUTE_OPEN && !o.ResolvedFor(models.OutcomeSeller) {
			return escrowerr.Validation("Dispute must be resolved in the seller's favour before release")
		}

		now := s.clock()
		if err := checkPolicy(snap.policy.CanRelease(e, o, now)); err != nil {
			return err
		}
		if err := transitions.Validate(e.Status, models.RELEASED); err != nil {
			return err
		}

		amount := snap.policy.CalculateReleaseAmount(e, o)
		credit, err := ledger.NewCredit(e.MerchantId, e.Id, amount, now)
		if err != nil {
			return err
		}

		from := e.Status
		e.Status = models.RELEASED
		e.ReleasedAmount = amount
		e.Timing.ReleasedAt = &now
		e.Audit.ReleasedBy = actor.ID
		if e.Audit.ReleaseReason == "" {
			e.Audit.ReleaseReason = reason
		}
		e.UpdatedAt = now
		if err := e.Validate(); err != nil {
			return escrowerr.Validation("%v", err)
		}
		err = s.store.ReleaseEscrow(ctx, storage.ReleaseRequest{
			Transition: storage.Transition{From: from, Escrow: e, Order: snap.orderPatch()},
			Credit:     credit,
		})
		if err != nil {
			if errors.Is(err, storage.ErrStatusConflict) || errors.Is(err, storage.ErrNotFound) {
				return s.writeError(err, from, e)
			}
			return &escrowerr.ExternalServiceError{Service: "ledger", Err: err}
		}
		released = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "escrow released", "escrow_id", released.Id, "merchant_id", released.MerchantId, "amount", released.ReleasedAmount, "released_by", actor.ID)
	s.record(ctx, audit.EscrowReleased, released, actor, map[string]any{
		"amount":      released.ReleasedAmount,
		"merchant_id": released.MerchantId,
		"reason":      reason,
	})
	return released, nil
}
