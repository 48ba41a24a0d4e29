package escrow

import (
	"context"

	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/transitions"
)

// HoldEscrow moves an INITIATED escrow to HELD.
func (s *Service) HoldEscrow(ctx context.Context, actor Actor, escrowID string) (*models.Escrow, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	var held *models.Escrow
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e := snap.escrow
		if err := actor.requireMerchantOrPrivileged(e.MerchantId); err != nil {
			return err
		}
		if err := transitions.Validate(e.Status, models.HELD); err != nil {
			return err
		}

		now := s.clock()
		from := e.Status
		e.Status = models.HELD
		e.Timing.HoldStartedAt = &now
		e.UpdatedAt = now
		if err := s.transition(ctx, from, snap); err != nil {
			return err
		}
		held = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.EscrowHeld, held, actor, nil)
	return held, nil
}

// RequestRelease moves a HELD escrow to RELEASE_REQUESTED and schedules its
// auto-release one holding period from now. A scheduling failure is logged;
// the recovery sweep picks the escrow up once it is due.
func (s *Service) RequestRelease(ctx context.Context, actor Actor, escrowID, reason string) (*models.Escrow, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	var requested *models.Escrow
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e := snap.escrow
		if err := actor.requireMerchantOrPrivileged(e.MerchantId); err != nil {
			return err
		}
		if err := notFinal(e, models.RELEASE_REQUESTED); err != nil {
			return err
		}
		if err := checkPolicy(snap.policy.CanRequestRelease(e, snap.order)); err != nil {
			return err
		}
		if err := transitions.Validate(e.Status, models.RELEASE_REQUESTED); err != nil {
			return err
		}

		now := s.clock()
		autoReleaseAt := now.Add(snap.policy.HoldingPeriod())
		from := e.Status
		e.Status = models.RELEASE_REQUESTED
		e.Timing.ReleaseRequestedAt = &now
		e.Timing.AutoReleaseAt = &autoReleaseAt
		e.Audit.ReleaseReason = reason
		e.UpdatedAt = now
		if err := s.transition(ctx, from, snap); err != nil {
			return err
		}
		requested = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ReleaseRequested, requested, actor, map[string]any{"reason": reason})

	fireAt := *requested.Timing.AutoReleaseAt
	if err := s.scheduler.Schedule(ctx, requested.Id, fireAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to schedule auto-release", "escrow_id", requested.Id, "fire_at", fireAt, "error", err)
		s.record(ctx, audit.AutoReleaseUnscheduled, requested, actor, map[string]any{"fire_at": fireAt, "error": err.Error()})
	} else {
		s.record(ctx, audit.AutoReleaseScheduled, requested, actor, map[string]any{"fire_at": fireAt})
	}
	return requested, nil
}

// OpenDispute freezes an escrow and halts fulfilment of its order.
func (s *Service) OpenDispute(ctx context.Context, actor Actor, escrowID, disputeID string) (*models.Escrow, error) {
	if err := actor.requirePrivileged("open disputes"); err != nil {
		return nil, err
	}
	if disputeID == "" {
		return nil, escrowerr.Validation("dispute id is required")
	}

	var disputed *models.Escrow
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e := snap.escrow
		if err := transitions.Validate(e.Status, models.DISPUTE_OPEN); err != nil {
			return err
		}

		now := s.clock()
		from := e.Status
		e.Status = models.DISPUTE_OPEN
		e.Timing.DisputeOpenedAt = &now
		e.Audit.DisputeId = disputeID
		e.UpdatedAt = now
		dispute, outcome, halted := models.DisputeOpen, models.DisputeOutcome(""), true
		snap.patch.DisputeStatus = &dispute
		snap.patch.DisputeOutcome = &outcome
		snap.patch.FulfillmentHalted = &halted
		if err := s.transition(ctx, from, snap); err != nil {
			return err
		}
		disputed = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.DisputeOpened, disputed, actor, map[string]any{"dispute_id": disputeID})
	return disputed, nil
}

// ConfirmReceipt records the buyer's confirmation on a MARKETPLACE escrow,
// which lets it release before its auto-release time.
func (s *Service) ConfirmReceipt(ctx context.Context, actor Actor, escrowID string) (*models.Escrow, error) {
	if err := actor.requirePrivileged("confirm receipt"); err != nil {
		return nil, err
	}

	var confirmed *models.Escrow
	changed := false
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e, o := snap.escrow, snap.order
		if e.PaymentMethod != models.MARKETPLACE {
			return escrowerr.Validation("Receipt confirmation only applies to MARKETPLACE escrows")
		}
		if err := notFinal(e, e.Status); err != nil {
			return err
		}
		confirmed = e
		if o.BuyerConfirmed && e.Timing.BuyerConfirmedAt != nil {
			return nil
		}

		now := s.clock()
		e.Timing.BuyerConfirmedAt = &now
		e.UpdatedAt = now
		buyerConfirmed := true
		snap.patch.BuyerConfirmed = &buyerConfirmed
		changed = true
		return s.transition(ctx, e.Status, snap)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.record(ctx, audit.ReceiptConfirmed, confirmed, actor, nil)
	}
	return confirmed, nil
}
