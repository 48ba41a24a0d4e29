package escrow

import (
	"context"

	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/transitions"
)

// RefundInput describes a refund. A nil Amount refunds everything the buyer paid.
type RefundInput struct {
	Reason string
	Amount *int64
}

// RefundEscrow returns the escrowed money to the buyer. PREPAID refunds go
// through the payment gateway first, under the escrow lock, and the escrow
// only moves to REFUNDED once the gateway has confirmed.
func (s *Service) RefundEscrow(ctx context.Context, actor Actor, escrowID string, in RefundInput) (*models.Escrow, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	var refunded *models.Escrow
	err := s.withEscrowLock(ctx, escrowID, func() error {
		snap, err := s.load(ctx, escrowID)
		if err != nil {
			return err
		}
		e, o := snap.escrow, snap.order
		if err := actor.requireMerchantOrPrivileged(e.MerchantId); err != nil {
			return err
		}
		if e.Status == models.DISPUTE_OPEN {
			if err := actor.requirePrivileged("refund a disputed escrow"); err != nil {
				return err
			}
		}
		if err := notFinal(e, models.REFUNDED); err != nil {
			return err
		}
		if err := checkPolicy(snap.policy.CanRefund(e, o)); err != nil {
			return err
		}
		if err := transitions.Validate(e.Status, models.REFUNDED); err != nil {
			return err
		}
		amount, err := snap.policy.CalculateRefundAmount(e, in.Amount)
		if err != nil {
			return err
		}

		if snap.policy.RequiresGatewayRefund() {
			if o.PaymentReference == "" {
				return escrowerr.Validation("order %s has no payment reference to refund", o.Id)
			}
			conf, err := s.gateway.Refund(ctx, o.PaymentReference, amount)
			if err != nil {
				return &escrowerr.ExternalServiceError{Service: "payment-gateway", Err: err}
			}
			e.Audit.RefundReference = conf.RefundID
			financial := models.FinancialRefunded
			snap.patch.FinancialStatus = &financial
		}

		now := s.clock()
		from := e.Status
		e.Status = models.REFUNDED
		e.RefundedAmount = amount
		e.Timing.RefundedAt = &now
		e.Audit.RefundedBy = actor.ID
		e.Audit.RefundReason = in.Reason
		e.UpdatedAt = now
		if err := s.transition(ctx, from, snap); err != nil {
			if e.Audit.RefundReference != "" {
				s.logger.ErrorContext(ctx, "gateway refund succeeded but the escrow write failed",
					"escrow_id", e.Id, "refund_reference", e.Audit.RefundReference, "error", err)
			}
			return err
		}
		refunded = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "escrow refunded", "escrow_id", refunded.Id, "amount", refunded.RefundedAmount, "refunded_by", actor.ID)
	s.record(ctx, audit.EscrowRefunded, refunded, actor, map[string]any{
		"amount":           refunded.RefundedAmount,
		"reason":           in.Reason,
		"refund_reference": refunded.Audit.RefundReference,
	})
	return refunded, nil
}
