package policy

import (
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// podPolicy covers payment taken at the doorstep, e.g. by card terminal.
type podPolicy struct{}

func (podPolicy) Method() models.PaymentMethod { return models.POD }

func (podPolicy) CanInitiate(*models.Order) Decision {
	return allow()
}

func (p podPolicy) CanRequestRelease(escrow *models.Escrow, order *models.Order) Decision {
	return p.CanRelease(escrow, order, time.Time{})
}

func (podPolicy) CanRelease(_ *models.Escrow, order *models.Order, _ time.Time) Decision {
	if !order.IsDelivered() {
		return deny("Order must be delivered before POD funds can be released")
	}
	if order.FinancialStatus != models.FinancialCaptured {
		return deny("Payment on delivery has not been captured")
	}
	return allow()
}

func (podPolicy) CanRefund(escrow *models.Escrow, order *models.Order) Decision {
	if cancelledOrReturnRequested(order) || escrow.Status == models.DISPUTE_OPEN {
		return allow()
	}
	return deny("POD refunds require a cancelled order, a requested return, or an open dispute")
}

func (podPolicy) CalculateReleaseAmount(escrow *models.Escrow, _ *models.Order) int64 {
	return escrow.SellerReceives
}

func (podPolicy) CalculateRefundAmount(escrow *models.Escrow, requested *int64) (int64, error) {
	return refundAmount(escrow, requested)
}

func (podPolicy) HoldingPeriod() time.Duration { return 24 * time.Hour }

func (podPolicy) RequiresGatewayRefund() bool { return false }
