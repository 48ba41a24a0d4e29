package policy

import (
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// prepaidPolicy covers orders paid online before fulfilment. Refunds go back
// through the payment gateway.
type prepaidPolicy struct{}

func (prepaidPolicy) Method() models.PaymentMethod { return models.PREPAID }

func (prepaidPolicy) CanInitiate(order *models.Order) Decision {
	if order.FinancialStatus != models.FinancialCaptured {
		return deny("Prepaid orders must be captured before escrow starts")
	}
	return allow()
}

func (p prepaidPolicy) CanRequestRelease(escrow *models.Escrow, order *models.Order) Decision {
	return p.CanRelease(escrow, order, time.Time{})
}

func (prepaidPolicy) CanRelease(_ *models.Escrow, order *models.Order, _ time.Time) Decision {
	if !order.IsDelivered() {
		return deny("Order must be delivered before prepaid funds can be released")
	}
	if order.HasOpenDispute() {
		return deny("Order has an open dispute")
	}
	return allow()
}

func (prepaidPolicy) CanRefund(_ *models.Escrow, order *models.Order) Decision {
	switch {
	case order.Status == models.OrderCancelled, order.Status == models.OrderReturned:
		return allow()
	case order.ResolvedFor(models.OutcomeBuyer):
		return allow()
	}
	return deny("Prepaid refunds require a cancelled or returned order, or a dispute resolved for the buyer")
}

func (prepaidPolicy) CalculateReleaseAmount(escrow *models.Escrow, _ *models.Order) int64 {
	return escrow.SellerReceives
}

func (prepaidPolicy) CalculateRefundAmount(escrow *models.Escrow, requested *int64) (int64, error) {
	return refundAmount(escrow, requested)
}

func (prepaidPolicy) HoldingPeriod() time.Duration { return 72 * time.Hour }

func (prepaidPolicy) RequiresGatewayRefund() bool { return true }
