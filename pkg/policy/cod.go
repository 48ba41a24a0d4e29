package policy

import (
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// codPolicy covers cash collected by the courier at delivery. Funds only exist
// once the courier has remitted them.
type codPolicy struct{}

func (codPolicy) Method() models.PaymentMethod { return models.COD }

func (codPolicy) CanInitiate(*models.Order) Decision {
	return allow()
}

func (p codPolicy) CanRequestRelease(escrow *models.Escrow, order *models.Order) Decision {
	return p.CanRelease(escrow, order, time.Time{})
}

func (codPolicy) CanRelease(_ *models.Escrow, order *models.Order, _ time.Time) Decision {
	if !order.IsDelivered() {
		return deny("Order must be delivered before COD funds can be released")
	}
	if order.CourierRemittedAt == nil {
		return deny("Courier has not remitted the collected cash yet")
	}
	return allow()
}

func (codPolicy) CanRefund(_ *models.Escrow, order *models.Order) Decision {
	if !cancelledOrReturnRequested(order) {
		return deny("COD refunds are only allowed while the order is cancelled or a return is requested")
	}
	return allow()
}

func (codPolicy) CalculateReleaseAmount(escrow *models.Escrow, _ *models.Order) int64 {
	return escrow.SellerReceives
}

func (codPolicy) CalculateRefundAmount(escrow *models.Escrow, requested *int64) (int64, error) {
	return refundAmount(escrow, requested)
}

func (codPolicy) HoldingPeriod() time.Duration { return 24 * time.Hour }

func (codPolicy) RequiresGatewayRefund() bool { return false }
