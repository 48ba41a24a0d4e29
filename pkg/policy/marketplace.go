package policy

import (
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// marketplacePolicy covers peer-to-peer sales. Counterparties are unknown to
// each other, so release waits for the buyer or for the longest holding period.
type marketplacePolicy struct{}

func (marketplacePolicy) Method() models.PaymentMethod { return models.MARKETPLACE }

func (marketplacePolicy) CanInitiate(order *models.Order) Decision {
	if order.FinancialStatus != models.FinancialCaptured {
		return deny("Marketplace payments must be captured before escrow starts")
	}
	return allow()
}

// CanRequestRelease skips the confirmation gate; the request starts the
// holding window that the gate waits on.
func (marketplacePolicy) CanRequestRelease(_ *models.Escrow, order *models.Order) Decision {
	if !order.IsDelivered() {
		return deny("Order must be delivered before marketplace funds can be released")
	}
	if order.HasOpenDispute() {
		return deny("Order has an open dispute")
	}
	return allow()
}

func (p marketplacePolicy) CanRelease(escrow *models.Escrow, order *models.Order, now time.Time) Decision {
	if d := p.CanRequestRelease(escrow, order); !d.Valid {
		return d
	}
	if order.BuyerConfirmed {
		return allow()
	}
	at := escrow.Timing.AutoReleaseAt
	if at != nil && !now.Before(*at) {
		return allow()
	}
	return deny("Awaiting buyer confirmation or the end of the auto-release window")
}

func (marketplacePolicy) CanRefund(_ *models.Escrow, order *models.Order) Decision {
	if order.SellerCancelled || order.ResolvedFor(models.OutcomeBuyer) {
		return allow()
	}
	return deny("Marketplace refunds require a seller cancellation or a dispute resolved for the buyer")
}

func (marketplacePolicy) CalculateReleaseAmount(escrow *models.Escrow, _ *models.Order) int64 {
	amount := escrow.SellerReceives - escrow.TotalDeductions()
	if amount < 0 {
		return 0
	}
	return amount
}

func (marketplacePolicy) CalculateRefundAmount(escrow *models.Escrow, requested *int64) (int64, error) {
	return refundAmount(escrow, requested)
}

func (marketplacePolicy) HoldingPeriod() time.Duration { return 120 * time.Hour }

func (marketplacePolicy) RequiresGatewayRefund() bool { return false }
