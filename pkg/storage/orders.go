package storage

import (
	"context"
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// OrderStore defines the interface for the escrow-facing view of orders.
type OrderStore interface {
	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// SaveOrder creates or replaces an order. The order service feeds delivery,
	// payment, and dispute updates through it.
	SaveOrder(ctx context.Context, order *models.Order) error
}

// OrderPatch is an escrow write-back to an order. It names only the fields the
// escrow service owns; delivery, remittance and dispute resolution stay with the
// order service and are never overwritten. Nil fields keep their stored value,
// as does an empty EscrowID.
type OrderPatch struct {
	OrderID           string
	EscrowID          string
	EscrowStatus      models.EscrowStatus
	FinancialStatus   *models.FinancialStatus
	DisputeStatus     *models.DisputeStatus
	DisputeOutcome    *models.DisputeOutcome
	FulfillmentHalted *bool
	BuyerConfirmed    *bool
	UpdatedAt         time.Time
}

// Apply merges the patch into o.
func (p *OrderPatch) Apply(o *models.Order) {
	if p.EscrowID != "" {
		o.EscrowId = p.EscrowID
	}
	o.EscrowStatus = p.EscrowStatus
	if p.FinancialStatus != nil {
		o.FinancialStatus = *p.FinancialStatus
	}
	if p.DisputeStatus != nil {
		o.DisputeStatus = *p.DisputeStatus
	}
	if p.DisputeOutcome != nil {
		o.DisputeOutcome = *p.DisputeOutcome
	}
	if p.FulfillmentHalted != nil {
		o.FulfillmentHalted = *p.FulfillmentHalted
	}
	if p.BuyerConfirmed != nil {
		o.BuyerConfirmed = *p.BuyerConfirmed
	}
	o.UpdatedAt = p.UpdatedAt
}

// Columns lists the patched fields by their stored attribute names.
func (p *OrderPatch) Columns() map[string]any {
	cols := map[string]any{
		"escrow_status": string(p.EscrowStatus),
		"updated_at":    p.UpdatedAt,
	}
	if p.EscrowID != "" {
		cols["escrow_id"] = p.EscrowID
	}
	if p.FinancialStatus != nil {
		cols["financial_status"] = string(*p.FinancialStatus)
	}
	if p.DisputeStatus != nil {
		cols["dispute_status"] = string(*p.DisputeStatus)
	}
	if p.DisputeOutcome != nil {
		cols["dispute_outcome"] = string(*p.DisputeOutcome)
	}
	if p.FulfillmentHalted != nil {
		cols["fulfillment_halted"] = *p.FulfillmentHalted
	}
	if p.BuyerConfirmed != nil {
		cols["buyer_confirmed"] = *p.BuyerConfirmed
	}
	return cols
}
