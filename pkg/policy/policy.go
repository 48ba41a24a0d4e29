// Package policy holds the payment-method rules that decide when escrowed funds may move and how much.
package policy

import (
	"fmt"
	"time"

	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
)

// Decision is the outcome of a policy check. Reason is set when Valid is false.
type Decision struct {
	Valid  bool
	Reason string
}

func allow() Decision {
	return Decision{Valid: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Policy is the rule set for one payment method. Implementations are pure
// functions over the escrow and order snapshots they are given.
type Policy interface {
	Method() models.PaymentMethod
	CanInitiate(order *models.Order) Decision
	// CanRequestRelease gates the move to RELEASE_REQUESTED. It differs from
	// CanRelease only where a method has a time or confirmation gate.
	CanRequestRelease(escrow *models.Escrow, order *models.Order) Decision
	CanRelease(escrow *models.Escrow, order *models.Order, now time.Time) Decision
	CanRefund(escrow *models.Escrow, order *models.Order) Decision
	CalculateReleaseAmount(escrow *models.Escrow, order *models.Order) int64
	CalculateRefundAmount(escrow *models.Escrow, requested *int64) (int64, error)
	HoldingPeriod() time.Duration
	RequiresGatewayRefund() bool
}

// Methods lists every supported payment method.
func Methods() []models.PaymentMethod {
	return []models.PaymentMethod{models.COD, models.POD, models.PREPAID, models.MARKETPLACE}
}

// For returns the policy for a payment method.
func For(method models.PaymentMethod) (Policy, error) {
	switch method {
	case models.COD:
		return codPolicy{}, nil
	case models.POD:
		return podPolicy{}, nil
	case models.PREPAID:
		return prepaidPolicy{}, nil
	case models.MARKETPLACE:
		return marketplacePolicy{}, nil
	}
	return nil, &escrowerr.ConfigurationError{Reason: fmt.Sprintf("no policy registered for payment method %q", method)}
}

// Valid reports whether the method has a policy.
func Valid(method models.PaymentMethod) bool {
	_, err := For(method)
	return err == nil
}

// refundAmount defaults to the full amount the buyer paid. A requested
// amount must be positive and may not exceed what the buyer paid.
func refundAmount(escrow *models.Escrow, requested *int64) (int64, error) {
	if requested == nil {
		return escrow.BuyerPaid, nil
	}
	amount := *requested
	if amount <= 0 {
		return 0, escrowerr.Validation("refund amount must be positive")
	}
	if amount > escrow.BuyerPaid {
		return 0, escrowerr.Validation("refund amount %d exceeds the %d paid by the buyer", amount, escrow.BuyerPaid)
	}
	return amount, nil
}

func cancelledOrReturnRequested(order *models.Order) bool {
	return order.Status == models.OrderCancelled || order.Status == models.OrderReturnRequested
}
