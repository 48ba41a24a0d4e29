package models

import "time"

// OrderStatus is the delivery state of an order.
type OrderStatus string

const (
	OrderPending         OrderStatus = "PENDING"
	OrderConfirmed       OrderStatus = "CONFIRMED"
	OrderShipped         OrderStatus = "SHIPPED"
	OrderDelivered       OrderStatus = "DELIVERED"
	OrderCancelled       OrderStatus = "CANCELLED"
	OrderReturnRequested OrderStatus = "RETURN_REQUESTED"
	OrderReturned        OrderStatus = "RETURNED"
)

// FinancialStatus is the payment collection state of an order.
type FinancialStatus string

const (
	FinancialPending    FinancialStatus = "PENDING"
	FinancialAuthorized FinancialStatus = "AUTHORIZED"
	FinancialCaptured   FinancialStatus = "CAPTURED"
	FinancialRefunded   FinancialStatus = "REFUNDED"
	FinancialVoided     FinancialStatus = "VOIDED"
)

// DisputeStatus tracks a buyer/seller dispute raised against an order.
type DisputeStatus string

const (
	DisputeNone     DisputeStatus = "NONE"
	DisputeOpen     DisputeStatus = "OPEN"
	DisputeResolved DisputeStatus = "RESOLVED"
)

// DisputeOutcome names the party a resolved dispute favoured.
type DisputeOutcome string

const (
	OutcomeBuyer  DisputeOutcome = "BUYER"
	OutcomeSeller DisputeOutcome = "SELLER"
)

// Order is the escrow-facing view of an order owned by the order service.
type Order struct {
	Id                string          `json:"id" dynamodbav:"id"`
	MerchantId        string          `json:"merchant_id" dynamodbav:"merchant_id"`
	Status            OrderStatus     `json:"status" dynamodbav:"status"`
	FinancialStatus   FinancialStatus `json:"financial_status" dynamodbav:"financial_status"`
	PaymentReference  string          `json:"payment_reference,omitempty" dynamodbav:"payment_reference,omitempty"`
	CourierRemittedAt *time.Time      `json:"courier_remitted_at,omitempty" dynamodbav:"courier_remitted_at,omitempty"`
	BuyerConfirmed    bool            `json:"buyer_confirmed" dynamodbav:"buyer_confirmed"`
	SellerCancelled   bool            `json:"seller_cancelled" dynamodbav:"seller_cancelled"`
	DisputeStatus     DisputeStatus   `json:"dispute_status,omitempty" dynamodbav:"dispute_status,omitempty"`
	DisputeOutcome    DisputeOutcome  `json:"dispute_outcome,omitempty" dynamodbav:"dispute_outcome,omitempty"`
	FulfillmentHalted bool            `json:"fulfillment_halted" dynamodbav:"fulfillment_halted"`
	EscrowId          string          `json:"escrow_id,omitempty" dynamodbav:"escrow_id,omitempty"`
	EscrowStatus      EscrowStatus    `json:"escrow_status,omitempty" dynamodbav:"escrow_status,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at" dynamodbav:"updated_at"`
}

// IsDelivered reports whether the order reached the buyer.
func (o *Order) IsDelivered() bool {
	return o.Status == OrderDelivered
}

// HasOpenDispute reports whether a dispute is raised and not yet resolved.
func (o *Order) HasOpenDispute() bool {
	return o.DisputeStatus == DisputeOpen
}

// ResolvedFor reports whether a dispute was resolved in favour of the given party.
func (o *Order) ResolvedFor(outcome DisputeOutcome) bool {
	return o.DisputeStatus == DisputeResolved && o.DisputeOutcome == outcome
}
