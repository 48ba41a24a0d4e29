// Package api defines the HTTP contract of the escrow service: request and
// response bodies, the server interface, and its chi routing.
package api

import "github.com/chris/order-escrow/pkg/models"

// Error is the body of every non-2xx response.
type Error struct {
	Error string `json:"error"`
}

// NewEscrow is the body of POST /escrows. Omitted charges are derived from the configured rates.
type NewEscrow struct {
	OrderId        string             `json:"order_id"`
	MerchantId     string             `json:"merchant_id"`
	PaymentMethod  string             `json:"payment_method"`
	Amount         int64              `json:"amount"`
	PlatformFee    *int64             `json:"platform_fee,omitempty"`
	CodCharge      *int64             `json:"cod_charge,omitempty"`
	ShippingCharge *int64             `json:"shipping_charge,omitempty"`
	Deductions     []models.Deduction `json:"deductions,omitempty"`
}

// ReleaseRequest is the body of POST /escrows/{escrowId}/release-request.
type ReleaseRequest struct {
	Reason string `json:"reason"`
}

// RefundRequest is the body of POST /escrows/{escrowId}/refund. A missing amount refunds everything.
type RefundRequest struct {
	Reason string `json:"reason"`
	Amount *int64 `json:"amount,omitempty"`
}

// DisputeRequest is the body of POST /escrows/{escrowId}/dispute.
type DisputeRequest struct {
	DisputeId string `json:"dispute_id"`
}

// ListEscrowsParams are the query parameters of GET /escrows.
type ListEscrowsParams struct {
	MerchantId    *string `form:"merchant_id,omitempty" json:"merchant_id,omitempty"`
	Status        *string `form:"status,omitempty" json:"status,omitempty"`
	PaymentMethod *string `form:"payment_method,omitempty" json:"payment_method,omitempty"`
	Offset        *int    `form:"offset,omitempty" json:"offset,omitempty"`
	Limit         *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListLedgerEntriesParams are the query parameters of GET /merchants/{merchantId}/ledger.
type ListLedgerEntriesParams struct {
	Limit *int32 `form:"limit,omitempty" json:"limit,omitempty"`
}
