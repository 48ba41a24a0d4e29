package models

import (
	"errors"
	"fmt"
	"time"
)

// EscrowStatus defines the possible states of an escrow.
type EscrowStatus string

const (
	INITIATED         EscrowStatus = "INITIATED"
	HELD              EscrowStatus = "HELD"
	RELEASE_REQUESTED EscrowStatus = "RELEASE_REQUESTED"
	RELEASED          EscrowStatus = "RELEASED"
	REFUNDED          EscrowStatus = "REFUNDED"
	DISPUTE_OPEN      EscrowStatus = "DISPUTE_OPEN"
)

// PaymentMethod is the way the buyer's money is collected for an order.
type PaymentMethod string

const (
	COD         PaymentMethod = "COD"
	POD         PaymentMethod = "POD"
	PREPAID     PaymentMethod = "PREPAID"
	MARKETPLACE PaymentMethod = "MARKETPLACE"
)

// Escrow represents the custody record for a single order's funds.
// Amounts are in minor currency units.
type Escrow struct {
	Id              string        `json:"id" dynamodbav:"id"`
	OrderId         string        `json:"order_id" dynamodbav:"order_id"`
	MerchantId      string        `json:"merchant_id" dynamodbav:"merchant_id"`
	PaymentMethod   PaymentMethod `json:"payment_method" dynamodbav:"payment_method"`
	Status          EscrowStatus  `json:"status" dynamodbav:"status"`
	BuyerPaid       int64         `json:"buyer_paid" dynamodbav:"buyer_paid"`
	PlatformFee     int64         `json:"platform_fee" dynamodbav:"platform_fee"`
	ShippingCharge  int64         `json:"shipping_charge" dynamodbav:"shipping_charge"`
	CodCharge       int64         `json:"cod_charge" dynamodbav:"cod_charge"`
	ChargesDeducted int64         `json:"charges_deducted" dynamodbav:"charges_deducted"`
	SellerReceives  int64         `json:"seller_receives" dynamodbav:"seller_receives"`
	ReleasedAmount  int64         `json:"released_amount" dynamodbav:"released_amount"`
	RefundedAmount  int64         `json:"refunded_amount" dynamodbav:"refunded_amount"`
	Deductions      []Deduction   `json:"deductions,omitempty" dynamodbav:"deductions,omitempty"`
	Timing          EscrowTiming  `json:"timing" dynamodbav:"timing"`
	Audit           EscrowAudit   `json:"audit" dynamodbav:"audit"`
	Version         int64         `json:"version" dynamodbav:"version"`
	CreatedAt       time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" dynamodbav:"updated_at"`
}

// EscrowTiming holds the timestamps an escrow collects on its way through the lifecycle.
type EscrowTiming struct {
	HoldStartedAt      *time.Time `json:"hold_started_at,omitempty" dynamodbav:"hold_started_at,omitempty"`
	AutoReleaseAt      *time.Time `json:"auto_release_at,omitempty" dynamodbav:"auto_release_at,omitempty"`
	ReleaseRequestedAt *time.Time `json:"release_requested_at,omitempty" dynamodbav:"release_requested_at,omitempty"`
	ReleasedAt         *time.Time `json:"released_at,omitempty" dynamodbav:"released_at,omitempty"`
	RefundedAt         *time.Time `json:"refunded_at,omitempty" dynamodbav:"refunded_at,omitempty"`
	DisputeOpenedAt    *time.Time `json:"dispute_opened_at,omitempty" dynamodbav:"dispute_opened_at,omitempty"`
	BuyerConfirmedAt   *time.Time `json:"buyer_confirmed_at,omitempty" dynamodbav:"buyer_confirmed_at,omitempty"`
}

// EscrowAudit records who moved the escrow and why.
type EscrowAudit struct {
	ReleasedBy      string `json:"released_by,omitempty" dynamodbav:"released_by,omitempty"`
	ReleaseReason   string `json:"release_reason,omitempty" dynamodbav:"release_reason,omitempty"`
	RefundedBy      string `json:"refunded_by,omitempty" dynamodbav:"refunded_by,omitempty"`
	RefundReason    string `json:"refund_reason,omitempty" dynamodbav:"refund_reason,omitempty"`
	RefundReference string `json:"refund_reference,omitempty" dynamodbav:"refund_reference,omitempty"`
	DisputeId       string `json:"dispute_id,omitempty" dynamodbav:"dispute_id,omitempty"`
}

// Deduction is an itemized amount withheld from the seller on release.
type Deduction struct {
	Reason string `json:"reason" dynamodbav:"reason"`
	Amount int64  `json:"amount" dynamodbav:"amount"`
}

var (
	ErrNegativeAmount       = errors.New("amounts must not be negative")
	ErrChargesExceedPaid    = errors.New("charges deducted exceed the amount paid by the buyer")
	ErrSellerAmountDrift    = errors.New("seller amount does not equal buyer paid minus charges")
	ErrChargesDrift         = errors.New("charges deducted does not equal platform fee plus cod charge")
	ErrTimingBeforeCreation = errors.New("timing precedes escrow creation")
	ErrReleasedAndRefund    = errors.New("escrow cannot be both released and refunded")
)

// TotalDeductions sums the itemized deductions.
func (e *Escrow) TotalDeductions() int64 {
	var total int64
	for _, d := range e.Deductions {
		total += d.Amount
	}
	return total
}

// Validate checks the money and timing invariants of an escrow before it is written.
func (e *Escrow) Validate() error {
	for _, v := range []int64{e.BuyerPaid, e.PlatformFee, e.ShippingCharge, e.CodCharge, e.ChargesDeducted, e.SellerReceives, e.ReleasedAmount, e.RefundedAmount} {
		if v < 0 {
			return ErrNegativeAmount
		}
	}
	for _, d := range e.Deductions {
		if d.Amount < 0 {
			return fmt.Errorf("deduction %q: %w", d.Reason, ErrNegativeAmount)
		}
	}
	if e.ChargesDeducted != e.PlatformFee+e.CodCharge {
		return ErrChargesDrift
	}
	if e.ChargesDeducted > e.BuyerPaid {
		return ErrChargesExceedPaid
	}
	if e.SellerReceives != e.BuyerPaid-e.ChargesDeducted {
		return ErrSellerAmountDrift
	}
	return e.Timing.Validate(e.CreatedAt)
}

// Validate checks that no timestamp precedes createdAt and that release and refund are exclusive.
func (t EscrowTiming) Validate(createdAt time.Time) error {
	for _, ts := range []*time.Time{t.HoldStartedAt, t.ReleaseRequestedAt, t.ReleasedAt, t.RefundedAt, t.DisputeOpenedAt, t.BuyerConfirmedAt} {
		if ts != nil && ts.Before(createdAt) {
			return ErrTimingBeforeCreation
		}
	}
	if t.ReleasedAt != nil && t.RefundedAt != nil {
		return ErrReleasedAndRefund
	}
	return nil
}

// MerchantAccount is the merchant's balance aggregate in the ledger.
type MerchantAccount struct {
	MerchantId       string    `json:"merchant_id" dynamodbav:"merchant_id"`
	AvailableBalance int64     `json:"available_balance" dynamodbav:"available_balance"`
	PendingCharges   int64     `json:"pending_charges" dynamodbav:"pending_charges"`
	TotalEarnings    int64     `json:"total_earnings" dynamodbav:"total_earnings"`
	TotalWithdrawn   int64     `json:"total_withdrawn" dynamodbav:"total_withdrawn"`
	TotalCharges     int64     `json:"total_charges" dynamodbav:"total_charges"`
	UpdatedAt        time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// LedgerEntry represents a single credit recorded against a merchant account.
type LedgerEntry struct {
	EntryID     string    `json:"entry_id" dynamodbav:"entry_id"`
	EscrowID    string    `json:"escrow_id" dynamodbav:"escrow_id"`
	MerchantID  string    `json:"merchant_id" dynamodbav:"merchant_id"`
	Credit      int64     `json:"credit" dynamodbav:"credit"`
	Description string    `json:"description" dynamodbav:"description"`
	Timestamp   time.Time `json:"timestamp" dynamodbav:"timestamp"`
}
