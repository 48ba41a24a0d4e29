// Package fees computes the platform and collection charges withheld from an escrowed amount.
package fees

import (
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/shopspring/decimal"
)

// Calculator derives charges from configured rates.
type Calculator struct {
	PlatformRate decimal.Decimal
	CodRate      decimal.Decimal
	CodMinimum   int64
}

// Overrides carries charges supplied explicitly by the caller. A nil field falls back to the configured rate.
type Overrides struct {
	PlatformFee    *int64
	CodCharge      *int64
	ShippingCharge *int64
}

// Breakdown is the money split fixed at escrow creation.
type Breakdown struct {
	BuyerPaid       int64
	PlatformFee     int64
	CodCharge       int64
	ShippingCharge  int64
	ChargesDeducted int64
	SellerReceives  int64
}

// NewCalculator parses decimal rates such as "0.025".
func NewCalculator(platformRate, codRate string, codMinimum int64) (*Calculator, error) {
	pr, err := decimal.NewFromString(platformRate)
	if err != nil {
		return nil, &escrowerr.ConfigurationError{Reason: "invalid platform fee rate " + platformRate}
	}
	cr, err := decimal.NewFromString(codRate)
	if err != nil {
		return nil, &escrowerr.ConfigurationError{Reason: "invalid cod charge rate " + codRate}
	}
	if pr.IsNegative() || cr.IsNegative() || codMinimum < 0 {
		return nil, &escrowerr.ConfigurationError{Reason: "fee rates must not be negative"}
	}
	return &Calculator{PlatformRate: pr, CodRate: cr, CodMinimum: codMinimum}, nil
}

// Compute splits amount into charges and the seller's share. Explicit charges
// must fit within amount; rate-derived charges are clamped so they always do.
func (c *Calculator) Compute(method models.PaymentMethod, amount int64, o Overrides) (Breakdown, error) {
	if amount < 0 {
		return Breakdown{}, escrowerr.Validation("amount must not be negative")
	}
	for _, v := range []*int64{o.PlatformFee, o.CodCharge, o.ShippingCharge} {
		if v != nil && *v < 0 {
			return Breakdown{}, escrowerr.Validation("charges must not be negative")
		}
	}

	b := Breakdown{BuyerPaid: amount}
	explicit := o.PlatformFee != nil || o.CodCharge != nil

	if o.PlatformFee != nil {
		b.PlatformFee = *o.PlatformFee
	} else {
		b.PlatformFee = c.rate(c.PlatformRate, amount)
	}

	switch {
	case o.CodCharge != nil:
		b.CodCharge = *o.CodCharge
	case method == models.COD && amount > 0:
		b.CodCharge = max(c.rate(c.CodRate, amount), c.CodMinimum)
	}

	if o.ShippingCharge != nil {
		b.ShippingCharge = *o.ShippingCharge
	}

	if b.PlatformFee+b.CodCharge > amount {
		if explicit {
			return Breakdown{}, escrowerr.Validation("charges %d exceed the amount paid %d", b.PlatformFee+b.CodCharge, amount)
		}
		b.PlatformFee = min(b.PlatformFee, amount)
		b.CodCharge = amount - b.PlatformFee
	}

	b.ChargesDeducted = b.PlatformFee + b.CodCharge
	b.SellerReceives = amount - b.ChargesDeducted
	return b, nil
}

func (c *Calculator) rate(r decimal.Decimal, amount int64) int64 {
	if r.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(r).Round(0).IntPart()
}
