package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/fees"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/policy"
	"github.com/chris/order-escrow/pkg/storage"
	"github.com/google/uuid"
)

// InitiateInput opens an escrow for an order. Nil charges are derived from the configured rates.
type InitiateInput struct {
	OrderID        string
	MerchantID     string
	PaymentMethod  models.PaymentMethod
	Amount         int64
	PlatformFee    *int64
	CodCharge      *int64
	ShippingCharge *int64
	Deductions     []models.Deduction
}

func (in InitiateInput) validate() error {
	if in.OrderID == "" {
		return escrowerr.Validation("order id is required")
	}
	if in.MerchantID == "" {
		return escrowerr.Validation("merchant id is required")
	}
	if !policy.Valid(in.PaymentMethod) {
		return escrowerr.Validation("unsupported payment method %q", in.PaymentMethod)
	}
	if in.Amount < 0 {
		return escrowerr.Validation("amount must not be negative")
	}
	for _, d := range in.Deductions {
		if d.Amount < 0 {
			return escrowerr.Validation("deduction %q must not be negative", d.Reason)
		}
	}
	return nil
}

// InitiateEscrow creates an INITIATED escrow for an order owned by the merchant.
func (s *Service) InitiateEscrow(ctx context.Context, actor Actor, in InitiateInput) (*models.Escrow, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if actor.Role == RoleMerchant && actor.ID != in.MerchantID {
		return nil, escrowerr.Unauthorized("merchant %s may not open escrows for merchant %s", actor.ID, in.MerchantID)
	}

	order, err := s.store.GetOrder(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, escrowerr.NotFound("order", in.OrderID)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", in.OrderID, err)
	}
	if order.MerchantId != in.MerchantID {
		return nil, escrowerr.Unauthorized("order %s does not belong to merchant %s", order.Id, in.MerchantID)
	}
	if order.EscrowId != "" {
		return nil, &escrowerr.StateConflictError{From: string(order.EscrowStatus), To: string(models.INITIATED), Reason: "escrow already exists for order " + order.Id}
	}

	p, err := policy.For(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := checkPolicy(p.CanInitiate(order)); err != nil {
		return nil, err
	}

	split, err := s.fees.Compute(in.PaymentMethod, in.Amount, fees.Overrides{
		PlatformFee:    in.PlatformFee,
		CodCharge:      in.CodCharge,
		ShippingCharge: in.ShippingCharge,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock()
	autoReleaseAt := now.Add(p.HoldingPeriod())
	e := &models.Escrow{
		Id:              uuid.NewString(),
		OrderId:         order.Id,
		MerchantId:      in.MerchantID,
		PaymentMethod:   in.PaymentMethod,
		Status:          models.INITIATED,
		BuyerPaid:       split.BuyerPaid,
		PlatformFee:     split.PlatformFee,
		ShippingCharge:  split.ShippingCharge,
		CodCharge:       split.CodCharge,
		ChargesDeducted: split.ChargesDeducted,
		SellerReceives:  split.SellerReceives,
		Deductions:      in.Deductions,
		Timing:          models.EscrowTiming{AutoReleaseAt: &autoReleaseAt},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.Validate(); err != nil {
		return nil, escrowerr.Validation("%v", err)
	}

	link := &storage.OrderPatch{OrderID: order.Id, EscrowID: e.Id, EscrowStatus: e.Status, UpdatedAt: now}
	if err := s.store.CreateEscrow(ctx, e, link); err != nil {
		if errors.Is(err, storage.ErrEscrowExists) {
			return nil, &escrowerr.StateConflictError{To: string(models.INITIATED), Reason: "escrow already exists for order " + order.Id}
		}
		return nil, fmt.Errorf("failed to create escrow for order %s: %w", order.Id, err)
	}

	s.logger.InfoContext(ctx, "escrow initiated", "escrow_id", e.Id, "order_id", e.OrderId, "payment_method", string(e.PaymentMethod), "seller_receives", e.SellerReceives)
	s.record(ctx, audit.EscrowInitiated, e, actor, map[string]any{
		"order_id":         e.OrderId,
		"payment_method":   string(e.PaymentMethod),
		"buyer_paid":       e.BuyerPaid,
		"charges_deducted": e.ChargesDeducted,
		"seller_receives":  e.SellerReceives,
	})
	return e, nil
}
