package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chris/order-escrow/pkg/models"
	"gorm.io/gorm"
)

func toEscrowModel(e *models.Escrow) (escrowModel, error) {
	deductions := e.Deductions
	if deductions == nil {
		deductions = []models.Deduction{}
	}
	raw, err := json.Marshal(deductions)
	if err != nil {
		return escrowModel{}, fmt.Errorf("marshal deductions: %w", err)
	}
	return escrowModel{
		ID:                 e.Id,
		OrderID:            e.OrderId,
		MerchantID:         e.MerchantId,
		PaymentMethod:      string(e.PaymentMethod),
		Status:             string(e.Status),
		BuyerPaid:          e.BuyerPaid,
		PlatformFee:        e.PlatformFee,
		ShippingCharge:     e.ShippingCharge,
		CodCharge:          e.CodCharge,
		ChargesDeducted:    e.ChargesDeducted,
		SellerReceives:     e.SellerReceives,
		ReleasedAmount:     e.ReleasedAmount,
		RefundedAmount:     e.RefundedAmount,
		Deductions:         string(raw),
		HoldStartedAt:      e.Timing.HoldStartedAt,
		AutoReleaseAt:      e.Timing.AutoReleaseAt,
		ReleaseRequestedAt: e.Timing.ReleaseRequestedAt,
		ReleasedAt:         e.Timing.ReleasedAt,
		RefundedAt:         e.Timing.RefundedAt,
		DisputeOpenedAt:    e.Timing.DisputeOpenedAt,
		BuyerConfirmedAt:   e.Timing.BuyerConfirmedAt,
		ReleasedBy:         e.Audit.ReleasedBy,
		ReleaseReason:      e.Audit.ReleaseReason,
		RefundedBy:         e.Audit.RefundedBy,
		RefundReason:       e.Audit.RefundReason,
		RefundReference:    e.Audit.RefundReference,
		DisputeID:          e.Audit.DisputeId,
		Version:            e.Version,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}, nil
}

func toDomainEscrow(row escrowModel) (models.Escrow, error) {
	var deductions []models.Deduction
	if row.Deductions != "" {
		if err := json.Unmarshal([]byte(row.Deductions), &deductions); err != nil {
			return models.Escrow{}, fmt.Errorf("unmarshal deductions: %w", err)
		}
	}
	if len(deductions) == 0 {
		deductions = nil
	}
	return models.Escrow{
		Id:              row.ID,
		OrderId:         row.OrderID,
		MerchantId:      row.MerchantID,
		PaymentMethod:   models.PaymentMethod(row.PaymentMethod),
		Status:          models.EscrowStatus(row.Status),
		BuyerPaid:       row.BuyerPaid,
		PlatformFee:     row.PlatformFee,
		ShippingCharge:  row.ShippingCharge,
		CodCharge:       row.CodCharge,
		ChargesDeducted: row.ChargesDeducted,
		SellerReceives:  row.SellerReceives,
		ReleasedAmount:  row.ReleasedAmount,
		RefundedAmount:  row.RefundedAmount,
		Deductions:      deductions,
		Timing: models.EscrowTiming{
			HoldStartedAt:      row.HoldStartedAt,
			AutoReleaseAt:      row.AutoReleaseAt,
			ReleaseRequestedAt: row.ReleaseRequestedAt,
			ReleasedAt:         row.ReleasedAt,
			RefundedAt:         row.RefundedAt,
			DisputeOpenedAt:    row.DisputeOpenedAt,
			BuyerConfirmedAt:   row.BuyerConfirmedAt,
		},
		Audit: models.EscrowAudit{
			ReleasedBy:      row.ReleasedBy,
			ReleaseReason:   row.ReleaseReason,
			RefundedBy:      row.RefundedBy,
			RefundReason:    row.RefundReason,
			RefundReference: row.RefundReference,
			DisputeId:       row.DisputeID,
		},
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// transitionColumns lists the columns a guarded transition may change. The
// money split is not among them.
func transitionColumns(row escrowModel) map[string]any {
	return map[string]any{
		"status":               row.Status,
		"released_amount":      row.ReleasedAmount,
		"refunded_amount":      row.RefundedAmount,
		"hold_started_at":      row.HoldStartedAt,
		"auto_release_at":      row.AutoReleaseAt,
		"release_requested_at": row.ReleaseRequestedAt,
		"released_at":          row.ReleasedAt,
		"refunded_at":          row.RefundedAt,
		"dispute_opened_at":    row.DisputeOpenedAt,
		"buyer_confirmed_at":   row.BuyerConfirmedAt,
		"released_by":          row.ReleasedBy,
		"release_reason":       row.ReleaseReason,
		"refunded_by":          row.RefundedBy,
		"refund_reason":        row.RefundReason,
		"refund_reference":     row.RefundReference,
		"dispute_id":           row.DisputeID,
		"version":              row.Version + 1,
		"updated_at":           row.UpdatedAt,
	}
}

func toOrderModel(o *models.Order) orderModel {
	return orderModel{
		ID:                o.Id,
		MerchantID:        o.MerchantId,
		Status:            string(o.Status),
		FinancialStatus:   string(o.FinancialStatus),
		PaymentReference:  o.PaymentReference,
		CourierRemittedAt: o.CourierRemittedAt,
		BuyerConfirmed:    o.BuyerConfirmed,
		SellerCancelled:   o.SellerCancelled,
		DisputeStatus:     string(o.DisputeStatus),
		DisputeOutcome:    string(o.DisputeOutcome),
		FulfillmentHalted: o.FulfillmentHalted,
		EscrowID:          nullableString(o.EscrowId),
		EscrowStatus:      string(o.EscrowStatus),
		UpdatedAt:         o.UpdatedAt,
	}
}

func toDomainOrder(row orderModel) models.Order {
	escrowID := ""
	if row.EscrowID != nil {
		escrowID = *row.EscrowID
	}
	return models.Order{
		Id:                row.ID,
		MerchantId:        row.MerchantID,
		Status:            models.OrderStatus(row.Status),
		FinancialStatus:   models.FinancialStatus(row.FinancialStatus),
		PaymentReference:  row.PaymentReference,
		CourierRemittedAt: row.CourierRemittedAt,
		BuyerConfirmed:    row.BuyerConfirmed,
		SellerCancelled:   row.SellerCancelled,
		DisputeStatus:     models.DisputeStatus(row.DisputeStatus),
		DisputeOutcome:    models.DisputeOutcome(row.DisputeOutcome),
		FulfillmentHalted: row.FulfillmentHalted,
		EscrowId:          escrowID,
		EscrowStatus:      models.EscrowStatus(row.EscrowStatus),
		UpdatedAt:         row.UpdatedAt,
	}
}

func toDomainAccount(row merchantAccountModel) models.MerchantAccount {
	return models.MerchantAccount{
		MerchantId:       row.MerchantID,
		AvailableBalance: row.AvailableBalance,
		PendingCharges:   row.PendingCharges,
		TotalEarnings:    row.TotalEarnings,
		TotalWithdrawn:   row.TotalWithdrawn,
		TotalCharges:     row.TotalCharges,
		UpdatedAt:        row.UpdatedAt,
	}
}

func toLedgerEntryModel(e models.LedgerEntry) ledgerEntryModel {
	return ledgerEntryModel{
		EntryID:     e.EntryID,
		EscrowID:    e.EscrowID,
		MerchantID:  e.MerchantID,
		Credit:      e.Credit,
		Description: e.Description,
		Timestamp:   e.Timestamp,
	}
}

func toDomainLedgerEntry(row ledgerEntryModel) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:     row.EntryID,
		EscrowID:    row.EscrowID,
		MerchantID:  row.MerchantID,
		Credit:      row.Credit,
		Description: row.Description,
		Timestamp:   row.Timestamp,
	}
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
