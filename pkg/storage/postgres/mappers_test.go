package postgres

import (
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowMapping(t *testing.T) {
	created := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	release := created.Add(120 * time.Hour)
	escrow := &models.Escrow{
		Id:              "e1",
		OrderId:         "o1",
		MerchantId:      "m1",
		PaymentMethod:   models.MARKETPLACE,
		Status:          models.RELEASE_REQUESTED,
		BuyerPaid:       1000,
		PlatformFee:     40,
		ChargesDeducted: 40,
		SellerReceives:  960,
		Deductions:      []models.Deduction{{Reason: "scratched lens", Amount: 60}},
		Timing:          models.EscrowTiming{AutoReleaseAt: &release},
		Audit:           models.EscrowAudit{DisputeId: "d1"},
		Version:         2,
		CreatedAt:       created,
		UpdatedAt:       created,
	}

	row, err := toEscrowModel(escrow)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"reason":"scratched lens","amount":60}]`, row.Deductions)

	back, err := toDomainEscrow(row)
	require.NoError(t, err)
	assert.Equal(t, *escrow, back)
}

func TestEscrowMappingEmptyDeductions(t *testing.T) {
	row, err := toEscrowModel(&models.Escrow{Id: "e1"})
	require.NoError(t, err)
	assert.Equal(t, "[]", row.Deductions)

	back, err := toDomainEscrow(row)
	require.NoError(t, err)
	assert.Nil(t, back.Deductions)
}

func TestTransitionColumnsSkipMoneySplit(t *testing.T) {
	cols := transitionColumns(escrowModel{Status: "RELEASED", Version: 4})

	assert.Equal(t, int64(5), cols["version"])
	assert.Equal(t, "RELEASED", cols["status"])
	for _, fixed := range []string{"buyer_paid", "platform_fee", "cod_charge", "charges_deducted", "seller_receives"} {
		assert.NotContains(t, cols, fixed)
	}
}

func TestOrderMapping(t *testing.T) {
	order := &models.Order{Id: "o1", MerchantId: "m1", Status: models.OrderDelivered, FinancialStatus: models.FinancialCaptured, DisputeStatus: models.DisputeNone}

	row := toOrderModel(order)
	assert.Nil(t, row.EscrowID)
	assert.Equal(t, *order, toDomainOrder(row))

	order.EscrowId = "e1"
	row = toOrderModel(order)
	require.NotNil(t, row.EscrowID)
	assert.Equal(t, "e1", *row.EscrowID)
}
