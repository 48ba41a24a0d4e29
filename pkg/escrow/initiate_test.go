package escrow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateEscrow(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.saveOrder(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialPending))

		e, err := f.svc.InitiateEscrow(ctx, merchant, InitiateInput{
			OrderID:       "ord-1",
			MerchantID:    merchant.ID,
			PaymentMethod: models.COD,
			Amount:        500,
			PlatformFee:   ptr(int64(20)),
			CodCharge:     ptr(int64(10)),
		})

		require.NoError(t, err)
		assert.Equal(t, models.INITIATED, e.Status)
		assert.Equal(t, int64(500), e.BuyerPaid)
		assert.Equal(t, int64(30), e.ChargesDeducted)
		assert.Equal(t, int64(470), e.SellerReceives)
		assert.True(t, e.Timing.AutoReleaseAt.Equal(f.now.Add(24*time.Hour)))

		o := f.order(t, "ord-1")
		assert.Equal(t, e.Id, o.EscrowId)
		assert.Equal(t, models.INITIATED, o.EscrowStatus)
		assert.Equal(t, []audit.EventType{audit.EscrowInitiated}, f.auditTypes())
	})

	t.Run("Rate Derived Fees", func(t *testing.T) {
		f := newFixture(t)
		f.saveOrder(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialCaptured))

		e, err := f.svc.InitiateEscrow(ctx, admin, InitiateInput{
			OrderID:       "ord-1",
			MerchantID:    merchant.ID,
			PaymentMethod: models.PREPAID,
			Amount:        10000,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(500), e.PlatformFee)
		assert.Equal(t, int64(0), e.CodCharge)
		assert.Equal(t, e.BuyerPaid-e.ChargesDeducted, e.SellerReceives)
	})

	t.Run("Order Not Found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.InitiateEscrow(ctx, merchant, InitiateInput{OrderID: "missing", MerchantID: merchant.ID, PaymentMethod: models.COD})

		assert.True(t, escrowerr.IsNotFound(err))
	})

	t.Run("Order Of Another Merchant", func(t *testing.T) {
		f := newFixture(t)
		o := newOrder("ord-1", models.OrderConfirmed, models.FinancialPending)
		o.MerchantId = "merchant-2"
		f.saveOrder(t, o)

		_, err := f.svc.InitiateEscrow(ctx, merchant, InitiateInput{OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.COD})

		assert.True(t, escrowerr.IsAuthorization(err))
	})

	t.Run("Acting For Another Merchant", func(t *testing.T) {
		f := newFixture(t)
		f.saveOrder(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialPending))

		_, err := f.svc.InitiateEscrow(ctx, Actor{ID: "merchant-2", Role: RoleMerchant}, InitiateInput{OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.COD})

		assert.True(t, escrowerr.IsAuthorization(err))
	})

	t.Run("Duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.initiate(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialPending), models.COD, 500)

		_, err := f.svc.InitiateEscrow(ctx, merchant, InitiateInput{OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.COD, Amount: 500})

		assert.True(t, escrowerr.IsStateConflict(err))
	})

	t.Run("Policy Rejects", func(t *testing.T) {
		f := newFixture(t)
		f.saveOrder(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialAuthorized))

		_, err := f.svc.InitiateEscrow(ctx, merchant, InitiateInput{OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.PREPAID, Amount: 500})

		var verr *escrowerr.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Reason, "captured")
	})

	t.Run("Zero Value COD", func(t *testing.T) {
		f := newFixture(t)
		e := f.initiate(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialPending), models.COD, 0)

		assert.Equal(t, int64(0), e.SellerReceives)
		assert.Equal(t, int64(0), e.ChargesDeducted)
	})

	t.Run("Invalid Input", func(t *testing.T) {
		f := newFixture(t)
		f.saveOrder(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialCaptured))

		for name, in := range map[string]InitiateInput{
			"unknown method":     {OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: "BARTER", Amount: 1},
			"negative amount":    {OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.COD, Amount: -1},
			"missing order":      {MerchantID: merchant.ID, PaymentMethod: models.COD},
			"negative deduction": {OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.MARKETPLACE, Amount: 10, Deductions: []models.Deduction{{Reason: "x", Amount: -1}}},
			"charges exceed":     {OrderID: "ord-1", MerchantID: merchant.ID, PaymentMethod: models.COD, Amount: 10, PlatformFee: ptr(int64(11))},
		} {
			_, err := f.svc.InitiateEscrow(ctx, merchant, in)
			assert.True(t, escrowerr.IsValidation(err), name)
		}
	})

	t.Run("Fee Identity", func(t *testing.T) {
		f := newFixture(t)
		amounts := []int64{0, 1, 99, 500, 1234, 100000}
		methods := []models.PaymentMethod{models.COD, models.POD, models.PREPAID, models.MARKETPLACE}

		for _, method := range methods {
			for _, amount := range amounts {
				id := fmt.Sprintf("%s-%d", method, amount)
				o := newOrder(id, models.OrderConfirmed, models.FinancialCaptured)
				e := f.initiate(t, o, method, amount)

				assert.Equal(t, e.BuyerPaid-e.ChargesDeducted, e.SellerReceives, id)
				assert.Equal(t, e.PlatformFee+e.CodCharge, e.ChargesDeducted, id)
				assert.GreaterOrEqual(t, e.SellerReceives, int64(0), id)
			}
		}
	})
}
