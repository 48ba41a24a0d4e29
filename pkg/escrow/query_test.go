package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEscrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.initiate(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialPending), models.COD, 1000)

	t.Run("Owner", func(t *testing.T) {
		got, err := f.svc.GetEscrow(ctx, merchant, e.Id)
		require.NoError(t, err)
		assert.Equal(t, e.Id, got.Id)
	})

	t.Run("Admin", func(t *testing.T) {
		_, err := f.svc.GetEscrow(ctx, admin, e.Id)
		assert.NoError(t, err)
	})

	t.Run("Other Merchant", func(t *testing.T) {
		_, err := f.svc.GetEscrow(ctx, Actor{ID: "merchant-2", Role: RoleMerchant}, e.Id)
		assert.True(t, escrowerr.IsAuthorization(err))
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := f.svc.GetEscrow(ctx, admin, "missing")
		assert.True(t, escrowerr.IsNotFound(err))
	})
}

func TestListEscrows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"ord-1", "ord-2", "ord-3"} {
		f.initiate(t, newOrder(id, models.OrderConfirmed, models.FinancialCaptured), models.PREPAID, 1000)
		f.advance(time.Minute)
	}
	other := newOrder("ord-4", models.OrderConfirmed, models.FinancialCaptured)
	other.MerchantId = "merchant-2"
	f.saveOrder(t, other)
	_, err := f.svc.InitiateEscrow(ctx, admin, InitiateInput{OrderID: "ord-4", MerchantID: "merchant-2", PaymentMethod: models.COD, Amount: 10})
	require.NoError(t, err)

	t.Run("Merchant Is Pinned", func(t *testing.T) {
		page, err := f.svc.ListEscrows(ctx, merchant, Filter{}, PageRequest{Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Limit)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "ord-3", page.Items[0].OrderId)
	})

	t.Run("Second Page", func(t *testing.T) {
		page, err := f.svc.ListEscrows(ctx, merchant, Filter{}, PageRequest{Offset: 2, Limit: 2})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "ord-1", page.Items[0].OrderId)
	})

	t.Run("Admin Filters", func(t *testing.T) {
		page, err := f.svc.ListEscrows(ctx, admin, Filter{PaymentMethod: models.COD}, PageRequest{})

		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, DefaultPageLimit, page.Limit)
	})

	t.Run("Other Merchant", func(t *testing.T) {
		_, err := f.svc.ListEscrows(ctx, merchant, Filter{MerchantID: "merchant-2"}, PageRequest{})
		assert.True(t, escrowerr.IsAuthorization(err))
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := f.svc.ListEscrows(ctx, admin, Filter{Status: "LOST"}, PageRequest{})
		assert.True(t, escrowerr.IsValidation(err))

		_, err = f.svc.ListEscrows(ctx, admin, Filter{}, PageRequest{Offset: -1})
		assert.True(t, escrowerr.IsValidation(err))
	})

	t.Run("Limit Capped", func(t *testing.T) {
		page, err := f.svc.ListEscrows(ctx, admin, Filter{}, PageRequest{Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, MaxPageLimit, page.Limit)
	})
}

func TestMerchantAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetMerchantAccount(ctx, merchant, merchant.ID)
	assert.True(t, escrowerr.IsNotFound(err))

	e := f.requested(t, remittedCODOrder("ord-1", f.now), models.COD, 1000, 24*time.Hour)
	_, err = f.svc.ReleaseEscrow(ctx, admin, e.Id)
	require.NoError(t, err)

	account, err := f.svc.GetMerchantAccount(ctx, merchant, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, e.SellerReceives, account.AvailableBalance)

	entries, err := f.svc.ListLedgerEntries(ctx, merchant, merchant.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = f.svc.GetMerchantAccount(ctx, Actor{ID: "merchant-2", Role: RoleMerchant}, merchant.ID)
	assert.True(t, escrowerr.IsAuthorization(err))
}
