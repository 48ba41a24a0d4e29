package escrow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/gateway"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// passthroughLocker leaves serialisation to the storage guard alone.
type passthroughLocker struct{}

func (passthroughLocker) WithLock(_ context.Context, _ string, fn func() error) error {
	return fn()
}

func remittedCODOrder(id string, at time.Time) models.Order {
	o := newOrder(id, models.OrderDelivered, models.FinancialPending)
	o.CourierRemittedAt = &at
	return o
}

func TestCODReleaseBeforeDelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.saveOrder(t, newOrder("ord-a", models.OrderShipped, models.FinancialPending))

	e, err := f.svc.InitiateEscrow(ctx, merchant, InitiateInput{
		OrderID:       "ord-a",
		MerchantID:    merchant.ID,
		PaymentMethod: models.COD,
		Amount:        500,
		PlatformFee:   ptr(int64(20)),
		CodCharge:     ptr(int64(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(470), e.SellerReceives)

	_, err = f.svc.ReleaseEscrow(ctx, admin, e.Id)

	var verr *escrowerr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "Order must be delivered")

	stored, err := f.store.GetEscrow(ctx, e.Id)
	require.NoError(t, err)
	assert.Equal(t, models.INITIATED, stored.Status)
}

func TestPrepaidRefundAfterCancellation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.initiate(t, newOrder("ord-b", models.OrderConfirmed, models.FinancialCaptured), models.PREPAID, 10000)
	f.update(t, "ord-b", func(o *models.Order) { o.Status = models.OrderCancelled })

	f.gw.On("Refund", mock.Anything, "pay-ord-b", int64(10000)).Return(gateway.Confirmation{RefundID: "rf-1", Status: "succeeded", Amount: 10000}, nil).Once()

	refunded, err := f.svc.RefundEscrow(ctx, system, e.Id, RefundInput{Reason: "order cancelled"})

	require.NoError(t, err)
	assert.Equal(t, models.REFUNDED, refunded.Status)
	assert.Equal(t, int64(10000), refunded.RefundedAmount)
	assert.Equal(t, "rf-1", refunded.Audit.RefundReference)
	assert.Equal(t, models.FinancialRefunded, f.order(t, "ord-b").FinancialStatus)
	assert.Equal(t, models.REFUNDED, f.order(t, "ord-b").EscrowStatus)
	f.gw.AssertExpectations(t)
}

func TestMarketplaceReleaseWaitsForWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.requested(t, newOrder("ord-c", models.OrderDelivered, models.FinancialCaptured), models.MARKETPLACE, 10000, 120*time.Hour)
	assert.Equal(t, models.RELEASE_REQUESTED, e.Status)

	_, err := f.svc.ReleaseEscrow(ctx, admin, e.Id)

	var verr *escrowerr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "Awaiting buyer confirmation")

	f.advance(120 * time.Hour)
	released, err := f.svc.ReleaseEscrow(ctx, admin, e.Id)

	require.NoError(t, err)
	assert.Equal(t, models.RELEASED, released.Status)
	assert.Equal(t, int64(9500), released.ReleasedAmount)
	f.sched.AssertExpectations(t)
}

func TestConcurrentRelease(t *testing.T) {
	lockers := map[string]func(t *testing.T) *fixture{
		"Escrow Lock":   func(t *testing.T) *fixture { return newFixture(t) },
		"Storage Guard": func(t *testing.T) *fixture { return newFixtureWith(t, passthroughLocker{}, nil) },
	}

	for name, build := range lockers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := build(t)
			e := f.requested(t, remittedCODOrder("ord-d", f.now), models.COD, 10000, 24*time.Hour)

			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = f.svc.ReleaseEscrow(ctx, admin, e.Id)
				}(i)
			}
			wg.Wait()

			succeeded, conflicted := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case escrowerr.IsStateConflict(err):
					conflicted++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, succeeded)
			assert.Equal(t, 1, conflicted)

			account, err := f.store.GetMerchantAccount(ctx, merchant.ID)
			require.NoError(t, err)
			assert.Equal(t, e.SellerReceives, account.AvailableBalance)

			entries, err := f.store.ListLedgerEntries(ctx, merchant.ID, 10)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestPolicyIsolationThroughService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Same delivery state, no courier remittance: COD cannot release, PREPAID can.
	cod := f.requestedWithoutRemittance(t, "ord-cod", models.COD)
	prepaid := f.requested(t, newOrder("ord-pre", models.OrderDelivered, models.FinancialCaptured), models.PREPAID, 1000, 72*time.Hour)

	_, err := f.svc.ReleaseEscrow(ctx, admin, cod.Id)
	assert.True(t, escrowerr.IsValidation(err))

	_, err = f.svc.ReleaseEscrow(ctx, admin, prepaid.Id)
	assert.NoError(t, err)
}

// requestedWithoutRemittance drives a COD escrow to RELEASE_REQUESTED, then
// withdraws the remittance so only the policy stands in the way of release.
func (f *fixture) requestedWithoutRemittance(t *testing.T, orderID string, method models.PaymentMethod) *models.Escrow {
	t.Helper()
	e := f.requested(t, remittedCODOrder(orderID, f.now), method, 1000, 24*time.Hour)
	f.update(t, orderID, func(o *models.Order) { o.CourierRemittedAt = nil })
	return e
}
