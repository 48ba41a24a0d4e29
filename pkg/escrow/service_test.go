package escrow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/audit"
	auditmocks "github.com/chris/order-escrow/pkg/audit/mocks"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/fees"
	gatewaymocks "github.com/chris/order-escrow/pkg/gateway/mocks"
	"github.com/chris/order-escrow/pkg/lock"
	"github.com/chris/order-escrow/pkg/models"
	schedulermocks "github.com/chris/order-escrow/pkg/scheduler/mocks"
	"github.com/chris/order-escrow/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	merchant = Actor{ID: "merchant-1", Role: RoleMerchant}
	admin    = Actor{ID: "admin-1", Role: RoleAdmin}
	system   = SystemActor("returns-workflow")
)

type fixture struct {
	svc   *Service
	store *memory.Store
	sched *schedulermocks.Scheduler
	gw    *gatewaymocks.Refunder
	sink  *auditmocks.Sink
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, lock.NewLocalLocker(), nil)
}

func newFixtureWith(t *testing.T, locker lock.Locker, auditErr error) *fixture {
	t.Helper()

	calc, err := fees.NewCalculator("0.05", "0.02", 30)
	require.NoError(t, err)

	f := &fixture{
		store: memory.New(),
		sched: new(schedulermocks.Scheduler),
		gw:    new(gatewaymocks.Refunder),
		sink:  new(auditmocks.Sink),
		now:   time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	f.sink.On("Record", mock.Anything, mock.Anything).Return(auditErr)

	f.svc, err = New(Deps{
		Store:     f.store,
		Locker:    locker,
		Scheduler: f.sched,
		Gateway:   f.gw,
		Audit:     f.sink,
		Fees:      calc,
		Clock:     func() time.Time { return f.now },
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) saveOrder(t *testing.T, o models.Order) {
	t.Helper()
	require.NoError(t, f.store.SaveOrder(context.Background(), &o))
}

func (f *fixture) order(t *testing.T, id string) *models.Order {
	t.Helper()
	o, err := f.store.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (f *fixture) update(t *testing.T, orderID string, change func(o *models.Order)) {
	t.Helper()
	o := f.order(t, orderID)
	change(o)
	require.NoError(t, f.store.SaveOrder(context.Background(), o))
}

// expectSchedule accepts one schedule call for fireAt.
func (f *fixture) expectSchedule(fireAt time.Time, err error) {
	f.sched.On("Schedule", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(at time.Time) bool {
		return at.Equal(fireAt)
	})).Return(err).Once()
}

func (f *fixture) auditTypes() []audit.EventType {
	var types []audit.EventType
	for _, call := range f.sink.Calls {
		types = append(types, call.Arguments.Get(1).(audit.Event).Type)
	}
	return types
}

func ptr[T any](v T) *T {
	return &v
}

func newOrder(id string, status models.OrderStatus, financial models.FinancialStatus) models.Order {
	return models.Order{
		Id:               id,
		MerchantId:       merchant.ID,
		Status:           status,
		FinancialStatus:  financial,
		PaymentReference: "pay-" + id,
	}
}

// initiate opens an escrow for a freshly saved order.
func (f *fixture) initiate(t *testing.T, o models.Order, method models.PaymentMethod, amount int64) *models.Escrow {
	t.Helper()
	f.saveOrder(t, o)
	e, err := f.svc.InitiateEscrow(context.Background(), merchant, InitiateInput{
		OrderID:       o.Id,
		MerchantID:    merchant.ID,
		PaymentMethod: method,
		Amount:        amount,
	})
	require.NoError(t, err)
	return e
}

// requested drives an escrow to RELEASE_REQUESTED.
func (f *fixture) requested(t *testing.T, o models.Order, method models.PaymentMethod, amount int64, holding time.Duration) *models.Escrow {
	t.Helper()
	ctx := context.Background()
	e := f.initiate(t, o, method, amount)

	_, err := f.svc.HoldEscrow(ctx, merchant, e.Id)
	require.NoError(t, err)

	f.expectSchedule(f.now.Add(holding), nil)
	e, err = f.svc.RequestRelease(ctx, merchant, e.Id, "delivered")
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	calc, err := fees.NewCalculator("0.05", "0.02", 30)
	require.NoError(t, err)

	t.Run("Missing Store", func(t *testing.T) {
		_, err := New(Deps{Scheduler: new(schedulermocks.Scheduler), Gateway: new(gatewaymocks.Refunder), Fees: calc})
		assert.True(t, escrowerr.IsConfiguration(err))
	})

	t.Run("Missing Fees", func(t *testing.T) {
		_, err := New(Deps{Store: memory.New(), Scheduler: new(schedulermocks.Scheduler), Gateway: new(gatewaymocks.Refunder)})
		assert.True(t, escrowerr.IsConfiguration(err))
	})

	t.Run("Defaults", func(t *testing.T) {
		svc, err := New(Deps{Store: memory.New(), Scheduler: new(schedulermocks.Scheduler), Gateway: new(gatewaymocks.Refunder), Fees: calc})
		require.NoError(t, err)
		assert.NotNil(t, svc.locker)
		assert.NotNil(t, svc.audit)
		assert.Equal(t, int32(DefaultDueBatchSize), svc.dueBatch)
	})
}

func TestActor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetEscrow(ctx, Actor{Role: RoleAdmin}, "esc-1")
	assert.True(t, escrowerr.IsAuthorization(err))

	_, err = f.svc.GetEscrow(ctx, Actor{ID: "x", Role: "buyer"}, "esc-1")
	assert.True(t, escrowerr.IsAuthorization(err))
}

// stalledSink never completes a write on its own.
type stalledSink struct {
	deadlines chan bool
}

func (s stalledSink) Record(ctx context.Context, _ audit.Event) error {
	_, ok := ctx.Deadline()
	s.deadlines <- ok
	<-ctx.Done()
	return ctx.Err()
}

func TestAuditWriteIsBounded(t *testing.T) {
	calc, err := fees.NewCalculator("0.05", "0.02", 30)
	require.NoError(t, err)
	store := memory.New()
	sink := stalledSink{deadlines: make(chan bool, 4)}

	svc, err := New(Deps{
		Store:        store,
		Scheduler:    new(schedulermocks.Scheduler),
		Gateway:      new(gatewaymocks.Refunder),
		Audit:        sink,
		Fees:         calc,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuditTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	o := newOrder("ord-1", models.OrderConfirmed, models.FinancialPending)
	require.NoError(t, store.SaveOrder(context.Background(), &o))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := time.Now()
	e, err := svc.InitiateEscrow(ctx, merchant, InitiateInput{
		OrderID:       o.Id,
		MerchantID:    merchant.ID,
		PaymentMethod: models.COD,
		Amount:        1000,
	})

	require.NoError(t, err)
	assert.Equal(t, models.INITIATED, e.Status)
	assert.True(t, <-sink.deadlines)
	assert.Less(t, time.Since(start), time.Second)
}

// busyLocker reports every key as held by another instance.
type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func() error) error {
	return fmt.Errorf("failed to acquire lock: %w", lock.ErrNotAcquired)
}

func TestLockContention(t *testing.T) {
	f := newFixtureWith(t, busyLocker{}, nil)
	e := f.initiate(t, newOrder("ord-1", models.OrderConfirmed, models.FinancialPending), models.COD, 1000)

	_, err := f.svc.HoldEscrow(context.Background(), merchant, e.Id)

	var conflict *escrowerr.StateConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Empty(t, conflict.From)
	assert.Empty(t, conflict.To)
	assert.Equal(t, "state conflict: another operation on escrow "+e.Id+" is in progress", err.Error())
}
