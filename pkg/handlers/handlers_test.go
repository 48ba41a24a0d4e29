package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/chris/order-escrow/pkg/fees"
	gatewaymocks "github.com/chris/order-escrow/pkg/gateway/mocks"
	"github.com/chris/order-escrow/pkg/handlers"
	"github.com/chris/order-escrow/pkg/middleware"
	"github.com/chris/order-escrow/pkg/models"
	schedulermocks "github.com/chris/order-escrow/pkg/scheduler/mocks"
	"github.com/chris/order-escrow/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var secret = []byte("router-test-secret")

type server struct {
	handler http.Handler
	store   *memory.Store
}

func newServer(t *testing.T) *server {
	t.Helper()

	calc, err := fees.NewCalculator("0.05", "0.02", 30)
	require.NoError(t, err)

	sched := new(schedulermocks.Scheduler)
	sched.On("Schedule", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	svc, err := escrow.New(escrow.Deps{
		Store:     store,
		Scheduler: sched,
		Gateway:   new(gatewaymocks.Refunder),
		Fees:      calc,
		Logger:    logger,
	})
	require.NoError(t, err)

	return &server{
		handler: handlers.NewRouter(handlers.NewApiHandler(svc), secret, logger),
		store:   store,
	}
}

func (s *server) do(t *testing.T, actor escrow.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if actor.ID != "" {
		token, err := middleware.NewToken(secret, actor, time.Hour, time.Now())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter(t *testing.T) {
	merchant := escrow.Actor{ID: "merchant-1", Role: escrow.RoleMerchant}
	admin := escrow.Actor{ID: "ops-1", Role: escrow.RoleAdmin}

	t.Run("Healthz Is Public", func(t *testing.T) {
		s := newServer(t)
		rr := s.do(t, escrow.Actor{}, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Missing Token", func(t *testing.T) {
		s := newServer(t)
		rr := s.do(t, escrow.Actor{}, http.MethodGet, "/escrows", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Bad Query Parameter", func(t *testing.T) {
		s := newServer(t)
		rr := s.do(t, admin, http.MethodGet, "/escrows?limit=many", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Prepaid Lifecycle", func(t *testing.T) {
		s := newServer(t)
		ctx := context.Background()
		require.NoError(t, s.store.SaveOrder(ctx, &models.Order{
			Id:               "order-1",
			MerchantId:       merchant.ID,
			Status:           models.OrderConfirmed,
			FinancialStatus:  models.FinancialCaptured,
			PaymentReference: "pay-order-1",
		}))

		rr := s.do(t, merchant, http.MethodPost, "/escrows", api.NewEscrow{
			OrderId:       "order-1",
			MerchantId:    merchant.ID,
			PaymentMethod: "PREPAID",
			Amount:        1000,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var created models.Escrow
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
		assert.Equal(t, models.INITIATED, created.Status)
		assert.Equal(t, int64(950), created.SellerReceives)

		rr = s.do(t, merchant, http.MethodPost, "/escrows/"+created.Id+"/hold", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = s.do(t, merchant, http.MethodPost, "/escrows/"+created.Id+"/release-request", api.ReleaseRequest{Reason: "delivered"})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "an undelivered order cannot request release")

		order, err := s.store.GetOrder(ctx, "order-1")
		require.NoError(t, err)
		order.Status = models.OrderDelivered
		require.NoError(t, s.store.SaveOrder(ctx, order))

		rr = s.do(t, merchant, http.MethodPost, "/escrows/"+created.Id+"/release-request", api.ReleaseRequest{Reason: "delivered"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = s.do(t, merchant, http.MethodPost, "/escrows/"+created.Id+"/release", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = s.do(t, admin, http.MethodPost, "/escrows/"+created.Id+"/release", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = s.do(t, admin, http.MethodPost, "/escrows/"+created.Id+"/release", nil)
		assert.Equal(t, http.StatusConflict, rr.Code)

		rr = s.do(t, merchant, http.MethodGet, "/merchants/merchant-1/account", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var account models.MerchantAccount
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&account))
		assert.Equal(t, int64(950), account.AvailableBalance)

		rr = s.do(t, merchant, http.MethodGet, "/merchants/merchant-2/account", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = s.do(t, merchant, http.MethodGet, "/escrows?status=RELEASED", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var page escrow.Page
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
		assert.Equal(t, 1, page.Total)
	})
}
