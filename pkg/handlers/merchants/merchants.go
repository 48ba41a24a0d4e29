package merchants

import (
	"context"
	"net/http"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/chris/order-escrow/pkg/handlers/response"
	"github.com/chris/order-escrow/pkg/middleware"
	"github.com/chris/order-escrow/pkg/models"
)

// Service is the part of the escrow service the merchant endpoints call.
type Service interface {
	GetMerchantAccount(ctx context.Context, actor escrow.Actor, merchantID string) (*models.MerchantAccount, error)
	ListLedgerEntries(ctx context.Context, actor escrow.Actor, merchantID string, limit int32) ([]models.LedgerEntry, error)
}

// MerchantHandler holds the dependencies for merchant account handlers.
type MerchantHandler struct {
	Service Service
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(svc Service) *MerchantHandler {
	return &MerchantHandler{Service: svc}
}

func (h *MerchantHandler) GetMerchantAccount(w http.ResponseWriter, r *http.Request, merchantId string) {
	actor, _ := middleware.ActorFromContext(r.Context())

	account, err := h.Service.GetMerchantAccount(r.Context(), actor, merchantId)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, account)
}

func (h *MerchantHandler) ListLedgerEntries(w http.ResponseWriter, r *http.Request, merchantId string, params api.ListLedgerEntriesParams) {
	actor, _ := middleware.ActorFromContext(r.Context())
	limit := int32(20)
	if params.Limit != nil {
		limit = *params.Limit
	}

	entries, err := h.Service.ListLedgerEntries(r.Context(), actor, merchantId, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}
