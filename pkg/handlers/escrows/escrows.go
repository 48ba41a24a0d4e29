package escrows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/handlers/response"
	"github.com/chris/order-escrow/pkg/middleware"
	"github.com/chris/order-escrow/pkg/models"
)

// Service is the part of the escrow service the escrow endpoints call.
type Service interface {
	InitiateEscrow(ctx context.Context, actor escrow.Actor, in escrow.InitiateInput) (*models.Escrow, error)
	GetEscrow(ctx context.Context, actor escrow.Actor, escrowID string) (*models.Escrow, error)
	ListEscrows(ctx context.Context, actor escrow.Actor, f escrow.Filter, pr escrow.PageRequest) (*escrow.Page, error)
	HoldEscrow(ctx context.Context, actor escrow.Actor, escrowID string) (*models.Escrow, error)
	RequestRelease(ctx context.Context, actor escrow.Actor, escrowID, reason string) (*models.Escrow, error)
	ReleaseEscrow(ctx context.Context, actor escrow.Actor, escrowID string) (*models.Escrow, error)
	RefundEscrow(ctx context.Context, actor escrow.Actor, escrowID string, in escrow.RefundInput) (*models.Escrow, error)
	OpenDispute(ctx context.Context, actor escrow.Actor, escrowID, disputeID string) (*models.Escrow, error)
	ConfirmReceipt(ctx context.Context, actor escrow.Actor, escrowID string) (*models.Escrow, error)
}

// EscrowHandler holds the dependencies for escrow-related handlers.
type EscrowHandler struct {
	Service Service
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(svc Service) *EscrowHandler {
	return &EscrowHandler{Service: svc}
}

func actor(r *http.Request) escrow.Actor {
	a, _ := middleware.ActorFromContext(r.Context())
	return a
}

// decode reads an optional JSON body into v. An empty body leaves v zero.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return escrowerr.Validation("invalid request body: %v", err)
	}
	return nil
}

func respond(w http.ResponseWriter, status int, e *models.Escrow, err error) {
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, status, e)
}

// InitiateEscrow handles POST /escrows.
func (h *EscrowHandler) InitiateEscrow(w http.ResponseWriter, r *http.Request) {
	var body api.NewEscrow
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	e, err := h.Service.InitiateEscrow(r.Context(), actor(r), escrow.InitiateInput{
		OrderID:        body.OrderId,
		MerchantID:     body.MerchantId,
		PaymentMethod:  models.PaymentMethod(body.PaymentMethod),
		Amount:         body.Amount,
		PlatformFee:    body.PlatformFee,
		CodCharge:      body.CodCharge,
		ShippingCharge: body.ShippingCharge,
		Deductions:     body.Deductions,
	})
	respond(w, http.StatusCreated, e, err)
}

// ListEscrows handles GET /escrows.
func (h *EscrowHandler) ListEscrows(w http.ResponseWriter, r *http.Request, params api.ListEscrowsParams) {
	var f escrow.Filter
	var pr escrow.PageRequest
	if params.MerchantId != nil {
		f.MerchantID = *params.MerchantId
	}
	if params.Status != nil {
		f.Status = models.EscrowStatus(*params.Status)
	}
	if params.PaymentMethod != nil {
		f.PaymentMethod = models.PaymentMethod(*params.PaymentMethod)
	}
	if params.Offset != nil {
		pr.Offset = *params.Offset
	}
	if params.Limit != nil {
		pr.Limit = *params.Limit
	}

	page, err := h.Service.ListEscrows(r.Context(), actor(r), f, pr)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// GetEscrow handles GET /escrows/{escrowId}.
func (h *EscrowHandler) GetEscrow(w http.ResponseWriter, r *http.Request, escrowId string) {
	e, err := h.Service.GetEscrow(r.Context(), actor(r), escrowId)
	respond(w, http.StatusOK, e, err)
}

// HoldEscrow handles POST /escrows/{escrowId}/hold.
func (h *EscrowHandler) HoldEscrow(w http.ResponseWriter, r *http.Request, escrowId string) {
	e, err := h.Service.HoldEscrow(r.Context(), actor(r), escrowId)
	respond(w, http.StatusOK, e, err)
}

// RequestRelease handles POST /escrows/{escrowId}/release-request.
func (h *EscrowHandler) RequestRelease(w http.ResponseWriter, r *http.Request, escrowId string) {
	var body api.ReleaseRequest
	if err := decode(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	e, err := h.Service.RequestRelease(r.Context(), actor(r), escrowId, body.Reason)
	respond(w, http.StatusOK, e, err)
}

// ReleaseEscrow handles POST /escrows/{escrowId}/release.
func (h *EscrowHandler) ReleaseEscrow(w http.ResponseWriter, r *http.Request, escrowId string) {
	e, err := h.Service.ReleaseEscrow(r.Context(), actor(r), escrowId)
	respond(w, http.StatusOK, e, err)
}

// RefundEscrow handles POST /escrows/{escrowId}/refund.
func (h *EscrowHandler) RefundEscrow(w http.ResponseWriter, r *http.Request, escrowId string) {
	var body api.RefundRequest
	if err := decode(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	e, err := h.Service.RefundEscrow(r.Context(), actor(r), escrowId, escrow.RefundInput{Reason: body.Reason, Amount: body.Amount})
	respond(w, http.StatusOK, e, err)
}

// OpenDispute handles POST /escrows/{escrowId}/dispute.
func (h *EscrowHandler) OpenDispute(w http.ResponseWriter, r *http.Request, escrowId string) {
	var body api.DisputeRequest
	if err := decode(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	e, err := h.Service.OpenDispute(r.Context(), actor(r), escrowId, body.DisputeId)
	respond(w, http.StatusOK, e, err)
}

// ConfirmReceipt handles POST /escrows/{escrowId}/confirm-receipt.
func (h *EscrowHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request, escrowId string) {
	e, err := h.Service.ConfirmReceipt(r.Context(), actor(r), escrowId)
	respond(w, http.StatusOK, e, err)
}
