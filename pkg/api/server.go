package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// (POST /escrows)
	InitiateEscrow(w http.ResponseWriter, r *http.Request)
	// (GET /escrows)
	ListEscrows(w http.ResponseWriter, r *http.Request, params ListEscrowsParams)
	// (GET /escrows/{escrowId})
	GetEscrow(w http.ResponseWriter, r *http.Request, escrowId string)
	// (POST /escrows/{escrowId}/hold)
	HoldEscrow(w http.ResponseWriter, r *http.Request, escrowId string)
	// (POST /escrows/{escrowId}/release-request)
	RequestRelease(w http.ResponseWriter, r *http.Request, escrowId string)
	// (POST /escrows/{escrowId}/release)
	ReleaseEscrow(w http.ResponseWriter, r *http.Request, escrowId string)
	// (POST /escrows/{escrowId}/refund)
	RefundEscrow(w http.ResponseWriter, r *http.Request, escrowId string)
	// (POST /escrows/{escrowId}/dispute)
	OpenDispute(w http.ResponseWriter, r *http.Request, escrowId string)
	// (POST /escrows/{escrowId}/confirm-receipt)
	ConfirmReceipt(w http.ResponseWriter, r *http.Request, escrowId string)
	// (GET /merchants/{merchantId}/account)
	GetMerchantAccount(w http.ResponseWriter, r *http.Request, merchantId string)
	// (GET /merchants/{merchantId}/ledger)
	ListLedgerEntries(w http.ResponseWriter, r *http.Request, merchantId string, params ListLedgerEntriesParams)
}

// ErrorHandler writes the response for a request whose parameters could not be bound.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// serverWrapper binds path and query parameters before calling the handler.
type serverWrapper struct {
	handler ServerInterface
	onError ErrorHandler
}

func (s *serverWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, chi.URLParam(r, name), &value)
	if err != nil {
		s.onError(w, r, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return "", false
	}
	return value, true
}

func (s *serverWrapper) escrowRoute(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		escrowId, ok := s.pathParam(w, r, "escrowId")
		if !ok {
			return
		}
		fn(w, r, escrowId)
	}
}

func (s *serverWrapper) listEscrows(w http.ResponseWriter, r *http.Request) {
	var params ListEscrowsParams
	query := r.URL.Query()

	for name, dest := range map[string]any{
		"merchant_id":    &params.MerchantId,
		"status":         &params.Status,
		"payment_method": &params.PaymentMethod,
		"offset":         &params.Offset,
		"limit":          &params.Limit,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			s.onError(w, r, fmt.Errorf("invalid format for parameter %s: %w", name, err))
			return
		}
	}

	s.handler.ListEscrows(w, r, params)
}

func (s *serverWrapper) getMerchantAccount(w http.ResponseWriter, r *http.Request) {
	merchantId, ok := s.pathParam(w, r, "merchantId")
	if !ok {
		return
	}
	s.handler.GetMerchantAccount(w, r, merchantId)
}

func (s *serverWrapper) listLedgerEntries(w http.ResponseWriter, r *http.Request) {
	merchantId, ok := s.pathParam(w, r, "merchantId")
	if !ok {
		return
	}

	var params ListLedgerEntriesParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		s.onError(w, r, fmt.Errorf("invalid format for parameter limit: %w", err))
		return
	}

	s.handler.ListLedgerEntries(w, r, merchantId, params)
}

// HandlerFromMux mounts si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, r, nil)
}

// HandlerWithOptions mounts si on r, reporting binding failures through onError.
func HandlerWithOptions(si ServerInterface, r chi.Router, onError ErrorHandler) http.Handler {
	if onError == nil {
		onError = defaultErrorHandler
	}
	s := &serverWrapper{handler: si, onError: onError}

	r.Post("/escrows", si.InitiateEscrow)
	r.Get("/escrows", s.listEscrows)
	r.Get("/escrows/{escrowId}", s.escrowRoute(si.GetEscrow))
	r.Post("/escrows/{escrowId}/hold", s.escrowRoute(si.HoldEscrow))
	r.Post("/escrows/{escrowId}/release-request", s.escrowRoute(si.RequestRelease))
	r.Post("/escrows/{escrowId}/release", s.escrowRoute(si.ReleaseEscrow))
	r.Post("/escrows/{escrowId}/refund", s.escrowRoute(si.RefundEscrow))
	r.Post("/escrows/{escrowId}/dispute", s.escrowRoute(si.OpenDispute))
	r.Post("/escrows/{escrowId}/confirm-receipt", s.escrowRoute(si.ConfirmReceipt))
	r.Get("/merchants/{merchantId}/account", s.getMerchantAccount)
	r.Get("/merchants/{merchantId}/ledger", s.listLedgerEntries)

	return r
}
