package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/handlers/escrows"
	"github.com/chris/order-escrow/pkg/handlers/merchants"
	"github.com/chris/order-escrow/pkg/handlers/response"
	"github.com/chris/order-escrow/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Service is everything the HTTP API needs from the escrow service.
type Service interface {
	escrows.Service
	merchants.Service
}

// ApiHandler implements the API server interface.
// It composes the handlers for each resource.
type ApiHandler struct {
	*escrows.EscrowHandler
	*merchants.MerchantHandler
}

// NewApiHandler creates a new ApiHandler backed by svc.
func NewApiHandler(svc Service) *ApiHandler {
	return &ApiHandler{
		EscrowHandler:   escrows.NewEscrowHandler(svc),
		MerchantHandler: merchants.NewMerchantHandler(svc),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// Healthz reports that the process is serving.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter mounts si behind request ids, structured logging and bearer authentication.
// /healthz stays unauthenticated.
func NewRouter(si api.ServerInterface, jwtSecret []byte, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimw.Recoverer)

	router.Get("/healthz", Healthz)

	router.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator(jwtSecret))
		api.HandlerWithOptions(si, r, response.BindError)
	})

	return router
}
