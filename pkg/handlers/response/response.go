// Package response writes JSON bodies and maps escrow errors to HTTP statuses.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/escrowerr"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Status maps an error from the escrow service to an HTTP status.
func Status(err error) int {
	switch {
	case escrowerr.IsValidation(err):
		return http.StatusBadRequest
	case escrowerr.IsAuthorization(err):
		return http.StatusForbidden
	case escrowerr.IsNotFound(err):
		return http.StatusNotFound
	case escrowerr.IsStateConflict(err):
		return http.StatusConflict
	case escrowerr.IsExternalService(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error writes err as {"error": "..."}. Unclassified errors are not echoed to the caller.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	JSON(w, status, api.Error{Error: msg})
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, api.Error{Error: msg})
}

// BindError reports a malformed path or query parameter.
func BindError(w http.ResponseWriter, _ *http.Request, err error) {
	BadRequest(w, err.Error())
}
