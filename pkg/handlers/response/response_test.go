package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Validation", escrowerr.Validation("bad"), http.StatusBadRequest},
		{"Authorization", escrowerr.Unauthorized("no"), http.StatusForbidden},
		{"Not Found", escrowerr.NotFound("escrow", "esc-1"), http.StatusNotFound},
		{"State Conflict", &escrowerr.StateConflictError{From: "RELEASED", To: "REFUNDED"}, http.StatusConflict},
		{"External Service", &escrowerr.ExternalServiceError{Service: "payment-gateway", Err: errors.New("down")}, http.StatusBadGateway},
		{"Other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestError(t *testing.T) {
	t.Run("Classified", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Error(rr, escrowerr.NotFound("escrow", "esc-1"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		var body api.Error
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "escrow esc-1 not found", body.Error)
	})

	t.Run("Internal Hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Error(rr, errors.New("dynamodb: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "dynamodb")
	})
}
