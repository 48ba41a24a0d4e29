package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func actorEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": actor.ID, "role": string(actor.Role)})
	})
}

func TestAuthenticator(t *testing.T) {
	now := time.Now()
	handler := NewAuthenticator(secret)(actorEcho(t))

	t.Run("Success", func(t *testing.T) {
		token, err := NewToken(secret, escrow.Actor{ID: "merchant-1", Role: escrow.RoleMerchant}, time.Hour, now)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/escrows", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":"merchant-1","role":"merchant"}`, rr.Body.String())
	})

	t.Run("Missing Token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/escrows", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token, err := NewToken([]byte("other"), escrow.Actor{ID: "admin-1", Role: escrow.RoleAdmin}, time.Hour, now)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/escrows", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := NewToken(secret, escrow.Actor{ID: "admin-1", Role: escrow.RoleAdmin}, time.Minute, now.Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		token, err := NewToken(secret, escrow.Actor{ID: "buyer-1", Role: "buyer"}, time.Hour, now)
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.ErrorContains(t, err, "unknown role")
	})
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	token, err := NewToken(secret, escrow.Actor{ID: "admin-1", Role: escrow.RoleAdmin}, time.Hour, time.Now())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(NewStructuredLogger(logger))
	r.Use(NewAuthenticator(secret))
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line struct {
		Level   string `json:"level"`
		Msg     string `json:"msg"`
		Request struct {
			ID      string `json:"id"`
			ActorID string `json:"actor_id"`
		} `json:"request"`
		Response struct {
			Status int `json:"status"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line.Level)
	assert.Equal(t, "server error", line.Msg)
	assert.Equal(t, "admin-1", line.Request.ActorID)
	assert.NotEmpty(t, line.Request.ID)
	assert.Equal(t, http.StatusInternalServerError, line.Response.Status)
}
