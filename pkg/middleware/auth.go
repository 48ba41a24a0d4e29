package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chris/order-escrow/pkg/api"
	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/chris/order-escrow/pkg/handlers/response"
	"github.com/golang-jwt/jwt/v5"
)

type actorKey struct{}

type actorSinkKey struct{}

// Claims are the JWT claims identifying an actor. The subject is the actor id;
// for merchants it is the merchant id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// WithActor returns a context carrying actor. It also reports the actor id to
// an enclosing request logger.
func WithActor(ctx context.Context, actor escrow.Actor) context.Context {
	if sink, ok := ctx.Value(actorSinkKey{}).(*string); ok {
		*sink = actor.ID
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

func withActorSink(ctx context.Context, id *string) context.Context {
	return context.WithValue(ctx, actorSinkKey{}, id)
}

// ActorFromContext returns the authenticated actor of a request.
func ActorFromContext(ctx context.Context) (escrow.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(escrow.Actor)
	return actor, ok
}

// NewToken signs an HS256 token for actor.
func NewToken(secret []byte, actor escrow.Actor, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}

// ParseToken validates raw and returns the actor it names.
func ParseToken(secret []byte, raw string) (escrow.Actor, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second), jwt.WithExpirationRequired())
	if err != nil {
		return escrow.Actor{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return escrow.Actor{}, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return escrow.Actor{}, errors.New("token has no subject")
	}

	role := escrow.Role(claims.Role)
	switch role {
	case escrow.RoleMerchant, escrow.RoleAdmin, escrow.RoleSystem:
	default:
		return escrow.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	return escrow.Actor{ID: claims.Subject, Role: role}, nil
}

// NewAuthenticator rejects requests without a valid bearer token and puts
// the actor on the request context.
func NewAuthenticator(secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				response.JSON(w, http.StatusUnauthorized, api.Error{Error: "missing bearer token"})
				return
			}

			actor, err := ParseToken(secret, raw)
			if err != nil {
				response.JSON(w, http.StatusUnauthorized, api.Error{Error: "invalid token: " + err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(fn)
	}
}
