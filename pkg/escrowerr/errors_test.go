package escrowerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"Validation", Validation("amount %d", -1), IsValidation},
		{"Not Found", NotFound("escrow", "e1"), IsNotFound},
		{"Authorization", Unauthorized("merchant %s", "m2"), IsAuthorization},
		{"State Conflict", &StateConflictError{From: "RELEASED", To: "REFUNDED"}, IsStateConflict},
		{"External Service", &ExternalServiceError{Service: "gateway", Err: errors.New("timeout")}, IsExternalService},
		{"Configuration", &ConfigurationError{Reason: "unknown method"}, IsConfiguration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)
			assert.True(t, tc.check(wrapped))
			assert.False(t, IsValidation(errors.New("plain")))
		})
	}
}

func TestExternalServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &ExternalServiceError{Service: "payment gateway", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payment gateway failed: connection reset", err.Error())
}

func TestStateConflictMessage(t *testing.T) {
	assert.Equal(t, "state conflict HELD -> RELEASED", (&StateConflictError{From: "HELD", To: "RELEASED"}).Error())
	assert.Equal(t, "state conflict HELD -> RELEASED: concurrent update",
		(&StateConflictError{From: "HELD", To: "RELEASED", Reason: "concurrent update"}).Error())
	assert.Equal(t, "state conflict: escrow esc-1 is busy", (&StateConflictError{Reason: "escrow esc-1 is busy"}).Error())
	assert.Equal(t, "state conflict -> INITIATED: escrow already exists",
		(&StateConflictError{To: "INITIATED", Reason: "escrow already exists"}).Error())
}
