// Package transitions holds the escrow state machine.
package transitions

import (
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
)

var table = map[models.EscrowStatus][]models.EscrowStatus{
	models.INITIATED:         {models.HELD, models.REFUNDED, models.DISPUTE_OPEN},
	models.HELD:              {models.RELEASE_REQUESTED, models.REFUNDED, models.DISPUTE_OPEN},
	models.RELEASE_REQUESTED: {models.RELEASED, models.REFUNDED, models.DISPUTE_OPEN},
	models.DISPUTE_OPEN:      {models.RELEASED, models.REFUNDED},
	models.RELEASED:          {},
	models.REFUNDED:          {},
}

// Statuses lists every escrow status in lifecycle order.
func Statuses() []models.EscrowStatus {
	return []models.EscrowStatus{
		models.INITIATED,
		models.HELD,
		models.RELEASE_REQUESTED,
		models.RELEASED,
		models.REFUNDED,
		models.DISPUTE_OPEN,
	}
}

// Allowed returns the statuses reachable from current in one step.
func Allowed(current models.EscrowStatus) []models.EscrowStatus {
	next := table[current]
	out := make([]models.EscrowStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status models.EscrowStatus) bool {
	next, ok := table[status]
	return ok && len(next) == 0
}

// Validate returns a StateConflictError unless current -> requested is in the table.
func Validate(current, requested models.EscrowStatus) error {
	next, ok := table[current]
	if !ok {
		return &escrowerr.StateConflictError{From: string(current), To: string(requested), Reason: "unknown current status"}
	}
	for _, s := range next {
		if s == requested {
			return nil
		}
	}
	if len(next) == 0 {
		return &escrowerr.StateConflictError{From: string(current), To: string(requested), Reason: "escrow is final"}
	}
	return &escrowerr.StateConflictError{From: string(current), To: string(requested)}
}
