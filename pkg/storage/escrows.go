package storage

import (
	"context"
	"time"

	"github.com/chris/order-escrow/pkg/models"
)

// ListEscrowsQuery filters and pages an escrow listing. Zero-valued filters match everything.
type ListEscrowsQuery struct {
	MerchantID    string
	Status        models.EscrowStatus
	PaymentMethod models.PaymentMethod
	Offset        int
	Limit         int
}

// Matches reports whether an escrow passes the query filters.
func (q ListEscrowsQuery) Matches(e *models.Escrow) bool {
	if q.MerchantID != "" && e.MerchantId != q.MerchantID {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if q.PaymentMethod != "" && e.PaymentMethod != q.PaymentMethod {
		return false
	}
	return true
}

// Transition is a guarded escrow write. The write applies only if the stored
// escrow still has status From and the version carried by Escrow; the store
// then bumps the version. From may equal Escrow.Status for field-only updates.
type Transition struct {
	From   models.EscrowStatus
	Escrow *models.Escrow
	// Order, when set, is patched in the same atomic unit.
	Order *OrderPatch
}

// EscrowReader defines the interface for reading escrow data.
type EscrowReader interface {
	// GetEscrow retrieves an escrow by its ID.
	GetEscrow(ctx context.Context, escrowID string) (*models.Escrow, error)

	// GetEscrowByOrderID retrieves the escrow attached to an order.
	GetEscrowByOrderID(ctx context.Context, orderID string) (*models.Escrow, error)

	// ListEscrows returns one page of matching escrows and the total match count.
	ListEscrows(ctx context.Context, q ListEscrowsQuery) ([]models.Escrow, int, error)

	// ListDueForAutoRelease returns RELEASE_REQUESTED escrows whose auto-release time is at or before now.
	ListDueForAutoRelease(ctx context.Context, now time.Time, limit int32) ([]models.Escrow, error)
}

// EscrowWriter defines the interface for creating escrows and moving them between non-release states.
type EscrowWriter interface {
	// CreateEscrow stores a new escrow and patches the link onto its order. It
	// returns ErrEscrowExists if the order already carries an escrow.
	CreateEscrow(ctx context.Context, escrow *models.Escrow, link *OrderPatch) error

	// TransitionEscrow applies a guarded write, returning ErrStatusConflict if the guard fails.
	TransitionEscrow(ctx context.Context, t Transition) error
}

// EscrowStore combines the reader and writer interfaces.
type EscrowStore interface {
	EscrowReader
	EscrowWriter
}
