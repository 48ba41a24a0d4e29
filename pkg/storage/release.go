package storage

import (
	"context"

	"github.com/chris/order-escrow/pkg/ledger"
)

// ReleaseRequest moves an escrow to RELEASED and credits its merchant.
type ReleaseRequest struct {
	Transition
	Credit ledger.Credit
}

// ReleaseStore defines the privileged interface for releasing an escrow.
// The status write, the merchant account increment, and the ledger entry are
// one atomic unit across the escrow, account, and ledger tables. It should only
// be exposed to the component responsible for release.
type ReleaseStore interface {
	// ReleaseEscrow returns ErrStatusConflict if the status guard fails or the
	// escrow was already credited. Nothing is written on any failure.
	ReleaseEscrow(ctx context.Context, r ReleaseRequest) error
}
