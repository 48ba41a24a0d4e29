package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be taken before giving up.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker runs a function while holding an exclusive lock on a key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// EscrowKey is the lock key guarding a single escrow.
func EscrowKey(escrowID string) string {
	return "escrow:" + escrowID
}
