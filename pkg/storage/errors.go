package storage

import "errors"

// ErrNotFound is returned when the requested escrow, order, or account does not exist.
var ErrNotFound = errors.New("not found")

// ErrStatusConflict is returned when a guarded write finds the escrow in a different status or version than expected.
var ErrStatusConflict = errors.New("escrow status changed concurrently")

// ErrEscrowExists is returned when an order already has an escrow.
var ErrEscrowExists = errors.New("escrow already exists for order")
