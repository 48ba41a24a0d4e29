package audit

import (
	"context"
	"time"
)

// EventType names a lifecycle fact about an escrow.
type EventType string

const (
	EscrowInitiated        EventType = "escrow.initiated"
	EscrowHeld             EventType = "escrow.held"
	ReleaseRequested       EventType = "escrow.release_requested"
	EscrowReleased         EventType = "escrow.released"
	EscrowRefunded         EventType = "escrow.refunded"
	DisputeOpened          EventType = "escrow.dispute_opened"
	ReceiptConfirmed       EventType = "escrow.receipt_confirmed"
	AutoReleaseScheduled   EventType = "escrow.auto_release_scheduled"
	AutoReleaseUnscheduled EventType = "escrow.auto_release_schedule_failed"
)

// Event is a single audit record.
type Event struct {
	Type      EventType      `json:"type"`
	EscrowID  string         `json:"escrow_id"`
	ActorID   string         `json:"actor_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink records audit events. Callers treat failures as non-fatal.
type Sink interface {
	Record(ctx context.Context, event Event) error
}
