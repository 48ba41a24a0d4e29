package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Scheduler defines the interface for a component that schedules an escrow's auto-release.
// Delivery is at-least-once; the release itself is guarded by the escrow state machine.
type Scheduler interface {
	// Schedule arranges for the escrow to be auto-released at or after fireAt.
	Schedule(ctx context.Context, escrowID string, fireAt time.Time) error
}

// AutoReleaser is the escrow operation a fired schedule runs. released is
// false when the escrow was left alone, for example because it moved on or its
// policy does not allow the release yet.
type AutoReleaser interface {
	AutoRelease(ctx context.Context, escrowID string) (released bool, err error)
}

// Message is the body of a scheduled auto-release.
type Message struct {
	EscrowID string    `json:"escrow_id"`
	FireAt   time.Time `json:"fire_at"`
}

// ParseMessage decodes and checks a scheduled auto-release body.
func ParseMessage(body string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal auto-release message: %w", err)
	}
	if msg.EscrowID == "" {
		return Message{}, fmt.Errorf("auto-release message has no escrow id")
	}
	return msg, nil
}
