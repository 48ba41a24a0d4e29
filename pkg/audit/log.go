package audit

import (
	"context"
	"log/slog"
)

// LogSink writes audit events to a structured logger. It is used when no
// broker is configured.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

var _ Sink = (*LogSink)(nil)

// Record logs event at INFO.
func (s *LogSink) Record(ctx context.Context, event Event) error {
	s.Logger.InfoContext(ctx, "audit event",
		"type", string(event.Type),
		"escrow_id", event.EscrowID,
		"actor_id", event.ActorID,
		"payload", event.Payload,
		"timestamp", event.Timestamp,
	)
	return nil
}
