package scheduler

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogScheduler_Schedule(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogScheduler(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := s.Schedule(context.Background(), "escrow-1", time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"escrow_id":"escrow-1"`)
	assert.Contains(t, buf.String(), `"fire_at":"2026-02-04T08:00:00Z"`)
}
