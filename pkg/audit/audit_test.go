package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/order-escrow/pkg/audit/mocks"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testEvent() Event {
	return Event{
		Type:      EscrowReleased,
		EscrowID:  "esc-1",
		ActorID:   "system",
		Payload:   map[string]any{"amount": float64(9500)},
		Timestamp: time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC),
	}
}

func TestKafkaSink_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		writer := new(mocks.MessageWriter)
		sink := &KafkaSink{Writer: writer, Topic: "escrow-audit"}

		writer.On("WriteMessages", ctx, mock.MatchedBy(func(msg kafka.Message) bool {
			var got Event
			if err := json.Unmarshal(msg.Value, &got); err != nil {
				return false
			}
			return msg.Topic == "escrow-audit" &&
				string(msg.Key) == "esc-1" &&
				string(msg.Headers[0].Value) == string(EscrowReleased) &&
				got.EscrowID == "esc-1" &&
				got.Payload["amount"] == float64(9500)
		})).Return(nil).Once()

		err := sink.Record(ctx, testEvent())

		assert.NoError(t, err)
		writer.AssertExpectations(t)
	})

	t.Run("Broker Error", func(t *testing.T) {
		writer := new(mocks.MessageWriter)
		sink := &KafkaSink{Writer: writer, Topic: "escrow-audit"}

		writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("leader not available")).Once()

		err := sink.Record(ctx, testEvent())

		assert.ErrorContains(t, err, "failed to publish audit event escrow.released")
		writer.AssertExpectations(t)
	})
}

func TestNewKafkaSink(t *testing.T) {
	_, err := NewKafkaSink(nil, "escrow-audit")
	assert.Error(t, err)

	_, err = NewKafkaSink([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	sink, err := NewKafkaSink([]string{"localhost:9092"}, "escrow-audit")
	require.NoError(t, err)
	assert.Equal(t, "escrow-audit", sink.Topic)
}

func TestLogSink_Record(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sink.Record(context.Background(), testEvent())

	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "escrow.released", line["type"])
	assert.Equal(t, "esc-1", line["escrow_id"])
}
