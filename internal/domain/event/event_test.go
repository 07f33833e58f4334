package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-pref-service/internal/domain/event"
	"user-pref-service/internal/validation"
	"user-pref-service/pkg/schema"
)

func TestNew(t *testing.T) {
	before := time.Now().UnixMilli()
	msg := event.New(event.UserCreated, "john@example.com", "c-1", map[string]any{"id": "u1"})

	assert.NotEmpty(t, msg.ID)
	assert.GreaterOrEqual(t, int64(msg.Timestamp), before)
	assert.Equal(t, event.UserCreated, msg.Payload.Event)
	assert.True(t, msg.Payload.Targeted())
	assert.False(t, event.New(event.Broadcast, "", "", nil).Payload.Targeted())

	assert.NoError(t, event.NopPublisher{}.Publish(context.Background(), msg))
}

func TestMessageSchema(t *testing.T) {
	v := validation.New()

	msg, err := schema.Decode[event.Message](v, []byte(`{"id":"1","timestamp":"1700000000","extra":true,"payload":{"event":"broadcast","data":{"text":"hi"}}}`),
		schema.Options{StripUnknown: true})
	require.NoError(t, err)
	assert.Equal(t, event.Millis(1700000000), msg.Timestamp)
	assert.Equal(t, "hi", msg.Payload.Data["text"])

	_, err = schema.Decode[event.Message](v, []byte(`{"id":"1","timestamp":1,"payload":{"event":"user.exploded"}}`),
		schema.Options{StripUnknown: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload.event must be one of")

	_, err = schema.Decode[event.Message](v, []byte(`{"id":"1","timestamp":1,"payload":{}}`), schema.Options{StripUnknown: true})
	assert.ErrorContains(t, err, "payload.event is required")
}

func TestMessageSchema_TimestampForms(t *testing.T) {
	v := validation.New()
	rfc := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		body string
		want event.Millis
	}{
		{"number", `{"id":"1","timestamp":1714564800000,"payload":{"event":"broadcast"}}`, event.Millis(rfc.UnixMilli())},
		{"numeric string", `{"id":"1","timestamp":"1714564800000","payload":{"event":"broadcast"}}`, event.Millis(rfc.UnixMilli())},
		{"rfc3339 string", `{"id":"1","timestamp":"2024-05-01T12:00:00Z","payload":{"event":"broadcast"}}`, event.Millis(rfc.UnixMilli())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := schema.Decode[event.Message](v, []byte(tt.body), schema.Options{StripUnknown: true})

			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Timestamp)
			assert.True(t, rfc.Equal(msg.Timestamp.Time()))
		})
	}

	_, err := schema.Decode[event.Message](v, []byte(`{"id":"1","timestamp":"yesterday","payload":{"event":"broadcast"}}`),
		schema.Options{StripUnknown: true})
	assert.ErrorContains(t, err, "timestamp must be epoch milliseconds or an RFC3339 time")
}
