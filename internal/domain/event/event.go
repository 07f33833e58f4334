package event

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-pref-service/pkg/enum"
)

// Type is the kind of a queue event.
type Type string

const (
	UserCreated       Type = "user.created"
	UserUpdated       Type = "user.updated"
	UserDeleted       Type = "user.deleted"
	PreferenceUpdated Type = "preference.updated"
	Broadcast         Type = "broadcast"
)

// Types lists every event the service publishes or consumes.
var Types = enum.Set[Type]{
	{Key: "USER_CREATED", Value: UserCreated},
	{Key: "USER_UPDATED", Value: UserUpdated},
	{Key: "USER_DELETED", Value: UserDeleted},
	{Key: "PREFERENCE_UPDATED", Value: PreferenceUpdated},
	{Key: "BROADCAST", Value: Broadcast},
}

// Message is the envelope exchanged over the queue.
type Message struct {
	ID        string  `json:"id" validate:"required"`
	Timestamp Millis  `json:"timestamp" validate:"gte=0"`
	Payload   Payload `json:"payload"`
}

// Millis is a unix time in milliseconds. As text it accepts an integer or an RFC3339 time.
type Millis int64

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Millis) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m = Millis(n)
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return errors.New("must be epoch milliseconds or an RFC3339 time")
	}
	*m = Millis(t.UnixMilli())
	return nil
}

// Time returns m as a UTC time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// Payload carries the event and the data routed with it.
type Payload struct {
	Event    Type           `json:"event" validate:"required,event"`
	Username string         `json:"username,omitempty" validate:"omitempty,email"`
	ClientID string         `json:"clientId,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Targeted reports whether the event is addressed to specific connections rather than everyone.
func (p Payload) Targeted() bool {
	return p.Event != Broadcast
}

// Publisher delivers messages to the queue.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// NopPublisher discards every message. It is used when publishing is disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Message) error { return nil }

// New builds a message with a fresh id and the current timestamp in milliseconds.
func New(t Type, username, clientID string, data map[string]any) Message {
	return Message{
		ID:        uuid.NewString(),
		Timestamp: Millis(time.Now().UnixMilli()),
		Payload: Payload{
			Event:    t,
			Username: username,
			ClientID: clientID,
			Data:     data,
		},
	}
}
