package queue

import (
	"context"

	"go.uber.org/zap"

	"user-pref-service/internal/domain/event"
	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/metrics"
	"user-pref-service/pkg/schema"
)

// Notifier fans events out to realtime clients. Both methods return how many
// connections the event was queued to.
type Notifier interface {
	Broadcast(ctx context.Context, t event.Type, data map[string]any) int
	Notify(ctx context.Context, username, clientID string, t event.Type, data map[string]any) int
}

// BatchResult summarizes one processed batch.
type BatchResult struct {
	Dispatched int
	Failed     int
}

// Handler validates queue messages and dispatches them to the notifier.
type Handler struct {
	validate *schema.Validator
	notifier Notifier
	log      *zap.Logger
}

// NewHandler creates a new message handler.
func NewHandler(v *schema.Validator, notifier Notifier, log *zap.Logger) *Handler {
	return &Handler{validate: v, notifier: notifier, log: log}
}

// HandleBatch processes every body independently. A failing message is logged and
// counted, and never stops the rest of the batch.
func (h *Handler) HandleBatch(ctx context.Context, bodies [][]byte) BatchResult {
	var res BatchResult
	for i, body := range bodies {
		msg, err := h.Handle(ctx, body)
		if err != nil {
			res.Failed++
			appErr := apperrors.Classify(err)
			h.log.Warn("queue message rejected",
				zap.Int("position", i),
				zap.String("message_id", msg.ID),
				zap.String("kind", appErr.Kind.String()),
				zap.Int("status_code", appErr.StatusCode()),
				zap.Error(err),
			)
			metrics.RecordQueueMessage(string(msg.Payload.Event), "failed")
			continue
		}
		res.Dispatched++
		metrics.RecordQueueMessage(string(msg.Payload.Event), "dispatched")
	}
	return res
}

// Handle validates and dispatches one message. The returned message carries
// whatever could be decoded, for logging.
func (h *Handler) Handle(ctx context.Context, body []byte) (event.Message, error) {
	msg, err := schema.Decode[event.Message](h.validate, body, schema.Options{StripUnknown: true})
	if err != nil {
		return msg, err
	}

	p := msg.Payload
	if !p.Targeted() {
		n := h.notifier.Broadcast(ctx, p.Event, p.Data)
		h.log.Debug("broadcast dispatched", zap.String("message_id", msg.ID), zap.Int("connections", n))
		return msg, nil
	}

	if p.Username == "" && p.ClientID == "" {
		return msg, apperrors.Contract("validation failed: payload.username or payload.clientId is required for "+string(p.Event),
			apperrors.WithDetails(map[string]string{"payload.username": "is required"}))
	}

	n := h.notifier.Notify(ctx, p.Username, p.ClientID, p.Event, p.Data)
	h.log.Debug("event dispatched",
		zap.String("message_id", msg.ID),
		zap.String("event", string(p.Event)),
		zap.String("username", p.Username),
		zap.Int("connections", n),
	)
	return msg, nil
}
