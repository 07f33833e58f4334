package infrastructure

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-pref-service/internal/adapter/queue"
	"user-pref-service/internal/config"
	"user-pref-service/internal/domain/event"
)

// NewEventPublisher returns the broker publisher when publishing is switched on,
// and a no-op publisher otherwise. The returned close func is never nil.
func NewEventPublisher(cfg *config.Config, l *zap.Logger) (event.Publisher, func() error, error) {
	if !cfg.Queue.Enabled || !cfg.Queue.PublishEvents {
		l.Info("event publishing disabled")
		return event.NopPublisher{}, func() error { return nil }, nil
	}

	p, err := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect publisher: %w", err)
	}
	l.Info("event publisher connected", zap.String("queue", cfg.Queue.Name))
	return p, p.Close, nil
}

// NewQueueConsumer dials the broker for the realtime fan-out consumer.
// It returns nil when the queue is disabled.
func NewQueueConsumer(cfg *config.Config, handler queue.BatchHandler, l *zap.Logger) (*queue.Consumer, error) {
	if !cfg.Queue.Enabled {
		l.Info("queue consumer disabled")
		return nil, nil
	}

	c, err := queue.NewConsumer(queue.ConsumerConfig{
		URL:       cfg.Queue.URL,
		Queue:     cfg.Queue.Name,
		Prefetch:  cfg.Queue.Prefetch,
		BatchSize: cfg.Queue.BatchSize,
		BatchWait: time.Duration(cfg.Queue.BatchWaitMs) * time.Millisecond,
	}, handler, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect consumer: %w", err)
	}
	return c, nil
}
