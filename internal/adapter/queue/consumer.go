package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"user-pref-service/pkg/metrics"
)

// BatchHandler processes the bodies of one batch of deliveries.
type BatchHandler interface {
	HandleBatch(ctx context.Context, bodies [][]byte) BatchResult
}

// ConsumerConfig holds the consumer settings.
type ConsumerConfig struct {
	URL       string
	Queue     string
	Prefetch  int
	BatchSize int
	BatchWait time.Duration
}

// Consumer pulls deliveries from one queue and hands them to the handler in batches.
// Every delivery of a batch is acked once the batch was handled, whatever the
// outcome of its messages: failed messages are logged and dropped, never redelivered.
type Consumer struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queue     string
	batchSize int
	batchWait time.Duration
	handler   BatchHandler
	log       *zap.Logger
}

// NewConsumer dials the broker, sets the prefetch window and declares the queue.
func NewConsumer(cfg ConsumerConfig, handler BatchHandler, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// prefetch for fair dispatch
	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := declare(ch, cfg.Queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	c := newConsumer(cfg, handler, log)
	c.conn, c.ch = conn, ch
	return c, nil
}

func newConsumer(cfg ConsumerConfig, handler BatchHandler, log *zap.Logger) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.BatchWait <= 0 {
		cfg.BatchWait = 500 * time.Millisecond
	}
	return &Consumer{
		queue:     cfg.Queue,
		batchSize: cfg.BatchSize,
		batchWait: cfg.BatchWait,
		handler:   handler,
		log:       log,
	}
}

// Run consumes until ctx is cancelled or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.Info("queue consumer listening", zap.String("queue", c.queue), zap.Int("batch_size", c.batchSize))
	return c.consume(ctx, deliveries)
}

func (c *Consumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	batch := make([]amqp.Delivery, 0, c.batchSize)
	timer := time.NewTimer(c.batchWait)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.process(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil
		case d, ok := <-deliveries:
			if !ok {
				flush()
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed by broker")
			}
			batch = append(batch, d)
			if len(batch) >= c.batchSize {
				flush()
				resetTimer(timer, c.batchWait)
			}
		case <-timer.C:
			flush()
			timer.Reset(c.batchWait)
		}
	}
}

func (c *Consumer) process(ctx context.Context, batch []amqp.Delivery) {
	bodies := make([][]byte, len(batch))
	for i, d := range batch {
		bodies[i] = d.Body
	}

	res := c.handler.HandleBatch(ctx, bodies)
	metrics.ObserveQueueBatch(len(batch))

	for _, d := range batch {
		if err := d.Ack(false); err != nil {
			c.log.Error("failed to ack delivery", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
		}
	}

	c.log.Debug("queue batch processed",
		zap.Int("size", len(batch)),
		zap.Int("dispatched", res.Dispatched),
		zap.Int("failed", res.Failed),
	)
}

// Close releases the channel and connection.
func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
