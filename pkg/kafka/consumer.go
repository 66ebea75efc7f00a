package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// ErrDuplicate is returned by IdempotentHandler for events that were already
// handled. The consumer commits such messages without retrying.
var ErrDuplicate = errors.New("duplicate event")

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// maxFetchBackoff caps the pause between failed fetches.
const maxFetchBackoff = 5 * time.Second

type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	MaxRetries int
	RetryDelay time.Duration
}

// Consumer reads a topic as part of a consumer group and hands each event to
// a Handler. Failed events are retried with a linear backoff, then sent to
// the DLQ (when configured) and committed.
type Consumer struct {
	reader  messageReader
	handler Handler
	topic   string
	group   string
	retries int
	delay   time.Duration

	dlq     *DLQProducer
	metrics *Metrics
	logger  *slog.Logger

	closeOnce sync.Once
}

func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(r, cfg, handler, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	return &Consumer{
		reader:  r,
		handler: handler,
		topic:   cfg.Topic,
		group:   cfg.GroupID,
		retries: cfg.MaxRetries,
		delay:   cfg.RetryDelay,
		logger:  logger,
	}
}

// WithDLQ forwards messages that exhaust their retries to d.
func (c *Consumer) WithDLQ(d *DLQProducer) *Consumer {
	c.dlq = d
	return c
}

func (c *Consumer) WithMetrics(m *Metrics) *Consumer {
	c.metrics = m
	return c
}

// Start consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("topic", c.topic), slog.String("group", c.group))
	defer c.Close()

	backoff := c.delay
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped", slog.String("topic", c.topic))
				return nil
			}
			c.logger.Error("fetch message failed",
				slog.String("error", err.Error()),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				c.logger.Info("consumer stopped", slog.String("topic", c.topic))
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxFetchBackoff)
			continue
		}
		backoff = c.delay
		c.metrics.consumed(c.topic, c.group)

		if err := c.process(ctx, msg); err != nil && ctx.Err() != nil {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit message failed",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process runs the handler with retries. It only returns an error when ctx
// was cancelled mid-retry, in which case the message must not be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("dropping undecodable message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
		return nil
	}

	ctx = otel.GetTextMapPropagator().Extract(ctx, NewHeaderCarrier(&msg.Headers))

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			break
		}
		if errors.Is(lastErr, ErrDuplicate) {
			c.metrics.duplicate(c.topic, c.group)
			return nil
		}
		c.logger.WarnContext(ctx, "handler failed",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt < c.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.delay):
			}
		}
	}
	c.metrics.handled(c.topic, c.group, time.Since(start).Seconds(), lastErr)

	if lastErr != nil {
		c.logger.ErrorContext(ctx, "giving up on event",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.Int("retries", c.retries),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
	}
	return nil
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.ErrorContext(ctx, "dead-letter publish failed", slog.String("error", err.Error()))
		return
	}
	c.metrics.deadLetter(c.topic, c.group)
}

// Close is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
