package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	pkgkafka "github.com/ThomasMo54/teaching-shop-example/pkg/kafka"
)

// TrendingGroupID is the consumer group that projects view events.
const TrendingGroupID = "catalog-trending"

// ViewHandler processes a decoded product.viewed payload.
type ViewHandler interface {
	HandleViewEvent(ctx context.Context, ev domain.ProductViewedEvent) error
}

// DecodeViewEvent returns a pkg/kafka handler that unpacks product.viewed
// payloads for h.
func DecodeViewEvent(h ViewHandler) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		var ev domain.ProductViewedEvent
		if err := event.UnmarshalData(&ev); err != nil {
			return fmt.Errorf("decode %s: %w", event.EventType, err)
		}
		if ev.ProductID == "" {
			ev.ProductID = event.AggregateID
		}
		return h.HandleViewEvent(ctx, ev)
	}
}

// ViewConsumerConfig configures NewViewConsumer.
type ViewConsumerConfig struct {
	Brokers []string
	Store   pkgkafka.IdempotencyStore
	DLQ     *pkgkafka.DLQProducer
	Metrics *pkgkafka.Metrics
}

// NewViewConsumer consumes product.viewed events in the trending group.
// Redelivered events are dropped through the idempotency store.
func NewViewConsumer(cfg ViewConsumerConfig, h ViewHandler, logger *slog.Logger) *pkgkafka.Consumer {
	handler := DecodeViewEvent(h)
	if cfg.Store != nil {
		handler = pkgkafka.IdempotentHandler(cfg.Store, handler, logger)
	}

	c := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		GroupID: TrendingGroupID,
		Topic:   TopicProductViewed,
	}, handler, logger).WithMetrics(cfg.Metrics)

	if cfg.DLQ != nil {
		c.WithDLQ(cfg.DLQ)
	}
	return c
}
