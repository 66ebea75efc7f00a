package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	pkgkafka "github.com/ThomasMo54/teaching-shop-example/pkg/kafka"
	"github.com/ThomasMo54/teaching-shop-example/pkg/logger"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeReview  = "review"
)

// Kafka topics for catalog domain events.
var (
	TopicProductCreated = pkgkafka.Topic(AggregateTypeProduct, "created")
	TopicProductUpdated = pkgkafka.Topic(AggregateTypeProduct, "updated")
	TopicProductDeleted = pkgkafka.Topic(AggregateTypeProduct, "deleted")
	TopicProductViewed  = pkgkafka.Topic(AggregateTypeProduct, "viewed")
	TopicReviewCreated  = pkgkafka.Topic(AggregateTypeReview, "created")
)

// SourceCatalogService identifies events originating from this service.
const SourceCatalogService = "catalog-service"

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
}

// publisher is the part of pkg/kafka.Producer used here.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
		slog.String("event_id", event.EventID),
	)
	return nil
}

func productData(product *domain.Product) ProductData {
	return ProductData{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price.String(),
		Category: string(product.Category),
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, ProductDeletedData{ID: id})
}

// PublishProductViewed publishes a product.viewed event.
func (p *Producer) PublishProductViewed(ctx context.Context, view *domain.ProductView) error {
	data := domain.ProductViewedEvent{
		ViewID:    view.ID,
		ProductID: view.ProductID,
		ViewedAt:  view.CreatedAt,
	}
	return p.publish(ctx, TopicProductViewed, view.ProductID, AggregateTypeProduct, data)
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}
	return p.publish(ctx, TopicReviewCreated, review.ID, AggregateTypeReview, data)
}

// NopPublisher drops every event. It stands in for Producer when Kafka is
// disabled.
type NopPublisher struct{}

func (NopPublisher) PublishProductCreated(context.Context, *domain.Product) error { return nil }
func (NopPublisher) PublishProductUpdated(context.Context, *domain.Product) error { return nil }
func (NopPublisher) PublishProductDeleted(context.Context, string) error { return nil }
func (NopPublisher) PublishProductViewed(context.Context, *domain.ProductView) error { return nil }
func (NopPublisher) PublishReviewCreated(context.Context, *domain.Review) error { return nil }
