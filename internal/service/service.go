// Package service holds the catalog business logic. Services validate input,
// call the repositories and publish domain events; they know nothing of HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

// EventPublisher publishes catalog domain events. Implemented by
// event.Producer and event.NopPublisher.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, id string) error
	PublishProductViewed(ctx context.Context, view *domain.ProductView) error
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
}

// checkText validates a required, length-bounded text field.
func checkText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return validator.NewFieldError(field, "must not be blank")
	}
	if utf8.RuneCountInString(value) > maxLen {
		return validator.NewFieldError(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return nil
}

// logPublishError records a failed publish. Events never fail the request.
func logPublishError(ctx context.Context, logger *slog.Logger, eventType, id string, err error) {
	logger.ErrorContext(ctx, "failed to publish "+eventType+" event",
		slog.String("aggregate_id", id),
		slog.String("error", err.Error()),
	)
}
