package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

// ErrProductNotFound is returned by RecordView when the product is missing.
var ErrProductNotFound = fmt.Errorf("product not found: %w", apperrors.ErrNotFound)

// Trending list bounds.
const (
	DefaultTrendingLimit = 10
	MaxTrendingLimit     = 50
)

// AnalyticsService records product views and serves view counts.
type AnalyticsService struct {
	products  repository.ProductRepository
	views     repository.ViewRepository
	cache     repository.AnalyticsCache
	trending  repository.TrendingBoard
	publisher EventPublisher
	logger    *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	products repository.ProductRepository,
	views repository.ViewRepository,
	cache repository.AnalyticsCache,
	trending repository.TrendingBoard,
	publisher EventPublisher,
	logger *slog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		products:  products,
		views:     views,
		cache:     cache,
		trending:  trending,
		publisher: publisher,
		logger:    logger,
	}
}

// RecordView appends a view of productID to the view log.
func (s *AnalyticsService) RecordView(ctx context.Context, productID string) (*domain.ProductView, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	view := &domain.ProductView{
		ID:        uuid.New().String(),
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.views.Record(ctx, view); err != nil {
		// Product deleted between the check and the insert.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("record view: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate analytics cache", slog.String("error", err.Error()))
	}

	if err := s.publisher.PublishProductViewed(ctx, view); err != nil {
		logPublishError(ctx, s.logger, "product.viewed", productID, err)
	}

	s.logger.DebugContext(ctx, "product view recorded",
		slog.String("product_id", productID),
		slog.String("view_id", view.ID),
	)

	return view, nil
}

// ViewCounts returns the view count of every product, most viewed first.
// Results are served from the cache when present.
func (s *AnalyticsService) ViewCounts(ctx context.Context) ([]domain.ProductViewCount, error) {
	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "analytics cache read failed", slog.String("error", err.Error()))
	} else if ok {
		return cached, nil
	}

	// The generation is read before the query so a view recorded while it
	// runs keeps the result out of the cache.
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.WarnContext(ctx, "analytics cache generation read failed", slog.String("error", genErr.Error()))
	}

	counts, err := s.views.CountsByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("count views by product: %w", err)
	}
	if counts == nil {
		counts = []domain.ProductViewCount{}
	}

	if genErr != nil {
		return counts, nil
	}
	stored, err := s.cache.Set(ctx, gen, counts)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "analytics cache write failed", slog.String("error", err.Error()))
	case !stored:
		s.logger.DebugContext(ctx, "analytics cache write skipped", slog.Int64("generation", gen))
	}
	return counts, nil
}

// ProductViewCount returns the analytics record of a single product. It is
// read from the view log directly and bypasses the cache.
func (s *AnalyticsService) ProductViewCount(ctx context.Context, productID string) (*domain.ProductViewCount, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	n, err := s.views.CountForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	return &domain.ProductViewCount{ProductID: product.ID, Name: product.Name, ViewCount: n}, nil
}

// Trending returns the most viewed products seen on the event stream. A zero
// limit selects DefaultTrendingLimit.
func (s *AnalyticsService) Trending(ctx context.Context, limit int) ([]domain.TrendingProduct, error) {
	if limit == 0 {
		limit = DefaultTrendingLimit
	}
	if limit < 1 || limit > MaxTrendingLimit {
		return nil, validator.NewFieldError("limit", fmt.Sprintf("must be between 1 and %d", MaxTrendingLimit))
	}

	top, err := s.trending.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read trending board: %w", err)
	}
	if len(top) == 0 {
		return []domain.TrendingProduct{}, nil
	}

	ids := make([]string, len(top))
	for i, t := range top {
		ids[i] = t.ProductID
	}
	names, err := s.products.NamesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve product names: %w", err)
	}

	out := make([]domain.TrendingProduct, 0, len(top))
	for _, t := range top {
		name, ok := names[t.ProductID]
		if !ok {
			continue
		}
		t.Name = name
		out = append(out, t)
	}
	return out, nil
}

// HandleViewEvent projects a product.viewed event onto the trending board.
func (s *AnalyticsService) HandleViewEvent(ctx context.Context, ev domain.ProductViewedEvent) error {
	if ev.ProductID == "" {
		return apperrors.InvalidInput("view event has no product id")
	}
	if err := s.trending.Increment(ctx, ev.ProductID); err != nil {
		return fmt.Errorf("increment trending: %w", err)
	}
	return nil
}
