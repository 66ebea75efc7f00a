package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

const (
	maxProductNameLength = 255
	maxImageLength       = 500
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo      repository.ProductRepository
	cache     repository.AnalyticsCache
	trending  repository.TrendingBoard
	publisher EventPublisher
	logger    *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	cache repository.AnalyticsCache,
	trending repository.TrendingBoard,
	publisher EventPublisher,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:      repo,
		cache:     cache,
		trending:  trending,
		publisher: publisher,
		logger:    logger,
	}
}

// ProductInput holds every writable product field. It is used for creation
// and full replacement.
type ProductInput struct {
	Name        string
	Description string
	Price       domain.Price
	Image       string
	Category    domain.Category
}

// PatchProductInput holds the fields of a partial update. Nil fields are left
// unchanged.
type PatchProductInput struct {
	Name        *string
	Description *string
	Price       *domain.Price
	Image       *string
	Category    *domain.Category
}

// ListProductsInput holds the list filters accepted by ListProducts.
type ListProductsInput struct {
	Category *domain.Category
	Search   string
	MinPrice *domain.Price
	MaxPrice *domain.Price
	Ordering string
	Limit    int
	Offset   int
}

func validateProduct(p *domain.Product) error {
	if err := checkText("name", p.Name, maxProductNameLength); err != nil {
		return err
	}
	if err := p.Price.Validate(); err != nil {
		return validator.NewFieldError("price", err.Error())
	}
	if utf8.RuneCountInString(p.Image) > maxImageLength {
		return validator.NewFieldError("image", fmt.Sprintf("must be at most %d characters", maxImageLength))
	}
	if !p.Category.IsValid() {
		return validator.NewFieldError("category", "must be one of: "+strings.Join(domain.CategoryValues(), " "))
	}
	return nil
}

// CreateProduct creates a new product with the given input.
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Category:    input.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	// The analytics list includes zero-view products.
	s.invalidateAnalytics(ctx)

	if err := s.publisher.PublishProductCreated(ctx, product); err != nil {
		logPublishError(ctx, s.logger, "product.created", product.ID, err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category", string(product.Category)),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns the products matching input and the total match count.
func (s *ProductService) ListProducts(ctx context.Context, input ListProductsInput) ([]domain.Product, int, error) {
	if !domain.IsValidOrdering(input.Ordering) {
		return nil, 0, validator.NewFieldError("ordering", "must be one of: "+strings.Join(domain.ValidOrderings(), " "))
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, 0, validator.NewFieldError("category", "must be one of: "+strings.Join(domain.CategoryValues(), " "))
	}
	if input.MinPrice != nil && input.MaxPrice != nil && input.MinPrice.GreaterThan(input.MaxPrice.Decimal) {
		return nil, 0, validator.NewFieldError("min_price", "must not exceed max_price")
	}

	filter := repository.ProductFilter{
		Category: input.Category,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Ordering: input.Ordering,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		filter.Search = &search
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct replaces every writable field of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.Image = input.Image
	product.Category = input.Category

	return s.save(ctx, product)
}

// PatchProduct applies the non-nil fields of input to a product.
func (s *ProductService) PatchProduct(ctx context.Context, id string, input *PatchProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Category != nil {
		product.Category = *input.Category
	}

	return s.save(ctx, product)
}

func (s *ProductService) save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	// Names appear in the analytics list.
	s.invalidateAnalytics(ctx)

	if err := s.publisher.PublishProductUpdated(ctx, product); err != nil {
		logPublishError(ctx, s.logger, "product.updated", product.ID, err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))

	return product, nil
}

// DeleteProduct removes a product together with its reviews and views.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidateAnalytics(ctx)
	if err := s.trending.Remove(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to remove product from trending board",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	if err := s.publisher.PublishProductDeleted(ctx, id); err != nil {
		logPublishError(ctx, s.logger, "product.deleted", id, err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))

	return nil
}

// ListCategories returns every category in display order with its product
// count. Empty categories report zero.
func (s *ProductService) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products by category: %w", err)
	}

	cats := domain.Categories()
	out := make([]domain.CategoryCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, domain.CategoryCount{
			Category:     c,
			Label:        c.Label(),
			ProductCount: counts[c],
		})
	}
	return out, nil
}

// GroupByCategory returns all products bucketed by category in display order.
// Categories without products are omitted.
func (s *ProductService) GroupByCategory(ctx context.Context) ([]domain.CategoryGroup, error) {
	products, _, err := s.repo.List(ctx, repository.ProductFilter{Ordering: domain.OrderByName})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byCategory := make(map[domain.Category][]domain.Product)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	groups := make([]domain.CategoryGroup, 0, len(byCategory))
	for _, c := range domain.Categories() {
		if len(byCategory[c]) == 0 {
			continue
		}
		groups = append(groups, domain.CategoryGroup{
			Category: c,
			Label:    c.Label(),
			Products: byCategory[c],
		})
	}
	return groups, nil
}

func (s *ProductService) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate analytics cache", slog.String("error", err.Error()))
	}
}
