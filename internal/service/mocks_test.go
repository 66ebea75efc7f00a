package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
)

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepository) CountByCategory(ctx context.Context) (map[domain.Category]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Category]int), args.Error(1)
}

func (m *mockProductRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockProductRepository) AdminList(ctx context.Context, category *domain.Category) ([]domain.AdminProductRow, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdminProductRow), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepository) GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

// --- Mock View Repository ---

type mockViewRepository struct {
	mock.Mock
}

func (m *mockViewRepository) Record(ctx context.Context, view *domain.ProductView) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *mockViewRepository) CountsByProduct(ctx context.Context) ([]domain.ProductViewCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductViewCount), args.Error(1)
}

func (m *mockViewRepository) CountForProduct(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

// --- Mock Carrier Repository ---

type mockCarrierRepository struct {
	mock.Mock
}

func (m *mockCarrierRepository) Create(ctx context.Context, carrier *domain.Carrier) error {
	args := m.Called(ctx, carrier)
	return args.Error(0)
}

func (m *mockCarrierRepository) GetByID(ctx context.Context, id string) (*domain.Carrier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Carrier), args.Error(1)
}

func (m *mockCarrierRepository) List(ctx context.Context) ([]domain.Carrier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Carrier), args.Error(1)
}

func (m *mockCarrierRepository) Update(ctx context.Context, carrier *domain.Carrier) error {
	args := m.Called(ctx, carrier)
	return args.Error(0)
}

func (m *mockCarrierRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Analytics Cache ---

type mockAnalyticsCache struct {
	mock.Mock
}

func (m *mockAnalyticsCache) Get(ctx context.Context) ([]domain.ProductViewCount, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.ProductViewCount), args.Bool(1), args.Error(2)
}

func (m *mockAnalyticsCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalyticsCache) Set(ctx context.Context, gen int64, counts []domain.ProductViewCount) (bool, error) {
	args := m.Called(ctx, gen, counts)
	return args.Bool(0), args.Error(1)
}

func (m *mockAnalyticsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock Trending Board ---

type mockTrendingBoard struct {
	mock.Mock
}

func (m *mockTrendingBoard) Increment(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *mockTrendingBoard) Top(ctx context.Context, n int) ([]domain.TrendingProduct, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrendingProduct), args.Error(1)
}

func (m *mockTrendingBoard) Remove(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockPublisher) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockPublisher) PublishProductDeleted(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPublisher) PublishProductViewed(ctx context.Context, view *domain.ProductView) error {
	return m.Called(ctx, view).Error(0)
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func pricePtr(s string) *domain.Price {
	p := domain.MustPrice(s)
	return &p
}

func categoryPtr(c domain.Category) *domain.Category {
	return &c
}

const (
	testProductID = "11111111-1111-1111-1111-111111111111"
	testReviewID  = "22222222-2222-2222-2222-222222222222"
	testCarrierID = "33333333-3333-3333-3333-333333333333"
)

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:          testProductID,
		Name:        "Go Programming",
		Description: "A book about Go",
		Price:       domain.MustPrice("39.90"),
		Image:       "products/go.png",
		Category:    domain.CategoryBooks,
	}
}

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:         testReviewID,
		ProductID:  testProductID,
		AuthorName: "Alice",
		Rating:     4,
		Comment:    "Solid",
	}
}
