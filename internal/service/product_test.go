package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

type productMocks struct {
	repo      *mockProductRepository
	cache     *mockAnalyticsCache
	trending  *mockTrendingBoard
	publisher *mockPublisher
}

func newTestProductService() (*ProductService, *productMocks) {
	m := &productMocks{
		repo:      new(mockProductRepository),
		cache:     new(mockAnalyticsCache),
		trending:  new(mockTrendingBoard),
		publisher: new(mockPublisher),
	}
	return NewProductService(m.repo, m.cache, m.trending, m.publisher, newTestLogger()), m
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var fe *validator.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, field, fe.Field)
}

func validProductInput() *ProductInput {
	return &ProductInput{
		Name:        "  Go Programming  ",
		Description: "A book about Go",
		Price:       domain.MustPrice("39.90"),
		Image:       "products/go.png",
		Category:    domain.CategoryBooks,
	}
}

// ============================================================================
// CreateProduct Tests
// ============================================================================

func TestCreateProduct_Success(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	m.cache.On("Invalidate", ctx).Return(nil)
	m.publisher.On("PublishProductCreated", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.CreateProduct(ctx, validProductInput())

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "Go Programming", product.Name)
	assert.Equal(t, "39.90", product.Price.String())
	assert.Equal(t, domain.CategoryBooks, product.Category)
	assert.False(t, product.CreatedAt.IsZero())
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)
	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestCreateProduct_PublishFailureDoesNotFail(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("Create", ctx, mock.Anything).Return(nil)
	m.cache.On("Invalidate", ctx).Return(errors.New("redis down"))
	m.publisher.On("PublishProductCreated", ctx, mock.Anything).Return(errors.New("kafka down"))

	product, err := svc.CreateProduct(ctx, validProductInput())

	require.NoError(t, err)
	assert.NotNil(t, product)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		field  string
	}{
		{"blank name", func(in *ProductInput) { in.Name = "   " }, "name"},
		{"long name", func(in *ProductInput) { in.Name = strings.Repeat("x", 256) }, "name"},
		{"negative price", func(in *ProductInput) { in.Price = domain.MustPrice("-1") }, "price"},
		{"three decimals", func(in *ProductInput) { in.Price = domain.MustPrice("1.005") }, "price"},
		{"too many digits", func(in *ProductInput) { in.Price = domain.MustPrice("100000000") }, "price"},
		{"long image", func(in *ProductInput) { in.Image = strings.Repeat("i", 501) }, "image"},
		{"unknown category", func(in *ProductInput) { in.Category = "toys" }, "category"},
		{"empty category", func(in *ProductInput) { in.Category = "" }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestProductService()
			in := validProductInput()
			tt.mutate(in)

			product, err := svc.CreateProduct(context.Background(), in)

			assert.Nil(t, product)
			requireFieldError(t, err, tt.field)
			m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProduct_RepoError(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	product, err := svc.CreateProduct(ctx, validProductInput())

	assert.Nil(t, product)
	assert.ErrorContains(t, err, "create product")
	m.publisher.AssertNotCalled(t, "PublishProductCreated", mock.Anything, mock.Anything)
}

// ============================================================================
// GetProduct / ListProducts Tests
// ============================================================================

func TestGetProduct_NotFound(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("GetByID", ctx, testProductID).Return(nil, apperrors.NotFound("product", testProductID))

	product, err := svc.GetProduct(ctx, testProductID)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListProducts_BuildsFilter(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	want := repository.ProductFilter{
		Category: categoryPtr(domain.CategoryBooks),
		Search:   strPtr("go"),
		MinPrice: pricePtr("5"),
		MaxPrice: pricePtr("50"),
		Ordering: "-price",
		Limit:    10,
		Offset:   20,
	}
	m.repo.On("List", ctx, want).Return([]domain.Product{*sampleProduct()}, 21, nil)

	products, total, err := svc.ListProducts(ctx, ListProductsInput{
		Category: categoryPtr(domain.CategoryBooks),
		Search:   "  go ",
		MinPrice: pricePtr("5"),
		MaxPrice: pricePtr("50"),
		Ordering: "-price",
		Limit:    10,
		Offset:   20,
	})

	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 21, total)
	m.repo.AssertExpectations(t)
}

func TestListProducts_BlankSearchIgnored(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("List", ctx, repository.ProductFilter{}).Return([]domain.Product{}, 0, nil)

	_, _, err := svc.ListProducts(ctx, ListProductsInput{Search: "   "})

	require.NoError(t, err)
	m.repo.AssertExpectations(t)
}

func TestListProducts_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input ListProductsInput
		field string
	}{
		{"ordering", ListProductsInput{Ordering: "rating"}, "ordering"},
		{"category", ListProductsInput{Category: categoryPtr("toys")}, "category"},
		{"price range", ListProductsInput{MinPrice: pricePtr("10"), MaxPrice: pricePtr("5")}, "min_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestProductService()

			_, _, err := svc.ListProducts(context.Background(), tt.input)

			requireFieldError(t, err, tt.field)
			m.repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

// ============================================================================
// UpdateProduct / PatchProduct Tests
// ============================================================================

func TestUpdateProduct_ReplacesAllFields(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("GetByID", ctx, testProductID).Return(sampleProduct(), nil)
	m.repo.On("Update", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	m.cache.On("Invalidate", ctx).Return(nil)
	m.publisher.On("PublishProductUpdated", ctx, mock.Anything).Return(nil)

	product, err := svc.UpdateProduct(ctx, testProductID, &ProductInput{
		Name:     "Running Shoes",
		Price:    domain.MustPrice("80"),
		Category: domain.CategorySports,
	})

	require.NoError(t, err)
	assert.Equal(t, "Running Shoes", product.Name)
	assert.Equal(t, "", product.Description)
	assert.Equal(t, "", product.Image)
	assert.Equal(t, "80.00", product.Price.String())
	assert.Equal(t, domain.CategorySports, product.Category)
	assert.False(t, product.UpdatedAt.IsZero())
	m.repo.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("GetByID", ctx, testProductID).Return(nil, apperrors.NotFound("product", testProductID))

	_, err := svc.UpdateProduct(ctx, testProductID, validProductInput())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPatchProduct_OnlyChangesGivenFields(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("GetByID", ctx, testProductID).Return(sampleProduct(), nil)
	m.repo.On("Update", ctx, mock.Anything).Return(nil)
	m.cache.On("Invalidate", ctx).Return(nil)
	m.publisher.On("PublishProductUpdated", ctx, mock.Anything).Return(nil)

	product, err := svc.PatchProduct(ctx, testProductID, &PatchProductInput{Price: pricePtr("29.99")})

	require.NoError(t, err)
	assert.Equal(t, "29.99", product.Price.String())
	assert.Equal(t, "Go Programming", product.Name)
	assert.Equal(t, domain.CategoryBooks, product.Category)
	assert.Equal(t, "products/go.png", product.Image)
}

func TestPatchProduct_InvalidCategory(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("GetByID", ctx, testProductID).Return(sampleProduct(), nil)

	_, err := svc.PatchProduct(ctx, testProductID, &PatchProductInput{Category: categoryPtr("garden")})

	requireFieldError(t, err, "category")
	m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ============================================================================
// DeleteProduct Tests
// ============================================================================

func TestDeleteProduct_Success(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("Delete", ctx, testProductID).Return(nil)
	m.cache.On("Invalidate", ctx).Return(nil)
	m.trending.On("Remove", ctx, testProductID).Return(nil)
	m.publisher.On("PublishProductDeleted", ctx, testProductID).Return(nil)

	require.NoError(t, svc.DeleteProduct(ctx, testProductID))

	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
	m.trending.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("Delete", ctx, testProductID).Return(apperrors.NotFound("product", testProductID))

	err := svc.DeleteProduct(ctx, testProductID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.publisher.AssertNotCalled(t, "PublishProductDeleted", mock.Anything, mock.Anything)
}

// ============================================================================
// Category Tests
// ============================================================================

func TestListCategories_IncludesEmptyCategories(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	m.repo.On("CountByCategory", ctx).Return(map[domain.Category]int{
		domain.CategoryBooks:  3,
		domain.CategorySports: 1,
	}, nil)

	cats, err := svc.ListCategories(ctx)

	require.NoError(t, err)
	require.Len(t, cats, 5)
	assert.Equal(t, domain.CategoryCount{Category: domain.CategoryElectronics, Label: "Electronics", ProductCount: 0}, cats[0])
	assert.Equal(t, domain.CategoryCount{Category: domain.CategoryBooks, Label: "Books", ProductCount: 3}, cats[2])
	assert.Equal(t, 1, cats[4].ProductCount)
}

func TestGroupByCategory(t *testing.T) {
	svc, m := newTestProductService()
	ctx := context.Background()

	book := *sampleProduct()
	shoe := domain.Product{ID: "s", Name: "Shoe", Category: domain.CategorySports}
	phone := domain.Product{ID: "p", Name: "Phone", Category: domain.CategoryElectronics}
	m.repo.On("List", ctx, repository.ProductFilter{Ordering: domain.OrderByName}).
		Return([]domain.Product{book, phone, shoe}, 3, nil)

	groups, err := svc.GroupByCategory(ctx)

	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, domain.CategoryElectronics, groups[0].Category)
	assert.Equal(t, domain.CategoryBooks, groups[1].Category)
	assert.Equal(t, "Books", groups[1].Label)
	assert.Equal(t, domain.CategorySports, groups[2].Category)
	assert.Equal(t, []domain.Product{shoe}, groups[2].Products)
}
