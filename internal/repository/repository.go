package repository

import (
	"context"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
)

// ProductFilter defines filter criteria for listing products. A zero Limit
// returns every matching row.
type ProductFilter struct {
	Category *domain.Category
	Search   *string
	MinPrice *domain.Price
	MaxPrice *domain.Price
	Ordering string
	Limit    int
	Offset   int
}

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	ProductID *string
	Rating    *int
	MinRating *int
	Limit     int
	Offset    int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update overwrites an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and, by cascade, its reviews and views.
	Delete(ctx context.Context, id string) error

	// Exists reports whether a product with the given id is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// CountByCategory returns the number of products per stored category.
	CountByCategory(ctx context.Context) (map[domain.Category]int, error)

	// NamesByIDs returns product names keyed by id. Unknown ids are skipped.
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)

	// AdminList returns the admin list rows, optionally restricted to one category.
	AdminList(ctx context.Context, category *domain.Category) ([]domain.AdminProductRow, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error

	// GetSummary returns the average rating and total count of reviews for a product.
	GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}

// ViewRepository stores the append-only product view log.
type ViewRepository interface {
	// Record inserts a view row for the product.
	Record(ctx context.Context, view *domain.ProductView) error

	// CountsByProduct returns one record per product, including products
	// without views, ordered by view count descending then name.
	CountsByProduct(ctx context.Context) ([]domain.ProductViewCount, error)

	// CountForProduct returns the number of views of a single product.
	CountForProduct(ctx context.Context, productID string) (int, error)
}

// CarrierRepository defines the interface for carrier persistence operations.
type CarrierRepository interface {
	Create(ctx context.Context, carrier *domain.Carrier) error
	GetByID(ctx context.Context, id string) (*domain.Carrier, error)
	List(ctx context.Context) ([]domain.Carrier, error)
	Update(ctx context.Context, carrier *domain.Carrier) error
	Delete(ctx context.Context, id string) error
}

// AnalyticsCache caches the view count list between writes.
type AnalyticsCache interface {
	// Get returns the cached list and whether it was present.
	Get(ctx context.Context) ([]domain.ProductViewCount, bool, error)
	// Generation returns a counter bumped by every Invalidate.
	Generation(ctx context.Context) (int64, error)
	// Set stores counts unless the cache was invalidated after gen was read.
	Set(ctx context.Context, gen int64, counts []domain.ProductViewCount) (bool, error)
	Invalidate(ctx context.Context) error
}

// TrendingBoard ranks products by views observed on the event stream.
type TrendingBoard interface {
	Increment(ctx context.Context, productID string) error
	Top(ctx context.Context, n int) ([]domain.TrendingProduct, error)
	Remove(ctx context.Context, productID string) error
}
