package postgres

import (
	"context"
	"fmt"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/pkg/database"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

// ViewRepository stores product views in PostgreSQL.
type ViewRepository struct {
	pool database.DBTX
}

// NewViewRepository creates a new PostgreSQL-backed view repository.
func NewViewRepository(pool database.DBTX) *ViewRepository {
	return &ViewRepository{pool: pool}
}

// Record inserts a view row. A product deleted in the meantime surfaces as
// NotFound through the foreign key.
func (r *ViewRepository) Record(ctx context.Context, view *domain.ProductView) (err error) {
	query := `
		INSERT INTO product_views (id, product_id, created_at)
		VALUES ($1, $2, $3)`

	ctx, end := database.TraceQuery(ctx, "product_views.record", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, view.ID, view.ProductID, view.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("product", view.ProductID)
		}
		return fmt.Errorf("insert product view: %w", err)
	}

	return nil
}

// CountsByProduct returns the view count of every product in one grouped query.
func (r *ViewRepository) CountsByProduct(ctx context.Context) (counts []domain.ProductViewCount, err error) {
	query := `
		SELECT p.id, p.name, COUNT(v.id) AS view_count
		FROM products p
		LEFT JOIN product_views v ON v.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY view_count DESC, p.name ASC, p.id ASC`

	ctx, end := database.TraceQuery(ctx, "product_views.counts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count product views: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.ProductViewCount
		if err = rows.Scan(&c.ProductID, &c.Name, &c.ViewCount); err != nil {
			return nil, fmt.Errorf("scan view count row: %w", err)
		}
		counts = append(counts, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view count rows: %w", err)
	}

	if counts == nil {
		counts = []domain.ProductViewCount{}
	}

	return counts, nil
}

// CountForProduct returns the number of views of one product.
func (r *ViewRepository) CountForProduct(ctx context.Context, productID string) (n int, err error) {
	query := `SELECT COUNT(*) FROM product_views WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "product_views.count_for_product", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count views for product: %w", err)
	}

	return n, nil
}
