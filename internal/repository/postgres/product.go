package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	"github.com/ThomasMo54/teaching-shop-example/pkg/database"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

var productOrderings = map[string][]exp.OrderedExpression{
	domain.OrderByName:          {goqu.C("name").Asc()},
	domain.OrderByNameDesc:      {goqu.C("name").Desc()},
	domain.OrderByPrice:         {goqu.C("price").Asc()},
	domain.OrderByPriceDesc:     {goqu.C("price").Desc()},
	domain.OrderByCreatedAt:     {goqu.C("created_at").Asc()},
	domain.OrderByCreatedAtDesc: {goqu.C("created_at").Desc()},
}

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (id, name, description, price, image, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "products.create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price.String(),
		p.Image,
		string(p.Category),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := `
		SELECT id, name, description, price::text, image, category, created_at, updated_at
		FROM products
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "products.get", query)
	defer func() { end(err) }()

	var (
		product  domain.Product
		price    string
		category string
	)
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&product.Image,
		&category,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if product.Price, err = domain.NewPrice(price); err != nil {
		return nil, err
	}
	product.Category = domain.Category(category)

	return &product, nil
}

// productWhere turns filter into WHERE expressions shared by the list and
// count queries.
func productWhere(filter repository.ProductFilter) []exp.Expression {
	var where []exp.Expression
	if filter.Category != nil {
		where = append(where, goqu.C("category").Eq(string(*filter.Category)))
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		where = append(where, goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("description").ILike(pattern),
		))
	}
	if filter.MinPrice != nil {
		where = append(where, goqu.C("price").Gte(filter.MinPrice.String()))
	}
	if filter.MaxPrice != nil {
		where = append(where, goqu.C("price").Lte(filter.MaxPrice.String()))
	}
	return where
}

// buildListQuery renders the product list SELECT for filter.
func buildListQuery(filter repository.ProductFilter) (string, []any, error) {
	ds := from("products").Select(
		"id", "name", "description", goqu.L("price::text").As("price"),
		"image", "category", "created_at", "updated_at",
		goqu.L("count(*) OVER()").As("total_count"),
	)
	if where := productWhere(filter); len(where) > 0 {
		ds = ds.Where(where...)
	}

	order, ok := productOrderings[filter.Ordering]
	if !ok {
		order = productOrderings[domain.DefaultProductOrdering]
	}
	ds = ds.Order(order...).OrderAppend(goqu.C("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return ds.ToSQL()
}

// buildCountQuery renders a COUNT over the rows matching filter, ignoring
// ordering and pagination.
func buildCountQuery(filter repository.ProductFilter) (string, []any, error) {
	ds := from("products").Select(goqu.COUNT("*"))
	if where := productWhere(filter); len(where) > 0 {
		ds = ds.Where(where...)
	}
	return ds.ToSQL()
}

// count returns the number of products matching filter.
func (r *ProductRepository) count(ctx context.Context, filter repository.ProductFilter) (int, error) {
	query, args, err := buildCountQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("build product count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, total int, err error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("build product list query: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, "products.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        domain.Product
			price    string
			category string
		)

		if err = rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&price,
			&p.Image,
			&category,
			&p.CreatedAt,
			&p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		if p.Price, err = domain.NewPrice(price); err != nil {
			return nil, 0, err
		}
		p.Category = domain.Category(category)

		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
		// The window count rides on the rows, so a page past the end needs
		// its own COUNT.
		if filter.Offset > 0 {
			if total, err = r.count(ctx, filter); err != nil {
				return nil, 0, err
			}
		}
	}

	return products, total, nil
}

// Update overwrites an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, category = $5, updated_at = $6
		WHERE id = $7`

	ctx, end := database.TraceQuery(ctx, "products.update", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Price.String(),
		p.Image,
		string(p.Category),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID. Reviews and views go
// with it through ON DELETE CASCADE.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "products.delete", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isMissing(err) {
			return apperrors.NotFound("product", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// Exists reports whether a product with id is stored. Malformed ids do not exist.
func (r *ProductRepository) Exists(ctx context.Context, id string) (exists bool, err error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	ctx, end := database.TraceQuery(ctx, "products.exists", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("check product exists: %w", err)
	}

	return exists, nil
}

// CountByCategory returns the number of products per category. Categories
// without products are absent from the map.
func (r *ProductRepository) CountByCategory(ctx context.Context) (counts map[domain.Category]int, err error) {
	query := `SELECT category, COUNT(*) FROM products GROUP BY category`

	ctx, end := database.TraceQuery(ctx, "products.count_by_category", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count products by category: %w", err)
	}
	defer rows.Close()

	counts = make(map[domain.Category]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err = rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[domain.Category(category)] = n
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}

	return counts, nil
}

// NamesByIDs returns product names keyed by id.
func (r *ProductRepository) NamesByIDs(ctx context.Context, ids []string) (names map[string]string, err error) {
	names = make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query := `SELECT id, name FROM products WHERE id = ANY($1)`

	ctx, end := database.TraceQuery(ctx, "products.names_by_ids", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get product names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err = rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan product name: %w", err)
		}
		names[id] = name
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product names: %w", err)
	}

	return names, nil
}

// buildAdminListQuery joins per-product review and view aggregates onto the
// product table.
func buildAdminListQuery(category *domain.Category) (string, []any, error) {
	reviews := psql.From("reviews").Select(
		"product_id",
		goqu.COUNT(goqu.Star()).As("review_count"),
		goqu.AVG("rating").As("average_rating"),
	).GroupBy("product_id")

	views := psql.From("product_views").Select(
		"product_id",
		goqu.COUNT(goqu.Star()).As("view_count"),
	).GroupBy("product_id")

	ds := from(goqu.T("products").As("p")).
		Select(
			goqu.I("p.id"),
			goqu.I("p.name"),
			goqu.I("p.category"),
			goqu.L(`"p"."price"::text`).As("price"),
			goqu.L(`COALESCE("r"."review_count", 0)`).As("review_count"),
			goqu.L(`COALESCE("r"."average_rating", 0)::float8`).As("average_rating"),
			goqu.L(`COALESCE("v"."view_count", 0)`).As("view_count"),
		).
		LeftJoin(reviews.As("r"), goqu.On(goqu.I("r.product_id").Eq(goqu.I("p.id")))).
		LeftJoin(views.As("v"), goqu.On(goqu.I("v.product_id").Eq(goqu.I("p.id")))).
		Order(goqu.I("p.name").Asc(), goqu.I("p.id").Asc())

	if category != nil {
		ds = ds.Where(goqu.I("p.category").Eq(string(*category)))
	}

	return ds.ToSQL()
}

// AdminList returns the admin product rows ordered by name.
func (r *ProductRepository) AdminList(ctx context.Context, category *domain.Category) (out []domain.AdminProductRow, err error) {
	query, args, err := buildAdminListQuery(category)
	if err != nil {
		return nil, fmt.Errorf("build admin product query: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, "products.admin_list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list admin products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row   domain.AdminProductRow
			price string
			cat   string
		)
		if err = rows.Scan(
			&row.ID,
			&row.Name,
			&cat,
			&price,
			&row.ReviewCount,
			&row.AverageRating,
			&row.ViewCount,
		); err != nil {
			return nil, fmt.Errorf("scan admin product row: %w", err)
		}
		if row.Price, err = domain.NewPrice(price); err != nil {
			return nil, err
		}
		row.Category = domain.Category(cat)
		row.AverageRating = roundRating(row.AverageRating)
		out = append(out, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin product rows: %w", err)
	}

	if out == nil {
		out = []domain.AdminProductRow{}
	}

	return out, nil
}
