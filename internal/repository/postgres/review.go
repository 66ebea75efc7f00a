package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	"github.com/ThomasMo54/teaching-shop-example/pkg/database"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new product review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	query := `
		INSERT INTO reviews (id, product_id, author_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "reviews.create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.AuthorName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("product does not exist")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	query := `
		SELECT id, product_id, author_name, rating, comment, created_at
		FROM reviews
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.get", query)
	defer func() { end(err) }()

	var rv domain.Review
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.AuthorName,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
	)
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

func reviewWhere(filter repository.ReviewFilter) []exp.Expression {
	var where []exp.Expression
	if filter.ProductID != nil {
		where = append(where, goqu.C("product_id").Eq(*filter.ProductID))
	}
	if filter.Rating != nil {
		where = append(where, goqu.C("rating").Eq(*filter.Rating))
	}
	if filter.MinRating != nil {
		where = append(where, goqu.C("rating").Gte(*filter.MinRating))
	}
	return where
}

// buildReviewListQuery renders the review list SELECT for filter.
func buildReviewListQuery(filter repository.ReviewFilter) (string, []any, error) {
	ds := from("reviews").Select(
		"id", "product_id", "author_name", "rating", "comment", "created_at",
		goqu.L("count(*) OVER()").As("total_count"),
	)
	if where := reviewWhere(filter); len(where) > 0 {
		ds = ds.Where(where...)
	}

	ds = ds.Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return ds.ToSQL()
}

func buildReviewCountQuery(filter repository.ReviewFilter) (string, []any, error) {
	ds := from("reviews").Select(goqu.COUNT("*"))
	if where := reviewWhere(filter); len(where) > 0 {
		ds = ds.Where(where...)
	}
	return ds.ToSQL()
}

func (r *ReviewRepository) count(ctx context.Context, filter repository.ReviewFilter) (int, error) {
	query, args, err := buildReviewCountQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("build review count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return total, nil
}

// List returns reviews matching filter, newest first, with the total count.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) (reviews []domain.Review, total int, err error) {
	query, args, err := buildReviewListQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("build review list query: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, "reviews.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		if pgErrorCode(err) == codeInvalidTextRepr {
			return nil, 0, apperrors.InvalidInput("product filter must be a valid UUID")
		}
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv domain.Review

		if err = rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.AuthorName,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err = rows.Err(); err != nil {
		if pgErrorCode(err) == codeInvalidTextRepr {
			return nil, 0, apperrors.InvalidInput("product filter must be a valid UUID")
		}
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
		if filter.Offset > 0 {
			if total, err = r.count(ctx, filter); err != nil {
				return nil, 0, err
			}
		}
	}

	return reviews, total, nil
}

// Update overwrites an existing review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) (err error) {
	query := `
		UPDATE reviews
		SET product_id = $1, author_name = $2, rating = $3, comment = $4
		WHERE id = $5`

	ctx, end := database.TraceQuery(ctx, "reviews.update", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		review.ProductID,
		review.AuthorName,
		review.Rating,
		review.Comment,
		review.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("product does not exist")
		}
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.delete", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isMissing(err) {
			return apperrors.NotFound("review", id)
		}
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// GetSummary returns the average rating and total count of reviews for a product.
func (r *ReviewRepository) GetSummary(ctx context.Context, productID string) (_ *domain.ReviewSummary, err error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM reviews
		WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.summary", query)
	defer func() { end(err) }()

	var summary domain.ReviewSummary

	err = r.pool.QueryRow(ctx, query, productID).Scan(
		&summary.AverageRating,
		&summary.TotalCount,
	)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	summary.AverageRating = roundRating(summary.AverageRating)

	return &summary, nil
}

// roundRating rounds an average rating to one decimal place.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
