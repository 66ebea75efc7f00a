package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/pkg/database"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

// CarrierRepository implements carrier persistence operations using PostgreSQL.
type CarrierRepository struct {
	pool database.DBTX
}

// NewCarrierRepository creates a new PostgreSQL-backed carrier repository.
func NewCarrierRepository(pool database.DBTX) *CarrierRepository {
	return &CarrierRepository{pool: pool}
}

// Create inserts a new carrier. Names are unique.
func (r *CarrierRepository) Create(ctx context.Context, c *domain.Carrier) (err error) {
	query := `
		INSERT INTO carriers (id, name, delay_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "carriers.create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, c.ID, c.Name, c.DelayDays, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("carrier", "name", c.Name)
		}
		return fmt.Errorf("insert carrier: %w", err)
	}

	return nil
}

// GetByID retrieves a carrier by its ID.
func (r *CarrierRepository) GetByID(ctx context.Context, id string) (_ *domain.Carrier, err error) {
	query := `
		SELECT id, name, delay_days, created_at, updated_at
		FROM carriers
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "carriers.get", query)
	defer func() { end(err) }()

	var c domain.Carrier
	err = r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.DelayDays, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.NotFound("carrier", id)
		}
		return nil, fmt.Errorf("scan carrier: %w", err)
	}

	return &c, nil
}

// List returns all carriers ordered by name.
func (r *CarrierRepository) List(ctx context.Context) (carriers []domain.Carrier, err error) {
	query := `
		SELECT id, name, delay_days, created_at, updated_at
		FROM carriers
		ORDER BY name ASC`

	ctx, end := database.TraceQuery(ctx, "carriers.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Carrier
		if err = rows.Scan(&c.ID, &c.Name, &c.DelayDays, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan carrier row: %w", err)
		}
		carriers = append(carriers, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carrier rows: %w", err)
	}

	if carriers == nil {
		carriers = []domain.Carrier{}
	}

	return carriers, nil
}

// Update overwrites an existing carrier.
func (r *CarrierRepository) Update(ctx context.Context, c *domain.Carrier) (err error) {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE carriers
		SET name = $1, delay_days = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "carriers.update", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, c.Name, c.DelayDays, c.UpdatedAt, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("carrier name %q is used by another carrier", c.Name))
		}
		return fmt.Errorf("update carrier: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("carrier", c.ID)
	}

	return nil
}

// Delete removes a carrier by its ID.
func (r *CarrierRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM carriers WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "carriers.delete", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isMissing(err) {
			return apperrors.NotFound("carrier", id)
		}
		return fmt.Errorf("delete carrier: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("carrier", id)
	}

	return nil
}
