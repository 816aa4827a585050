package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/protyayrd/tweestbd-sub001/internal/domain"
	"github.com/protyayrd/tweestbd-sub001/internal/repository"
	"github.com/protyayrd/tweestbd-sub001/pkg/database"
	apperrors "github.com/protyayrd/tweestbd-sub001/pkg/errors"
)

// OfferRepository implements repository.OfferRepository using PostgreSQL.
type OfferRepository struct {
	pool database.DBTX
}

// NewOfferRepository creates a new PostgreSQL-backed combo offer repository.
func NewOfferRepository(pool database.DBTX) *OfferRepository {
	return &OfferRepository{pool: pool}
}

const offerColumns = `id, category_id, name, minimum_quantity, combo_price, is_active, created_at, updated_at`

// Create inserts a new combo offer.
func (r *OfferRepository) Create(ctx context.Context, o *domain.ComboOffer) error {
	query := `
		INSERT INTO combo_offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		o.ID,
		o.CategoryID,
		o.Name,
		o.MinimumQuantity,
		o.ComboPrice,
		o.IsActive,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("combo offer", "name", o.Name)
		}
		return fmt.Errorf("insert combo offer: %w", err)
	}

	return nil
}

// GetByID retrieves a combo offer by its ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.ComboOffer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM combo_offers
		WHERE id = $1`

	offer, err := r.scanOffer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("combo offer", id)
		}
		return nil, fmt.Errorf("get combo offer by id: %w", err)
	}
	return offer, nil
}

// GetActiveByCategory retrieves the active offer for a category. The ORDER BY
// mirrors the domain tie-break so pricing stays deterministic if the catalog
// ever holds more than one active offer for a category.
func (r *OfferRepository) GetActiveByCategory(ctx context.Context, categoryID string) (*domain.ComboOffer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM combo_offers
		WHERE category_id = $1 AND is_active = true
		ORDER BY minimum_quantity DESC, combo_price ASC, name ASC
		LIMIT 1`

	offer, err := r.scanOffer(r.pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("combo offer for category", categoryID)
		}
		return nil, fmt.Errorf("get active combo offer: %w", err)
	}
	return offer, nil
}

// List returns offers matching the filter plus the total count.
func (r *OfferRepository) List(ctx context.Context, filter repository.OfferFilter) ([]domain.ComboOffer, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, filter.CategoryID)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT `+offerColumns+`,
			   count(*) OVER() AS total_count
		FROM combo_offers
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list combo offers: %w", err)
	}
	defer rows.Close()

	var (
		offers     []domain.ComboOffer
		totalCount int
	)

	for rows.Next() {
		var o domain.ComboOffer
		if err := rows.Scan(
			&o.ID,
			&o.CategoryID,
			&o.Name,
			&o.MinimumQuantity,
			&o.ComboPrice,
			&o.IsActive,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan combo offer row: %w", err)
		}
		offers = append(offers, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate combo offer rows: %w", err)
	}

	return offers, totalCount, nil
}

// Update persists changes to an existing offer.
func (r *OfferRepository) Update(ctx context.Context, o *domain.ComboOffer) error {
	query := `
		UPDATE combo_offers
		SET category_id = $2, name = $3, minimum_quantity = $4,
			combo_price = $5, is_active = $6, updated_at = $7
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query,
		o.ID,
		o.CategoryID,
		o.Name,
		o.MinimumQuantity,
		o.ComboPrice,
		o.IsActive,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("combo offer", "name", o.Name)
		}
		return fmt.Errorf("update combo offer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("combo offer", o.ID)
	}

	return nil
}

// scanOffer scans one offer row.
func (r *OfferRepository) scanOffer(row pgx.Row) (*domain.ComboOffer, error) {
	var o domain.ComboOffer
	if err := row.Scan(
		&o.ID,
		&o.CategoryID,
		&o.Name,
		&o.MinimumQuantity,
		&o.ComboPrice,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
