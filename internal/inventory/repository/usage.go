package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/database"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/jmoiron/sqlx"
)

// UsageRepository handles usage event persistence for one lot kind.
// Ingredient and packaging usages live in separate tables with the
// same shape.
type UsageRepository struct {
	db    *database.DB
	kind  domain.Kind
	table string
}

// NewUsageRepository creates a usage repository for the given lot kind
func NewUsageRepository(db *database.DB, kind domain.Kind) *UsageRepository {
	table := "ingredient_usages"
	if kind == domain.KindPackaging {
		table = "packaging_usages"
	}
	return &UsageRepository{db: db, kind: kind, table: table}
}

// Kind returns the lot kind this repository serves
func (r *UsageRepository) Kind() domain.Kind {
	return r.kind
}

// Create inserts a usage event within a transaction. The caller
// reconciles the affected pool in the same transaction.
func (r *UsageRepository) Create(ctx context.Context, tx *sqlx.Tx, u *domain.UsageEvent) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.LifecycleState = domain.StateActive

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, batch_code, lot_id, material_name, quantity_used,
			use_category, date_used, lifecycle_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, r.table)

	err := tx.QueryRowxContext(ctx, query,
		u.ID, u.BatchCode, u.LotID, u.MaterialName, u.QuantityUsed,
		u.UseCategory, u.DateUsed, u.LifecycleState,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets an active usage event by ID
func (r *UsageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UsageEvent, error) {
	var u domain.UsageEvent
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1 AND lifecycle_state = 'active'`, r.table)
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("usage event")
		}
		return nil, err
	}
	return &u, nil
}

// List lists active usage events, most recent first
func (r *UsageRepository) List(ctx context.Context) ([]*domain.UsageEvent, error) {
	var usages []*domain.UsageEvent
	query := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE lifecycle_state = 'active'
		ORDER BY date_used DESC, batch_code
	`, r.table)
	if err := r.db.SelectContext(ctx, &usages, query); err != nil {
		return nil, err
	}
	return usages, nil
}

// ListByLot lists active usage events recorded against one lot
func (r *UsageRepository) ListByLot(ctx context.Context, lotID uuid.UUID) ([]*domain.UsageEvent, error) {
	var usages []*domain.UsageEvent
	query := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE lot_id = $1 AND lifecycle_state = 'active'
		ORDER BY date_used DESC
	`, r.table)
	if err := r.db.SelectContext(ctx, &usages, query, lotID); err != nil {
		return nil, err
	}
	return usages, nil
}

// SoftDeleteByLot flips every active usage event of a lot to deleted.
// Runs when the lot itself is soft-deleted, so retired consumption
// stops counting against the surviving pools. Returns the number of
// events retired; zero is fine (a lot with no recorded usage).
func (r *UsageRepository) SoftDeleteByLot(ctx context.Context, tx *sqlx.Tx, lotID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET lifecycle_state = 'deleted', updated_at = NOW()
		WHERE lot_id = $1 AND lifecycle_state = 'active'
	`, r.table)
	result, err := tx.ExecContext(ctx, query, lotID)
	if err != nil {
		return 0, err
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

// Update updates a usage event's editable fields within a transaction.
// The lot reference and batch code are immutable once created.
func (r *UsageRepository) Update(ctx context.Context, tx *sqlx.Tx, u *domain.UsageEvent) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			quantity_used = $2, use_category = $3, date_used = $4, updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`, r.table)

	result, err := tx.ExecContext(ctx, query, u.ID, u.QuantityUsed, u.UseCategory, u.DateUsed)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("usage event")
	}
	return nil
}

// SoftDelete flips a usage event to deleted. Re-running the balance
// formula over the survivors credits the quantity back.
func (r *UsageRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := fmt.Sprintf(`
		UPDATE %s SET lifecycle_state = 'deleted', updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`, r.table)
	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("usage event")
	}
	return nil
}
