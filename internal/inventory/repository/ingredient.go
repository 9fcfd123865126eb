package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/database"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/jmoiron/sqlx"
)

// IngredientLotRepository handles ingredient lot persistence.
// quantity_left and status are owned by the reconciler; nothing here
// writes them directly.
type IngredientLotRepository struct {
	db *database.DB
}

// NewIngredientLotRepository creates a new ingredient lot repository
func NewIngredientLotRepository(db *database.DB) *IngredientLotRepository {
	return &IngredientLotRepository{db: db}
}

// Create inserts a new lot within a transaction. The caller reconciles
// the lot's pool in the same transaction before committing.
func (r *IngredientLotRepository) Create(ctx context.Context, tx *sqlx.Tx, lot *domain.IngredientLot) error {
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}
	lot.LifecycleState = domain.StateActive

	query := `
		INSERT INTO ingredient_lots (
			id, batch_code, supplier_id, material_name, date_delivered,
			quantity_bought, quantity_left, use_category, expiration_date,
			status, cost, lifecycle_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRowxContext(ctx, query,
		lot.ID, lot.BatchCode, lot.SupplierID, lot.MaterialName, lot.DateDelivered,
		lot.QuantityBought, lot.QuantityLeft, lot.UseCategory, lot.ExpirationDate,
		lot.Status, lot.Cost, lot.LifecycleState,
	).Scan(&lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets an active lot by ID
func (r *IngredientLotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngredientLot, error) {
	var lot domain.IngredientLot
	query := `SELECT * FROM ingredient_lots WHERE id = $1 AND lifecycle_state = 'active'`
	if err := r.db.GetContext(ctx, &lot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("ingredient lot")
		}
		return nil, err
	}
	return &lot, nil
}

// GetByBatchCode gets an active lot by its batch code
func (r *IngredientLotRepository) GetByBatchCode(ctx context.Context, batchCode string) (*domain.IngredientLot, error) {
	var lot domain.IngredientLot
	query := `SELECT * FROM ingredient_lots WHERE batch_code = $1 AND lifecycle_state = 'active'`
	if err := r.db.GetContext(ctx, &lot, query, batchCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("ingredient lot")
		}
		return nil, err
	}
	return &lot, nil
}

// List lists active lots, newest deliveries first
func (r *IngredientLotRepository) List(ctx context.Context) ([]*domain.IngredientLot, error) {
	var lots []*domain.IngredientLot
	query := `
		SELECT * FROM ingredient_lots
		WHERE lifecycle_state = 'active'
		ORDER BY date_delivered DESC, batch_code
	`
	if err := r.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, err
	}
	return lots, nil
}

// Update updates a lot's editable fields within a transaction. The
// batch code is identity and never changes; the caller reconciles the
// affected pool(s) in the same transaction.
func (r *IngredientLotRepository) Update(ctx context.Context, tx *sqlx.Tx, lot *domain.IngredientLot) error {
	query := `
		UPDATE ingredient_lots SET
			supplier_id = $2, material_name = $3, date_delivered = $4,
			quantity_bought = $5, use_category = $6, expiration_date = $7,
			cost = $8, updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`

	result, err := tx.ExecContext(ctx, query,
		lot.ID, lot.SupplierID, lot.MaterialName, lot.DateDelivered,
		lot.QuantityBought, lot.UseCategory, lot.ExpirationDate, lot.Cost,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("ingredient lot")
	}
	return nil
}

// SoftDelete flips a lot to deleted; survivors are reconciled by the
// caller in the same transaction
func (r *IngredientLotRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `
		UPDATE ingredient_lots SET lifecycle_state = 'deleted', updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`
	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("ingredient lot")
	}
	return nil
}
