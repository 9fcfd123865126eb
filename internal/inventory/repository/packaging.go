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

// PackagingLotRepository handles packaging lot persistence. Same
// discipline as ingredient lots: quantity_left and status belong to
// the reconciler.
type PackagingLotRepository struct {
	db *database.DB
}

// NewPackagingLotRepository creates a new packaging lot repository
func NewPackagingLotRepository(db *database.DB) *PackagingLotRepository {
	return &PackagingLotRepository{db: db}
}

// Create inserts a new lot within a transaction
func (r *PackagingLotRepository) Create(ctx context.Context, tx *sqlx.Tx, lot *domain.PackagingLot) error {
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}
	lot.LifecycleState = domain.StateActive

	query := `
		INSERT INTO packaging_lots (
			id, batch_code, supplier_id, material_name, container_size,
			date_delivered, quantity_bought, quantity_left, use_category,
			status, cost, lifecycle_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRowxContext(ctx, query,
		lot.ID, lot.BatchCode, lot.SupplierID, lot.MaterialName, lot.ContainerSize,
		lot.DateDelivered, lot.QuantityBought, lot.QuantityLeft, lot.UseCategory,
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
func (r *PackagingLotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PackagingLot, error) {
	var lot domain.PackagingLot
	query := `SELECT * FROM packaging_lots WHERE id = $1 AND lifecycle_state = 'active'`
	if err := r.db.GetContext(ctx, &lot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("packaging lot")
		}
		return nil, err
	}
	return &lot, nil
}

// GetByBatchCode gets an active lot by its batch code
func (r *PackagingLotRepository) GetByBatchCode(ctx context.Context, batchCode string) (*domain.PackagingLot, error) {
	var lot domain.PackagingLot
	query := `SELECT * FROM packaging_lots WHERE batch_code = $1 AND lifecycle_state = 'active'`
	if err := r.db.GetContext(ctx, &lot, query, batchCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("packaging lot")
		}
		return nil, err
	}
	return &lot, nil
}

// List lists active lots, newest deliveries first
func (r *PackagingLotRepository) List(ctx context.Context) ([]*domain.PackagingLot, error) {
	var lots []*domain.PackagingLot
	query := `
		SELECT * FROM packaging_lots
		WHERE lifecycle_state = 'active'
		ORDER BY date_delivered DESC, batch_code
	`
	if err := r.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, err
	}
	return lots, nil
}

// Update updates a lot's editable fields within a transaction. Batch
// code is immutable.
func (r *PackagingLotRepository) Update(ctx context.Context, tx *sqlx.Tx, lot *domain.PackagingLot) error {
	query := `
		UPDATE packaging_lots SET
			supplier_id = $2, material_name = $3, container_size = $4,
			date_delivered = $5, quantity_bought = $6, use_category = $7,
			cost = $8, updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`

	result, err := tx.ExecContext(ctx, query,
		lot.ID, lot.SupplierID, lot.MaterialName, lot.ContainerSize,
		lot.DateDelivered, lot.QuantityBought, lot.UseCategory, lot.Cost,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("packaging lot")
	}
	return nil
}

// SoftDelete flips a lot to deleted
func (r *PackagingLotRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `
		UPDATE packaging_lots SET lifecycle_state = 'deleted', updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`
	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("packaging lot")
	}
	return nil
}
