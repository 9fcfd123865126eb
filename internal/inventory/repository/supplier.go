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

// SupplierRepository handles supplier persistence
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.LifecycleState = domain.StateActive

	query := `
		INSERT INTO suppliers (
			id, code, name, category, contact_email, contact_phone, address, lifecycle_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.Code, s.Name, s.Category, s.ContactEmail, s.ContactPhone,
		s.Address, s.LifecycleState,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets an active supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	var s domain.Supplier
	query := `SELECT * FROM suppliers WHERE id = $1 AND lifecycle_state = 'active'`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("supplier")
		}
		return nil, err
	}
	return &s, nil
}

// GetByCode gets an active supplier by its user-assigned code
func (r *SupplierRepository) GetByCode(ctx context.Context, code string) (*domain.Supplier, error) {
	var s domain.Supplier
	query := `SELECT * FROM suppliers WHERE code = $1 AND lifecycle_state = 'active'`
	if err := r.db.GetContext(ctx, &s, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("supplier")
		}
		return nil, err
	}
	return &s, nil
}

// List lists active suppliers, optionally filtered by category
func (r *SupplierRepository) List(ctx context.Context, category domain.SupplierCategory) ([]*domain.Supplier, error) {
	var suppliers []*domain.Supplier

	if category == "" {
		query := `SELECT * FROM suppliers WHERE lifecycle_state = 'active' ORDER BY name`
		if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
			return nil, err
		}
		return suppliers, nil
	}

	// Both-category suppliers serve every lot kind
	query := `
		SELECT * FROM suppliers
		WHERE lifecycle_state = 'active' AND category IN ($1, 'Both')
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &suppliers, query, category); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Update updates a supplier within a transaction
func (r *SupplierRepository) Update(ctx context.Context, tx *sqlx.Tx, s *domain.Supplier) error {
	query := `
		UPDATE suppliers SET
			code = $2, name = $3, category = $4, contact_email = $5,
			contact_phone = $6, address = $7, updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`

	result, err := tx.ExecContext(ctx, query,
		s.ID, s.Code, s.Name, s.Category, s.ContactEmail, s.ContactPhone, s.Address,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}
	return nil
}

// SoftDelete flips a supplier to deleted
func (r *SupplierRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `
		UPDATE suppliers SET lifecycle_state = 'deleted', updated_at = NOW()
		WHERE id = $1 AND lifecycle_state = 'active'
	`
	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}
	return nil
}

// HasActiveLots reports whether any active lot still references the supplier
func (r *SupplierRepository) HasActiveLots(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	query := `
		SELECT (SELECT COUNT(*) FROM ingredient_lots WHERE supplier_id = $1 AND lifecycle_state = 'active')
		     + (SELECT COUNT(*) FROM packaging_lots WHERE supplier_id = $1 AND lifecycle_state = 'active')
	`
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return false, err
	}
	return count > 0, nil
}
