package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/imaps/imaps-backend/pkg/messaging"
	"github.com/jmoiron/sqlx"
)

// CreateSupplier registers a new supplier
func (s *Service) CreateSupplier(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	if details := validateSupplier(supplier); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	if err := s.suppliers.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventSupplierCreated, messaging.SupplierCreatedEvent{
		SupplierID: supplier.ID.String(),
		Name:       supplier.Name,
		Categories: []string{string(supplier.Category)},
	})

	return supplier, nil
}

// GetSupplier gets an active supplier by ID
func (s *Service) GetSupplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	return s.suppliers.GetByID(ctx, id)
}

// GetSupplierByCode gets an active supplier by its user-assigned code
func (s *Service) GetSupplierByCode(ctx context.Context, code string) (*domain.Supplier, error) {
	return s.suppliers.GetByCode(ctx, code)
}

// ListSuppliers lists active suppliers, optionally filtered to those
// allowed to supply the given category
func (s *Service) ListSuppliers(ctx context.Context, category domain.SupplierCategory) ([]*domain.Supplier, error) {
	if category != "" && !category.Valid() {
		return nil, errors.Validation(map[string]string{"category": "must be one of: Ingredient, Packaging, Both"})
	}
	return s.suppliers.List(ctx, category)
}

// UpdateSupplier updates a supplier. Requires the mutation secret and
// records a change-log entry per changed field.
func (s *Service) UpdateSupplier(ctx context.Context, token string, updated *domain.Supplier) (*domain.Supplier, error) {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return nil, err
	}

	if details := validateSupplier(updated); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	current, err := s.suppliers.GetByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}

	diff := newChangeSet("suppliers", current.ID.String(), current.Code)
	diff.add("code", current.Code, updated.Code)
	diff.add("name", current.Name, updated.Name)
	diff.add("category", string(current.Category), string(updated.Category))
	diff.addOptional("contact_email", current.ContactEmail, updated.ContactEmail)
	diff.addOptional("contact_phone", current.ContactPhone, updated.ContactPhone)
	diff.addOptional("address", current.Address, updated.Address)

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.suppliers.Update(ctx, tx, updated); err != nil {
			return err
		}
		return s.changeLog.CreateAll(ctx, tx, diff.Entries())
	})
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(diff.Entries()))
	for _, e := range diff.Entries() {
		fields[e.ColumnName] = e.NewValue
	}
	s.publish(ctx, messaging.EventSupplierUpdated, messaging.SupplierUpdatedEvent{
		SupplierID: updated.ID.String(),
		Fields:     fields,
	})

	return s.suppliers.GetByID(ctx, updated.ID)
}

// DeleteSupplier soft-deletes a supplier. Suppliers still referenced
// by active lots cannot be removed.
func (s *Service) DeleteSupplier(ctx context.Context, token string, id uuid.UUID) error {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return err
	}

	current, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.suppliers.HasActiveLots(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return errors.Conflict("supplier is referenced by active lots")
	}

	diff := newChangeSet("suppliers", current.ID.String(), current.Code)
	diff.add("lifecycle_state", string(domain.StateActive), string(domain.StateDeleted))

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.suppliers.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		return s.changeLog.CreateAll(ctx, tx, diff.Entries())
	})
	if err != nil {
		return err
	}

	s.publish(ctx, messaging.EventSupplierDeleted, messaging.SupplierDeletedEvent{
		SupplierID: id.String(),
	})

	return nil
}

func validateSupplier(supplier *domain.Supplier) map[string]string {
	details := make(map[string]string)
	if supplier.Code == "" {
		details["code"] = "this field is required"
	}
	if supplier.Name == "" {
		details["name"] = "this field is required"
	}
	if !supplier.Category.Valid() {
		details["category"] = "must be one of: Ingredient, Packaging, Both"
	}
	return details
}
