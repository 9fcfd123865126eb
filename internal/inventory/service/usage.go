package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/repository"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/imaps/imaps-backend/pkg/messaging"
	"github.com/jmoiron/sqlx"
)

// RecordIngredientUsage records consumption against an ingredient lot
// and reconciles the usage's pool in the same transaction
func (s *Service) RecordIngredientUsage(ctx context.Context, usage *domain.UsageEvent) (*domain.UsageEvent, error) {
	lot, err := s.ingredientLots.GetByID(ctx, usage.LotID)
	if err != nil {
		return nil, err
	}

	if details := validateUsage(usage, lot.DateDelivered); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	// Material name travels with the event so the record stays
	// meaningful if the lot is later renamed or removed.
	usage.MaterialName = lot.MaterialName

	key := domain.PoolKey{
		Kind:         domain.KindIngredient,
		MaterialName: lot.MaterialName,
		UseCategory:  usage.UseCategory,
	}

	var result *repository.ReconcileResult
	err = s.withBatchCodeRetry(func() error {
		usage.BatchCode = domain.GenerateBatchCode(usage.DateUsed, usage.MaterialName, "")
		usage.ID = uuid.Nil
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			if err := s.ingredientUsages.Create(ctx, tx, usage); err != nil {
				return err
			}
			res, err := s.reconciler.Reconcile(ctx, tx, key)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventUsageRecorded, messaging.UsageRecordedEvent{
		UsageID:      usage.ID.String(),
		Kind:         string(domain.KindIngredient),
		BatchCode:    usage.BatchCode,
		MaterialName: usage.MaterialName,
		UseCategory:  string(usage.UseCategory),
		QuantityUsed: usage.QuantityUsed,
		DateUsed:     usage.DateUsed,
	})
	s.publishReconciled(ctx, key, result)

	return s.ingredientUsages.GetByID(ctx, usage.ID)
}

// RecordPackagingUsage records consumption against a packaging lot.
// The pool key inherits the lot's container size.
func (s *Service) RecordPackagingUsage(ctx context.Context, usage *domain.UsageEvent) (*domain.UsageEvent, error) {
	lot, err := s.packagingLots.GetByID(ctx, usage.LotID)
	if err != nil {
		return nil, err
	}

	if details := validateUsage(usage, lot.DateDelivered); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	usage.MaterialName = lot.MaterialName

	key := domain.PoolKey{
		Kind:          domain.KindPackaging,
		MaterialName:  lot.MaterialName,
		UseCategory:   usage.UseCategory,
		ContainerSize: lot.ContainerSize,
	}

	container := lot.ContainerSize
	if container == "" {
		container = "UNK"
	}

	var result *repository.ReconcileResult
	err = s.withBatchCodeRetry(func() error {
		// The code's date segment is the lot's delivery date, so a
		// usage code shares its prefix with the label printed at
		// receiving.
		usage.BatchCode = domain.GenerateBatchCode(lot.DateDelivered, usage.MaterialName, container)
		usage.ID = uuid.Nil
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			if err := s.packagingUsages.Create(ctx, tx, usage); err != nil {
				return err
			}
			res, err := s.reconciler.Reconcile(ctx, tx, key)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.EventUsageRecorded, messaging.UsageRecordedEvent{
		UsageID:      usage.ID.String(),
		Kind:         string(domain.KindPackaging),
		BatchCode:    usage.BatchCode,
		MaterialName: usage.MaterialName,
		UseCategory:  string(usage.UseCategory),
		QuantityUsed: usage.QuantityUsed,
		DateUsed:     usage.DateUsed,
	})
	s.publishReconciled(ctx, key, result)

	return s.packagingUsages.GetByID(ctx, usage.ID)
}

// GetUsage gets an active usage event of the given kind
func (s *Service) GetUsage(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.UsageEvent, error) {
	return s.usageRepo(kind).GetByID(ctx, id)
}

// ListUsages lists active usage events of the given kind
func (s *Service) ListUsages(ctx context.Context, kind domain.Kind) ([]*domain.UsageEvent, error) {
	return s.usageRepo(kind).List(ctx)
}

// ListUsagesByLot lists active usage events recorded against one lot
func (s *Service) ListUsagesByLot(ctx context.Context, kind domain.Kind, lotID uuid.UUID) ([]*domain.UsageEvent, error) {
	return s.usageRepo(kind).ListByLot(ctx, lotID)
}

// UpdateUsage edits a usage event's quantity, category or date. The lot
// reference and batch code never change. When the category moves, both
// the old and new pools are reconciled.
func (s *Service) UpdateUsage(ctx context.Context, token string, kind domain.Kind, updated *domain.UsageEvent) (*domain.UsageEvent, error) {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return nil, err
	}

	repo := s.usageRepo(kind)

	current, err := repo.GetByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}

	oldKey, err := s.usagePoolKey(ctx, kind, current)
	if err != nil {
		return nil, err
	}

	lotDelivered, err := s.lotDateDelivered(ctx, kind, current.LotID)
	if err != nil {
		return nil, err
	}
	if details := validateUsage(updated, lotDelivered); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	// Lot reference and identity are fixed at recording time.
	updated.LotID = current.LotID
	updated.BatchCode = current.BatchCode
	updated.MaterialName = current.MaterialName

	table := "ingredient_usages"
	if kind == domain.KindPackaging {
		table = "packaging_usages"
	}
	diff := newChangeSet(table, current.ID.String(), current.BatchCode)
	diff.addInt("quantity_used", current.QuantityUsed, updated.QuantityUsed)
	diff.add("use_category", string(current.UseCategory), string(updated.UseCategory))
	diff.addDate("date_used", current.DateUsed, updated.DateUsed)

	newKey := oldKey
	newKey.UseCategory = updated.UseCategory

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := repo.Update(ctx, tx, updated); err != nil {
			return err
		}
		if err := s.changeLog.CreateAll(ctx, tx, diff.Entries()); err != nil {
			return err
		}
		if _, err := s.reconciler.Reconcile(ctx, tx, oldKey); err != nil {
			return err
		}
		if newKey.LockKey() != oldKey.LockKey() {
			if _, err := s.reconciler.Reconcile(ctx, tx, newKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(diff.Entries()))
	for _, e := range diff.Entries() {
		fields[e.ColumnName] = e.NewValue
	}
	s.publish(ctx, messaging.EventUsageUpdated, messaging.UsageUpdatedEvent{
		UsageID: updated.ID.String(),
		Kind:    string(kind),
		Fields:  fields,
	})

	return repo.GetByID(ctx, updated.ID)
}

// DeleteUsage soft-deletes a usage event. Reconciling the pool without
// it credits the consumed quantity back to the surviving lots.
func (s *Service) DeleteUsage(ctx context.Context, token string, kind domain.Kind, id uuid.UUID) error {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return err
	}

	repo := s.usageRepo(kind)

	current, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	key, err := s.usagePoolKey(ctx, kind, current)
	if err != nil {
		return err
	}

	table := "ingredient_usages"
	if kind == domain.KindPackaging {
		table = "packaging_usages"
	}
	diff := newChangeSet(table, current.ID.String(), current.BatchCode)
	diff.add("lifecycle_state", string(domain.StateActive), string(domain.StateDeleted))

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := repo.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		if err := s.changeLog.CreateAll(ctx, tx, diff.Entries()); err != nil {
			return err
		}
		_, err := s.reconciler.Reconcile(ctx, tx, key)
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, messaging.EventUsageDeleted, messaging.UsageDeletedEvent{
		UsageID: id.String(),
		Kind:    string(kind),
	})

	return nil
}

func (s *Service) usageRepo(kind domain.Kind) *repository.UsageRepository {
	if kind == domain.KindPackaging {
		return s.packagingUsages
	}
	return s.ingredientUsages
}

// usagePoolKey resolves the pool a usage event draws from. Packaging
// pools need the container size, which lives on the lot.
func (s *Service) usagePoolKey(ctx context.Context, kind domain.Kind, u *domain.UsageEvent) (domain.PoolKey, error) {
	key := domain.PoolKey{
		Kind:         kind,
		MaterialName: u.MaterialName,
		UseCategory:  u.UseCategory,
	}
	if kind == domain.KindPackaging {
		lot, err := s.packagingLots.GetByID(ctx, u.LotID)
		if err != nil {
			return domain.PoolKey{}, err
		}
		key.ContainerSize = lot.ContainerSize
	}
	return key, nil
}

func (s *Service) lotDateDelivered(ctx context.Context, kind domain.Kind, lotID uuid.UUID) (dateDelivered time.Time, err error) {
	if kind == domain.KindPackaging {
		lot, err := s.packagingLots.GetByID(ctx, lotID)
		if err != nil {
			return time.Time{}, err
		}
		return lot.DateDelivered, nil
	}
	lot, err := s.ingredientLots.GetByID(ctx, lotID)
	if err != nil {
		return time.Time{}, err
	}
	return lot.DateDelivered, nil
}

func validateUsage(u *domain.UsageEvent, lotDelivered time.Time) map[string]string {
	details := make(map[string]string)
	if u.QuantityUsed <= 0 {
		details["quantity_used"] = "must be greater than zero"
	}
	if !u.UseCategory.Valid() {
		details["use_category"] = "must be one of: WBC, GGB, Both"
	}
	if u.DateUsed.IsZero() {
		details["date_used"] = "this field is required"
	} else if u.DateUsed.Before(lotDelivered) {
		details["date_used"] = "must not be before the lot's delivery date"
	}
	return details
}
