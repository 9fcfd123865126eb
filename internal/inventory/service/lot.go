package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/repository"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/imaps/imaps-backend/pkg/messaging"
	"github.com/jmoiron/sqlx"
)

// CreateIngredientLot records a received ingredient delivery: assigns
// a batch identity, inserts the lot and runs the pool's first
// reconciliation in one transaction. Identity collisions are retried
// with a fresh code a bounded number of times.
func (s *Service) CreateIngredientLot(ctx context.Context, lot *domain.IngredientLot) (*domain.IngredientLot, error) {
	if details := s.validateIngredientLot(lot); len(details) > 0 {
		return nil, errors.Validation(details)
	}
	if err := s.checkSupplier(ctx, lot.SupplierID, domain.KindIngredient); err != nil {
		return nil, err
	}

	lot.QuantityLeft = lot.QuantityBought
	lot.Status = domain.DeriveIngredientStatus(lot.QuantityLeft, lot.ExpirationDate, s.today())

	var result *repository.ReconcileResult
	err := s.withBatchCodeRetry(func() error {
		lot.BatchCode = domain.GenerateBatchCode(lot.DateDelivered, lot.MaterialName, "")
		lot.ID = uuid.Nil
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			if err := s.ingredientLots.Create(ctx, tx, lot); err != nil {
				return err
			}
			res, err := s.reconciler.Reconcile(ctx, tx, lot.PoolKey())
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

	s.publish(ctx, messaging.EventLotReceived, messaging.LotReceivedEvent{
		LotID:          lot.ID.String(),
		Kind:           string(domain.KindIngredient),
		BatchCode:      lot.BatchCode,
		MaterialName:   lot.MaterialName,
		UseCategory:    string(lot.UseCategory),
		QuantityBought: lot.QuantityBought,
		DateDelivered:  lot.DateDelivered,
	})
	s.publishReconciled(ctx, lot.PoolKey(), result)

	return s.ingredientLots.GetByID(ctx, lot.ID)
}

// GetIngredientLot gets an active ingredient lot
func (s *Service) GetIngredientLot(ctx context.Context, id uuid.UUID) (*domain.IngredientLot, error) {
	return s.ingredientLots.GetByID(ctx, id)
}

// GetIngredientLotByCode gets an active ingredient lot by batch code
func (s *Service) GetIngredientLotByCode(ctx context.Context, batchCode string) (*domain.IngredientLot, error) {
	return s.ingredientLots.GetByBatchCode(ctx, batchCode)
}

// ListIngredientLots lists active ingredient lots
func (s *Service) ListIngredientLots(ctx context.Context) ([]*domain.IngredientLot, error) {
	return s.ingredientLots.List(ctx)
}

// UpdateIngredientLot edits a lot's fields. The batch code never
// changes; if pool-relevant fields changed, both the old and the new
// pool are reconciled in the same transaction.
func (s *Service) UpdateIngredientLot(ctx context.Context, token string, updated *domain.IngredientLot) (*domain.IngredientLot, error) {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return nil, err
	}

	if details := s.validateIngredientLot(updated); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	current, err := s.ingredientLots.GetByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, updated.SupplierID, domain.KindIngredient); err != nil {
		return nil, err
	}

	// Identity is permanent once assigned.
	updated.BatchCode = current.BatchCode

	diff := newChangeSet("ingredient_lots", current.ID.String(), current.BatchCode)
	diff.add("supplier_id", current.SupplierID.String(), updated.SupplierID.String())
	diff.add("material_name", current.MaterialName, updated.MaterialName)
	diff.addDate("date_delivered", current.DateDelivered, updated.DateDelivered)
	diff.addInt("quantity_bought", current.QuantityBought, updated.QuantityBought)
	diff.add("use_category", string(current.UseCategory), string(updated.UseCategory))
	diff.addDate("expiration_date", current.ExpirationDate, updated.ExpirationDate)
	diff.addDecimal("cost", current.Cost, updated.Cost)

	oldKey := current.PoolKey()
	newKey := updated.PoolKey()

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.ingredientLots.Update(ctx, tx, updated); err != nil {
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
	s.publish(ctx, messaging.EventLotUpdated, messaging.LotUpdatedEvent{
		LotID:     updated.ID.String(),
		Kind:      string(domain.KindIngredient),
		BatchCode: updated.BatchCode,
		Fields:    fields,
	})

	return s.ingredientLots.GetByID(ctx, updated.ID)
}

// DeleteIngredientLot soft-deletes a lot together with its usage
// events, then reconciles the survivors. A retired lot's consumption
// must stop draining the pool, so the events go with it; they may sit
// in other categories than the lot, so every touched pool is
// re-derived in the same transaction.
func (s *Service) DeleteIngredientLot(ctx context.Context, token string, id uuid.UUID) error {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return err
	}

	current, err := s.ingredientLots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	usages, err := s.ingredientUsages.ListByLot(ctx, id)
	if err != nil {
		return err
	}

	diff := newChangeSet("ingredient_lots", current.ID.String(), current.BatchCode)
	diff.add("lifecycle_state", string(domain.StateActive), string(domain.StateDeleted))
	entries := diff.Entries()

	keys := []domain.PoolKey{current.PoolKey()}
	for _, u := range usages {
		ud := newChangeSet("ingredient_usages", u.ID.String(), u.BatchCode)
		ud.add("lifecycle_state", string(domain.StateActive), string(domain.StateDeleted))
		entries = append(entries, ud.Entries()...)
		keys = appendPoolKey(keys, domain.PoolKey{
			Kind:         domain.KindIngredient,
			MaterialName: u.MaterialName,
			UseCategory:  u.UseCategory,
		})
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.ingredientLots.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		if len(usages) > 0 {
			if _, err := s.ingredientUsages.SoftDeleteByLot(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := s.changeLog.CreateAll(ctx, tx, entries); err != nil {
			return err
		}
		for _, key := range keys {
			if _, err := s.reconciler.Reconcile(ctx, tx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, messaging.EventLotDeleted, messaging.LotDeletedEvent{
		LotID:     id.String(),
		Kind:      string(domain.KindIngredient),
		BatchCode: current.BatchCode,
	})

	return nil
}

// CreatePackagingLot records a received packaging delivery. The batch
// code carries the container size segment ("UNK" when unspecified).
func (s *Service) CreatePackagingLot(ctx context.Context, lot *domain.PackagingLot) (*domain.PackagingLot, error) {
	if details := s.validatePackagingLot(lot); len(details) > 0 {
		return nil, errors.Validation(details)
	}
	if err := s.checkSupplier(ctx, lot.SupplierID, domain.KindPackaging); err != nil {
		return nil, err
	}

	lot.QuantityLeft = lot.QuantityBought
	lot.Status = domain.DerivePackagingStatus(lot.QuantityLeft)

	container := lot.ContainerSize
	if container == "" {
		container = "UNK"
	}

	var result *repository.ReconcileResult
	err := s.withBatchCodeRetry(func() error {
		lot.BatchCode = domain.GenerateBatchCode(lot.DateDelivered, lot.MaterialName, container)
		lot.ID = uuid.Nil
		return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			if err := s.packagingLots.Create(ctx, tx, lot); err != nil {
				return err
			}
			res, err := s.reconciler.Reconcile(ctx, tx, lot.PoolKey())
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

	s.publish(ctx, messaging.EventLotReceived, messaging.LotReceivedEvent{
		LotID:          lot.ID.String(),
		Kind:           string(domain.KindPackaging),
		BatchCode:      lot.BatchCode,
		MaterialName:   lot.MaterialName,
		UseCategory:    string(lot.UseCategory),
		QuantityBought: lot.QuantityBought,
		DateDelivered:  lot.DateDelivered,
	})
	s.publishReconciled(ctx, lot.PoolKey(), result)

	return s.packagingLots.GetByID(ctx, lot.ID)
}

// GetPackagingLot gets an active packaging lot
func (s *Service) GetPackagingLot(ctx context.Context, id uuid.UUID) (*domain.PackagingLot, error) {
	return s.packagingLots.GetByID(ctx, id)
}

// GetPackagingLotByCode gets an active packaging lot by batch code
func (s *Service) GetPackagingLotByCode(ctx context.Context, batchCode string) (*domain.PackagingLot, error) {
	return s.packagingLots.GetByBatchCode(ctx, batchCode)
}

// ListPackagingLots lists active packaging lots
func (s *Service) ListPackagingLots(ctx context.Context) ([]*domain.PackagingLot, error) {
	return s.packagingLots.List(ctx)
}

// UpdatePackagingLot edits a packaging lot's fields
func (s *Service) UpdatePackagingLot(ctx context.Context, token string, updated *domain.PackagingLot) (*domain.PackagingLot, error) {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return nil, err
	}

	if details := s.validatePackagingLot(updated); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	current, err := s.packagingLots.GetByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, updated.SupplierID, domain.KindPackaging); err != nil {
		return nil, err
	}

	updated.BatchCode = current.BatchCode

	diff := newChangeSet("packaging_lots", current.ID.String(), current.BatchCode)
	diff.add("supplier_id", current.SupplierID.String(), updated.SupplierID.String())
	diff.add("material_name", current.MaterialName, updated.MaterialName)
	diff.add("container_size", current.ContainerSize, updated.ContainerSize)
	diff.addDate("date_delivered", current.DateDelivered, updated.DateDelivered)
	diff.addInt("quantity_bought", current.QuantityBought, updated.QuantityBought)
	diff.add("use_category", string(current.UseCategory), string(updated.UseCategory))
	diff.addDecimal("cost", current.Cost, updated.Cost)

	oldKey := current.PoolKey()
	newKey := updated.PoolKey()

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.packagingLots.Update(ctx, tx, updated); err != nil {
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
	s.publish(ctx, messaging.EventLotUpdated, messaging.LotUpdatedEvent{
		LotID:     updated.ID.String(),
		Kind:      string(domain.KindPackaging),
		BatchCode: updated.BatchCode,
		Fields:    fields,
	})

	return s.packagingLots.GetByID(ctx, updated.ID)
}

// DeletePackagingLot soft-deletes a packaging lot together with its
// usage events and reconciles every pool the retirement touches
func (s *Service) DeletePackagingLot(ctx context.Context, token string, id uuid.UUID) error {
	if err := s.authorizer.AuthorizeMutation(token); err != nil {
		return err
	}

	current, err := s.packagingLots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	usages, err := s.packagingUsages.ListByLot(ctx, id)
	if err != nil {
		return err
	}

	diff := newChangeSet("packaging_lots", current.ID.String(), current.BatchCode)
	diff.add("lifecycle_state", string(domain.StateActive), string(domain.StateDeleted))
	entries := diff.Entries()

	keys := []domain.PoolKey{current.PoolKey()}
	for _, u := range usages {
		ud := newChangeSet("packaging_usages", u.ID.String(), u.BatchCode)
		ud.add("lifecycle_state", string(domain.StateActive), string(domain.StateDeleted))
		entries = append(entries, ud.Entries()...)
		keys = appendPoolKey(keys, domain.PoolKey{
			Kind:          domain.KindPackaging,
			MaterialName:  u.MaterialName,
			UseCategory:   u.UseCategory,
			ContainerSize: current.ContainerSize,
		})
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.packagingLots.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		if len(usages) > 0 {
			if _, err := s.packagingUsages.SoftDeleteByLot(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := s.changeLog.CreateAll(ctx, tx, entries); err != nil {
			return err
		}
		for _, key := range keys {
			if _, err := s.reconciler.Reconcile(ctx, tx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, messaging.EventLotDeleted, messaging.LotDeletedEvent{
		LotID:     id.String(),
		Kind:      string(domain.KindPackaging),
		BatchCode: current.BatchCode,
	})

	return nil
}

// appendPoolKey queues a pool for reconciliation unless an equivalent
// key is already queued
func appendPoolKey(keys []domain.PoolKey, key domain.PoolKey) []domain.PoolKey {
	for _, k := range keys {
		if k.LockKey() == key.LockKey() {
			return keys
		}
	}
	return append(keys, key)
}

// withBatchCodeRetry runs fn, retrying with a fresh batch code when
// the storage layer rejects the random suffix as a duplicate
func (s *Service) withBatchCodeRetry(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < batchCodeAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errors.ErrConflict) {
			return lastErr
		}
		s.logger.Warn().Int("attempt", attempt+1).Msg("batch code collision, regenerating")
	}
	return errors.Consistency("could not assign a unique batch code")
}

// publishReconciled announces a reconciled balance
func (s *Service) publishReconciled(ctx context.Context, key domain.PoolKey, res *repository.ReconcileResult) {
	if res == nil {
		return
	}
	s.publish(ctx, messaging.EventBalanceReconciled, messaging.BalanceReconciledEvent{
		Kind:          string(key.Kind),
		MaterialName:  key.MaterialName,
		UseCategory:   string(key.UseCategory),
		ContainerSize: key.ContainerSize,
		TotalBought:   res.TotalBought,
		TotalUsed:     res.TotalUsed,
		QuantityLeft:  res.QuantityLeft,
		RowsUpdated:   int(res.RowsUpdated),
	})
}

func (s *Service) validateIngredientLot(lot *domain.IngredientLot) map[string]string {
	details := make(map[string]string)
	if lot.MaterialName == "" {
		details["material_name"] = "this field is required"
	}
	if lot.QuantityBought < 0 {
		details["quantity_bought"] = "must not be negative"
	}
	if !lot.UseCategory.Valid() {
		details["use_category"] = "must be one of: WBC, GGB, Both"
	}
	if lot.DateDelivered.IsZero() {
		details["date_delivered"] = "this field is required"
	}
	if lot.ExpirationDate.IsZero() {
		details["expiration_date"] = "this field is required"
	} else if lot.ExpirationDate.Before(lot.DateDelivered) {
		details["expiration_date"] = "must not be before the delivery date"
	}
	return details
}

func (s *Service) validatePackagingLot(lot *domain.PackagingLot) map[string]string {
	details := make(map[string]string)
	if lot.MaterialName == "" {
		details["material_name"] = "this field is required"
	}
	if lot.QuantityBought < 0 {
		details["quantity_bought"] = "must not be negative"
	}
	if !lot.UseCategory.Valid() {
		details["use_category"] = "must be one of: WBC, GGB, Both"
	}
	if lot.DateDelivered.IsZero() {
		details["date_delivered"] = "this field is required"
	}
	return details
}

// checkSupplier verifies the supplier exists and may supply the kind
func (s *Service) checkSupplier(ctx context.Context, supplierID uuid.UUID, kind domain.Kind) error {
	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if !supplier.Category.Allows(kind) {
		return errors.Validation(map[string]string{
			"supplier_id": "supplier does not serve this material kind",
		})
	}
	return nil
}
