package repository

import (
	"context"
	"fmt"

	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReconcileResult reports the outcome of one pool reconciliation.
type ReconcileResult struct {
	TotalBought  int
	TotalUsed    int
	QuantityLeft int
	RowsUpdated  int64
}

// Reconciler re-derives a pool's shared balance from bought/used
// totals and propagates it to the pool's write set.
//
// Totals are computed over the pool's totals scope (a scoped category
// sees its own lots plus the shared Both lots); the balance is written
// only to lots of the pool's own category. Reconciliations for the
// same pool key serialize on a transaction-scoped advisory lock, so
// two simultaneous mutations cannot both read stale totals and write
// a lost update.
type Reconciler struct{}

// NewReconciler creates a new reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile runs inside the caller's transaction: takes the pool lock,
// sums bought over active lots and used over active usage events in
// the totals scope, clamps at zero and writes balance plus re-derived
// status to every active own-category lot. An empty write set is not
// an error.
func (r *Reconciler) Reconcile(ctx context.Context, tx *sqlx.Tx, key domain.PoolKey) (*ReconcileResult, error) {
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.LockKey(),
	); err != nil {
		return nil, fmt.Errorf("failed to acquire pool lock: %w", err)
	}

	scope := pq.Array(key.TotalsScope())

	var res ReconcileResult
	switch key.Kind {
	case domain.KindIngredient:
		if err := r.reconcileIngredient(ctx, tx, key, scope, &res); err != nil {
			return nil, err
		}
	case domain.KindPackaging:
		if err := r.reconcilePackaging(ctx, tx, key, scope, &res); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown lot kind: %s", key.Kind)
	}

	return &res, nil
}

func (r *Reconciler) reconcileIngredient(ctx context.Context, tx *sqlx.Tx, key domain.PoolKey, scope interface{}, res *ReconcileResult) error {
	boughtQuery := `
		SELECT COALESCE(SUM(quantity_bought), 0)
		FROM ingredient_lots
		WHERE lower(material_name) = lower($1)
		  AND use_category = ANY($2)
		  AND lifecycle_state = 'active'
	`
	if err := tx.GetContext(ctx, &res.TotalBought, boughtQuery, key.MaterialName, scope); err != nil {
		return fmt.Errorf("failed to sum bought quantities: %w", err)
	}

	usedQuery := `
		SELECT COALESCE(SUM(quantity_used), 0)
		FROM ingredient_usages
		WHERE lower(material_name) = lower($1)
		  AND use_category = ANY($2)
		  AND lifecycle_state = 'active'
	`
	if err := tx.GetContext(ctx, &res.TotalUsed, usedQuery, key.MaterialName, scope); err != nil {
		return fmt.Errorf("failed to sum used quantities: %w", err)
	}

	res.QuantityLeft = domain.ClampBalance(res.TotalBought, res.TotalUsed)

	updateQuery := `
		UPDATE ingredient_lots SET
			quantity_left = $3,
			status = CASE
				WHEN expiration_date <= CURRENT_DATE + $4 * INTERVAL '1 day' THEN 'Expiring'
				WHEN $3 < $5 THEN 'Low Inventory'
				ELSE 'OK'
			END,
			updated_at = NOW()
		WHERE lower(material_name) = lower($1)
		  AND use_category = $2
		  AND lifecycle_state = 'active'
	`
	result, err := tx.ExecContext(ctx, updateQuery,
		key.MaterialName, key.UseCategory, res.QuantityLeft,
		domain.ExpiryWindowDays, domain.LowStockThreshold,
	)
	if err != nil {
		return fmt.Errorf("failed to propagate pool balance: %w", err)
	}

	res.RowsUpdated, _ = result.RowsAffected()
	return nil
}

func (r *Reconciler) reconcilePackaging(ctx context.Context, tx *sqlx.Tx, key domain.PoolKey, scope interface{}, res *ReconcileResult) error {
	boughtQuery := `
		SELECT COALESCE(SUM(quantity_bought), 0)
		FROM packaging_lots
		WHERE lower(material_name) = lower($1)
		  AND lower(container_size) = lower($2)
		  AND use_category = ANY($3)
		  AND lifecycle_state = 'active'
	`
	if err := tx.GetContext(ctx, &res.TotalBought, boughtQuery, key.MaterialName, key.ContainerSize, scope); err != nil {
		return fmt.Errorf("failed to sum bought quantities: %w", err)
	}

	// Usage rows carry no container size; the lot they reference
	// partitions them.
	usedQuery := `
		SELECT COALESCE(SUM(u.quantity_used), 0)
		FROM packaging_usages u
		JOIN packaging_lots l ON l.id = u.lot_id
		WHERE lower(u.material_name) = lower($1)
		  AND lower(l.container_size) = lower($2)
		  AND u.use_category = ANY($3)
		  AND u.lifecycle_state = 'active'
	`
	if err := tx.GetContext(ctx, &res.TotalUsed, usedQuery, key.MaterialName, key.ContainerSize, scope); err != nil {
		return fmt.Errorf("failed to sum used quantities: %w", err)
	}

	res.QuantityLeft = domain.ClampBalance(res.TotalBought, res.TotalUsed)

	updateQuery := `
		UPDATE packaging_lots SET
			quantity_left = $4,
			status = CASE WHEN $4 < $5 THEN 'Low Inventory' ELSE 'OK' END,
			updated_at = NOW()
		WHERE lower(material_name) = lower($1)
		  AND lower(container_size) = lower($2)
		  AND use_category = $3
		  AND lifecycle_state = 'active'
	`
	result, err := tx.ExecContext(ctx, updateQuery,
		key.MaterialName, key.ContainerSize, key.UseCategory,
		res.QuantityLeft, domain.LowStockThreshold,
	)
	if err != nil {
		return fmt.Errorf("failed to propagate pool balance: %w", err)
	}

	res.RowsUpdated, _ = result.RowsAffected()
	return nil
}
