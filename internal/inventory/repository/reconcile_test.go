package repository

import (
	"context"
	"testing"

	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_IngredientPoolSeesOwnAndBothStock(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	key := domain.PoolKey{
		Kind:         domain.KindIngredient,
		MaterialName: "Glow Gel Base",
		UseCategory:  domain.UseGGB,
	}

	// GGB totals scope is {GGB, Both}: 100 own + 50 shared bought, 15 used.
	mockDB.ExpectBegin()
	mockDB.ExpectAdvisoryLock("pool:ingredient:glow gel base:GGB")
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_bought), 0)").
		WithArgs("Glow Gel Base", pq.Array([]string{"GGB", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(150))
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_used), 0)").
		WithArgs("Glow Gel Base", pq.Array([]string{"GGB", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(15))
	mockDB.ExpectExec("UPDATE ingredient_lots SET").
		WithArgs("Glow Gel Base", "GGB", 135, domain.ExpiryWindowDays, domain.LowStockThreshold).
		WillReturnResult(testutil.MockResult(2))
	mockDB.ExpectCommit()

	ctx := context.Background()
	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	res, err := NewReconciler().Reconcile(ctx, tx, key)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, 150, res.TotalBought)
	assert.Equal(t, 15, res.TotalUsed)
	assert.Equal(t, 135, res.QuantityLeft)
	assert.Equal(t, int64(2), res.RowsUpdated)

	mockDB.ExpectationsWereMet(t)
}

func TestReconciler_BothPoolIsolatedFromScopedStock(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	key := domain.PoolKey{
		Kind:         domain.KindIngredient,
		MaterialName: "Glow Gel Base",
		UseCategory:  domain.UseBoth,
	}

	// Both sees only Both-scoped stock.
	mockDB.ExpectBegin()
	mockDB.ExpectAdvisoryLock("pool:ingredient:glow gel base:Both")
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_bought), 0)").
		WithArgs("Glow Gel Base", pq.Array([]string{"Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(50))
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_used), 0)").
		WithArgs("Glow Gel Base", pq.Array([]string{"Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(0))
	mockDB.ExpectExec("UPDATE ingredient_lots SET").
		WithArgs("Glow Gel Base", "Both", 50, domain.ExpiryWindowDays, domain.LowStockThreshold).
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectCommit()

	ctx := context.Background()
	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	res, err := NewReconciler().Reconcile(ctx, tx, key)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, 50, res.QuantityLeft)

	mockDB.ExpectationsWereMet(t)
}

func TestReconciler_OverConsumptionClampsToZero(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	key := domain.PoolKey{
		Kind:         domain.KindIngredient,
		MaterialName: "Beeswax",
		UseCategory:  domain.UseWBC,
	}

	mockDB.ExpectBegin()
	mockDB.ExpectAdvisoryLock("pool:ingredient:beeswax:WBC")
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_bought), 0)").
		WithArgs("Beeswax", pq.Array([]string{"WBC", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(10))
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_used), 0)").
		WithArgs("Beeswax", pq.Array([]string{"WBC", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(25))
	mockDB.ExpectExec("UPDATE ingredient_lots SET").
		WithArgs("Beeswax", "WBC", 0, domain.ExpiryWindowDays, domain.LowStockThreshold).
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectCommit()

	ctx := context.Background()
	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	res, err := NewReconciler().Reconcile(ctx, tx, key)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, 0, res.QuantityLeft, "underflow is absorbed, never negative")

	mockDB.ExpectationsWereMet(t)
}

func TestReconciler_PackagingPartitionsByContainerSize(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	key := domain.PoolKey{
		Kind:          domain.KindPackaging,
		MaterialName:  "Round Jar",
		UseCategory:   domain.UseWBC,
		ContainerSize: "250ml",
	}

	mockDB.ExpectBegin()
	mockDB.ExpectAdvisoryLock("pool:packaging:round jar:WBC:250ml")
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_bought), 0)").
		WithArgs("Round Jar", "250ml", pq.Array([]string{"WBC", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(200))
	mockDB.ExpectQuery("SELECT COALESCE(SUM(u.quantity_used), 0)").
		WithArgs("Round Jar", "250ml", pq.Array([]string{"WBC", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(40))
	mockDB.ExpectExec("UPDATE packaging_lots SET").
		WithArgs("Round Jar", "250ml", "WBC", 160, domain.LowStockThreshold).
		WillReturnResult(testutil.MockResult(1))
	mockDB.ExpectCommit()

	ctx := context.Background()
	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	res, err := NewReconciler().Reconcile(ctx, tx, key)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, 160, res.QuantityLeft)

	mockDB.ExpectationsWereMet(t)
}

func TestReconciler_EmptyWriteSetIsNotAnError(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	key := domain.PoolKey{
		Kind:         domain.KindIngredient,
		MaterialName: "Retired Material",
		UseCategory:  domain.UseWBC,
	}

	// Last lot of the pool was just deleted: sums are zero, zero rows
	// match the write set.
	mockDB.ExpectBegin()
	mockDB.ExpectAdvisoryLock("pool:ingredient:retired material:WBC")
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_bought), 0)").
		WithArgs("Retired Material", pq.Array([]string{"WBC", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(0))
	mockDB.ExpectQuery("SELECT COALESCE(SUM(quantity_used), 0)").
		WithArgs("Retired Material", pq.Array([]string{"WBC", "Both"})).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(0))
	mockDB.ExpectExec("UPDATE ingredient_lots SET").
		WithArgs("Retired Material", "WBC", 0, domain.ExpiryWindowDays, domain.LowStockThreshold).
		WillReturnResult(testutil.MockResult(0))
	mockDB.ExpectCommit()

	ctx := context.Background()
	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	res, err := NewReconciler().Reconcile(ctx, tx, key)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(0), res.RowsUpdated)

	mockDB.ExpectationsWereMet(t)
}
