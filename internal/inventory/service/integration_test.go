package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/imaps/imaps-backend/internal/inventory/authz"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/repository"
	"github.com/imaps/imaps-backend/pkg/database"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/imaps/imaps-backend/pkg/logger"
	"github.com/imaps/imaps-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIntegrationService spins up a disposable postgres container,
// applies the schema and wires a full service against it. Skipped
// unless IMAPS_TEST_INTEGRATION=1: the container needs a local docker
// daemon.
func newIntegrationService(t *testing.T) *Service {
	t.Helper()
	if os.Getenv("IMAPS_TEST_INTEGRATION") != "1" {
		t.Skip("set IMAPS_TEST_INTEGRATION=1 to run against a real postgres")
	}

	ctx := context.Background()
	container, err := testutil.NewPostgresContainer(ctx, testutil.DefaultPostgresConfig())
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	sqlxDB, err := container.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { sqlxDB.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = sqlxDB.Exec(string(schema))
	require.NoError(t, err)

	log := logger.New("integration-test", "test")
	db := database.NewFromSqlx(sqlxDB, log)

	return New(
		db,
		repository.NewSupplierRepository(db),
		repository.NewIngredientLotRepository(db),
		repository.NewPackagingLotRepository(db),
		repository.NewUsageRepository(db, domain.KindIngredient),
		repository.NewUsageRepository(db, domain.KindPackaging),
		repository.NewChangeLogRepository(db),
		repository.NewReportRepository(db),
		authz.NewSecretAuthorizer(testSecret),
		testutil.NewMockPublisher(),
		log,
	)
}

func TestIntegration_LotDeleteRetiresConsumption(t *testing.T) {
	svc := newIntegrationService(t)
	ctx := context.Background()

	supplier, err := svc.CreateSupplier(ctx, &domain.Supplier{
		Code:     "SUP-IT-01",
		Name:     "Integration Supply Co",
		Category: domain.SupplierIngredient,
	})
	require.NoError(t, err)

	delivered := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	lot, err := svc.CreateIngredientLot(ctx, &domain.IngredientLot{
		SupplierID:     supplier.ID,
		MaterialName:   "Glow Gel Base",
		DateDelivered:  delivered,
		QuantityBought: 100,
		UseCategory:    domain.UseGGB,
		ExpirationDate: time.Date(2099, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, 100, lot.QuantityLeft)

	usage, err := svc.RecordIngredientUsage(ctx, &domain.UsageEvent{
		LotID:        lot.ID,
		QuantityUsed: 15,
		UseCategory:  domain.UseGGB,
		DateUsed:     delivered.AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	refetched, err := svc.GetIngredientLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, refetched.QuantityLeft)

	require.NoError(t, svc.DeleteIngredientLot(ctx, testSecret, lot.ID))

	_, err = svc.GetIngredientLot(ctx, lot.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// The lot's consumption goes with it: the usage event is retired
	// and the material drops out of the report entirely.
	_, err = svc.GetUsage(ctx, domain.KindIngredient, usage.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	summary, err := svc.GetReportSummary(ctx, delivered, delivered.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, summary.UsedIngredients)
	assert.Empty(t, summary.ExpirySummaries)

	entries, err := svc.ListChangeLog(ctx, "ingredient_usages", 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "lifecycle_state", entries[0].ColumnName)
}

func TestIntegration_ExpirySummaryCountsQuantityOutsideRange(t *testing.T) {
	svc := newIntegrationService(t)
	ctx := context.Background()

	supplier, err := svc.CreateSupplier(ctx, &domain.Supplier{
		Code:     "SUP-IT-02",
		Name:     "Integration Supply Co",
		Category: domain.SupplierIngredient,
	})
	require.NoError(t, err)

	// Expired well before the report range: still counts as quantity
	// outside the range.
	_, err = svc.CreateIngredientLot(ctx, &domain.IngredientLot{
		SupplierID:     supplier.ID,
		MaterialName:   "Lavender Oil",
		DateDelivered:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		QuantityBought: 40,
		UseCategory:    domain.UseWBC,
		ExpirationDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	summary, err := svc.GetReportSummary(ctx,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, summary.ExpirySummaries, 1)
	assert.Equal(t, "Lavender Oil", summary.ExpirySummaries[0].MaterialName)
	assert.Equal(t, 0, summary.ExpirySummaries[0].ExpiredInRange)
	assert.Equal(t, 40, summary.ExpirySummaries[0].RemainingOutside)
}
