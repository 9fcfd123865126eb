package repository

import (
	"context"
	"testing"
	"time"

	"github.com/imaps/imaps-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_UsedIngredientTotalsFiltersByRange(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("AND date_used BETWEEN $1 AND $2").
		WithArgs(start, end).
		WillReturnRows(testutil.MockRows("material_name", "total_used").
			AddRow("Beeswax", 30).
			AddRow("Shea Butter", 55))

	repo := NewReportRepository(newTestDB(mockDB))

	totals, err := repo.UsedIngredientTotals(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Beeswax", totals[0].MaterialName)
	assert.Equal(t, 30, totals[0].TotalUsed)

	mockDB.ExpectationsWereMet(t)
}

func TestReportRepository_ExpirySummariesCountBothSidesOfRange(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	// Quantity on lots already expired before the range start counts as
	// outside the range, same as quantity on lots expiring after it.
	mockDB.ExpectQuery("COALESCE(SUM(quantity_left) FILTER (WHERE expiration_date < $1 OR expiration_date > $2), 0) AS remaining_outside").
		WithArgs(start, end).
		WillReturnRows(testutil.MockRows("material_name", "expired_in_range", "remaining_outside").
			AddRow("Lavender Oil", 0, 40).
			AddRow("Shea Butter", 25, 60))

	repo := NewReportRepository(newTestDB(mockDB))

	summaries, err := repo.ExpirySummaries(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Lavender Oil", summaries[0].MaterialName)
	assert.Equal(t, 0, summaries[0].ExpiredInRange)
	assert.Equal(t, 40, summaries[0].RemainingOutside)

	mockDB.ExpectationsWereMet(t)
}
