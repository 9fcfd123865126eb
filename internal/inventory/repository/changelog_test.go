package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeLogRepository_Create(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	subjectID := uuid.New().String()
	subjectLabel := "20250101-GGB-042"

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO change_log").
		WithArgs(testutil.AnyUUID{}, "ingredient_lots", "quantity_bought", "100", "120",
			&subjectID, &subjectLabel).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()

	repo := NewChangeLogRepository(newTestDB(mockDB))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	entry := &domain.ChangeLogEntry{
		TableName:     "ingredient_lots",
		ColumnName:    "quantity_bought",
		PreviousValue: "100",
		NewValue:      "120",
		SubjectID:     &subjectID,
		SubjectLabel:  &subjectLabel,
	}

	require.NoError(t, repo.Create(context.Background(), tx, entry))
	require.NoError(t, tx.Commit())

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	mockDB.ExpectationsWereMet(t)
}

func TestChangeLogRepository_ListByTableOrdersMostRecentFirst(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT * FROM change_log").
		WithArgs("ingredient_lots", 50).
		WillReturnRows(testutil.MockRows(
			"id", "table_name", "column_name", "previous_value", "new_value",
			"subject_id", "subject_label", "created_at",
		).
			AddRow(uuid.New(), "ingredient_lots", "material_name", "Shea Butter", "Shea Butter Raw", nil, nil, time.Now()).
			AddRow(uuid.New(), "ingredient_lots", "quantity_bought", "100", "120", nil, nil, time.Now().Add(-time.Hour)))

	repo := NewChangeLogRepository(newTestDB(mockDB))

	entries, err := repo.ListByTable(context.Background(), "ingredient_lots", 50)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "material_name", entries[0].ColumnName)

	mockDB.ExpectationsWereMet(t)
}
