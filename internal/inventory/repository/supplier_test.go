package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/database"
	apperrors "github.com/imaps/imaps-backend/pkg/errors"
	"github.com/imaps/imaps-backend/pkg/logger"
	"github.com/imaps/imaps-backend/pkg/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(m *testutil.MockDB) *database.DB {
	return database.NewFromSqlx(m.DB, logger.New("test", "test"))
}

func TestSupplierRepository_Create(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectQuery("INSERT INTO suppliers").
		WithArgs(testutil.AnyUUID{}, "SUP-001", "Shea Imports", "Ingredient",
			nil, nil, nil, "active").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	repo := NewSupplierRepository(newTestDB(mockDB))
	s := &domain.Supplier{
		Code:     "SUP-001",
		Name:     "Shea Imports",
		Category: domain.SupplierIngredient,
	}

	err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, domain.StateActive, s.LifecycleState)

	mockDB.ExpectationsWereMet(t)
}

func TestSupplierRepository_CreateDuplicateCodeMapsToConflict(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO suppliers").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "suppliers_code_key"})

	repo := NewSupplierRepository(newTestDB(mockDB))
	s := &domain.Supplier{
		Code:     "SUP-001",
		Name:     "Shea Imports",
		Category: domain.SupplierIngredient,
	}

	err := repo.Create(context.Background(), s)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	mockDB.ExpectationsWereMet(t)
}

func TestSupplierRepository_GetByIDNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	id := uuid.New()
	mockDB.ExpectQuery("SELECT * FROM suppliers WHERE id = $1 AND lifecycle_state = 'active'").
		WithArgs(id).
		WillReturnRows(testutil.MockRows("id", "code", "name"))

	repo := NewSupplierRepository(newTestDB(mockDB))

	_, err := repo.GetByID(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	mockDB.ExpectationsWereMet(t)
}

func TestSupplierRepository_SoftDeleteMissingRowIsNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	id := uuid.New()
	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE suppliers SET lifecycle_state = 'deleted'").
		WithArgs(id).
		WillReturnResult(testutil.MockResult(0))

	repo := NewSupplierRepository(newTestDB(mockDB))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	err = repo.SoftDelete(context.Background(), tx, id)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	mockDB.ExpectationsWereMet(t)
}
