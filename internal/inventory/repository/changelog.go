package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/pkg/database"
	"github.com/jmoiron/sqlx"
)

// ChangeLogRepository persists field-level change records.
// All operations are append-only: no UPDATE or DELETE is permitted.
type ChangeLogRepository struct {
	db *database.DB
}

// NewChangeLogRepository creates a new change log repository
func NewChangeLogRepository(db *database.DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// Create appends one change entry within the mutation's transaction,
// so the diff commits or rolls back with the change it records
func (r *ChangeLogRepository) Create(ctx context.Context, tx *sqlx.Tx, entry *domain.ChangeLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO change_log (
			id, table_name, column_name, previous_value, new_value,
			subject_id, subject_label
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return tx.QueryRowxContext(ctx, query,
		entry.ID, entry.TableName, entry.ColumnName, entry.PreviousValue,
		entry.NewValue, entry.SubjectID, entry.SubjectLabel,
	).Scan(&entry.CreatedAt)
}

// CreateAll appends a batch of entries in order
func (r *ChangeLogRepository) CreateAll(ctx context.Context, tx *sqlx.Tx, entries []*domain.ChangeLogEntry) error {
	for _, entry := range entries {
		if err := r.Create(ctx, tx, entry); err != nil {
			return err
		}
	}
	return nil
}

// ListByTable lists entries for one table, most recent first
func (r *ChangeLogRepository) ListByTable(ctx context.Context, tableName string, limit int) ([]*domain.ChangeLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []*domain.ChangeLogEntry
	query := `
		SELECT * FROM change_log
		WHERE table_name = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &entries, query, tableName, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

// List lists entries across all tables, most recent first
func (r *ChangeLogRepository) List(ctx context.Context, limit int) ([]*domain.ChangeLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []*domain.ChangeLogEntry
	query := `
		SELECT * FROM change_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
