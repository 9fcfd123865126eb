package repository

import (
	"context"
	"time"

	"github.com/imaps/imaps-backend/pkg/database"
)

// UsedTotal is the consumption of one material within a report range.
type UsedTotal struct {
	MaterialName string `db:"material_name" json:"material_name"`
	TotalUsed    int    `db:"total_used" json:"total_used"`
}

// ExpirySummary contrasts, per material, the pooled quantity sitting on
// lots that expire inside the report range against the quantity on lots
// expiring outside it, on either side.
type ExpirySummary struct {
	MaterialName     string `db:"material_name" json:"material_name"`
	ExpiredInRange   int    `db:"expired_in_range" json:"expired_in_range"`
	RemainingOutside int    `db:"remaining_outside" json:"remaining_outside"`
}

// ReportRepository serves the read-only report aggregations. Reads are
// lock-free; values may trail an in-flight reconciliation.
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// UsedIngredientTotals sums ingredient consumption by material in range
func (r *ReportRepository) UsedIngredientTotals(ctx context.Context, start, end time.Time) ([]*UsedTotal, error) {
	var totals []*UsedTotal
	query := `
		SELECT material_name, COALESCE(SUM(quantity_used), 0) AS total_used
		FROM ingredient_usages
		WHERE lifecycle_state = 'active'
		  AND date_used BETWEEN $1 AND $2
		GROUP BY material_name
		ORDER BY material_name
	`
	if err := r.db.SelectContext(ctx, &totals, query, start, end); err != nil {
		return nil, err
	}
	return totals, nil
}

// UsedPackagingTotals sums packaging consumption by material in range
func (r *ReportRepository) UsedPackagingTotals(ctx context.Context, start, end time.Time) ([]*UsedTotal, error) {
	var totals []*UsedTotal
	query := `
		SELECT material_name, COALESCE(SUM(quantity_used), 0) AS total_used
		FROM packaging_usages
		WHERE lifecycle_state = 'active'
		  AND date_used BETWEEN $1 AND $2
		GROUP BY material_name
		ORDER BY material_name
	`
	if err := r.db.SelectContext(ctx, &totals, query, start, end); err != nil {
		return nil, err
	}
	return totals, nil
}

// ExpirySummaries reports, per ingredient material, pooled quantity on
// lots expiring within the range versus outside it (already expired
// before the range or still good after it). Materials with no active
// lots are omitted; packaging has no expiration concept.
func (r *ReportRepository) ExpirySummaries(ctx context.Context, start, end time.Time) ([]*ExpirySummary, error) {
	var summaries []*ExpirySummary
	query := `
		SELECT material_name,
		       COALESCE(SUM(quantity_left) FILTER (WHERE expiration_date BETWEEN $1 AND $2), 0) AS expired_in_range,
		       COALESCE(SUM(quantity_left) FILTER (WHERE expiration_date < $1 OR expiration_date > $2), 0) AS remaining_outside
		FROM ingredient_lots
		WHERE lifecycle_state = 'active'
		GROUP BY material_name
		ORDER BY material_name
	`
	if err := r.db.SelectContext(ctx, &summaries, query, start, end); err != nil {
		return nil, err
	}
	return summaries, nil
}
