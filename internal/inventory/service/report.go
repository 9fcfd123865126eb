package service

import (
	"context"
	"time"

	"github.com/imaps/imaps-backend/internal/inventory/repository"
	"github.com/imaps/imaps-backend/pkg/errors"
)

// ReportSummary aggregates consumption and expiry over a date range.
type ReportSummary struct {
	StartDate       time.Time                   `json:"start_date"`
	EndDate         time.Time                   `json:"end_date"`
	UsedIngredients []*repository.UsedTotal     `json:"used_ingredients"`
	UsedPackaging   []*repository.UsedTotal     `json:"used_packaging"`
	ExpirySummaries []*repository.ExpirySummary `json:"expiry_summaries"`
}

// GetReportSummary builds the inventory report for the given range.
// Reads are lock-free; figures may trail an in-flight reconciliation.
func (s *Service) GetReportSummary(ctx context.Context, start, end time.Time) (*ReportSummary, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errors.Validation(map[string]string{
			"range": "start_date and end_date are required",
		})
	}
	if end.Before(start) {
		return nil, errors.Validation(map[string]string{
			"end_date": "must not be before start_date",
		})
	}

	ingredients, err := s.reports.UsedIngredientTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	packaging, err := s.reports.UsedPackagingTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expiry, err := s.reports.ExpirySummaries(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &ReportSummary{
		StartDate:       start,
		EndDate:         end,
		UsedIngredients: ingredients,
		UsedPackaging:   packaging,
		ExpirySummaries: expiry,
	}, nil
}
