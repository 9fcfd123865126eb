// Package service orchestrates the inventory ledger: validation,
// batch identity assignment, pool reconciliation, change logging and
// event publication.
package service

import (
	"context"
	"time"

	"github.com/imaps/imaps-backend/internal/inventory/authz"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/repository"
	"github.com/imaps/imaps-backend/pkg/database"
	"github.com/imaps/imaps-backend/pkg/logger"
)

// batchCodeAttempts bounds the identity-collision retry loop. The
// 3-digit random suffix makes collisions rare but possible; after this
// many rejected inserts the failure surfaces as a consistency error.
const batchCodeAttempts = 3

// EventPublisher publishes ledger events. Publication is best-effort:
// a broker failure never rolls back a committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Service implements the inventory ledger operations
type Service struct {
	db               *database.DB
	suppliers        *repository.SupplierRepository
	ingredientLots   *repository.IngredientLotRepository
	packagingLots    *repository.PackagingLotRepository
	ingredientUsages *repository.UsageRepository
	packagingUsages  *repository.UsageRepository
	changeLog        *repository.ChangeLogRepository
	reports          *repository.ReportRepository
	reconciler       *repository.Reconciler
	authorizer       authz.Authorizer
	publisher        EventPublisher
	logger           *logger.Logger
	now              func() time.Time
}

// New creates the inventory service
func New(
	db *database.DB,
	suppliers *repository.SupplierRepository,
	ingredientLots *repository.IngredientLotRepository,
	packagingLots *repository.PackagingLotRepository,
	ingredientUsages *repository.UsageRepository,
	packagingUsages *repository.UsageRepository,
	changeLog *repository.ChangeLogRepository,
	reports *repository.ReportRepository,
	authorizer authz.Authorizer,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		db:               db,
		suppliers:        suppliers,
		ingredientLots:   ingredientLots,
		packagingLots:    packagingLots,
		ingredientUsages: ingredientUsages,
		packagingUsages:  packagingUsages,
		changeLog:        changeLog,
		reports:          reports,
		reconciler:       repository.NewReconciler(),
		authorizer:       authorizer,
		publisher:        publisher,
		logger:           log.WithComponent("inventory-service"),
		now:              time.Now,
	}
}

// publish fires an event without failing the operation on broker
// errors.
func (s *Service) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// today returns the current date truncated to midnight UTC, the
// reference point for status derivation.
func (s *Service) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ListChangeLog lists change entries, most recent first. tableName
// may be empty to list across all tables.
func (s *Service) ListChangeLog(ctx context.Context, tableName string, limit int) ([]*domain.ChangeLogEntry, error) {
	if tableName == "" {
		return s.changeLog.List(ctx, limit)
	}
	return s.changeLog.ListByTable(ctx, tableName, limit)
}
