// Package events wires the inventory service onto the inventory.events
// topic exchange.
package events

import (
	"context"

	"github.com/imaps/imaps-backend/pkg/logger"
	"github.com/imaps/imaps-backend/pkg/messaging"
)

// InventoryEventPublisher publishes ledger events to the broker
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a publisher bound to the
// inventory events exchange
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// Publish publishes a ledger event
func (p *InventoryEventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	return p.publisher.Publish(ctx, eventType, data)
}

// NopPublisher drops events. Used when the service runs without a
// broker connection; the ledger itself never depends on publication.
type NopPublisher struct{}

// Publish discards the event
func (NopPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	return nil
}
