package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Supplier events
	EventSupplierCreated = "supplier.created"
	EventSupplierUpdated = "supplier.updated"
	EventSupplierDeleted = "supplier.deleted"

	// Lot events (ingredient and packaging deliveries)
	EventLotReceived = "lot.received"
	EventLotUpdated  = "lot.updated"
	EventLotDeleted  = "lot.deleted"

	// Usage events
	EventUsageRecorded = "usage.recorded"
	EventUsageUpdated  = "usage.updated"
	EventUsageDeleted  = "usage.deleted"

	// Reconciliation events
	EventBalanceReconciled = "balance.reconciled"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Supplier Events

// SupplierCreatedEvent is published when a supplier is registered
type SupplierCreatedEvent struct {
	SupplierID string   `json:"supplier_id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// SupplierUpdatedEvent is published when a supplier is updated
type SupplierUpdatedEvent struct {
	SupplierID string         `json:"supplier_id"`
	Fields     map[string]any `json:"fields"`
}

// SupplierDeletedEvent is published when a supplier is removed
type SupplierDeletedEvent struct {
	SupplierID string `json:"supplier_id"`
}

// Lot Events

// LotReceivedEvent is published when a delivery lot is recorded
type LotReceivedEvent struct {
	LotID          string    `json:"lot_id"`
	Kind           string    `json:"kind"` // ingredient or packaging
	BatchCode      string    `json:"batch_code"`
	MaterialName   string    `json:"material_name"`
	UseCategory    string    `json:"use_category"`
	QuantityBought int       `json:"quantity_bought"`
	DateDelivered  time.Time `json:"date_delivered"`
}

// LotUpdatedEvent is published when a lot is edited
type LotUpdatedEvent struct {
	LotID     string         `json:"lot_id"`
	Kind      string         `json:"kind"`
	BatchCode string         `json:"batch_code"`
	Fields    map[string]any `json:"fields"`
}

// LotDeletedEvent is published when a lot is soft-deleted
type LotDeletedEvent struct {
	LotID     string `json:"lot_id"`
	Kind      string `json:"kind"`
	BatchCode string `json:"batch_code"`
}

// Usage Events

// UsageRecordedEvent is published when a consumption event is recorded
type UsageRecordedEvent struct {
	UsageID      string    `json:"usage_id"`
	Kind         string    `json:"kind"`
	BatchCode    string    `json:"batch_code"`
	MaterialName string    `json:"material_name"`
	UseCategory  string    `json:"use_category"`
	QuantityUsed int       `json:"quantity_used"`
	DateUsed     time.Time `json:"date_used"`
}

// UsageUpdatedEvent is published when a usage record is edited
type UsageUpdatedEvent struct {
	UsageID string         `json:"usage_id"`
	Kind    string         `json:"kind"`
	Fields  map[string]any `json:"fields"`
}

// UsageDeletedEvent is published when a usage record is soft-deleted
type UsageDeletedEvent struct {
	UsageID string `json:"usage_id"`
	Kind    string `json:"kind"`
}

// Reconciliation Events

// BalanceReconciledEvent is published after a pool balance is re-derived
type BalanceReconciledEvent struct {
	Kind          string `json:"kind"`
	MaterialName  string `json:"material_name"`
	UseCategory   string `json:"use_category"`
	ContainerSize string `json:"container_size,omitempty"`
	TotalBought   int    `json:"total_bought"`
	TotalUsed     int    `json:"total_used"`
	QuantityLeft  int    `json:"quantity_left"`
	RowsUpdated   int    `json:"rows_updated"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
