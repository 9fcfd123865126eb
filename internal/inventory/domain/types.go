// Package domain holds the inventory ledger's core types and pure rules:
// batch identity generation, status derivation and pool scoping.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind distinguishes the two lot families. They live in separate tables
// and never share a pool.
type Kind string

const (
	KindIngredient Kind = "ingredient"
	KindPackaging  Kind = "packaging"
)

// UseCategory is the business segment a lot or usage event is earmarked
// for. Both is shared stock visible to scoped consumers, not vice versa.
type UseCategory string

const (
	UseWBC  UseCategory = "WBC"
	UseGGB  UseCategory = "GGB"
	UseBoth UseCategory = "Both"
)

// Valid reports whether the value is a known use category.
func (u UseCategory) Valid() bool {
	switch u {
	case UseWBC, UseGGB, UseBoth:
		return true
	}
	return false
}

// TotalsScope returns the use categories whose bought/used totals feed
// this category's balance. Scoped categories see their own stock plus
// the shared Both stock; Both sees only itself.
func (u UseCategory) TotalsScope() []UseCategory {
	if u == UseBoth {
		return []UseCategory{UseBoth}
	}
	return []UseCategory{u, UseBoth}
}

// LifecycleState tracks whether a record is in force or removed.
// The ledger runs the soft-delete variant: mutations only ever produce
// active and deleted. new_modified/old_modified are recognized on read
// for compatibility with older data but no transition emits them.
type LifecycleState string

const (
	StateActive      LifecycleState = "active"
	StateDeleted     LifecycleState = "deleted"
	StateNewModified LifecycleState = "new_modified"
	StateOldModified LifecycleState = "old_modified"
)

// Status is the derived display status of a lot. It is recomputed on
// every mutation, never cached independently.
type Status string

const (
	StatusOK           Status = "OK"
	StatusLowInventory Status = "Low Inventory"
	StatusExpiring     Status = "Expiring"
)

// LowStockThreshold is the pooled balance below which a lot reports
// Low Inventory.
const LowStockThreshold = 10

// ExpiryWindowDays is how far ahead an expiration date counts as
// Expiring.
const ExpiryWindowDays = 30

// SupplierCategory constrains which lot kinds may reference a supplier.
type SupplierCategory string

const (
	SupplierIngredient SupplierCategory = "Ingredient"
	SupplierPackaging  SupplierCategory = "Packaging"
	SupplierBoth       SupplierCategory = "Both"
)

// Valid reports whether the value is a known supplier category.
func (c SupplierCategory) Valid() bool {
	switch c {
	case SupplierIngredient, SupplierPackaging, SupplierBoth:
		return true
	}
	return false
}

// Allows reports whether a supplier of this category may supply lots of
// the given kind.
func (c SupplierCategory) Allows(kind Kind) bool {
	switch c {
	case SupplierBoth:
		return true
	case SupplierIngredient:
		return kind == KindIngredient
	case SupplierPackaging:
		return kind == KindPackaging
	}
	return false
}

// Supplier is a registered source of raw materials.
type Supplier struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	Code           string           `db:"code" json:"code"`
	Name           string           `db:"name" json:"name"`
	Category       SupplierCategory `db:"category" json:"category"`
	ContactEmail   *string          `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone   *string          `db:"contact_phone" json:"contact_phone,omitempty"`
	Address        *string          `db:"address" json:"address,omitempty"`
	LifecycleState LifecycleState   `db:"lifecycle_state" json:"lifecycle_state"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// IngredientLot is one received delivery of an ingredient material.
// QuantityLeft is not an independent fact: it is the pooled balance,
// written only by reconciliation.
type IngredientLot struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	BatchCode      string              `db:"batch_code" json:"batch_code"`
	SupplierID     uuid.UUID           `db:"supplier_id" json:"supplier_id"`
	MaterialName   string              `db:"material_name" json:"material_name"`
	DateDelivered  time.Time           `db:"date_delivered" json:"date_delivered"`
	QuantityBought int                 `db:"quantity_bought" json:"quantity_bought"`
	QuantityLeft   int                 `db:"quantity_left" json:"quantity_left"`
	UseCategory    UseCategory         `db:"use_category" json:"use_category"`
	ExpirationDate time.Time           `db:"expiration_date" json:"expiration_date"`
	Status         Status              `db:"status" json:"status"`
	Cost           decimal.NullDecimal `db:"cost" json:"cost,omitempty"`
	LifecycleState LifecycleState      `db:"lifecycle_state" json:"lifecycle_state"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}

// PoolKey returns the pool this lot's balance belongs to.
func (l *IngredientLot) PoolKey() PoolKey {
	return PoolKey{
		Kind:         KindIngredient,
		MaterialName: l.MaterialName,
		UseCategory:  l.UseCategory,
	}
}

// PackagingLot is one received delivery of packaging material. Same
// shape as IngredientLot plus a container size, minus expiration.
type PackagingLot struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	BatchCode      string              `db:"batch_code" json:"batch_code"`
	SupplierID     uuid.UUID           `db:"supplier_id" json:"supplier_id"`
	MaterialName   string              `db:"material_name" json:"material_name"`
	ContainerSize  string              `db:"container_size" json:"container_size"`
	DateDelivered  time.Time           `db:"date_delivered" json:"date_delivered"`
	QuantityBought int                 `db:"quantity_bought" json:"quantity_bought"`
	QuantityLeft   int                 `db:"quantity_left" json:"quantity_left"`
	UseCategory    UseCategory         `db:"use_category" json:"use_category"`
	Status         Status              `db:"status" json:"status"`
	Cost           decimal.NullDecimal `db:"cost" json:"cost,omitempty"`
	LifecycleState LifecycleState      `db:"lifecycle_state" json:"lifecycle_state"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}

// PoolKey returns the pool this lot's balance belongs to. Packaging
// additionally partitions by container size.
func (l *PackagingLot) PoolKey() PoolKey {
	return PoolKey{
		Kind:          KindPackaging,
		MaterialName:  l.MaterialName,
		UseCategory:   l.UseCategory,
		ContainerSize: l.ContainerSize,
	}
}

// UsageEvent records consumption against a lot. The lot reference is
// immutable once created; MaterialName is a denormalized copy of the
// lot's material name at recording time.
type UsageEvent struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BatchCode      string         `db:"batch_code" json:"batch_code"`
	LotID          uuid.UUID      `db:"lot_id" json:"lot_id"`
	MaterialName   string         `db:"material_name" json:"material_name"`
	QuantityUsed   int            `db:"quantity_used" json:"quantity_used"`
	UseCategory    UseCategory    `db:"use_category" json:"use_category"`
	DateUsed       time.Time      `db:"date_used" json:"date_used"`
	LifecycleState LifecycleState `db:"lifecycle_state" json:"lifecycle_state"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ChangeLogEntry is one field-level before/after record. Append-only.
type ChangeLogEntry struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TableName     string    `db:"table_name" json:"table_name"`
	ColumnName    string    `db:"column_name" json:"column_name"`
	PreviousValue string    `db:"previous_value" json:"previous_value"`
	NewValue      string    `db:"new_value" json:"new_value"`
	SubjectID     *string   `db:"subject_id" json:"subject_id,omitempty"`
	SubjectLabel  *string   `db:"subject_label" json:"subject_label,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
