package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIngredientStatus(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		quantityLeft int
		expiration   time.Time
		want         Status
	}{
		{
			name:         "healthy stock, far expiration",
			quantityLeft: 100,
			expiration:   today.AddDate(0, 6, 0),
			want:         StatusOK,
		},
		{
			name:         "low stock, far expiration",
			quantityLeft: 9,
			expiration:   today.AddDate(0, 6, 0),
			want:         StatusLowInventory,
		},
		{
			name:         "expiry dominates healthy stock",
			quantityLeft: 500,
			expiration:   today.AddDate(0, 0, 10),
			want:         StatusExpiring,
		},
		{
			name:         "expiry dominates low stock",
			quantityLeft: 2,
			expiration:   today.AddDate(0, 0, 5),
			want:         StatusExpiring,
		},
		{
			name:         "expiration exactly at the window boundary",
			quantityLeft: 100,
			expiration:   today.AddDate(0, 0, ExpiryWindowDays),
			want:         StatusExpiring,
		},
		{
			name:         "expiration one day past the window",
			quantityLeft: 100,
			expiration:   today.AddDate(0, 0, ExpiryWindowDays+1),
			want:         StatusOK,
		},
		{
			name:         "already expired",
			quantityLeft: 100,
			expiration:   today.AddDate(0, 0, -1),
			want:         StatusExpiring,
		},
		{
			name:         "zero balance",
			quantityLeft: 0,
			expiration:   today.AddDate(1, 0, 0),
			want:         StatusLowInventory,
		},
		{
			name:         "threshold boundary is exclusive",
			quantityLeft: LowStockThreshold,
			expiration:   today.AddDate(1, 0, 0),
			want:         StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveIngredientStatus(tt.quantityLeft, tt.expiration, today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveIngredientStatus_Deterministic(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expiration := today.AddDate(0, 0, 12)

	first := DeriveIngredientStatus(42, expiration, today)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DeriveIngredientStatus(42, expiration, today))
	}
}

func TestDerivePackagingStatus(t *testing.T) {
	assert.Equal(t, StatusOK, DerivePackagingStatus(100))
	assert.Equal(t, StatusOK, DerivePackagingStatus(LowStockThreshold))
	assert.Equal(t, StatusLowInventory, DerivePackagingStatus(LowStockThreshold-1))
	assert.Equal(t, StatusLowInventory, DerivePackagingStatus(0))
}

func TestClampBalance(t *testing.T) {
	assert.Equal(t, 85, ClampBalance(100, 15))
	assert.Equal(t, 0, ClampBalance(10, 10))
	assert.Equal(t, 0, ClampBalance(10, 25), "over-consumption clamps to zero")
	assert.Equal(t, 135, ClampBalance(150, 15))
}
