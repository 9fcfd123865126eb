package domain

import "time"

// DeriveIngredientStatus computes an ingredient lot's display status.
// Expiry dominates stock level: a lot expiring within ExpiryWindowDays
// reports Expiring even with a healthy balance.
func DeriveIngredientStatus(quantityLeft int, expirationDate, today time.Time) Status {
	cutoff := today.AddDate(0, 0, ExpiryWindowDays)
	if !expirationDate.After(cutoff) {
		return StatusExpiring
	}
	if quantityLeft < LowStockThreshold {
		return StatusLowInventory
	}
	return StatusOK
}

// DerivePackagingStatus computes a packaging lot's display status.
// Packaging has no expiration concept.
func DerivePackagingStatus(quantityLeft int) Status {
	if quantityLeft < LowStockThreshold {
		return StatusLowInventory
	}
	return StatusOK
}

// ClampBalance applies the ledger's underflow rule: over-consumption is
// absorbed to zero rather than rejected.
func ClampBalance(totalBought, totalUsed int) int {
	balance := totalBought - totalUsed
	if balance < 0 {
		return 0
	}
	return balance
}
