package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseCategoryTotalsScope(t *testing.T) {
	tests := []struct {
		category UseCategory
		want     []UseCategory
	}{
		{UseWBC, []UseCategory{UseWBC, UseBoth}},
		{UseGGB, []UseCategory{UseGGB, UseBoth}},
		{UseBoth, []UseCategory{UseBoth}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.TotalsScope())
		})
	}
}

func TestPoolKey_LockKey(t *testing.T) {
	ingredient := PoolKey{Kind: KindIngredient, MaterialName: "Glow Gel Base", UseCategory: UseGGB}
	assert.Equal(t, "pool:ingredient:glow gel base:GGB", ingredient.LockKey())

	packaging := PoolKey{Kind: KindPackaging, MaterialName: "Round Jar", UseCategory: UseBoth, ContainerSize: "250ml"}
	assert.Equal(t, "pool:packaging:round jar:Both:250ml", packaging.LockKey())
}

func TestPoolKey_LockKeyCaseFolded(t *testing.T) {
	a := PoolKey{Kind: KindIngredient, MaterialName: "Shea Butter", UseCategory: UseWBC}
	b := PoolKey{Kind: KindIngredient, MaterialName: "shea butter", UseCategory: UseWBC}

	assert.Equal(t, a.LockKey(), b.LockKey())
}

func TestPoolKey_DistinctPoolsDistinctLocks(t *testing.T) {
	base := PoolKey{Kind: KindIngredient, MaterialName: "Shea Butter", UseCategory: UseWBC}

	otherCategory := base
	otherCategory.UseCategory = UseGGB
	assert.NotEqual(t, base.LockKey(), otherCategory.LockKey())

	otherMaterial := base
	otherMaterial.MaterialName = "Beeswax"
	assert.NotEqual(t, base.LockKey(), otherMaterial.LockKey())

	// Same material in the packaging table is a different pool.
	otherKind := base
	otherKind.Kind = KindPackaging
	assert.NotEqual(t, base.LockKey(), otherKind.LockKey())
}

func TestSupplierCategoryAllows(t *testing.T) {
	assert.True(t, SupplierBoth.Allows(KindIngredient))
	assert.True(t, SupplierBoth.Allows(KindPackaging))
	assert.True(t, SupplierIngredient.Allows(KindIngredient))
	assert.False(t, SupplierIngredient.Allows(KindPackaging))
	assert.True(t, SupplierPackaging.Allows(KindPackaging))
	assert.False(t, SupplierPackaging.Allows(KindIngredient))
}

func TestUseCategoryValid(t *testing.T) {
	assert.True(t, UseWBC.Valid())
	assert.True(t, UseGGB.Valid())
	assert.True(t, UseBoth.Valid())
	assert.False(t, UseCategory("both").Valid())
	assert.False(t, UseCategory("").Valid())
}
