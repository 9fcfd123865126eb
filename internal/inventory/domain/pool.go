package domain

import "strings"

// PoolKey identifies the set of lots that share one logical remaining
// balance: kind, material name, use category and, for packaging, the
// container size.
type PoolKey struct {
	Kind          Kind
	MaterialName  string
	UseCategory   UseCategory
	ContainerSize string
}

// TotalsScope returns the use categories whose lots and usages feed
// this pool's bought/used totals. The write set is always the pool's
// own category only; the asymmetry lives entirely on the read side.
func (k PoolKey) TotalsScope() []string {
	cats := k.UseCategory.TotalsScope()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// LockKey returns the string fed to the per-pool advisory lock. Two
// keys collide exactly when they name the same pool; material names
// are case-folded so "Glow Gel Base" and "glow gel base" serialize
// against each other.
func (k PoolKey) LockKey() string {
	parts := []string{"pool", string(k.Kind), strings.ToLower(k.MaterialName), string(k.UseCategory)}
	if k.Kind == KindPackaging {
		parts = append(parts, strings.ToLower(k.ContainerSize))
	}
	return strings.Join(parts, ":")
}

// String implements fmt.Stringer for log output.
func (k PoolKey) String() string {
	return k.LockKey()
}
