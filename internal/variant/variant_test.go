package variant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelia/internal/domain"
	"aurelia/internal/variant"
)

func chainNecklace() domain.Product {
	return domain.Product{
		ID:    "2",
		Name:  "Figaro Chain Necklace",
		Price: 123.00,
		VariantsJSON: `[
			{"type":"length","label":"Length","required":true,"options":[
				{"id":"16","name":"16 in","inStock":true},
				{"id":"18","name":"18 in","priceDelta":5,"inStock":true},
				{"id":"20","name":"20 in","priceDelta":12,"inStock":true}]},
			{"type":"material","label":"Material","required":true,"options":[
				{"id":"silver","name":"Sterling Silver","inStock":true},
				{"id":"gold","name":"14k Gold","priceDelta":50,"inStock":true}]}
		]`,
	}
}

func TestIdentityKeyOrderInvariant(t *testing.T) {
	a := variant.IdentityKey("2", domain.SelectedVariants{"length": "18", "material": "gold"})
	b := variant.IdentityKey("2", domain.SelectedVariants{"material": "gold", "length": "18"})
	require.Equal(t, a, b)
	assert.Equal(t, "2|length:18|material:gold", a)

	c := variant.IdentityKey("2", domain.SelectedVariants{"length": "20", "material": "gold"})
	assert.NotEqual(t, a, c, "different option values must yield different keys")
}

func TestIdentityKeyBareProduct(t *testing.T) {
	assert.Equal(t, "3", variant.IdentityKey("3", nil))
	assert.Equal(t, "3", variant.IdentityKey("3", domain.SelectedVariants{}))
}

func TestEffectivePrice(t *testing.T) {
	p := chainNecklace()

	got := variant.EffectivePrice(p, domain.SelectedVariants{"length": "18", "material": "gold"})
	assert.InDelta(t, 178.00, got, 1e-9)

	// Partial selection only sums what is chosen.
	got = variant.EffectivePrice(p, domain.SelectedVariants{"length": "20"})
	assert.InDelta(t, 135.00, got, 1e-9)

	// Unknown option id on a known axis contributes no delta.
	got = variant.EffectivePrice(p, domain.SelectedVariants{"length": "99", "material": "gold"})
	assert.InDelta(t, 173.00, got, 1e-9)
}

func TestIsPurchasable(t *testing.T) {
	p := chainNecklace()

	assert.False(t, variant.IsPurchasable(p, nil))
	assert.False(t, variant.IsPurchasable(p, domain.SelectedVariants{"length": "18"}))
	assert.True(t, variant.IsPurchasable(p, domain.SelectedVariants{"length": "18", "material": "silver"}))

	missing := variant.MissingRequired(p, domain.SelectedVariants{"length": "18"})
	require.Len(t, missing, 1)
	assert.Equal(t, "Material", missing[0])

	// No axes: always purchasable.
	plain := domain.Product{ID: "3", Price: 87}
	assert.True(t, variant.IsPurchasable(plain, nil))
}

func TestAxesDropsMalformedEntries(t *testing.T) {
	p := domain.Product{VariantsJSON: `[{"label":"no type","options":[{"id":"x","name":"X"}]},{"type":"size","label":"Size","options":[]}]`}
	assert.Empty(t, p.Axes())

	p.VariantsJSON = `not json`
	assert.Empty(t, p.Axes())
}

func TestDescribe(t *testing.T) {
	p := chainNecklace()
	got := variant.Describe(p, domain.SelectedVariants{"length": "18", "material": "gold"})
	assert.Equal(t, "Length: 18 in, Material: 14k Gold", got)

	assert.Equal(t, "", variant.Describe(p, nil))
}
