// Package variant resolves a product's declared option axes against a
// shopper's selection: the resulting price, whether the selection is complete
// enough to purchase, and a canonical identity used for cart deduplication.
package variant

import (
	"sort"
	"strings"

	"aurelia/internal/domain"
)

// EffectivePrice returns the base price plus the delta of every selected
// option. A selected option id that does not exist on its axis contributes
// no delta.
func EffectivePrice(p domain.Product, sel domain.SelectedVariants) float64 {
	price := p.Price
	for _, ax := range p.Axes() {
		optID, ok := sel[ax.Type]
		if !ok {
			continue
		}
		for _, opt := range ax.Options {
			if opt.ID == optID {
				price += opt.PriceDelta
				break
			}
		}
	}
	return price
}

// IsPurchasable reports whether every required axis has an entry in sel.
func IsPurchasable(p domain.Product, sel domain.SelectedVariants) bool {
	return len(MissingRequired(p, sel)) == 0
}

// MissingRequired lists the labels of required axes absent from sel.
func MissingRequired(p domain.Product, sel domain.SelectedVariants) []string {
	var missing []string
	for _, ax := range p.Axes() {
		if !ax.Required {
			continue
		}
		if _, ok := sel[ax.Type]; !ok {
			label := ax.Label
			if label == "" {
				label = ax.Type
			}
			missing = append(missing, label)
		}
	}
	return missing
}

// IdentityKey builds the canonical cart-line identity for a product plus
// selection. Axis types are sorted so selection insertion order can never
// produce two lines for the same choice. A product with no selection
// collapses to its bare id.
func IdentityKey(productID string, sel domain.SelectedVariants) string {
	if len(sel) == 0 {
		return productID
	}
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(productID)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(sel[k])
	}
	return b.String()
}

// Describe renders a human summary such as "Length: 18 in, Material: Gold"
// for order lines and invoices. Axes without a resolvable selection are
// skipped.
func Describe(p domain.Product, sel domain.SelectedVariants) string {
	axes := p.Axes()
	parts := make([]string, 0, len(axes))
	for _, ax := range axes {
		optID, ok := sel[ax.Type]
		if !ok {
			continue
		}
		for _, opt := range ax.Options {
			if opt.ID == optID {
				label := ax.Label
				if label == "" {
					label = ax.Type
				}
				parts = append(parts, label+": "+opt.Name)
				break
			}
		}
	}
	return strings.Join(parts, ", ")
}
