package domain

import "encoding/json"

// Category slugs are a closed set; the catalog seeds exactly these four.
const (
	CategoryRings     = "rings"
	CategoryNecklaces = "necklaces"
	CategoryEarrings  = "earrings"
	CategoryBracelets = "bracelets"
)

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Product struct {
	ID            string  `db:"id"`
	CategoryID    string  `db:"category_id"`
	Name          string  `db:"name"`
	Description   string  `db:"description"`
	Price         float64 `db:"price"`
	OriginalPrice float64 `db:"original_price"` // 0 when never marked down
	ImagesJSON    string  `db:"images_json"`
	Stock         int     `db:"stock"`
	Rating        float64 `db:"rating"`
	Active        bool    `db:"active"`
	VariantsJSON  string  `db:"variants_json"`
	CreatedAt     string  `db:"created_at"`
	UpdatedAt     string  `db:"updated_at"`
}

// VariantOption is one selectable value on an axis. PriceDelta is added to
// the product's base price when the option is chosen.
type VariantOption struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"priceDelta,omitempty"`
	InStock    bool    `json:"inStock"`
}

// VariantAxis is a named customization dimension (size, length, material,
// color) with a closed option set. Required axes must be resolved before the
// product can be added to the cart.
type VariantAxis struct {
	Type     string          `json:"type"`
	Label    string          `json:"label"`
	Required bool            `json:"required"`
	Options  []VariantOption `json:"options"`
}

// SelectedVariants maps an axis type to the chosen option id. Partial until
// every required axis is present.
type SelectedVariants map[string]string

// Axes decodes the product's variant declarations. The column is not
// schema-enforced, so malformed JSON yields no axes and entries missing a
// type or options are dropped rather than propagated.
func (p Product) Axes() []VariantAxis {
	if p.VariantsJSON == "" {
		return nil
	}
	var raw []VariantAxis
	if err := json.Unmarshal([]byte(p.VariantsJSON), &raw); err != nil {
		return nil
	}
	out := make([]VariantAxis, 0, len(raw))
	for _, a := range raw {
		if a.Type == "" || len(a.Options) == 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}
