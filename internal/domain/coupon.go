package domain

import "time"

// Coupon is an admin-authored discount code. Rate is a fractional multiplier
// applied once to the cart subtotal; at most one coupon is active per cart.
type Coupon struct {
	Code        string  `db:"code"`
	Rate        float64 `db:"rate"`
	Description string  `db:"description"`
	MinPurchase float64 `db:"min_purchase"`
	ExpiresAt   string  `db:"expires_at"` // RFC3339; empty means no expiry
	Active      bool    `db:"active"`
}

func (c Coupon) Expired(now time.Time) bool {
	if c.ExpiresAt == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, c.ExpiresAt)
	if err != nil {
		// Unparseable expiry is treated as expired rather than open-ended.
		return true
	}
	return now.After(t)
}

// AppliesTo reports whether the coupon discounts the given subtotal.
func (c Coupon) AppliesTo(subtotal float64, now time.Time) bool {
	return c.Active && !c.Expired(now) && subtotal >= c.MinPurchase
}
