package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"aurelia/internal/domain"
	"aurelia/internal/repos"
	"aurelia/internal/variant"
)

var (
	ErrVariantRequired    = errors.New("select all required options first")
	ErrCouponNotFound     = errors.New("invalid discount code")
	ErrCouponExpired      = errors.New("this discount code has expired")
	ErrCouponMinPurchase  = errors.New("cart subtotal is below the code's minimum")
	ErrProductUnavailable = errors.New("this item is no longer available")
)

type CartService struct {
	Carts   *repos.CartRepo
	Prods   *repos.ProductRepo
	Coupons *repos.CouponRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, coupons *repos.CouponRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods, Coupons: coupons}
}

// CartView is the cart snapshot plus derived totals. Total is always
// Subtotal minus DiscountAmount; an attached coupon that no longer clears
// its minimum contributes no discount until the cart grows again.
type CartView struct {
	Lines          []repos.CartLineRow
	Count          int
	Subtotal       float64
	DiscountAmount float64
	Total          float64
	Coupon         *domain.Coupon
}

// Add resolves the selection against the product's axes and folds the line
// into the cart: same product + same resolved selection increments quantity,
// anything else becomes a new line. The unit price is frozen here.
func (s *CartService) Add(sessionID, productID string, sel domain.SelectedVariants, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return err
	}
	if !p.Active {
		return ErrProductUnavailable
	}
	if !variant.IsPurchasable(p, sel) {
		return ErrVariantRequired
	}

	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}

	key := variant.IdentityKey(p.ID, sel)
	price := variant.EffectivePrice(p, sel)
	selJSON := ""
	if len(sel) > 0 {
		b, _ := json.Marshal(sel)
		selJSON = string(b)
	}
	return s.Carts.UpsertLine(cartID, key, p.ID, qty, price, selJSON)
}

// Remove drops the line with the given identity key. No-op if absent.
func (s *CartService) Remove(sessionID, key string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.RemoveLine(cartID, key)
}

// UpdateQty applies a signed delta; a result at or below zero drops the
// line rather than clamping it to one.
func (s *CartService) UpdateQty(sessionID, key string, delta int) error {
	if delta == 0 {
		return nil
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.AdjustQty(cartID, key, delta)
}

// Clear empties the cart and detaches any coupon.
func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

// ApplyCoupon attaches a code after checking the registry, expiry and
// minimum purchase. A new code replaces the prior one; nothing stacks. On
// any failure the previously attached code is left untouched.
func (s *CartService) ApplyCoupon(sessionID, code string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	c, err := s.Coupons.Get(code)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCouponNotFound
		}
		return err
	}
	if !c.Active {
		return ErrCouponNotFound
	}
	if c.Expired(time.Now()) {
		return ErrCouponExpired
	}
	lines, err := s.Carts.Lines(cartID)
	if err != nil {
		return err
	}
	subtotal := 0.0
	for _, l := range lines {
		subtotal += l.Subtotal
	}
	if subtotal < c.MinPurchase {
		return ErrCouponMinPurchase
	}
	return s.Carts.SetCoupon(cartID, c.Code)
}

func (s *CartService) RemoveCoupon(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.SetCoupon(cartID, "")
}

// View loads the cart and computes Count, Subtotal, DiscountAmount and
// Total. A dangling coupon code (deleted from the registry since it was
// applied) is dropped silently.
func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.Carts.Lines(cartID)
	if err != nil {
		return CartView{}, err
	}

	cv := CartView{Lines: lines}
	for _, l := range lines {
		cv.Count += l.Qty
		cv.Subtotal += l.Subtotal
	}
	cv.Subtotal = round2(cv.Subtotal)

	code, err := s.Carts.CouponCode(cartID)
	if err != nil {
		return CartView{}, err
	}
	if code != "" {
		c, err := s.Coupons.Get(code)
		switch {
		case err == sql.ErrNoRows:
			_ = s.Carts.SetCoupon(cartID, "")
		case err != nil:
			return CartView{}, err
		default:
			cv.Coupon = &c
			if c.AppliesTo(cv.Subtotal, time.Now()) {
				cv.DiscountAmount = round2(cv.Subtotal * c.Rate)
			}
		}
	}
	cv.Total = round2(cv.Subtotal - cv.DiscountAmount)
	return cv, nil
}

// round2 keeps money math at cent precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
