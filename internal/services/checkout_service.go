package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aurelia/internal/domain"
	applog "aurelia/internal/log"
	"aurelia/internal/repos"
	"aurelia/internal/validate"
	"aurelia/internal/variant"
)

const (
	// Orders at or above the threshold ship free; everything else pays the
	// flat fee. Estimated delivery is placement plus the fixed offset.
	FreeShippingMin = 100.00
	ShippingFee     = 15.00
	DeliveryDays    = 9
)

var (
	ErrCartEmpty     = errors.New("cart is empty")
	ErrTermsRequired = errors.New("you must accept the terms and conditions")
)

// ShippingInfo is step one of the checkout wizard.
type ShippingInfo struct {
	FullName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
}

// PaymentInfo is step two. Card fields are only validated for the card
// method; cash-on-delivery and redirect methods carry no fields.
type PaymentInfo struct {
	Method       string // card | cod | paypal
	CardHolder   string
	CardNumber   string
	CVV          string
	AcceptsTerms bool
}

type CheckoutService struct {
	Cart   *CartService
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
}

func NewCheckoutService(cart *CartService, prods *repos.ProductRepo, orders *repos.OrderRepo) *CheckoutService {
	return &CheckoutService{Cart: cart, Prods: prods, Orders: orders}
}

// ValidateShipping returns the first violated rule, in field order, so the
// wizard can surface one inline message at a time.
func (s *CheckoutService) ValidateShipping(in ShippingInfo) error {
	checks := []struct {
		value, label string
	}{
		{in.FullName, "full name"},
		{in.Email, "email"},
		{in.Phone, "phone"},
		{in.Address, "address"},
		{in.City, "city"},
		{in.State, "state"},
		{in.PostalCode, "postal code"},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return fmt.Errorf("%s is required", c.label)
		}
	}
	if _, ok := validate.Email(in.Email); !ok {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidatePayment enforces card shape for card payments and the terms flag
// for every method.
func (s *CheckoutService) ValidatePayment(in PaymentInfo) error {
	switch in.Method {
	case "card":
		if strings.TrimSpace(in.CardHolder) == "" {
			return errors.New("name on card is required")
		}
		if _, ok := validate.CardNumber(in.CardNumber); !ok {
			return errors.New("card number must be 16 digits")
		}
		if !validate.CVV(in.CVV) {
			return errors.New("CVV must be 3 digits")
		}
	case "cod", "paypal":
		// No field-level checks for these methods.
	default:
		return errors.New("choose a payment method")
	}
	if !in.AcceptsTerms {
		return ErrTermsRequired
	}
	return nil
}

// Place re-validates both steps, snapshots the cart into an immutable order,
// decrements stock and clears the cart. Returned totals are frozen; later
// catalog price changes never touch a placed order.
func (s *CheckoutService) Place(sessionID string, ship ShippingInfo, pay PaymentInfo) (string, float64, error) {
	if err := s.ValidateShipping(ship); err != nil {
		return "", 0, err
	}
	if err := s.ValidatePayment(pay); err != nil {
		return "", 0, err
	}

	cv, err := s.Cart.View(sessionID)
	if err != nil {
		return "", 0, err
	}
	if len(cv.Lines) == 0 {
		return "", 0, ErrCartEmpty
	}

	// Stock pre-check aggregates across lines: two variants of one product
	// draw from the same stock pool. The authoritative decrement happens
	// inside the order transaction; this pass exists for the friendly
	// message with quantities.
	need := map[string]int{}
	for _, l := range cv.Lines {
		need[l.ProductID] += l.Qty
	}
	for pid, qty := range need {
		have, err := s.Prods.Stock(pid)
		if err != nil {
			return "", 0, err
		}
		if have < qty {
			return "", 0, fmt.Errorf("insufficient stock for %s (need %d, have %d)", pid, qty, have)
		}
	}

	shipping := ShippingFee
	if cv.Subtotal >= FreeShippingMin {
		shipping = 0
	}
	total := round2(cv.Subtotal - cv.DiscountAmount + shipping)

	now := time.Now().UTC()
	orderID := uuid.NewString()
	couponCode := ""
	if cv.Coupon != nil && cv.DiscountAmount > 0 {
		couponCode = cv.Coupon.Code
	}
	o := repos.OrderRow{
		ID:            orderID,
		Number:        orderNumber(now, orderID),
		SessionID:     sessionID,
		CustomerName:  strings.TrimSpace(ship.FullName),
		CustomerEmail: strings.TrimSpace(ship.Email),
		Phone:         strings.TrimSpace(ship.Phone),
		Address:       strings.TrimSpace(ship.Address),
		City:          strings.TrimSpace(ship.City),
		State:         strings.TrimSpace(ship.State),
		PostalCode:    strings.TrimSpace(ship.PostalCode),
		PaymentMethod: pay.Method,
		CouponCode:    couponCode,
		Subtotal:      cv.Subtotal,
		Discount:      cv.DiscountAmount,
		Shipping:      shipping,
		Total:         total,
		Status:        string(domain.OrderPending),
		PlacedAt:      now.Format(time.RFC3339),
		EstDelivery:   now.AddDate(0, 0, DeliveryDays).Format(time.RFC3339),
	}
	items := make([]repos.OrderItemRow, 0, len(cv.Lines))
	for _, l := range cv.Lines {
		items = append(items, repos.OrderItemRow{
			VariantKey:  l.VariantKey,
			ProductID:   l.ProductID,
			Name:        l.Name,
			VariantDesc: s.describeLine(l),
			Qty:         l.Qty,
			UnitPrice:   l.PriceAtAdd,
		})
	}
	if err := s.Orders.Create(o, items, need); err != nil {
		return "", 0, err
	}

	// The order exists either way; a failed clear only risks a duplicate
	// purchase, so it is logged rather than surfaced.
	if err := s.Cart.Clear(sessionID); err != nil {
		applog.Error(nil, "checkout.cart_clear.fail", err, map[string]any{"order": orderID})
	}
	return orderID, total, nil
}

// describeLine rebuilds the human variant summary from the stored selection.
func (s *CheckoutService) describeLine(l repos.CartLineRow) string {
	if l.VariantsJSON == "" {
		return ""
	}
	sel := domain.SelectedVariants{}
	if err := json.Unmarshal([]byte(l.VariantsJSON), &sel); err != nil {
		return ""
	}
	p, err := s.Prods.Get(l.ProductID)
	if err != nil {
		return ""
	}
	return variant.Describe(p, sel)
}

// orderNumber derives a human-facing number from the placement date plus a
// slice of the order id, so same-day orders can never collide on the number's
// unique index.
func orderNumber(now time.Time, orderID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("AUR-%s-%s", now.Format("20060102"), suffix)
}
