package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"aurelia/internal/domain"
	"aurelia/internal/repos"
	"aurelia/internal/services"
)

func newCheckout(t *testing.T) (*services.CheckoutService, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	cart := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db), repos.NewCouponRepo(db))
	return services.NewCheckoutService(cart, repos.NewProductRepo(db), repos.NewOrderRepo(db)), db
}

func goodShipping() services.ShippingInfo {
	return services.ShippingInfo{
		FullName:   "Maya Lindqvist",
		Email:      "maya@aurelia.test",
		Phone:      "555-0142",
		Address:    "12 Harbour Lane",
		City:       "Portsmouth",
		State:      "NH",
		PostalCode: "03801",
	}
}

func goodCard() services.PaymentInfo {
	return services.PaymentInfo{
		Method:       "card",
		CardHolder:   "Maya Lindqvist",
		CardNumber:   "4111 1111 1111 1111",
		CVV:          "123",
		AcceptsTerms: true,
	}
}

func TestShippingValidationReportsFirstMissingField(t *testing.T) {
	svc, _ := newCheckout(t)

	cases := []struct {
		mutate func(*services.ShippingInfo)
		want   string
	}{
		{func(s *services.ShippingInfo) { s.FullName = "  " }, "full name is required"},
		{func(s *services.ShippingInfo) { s.Email = "" }, "email is required"},
		{func(s *services.ShippingInfo) { s.Phone = "" }, "phone is required"},
		{func(s *services.ShippingInfo) { s.Address = "" }, "address is required"},
		{func(s *services.ShippingInfo) { s.City = "" }, "city is required"},
		{func(s *services.ShippingInfo) { s.State = "" }, "state is required"},
		{func(s *services.ShippingInfo) { s.PostalCode = "" }, "postal code is required"},
		{func(s *services.ShippingInfo) { s.Email = "not-an-email" }, "enter a valid email address"},
	}
	for _, c := range cases {
		in := goodShipping()
		c.mutate(&in)
		err := svc.ValidateShipping(in)
		if err == nil || err.Error() != c.want {
			t.Errorf("want %q, got %v", c.want, err)
		}
	}

	// Short but well-formed addresses pass.
	in := goodShipping()
	in.Email = "a@b.co"
	if err := svc.ValidateShipping(in); err != nil {
		t.Errorf("a@b.co should validate, got %v", err)
	}
}

func TestPaymentValidation(t *testing.T) {
	svc, _ := newCheckout(t)

	p := goodCard()
	p.CardNumber = "4111 1111 1111 111" // 15 digits
	if err := svc.ValidatePayment(p); err == nil || !strings.Contains(err.Error(), "16 digits") {
		t.Errorf("15-digit card: got %v", err)
	}
	p = goodCard()
	p.CardNumber = "41111111111111112" // 17 digits
	if err := svc.ValidatePayment(p); err == nil || !strings.Contains(err.Error(), "16 digits") {
		t.Errorf("17-digit card: got %v", err)
	}
	p = goodCard()
	p.CVV = "12"
	if err := svc.ValidatePayment(p); err == nil || !strings.Contains(err.Error(), "CVV") {
		t.Errorf("short CVV: got %v", err)
	}
	p = goodCard()
	p.CardHolder = ""
	if err := svc.ValidatePayment(p); err == nil || !strings.Contains(err.Error(), "name on card") {
		t.Errorf("missing holder: got %v", err)
	}
	p = goodCard()
	p.AcceptsTerms = false
	if err := svc.ValidatePayment(p); !errors.Is(err, services.ErrTermsRequired) {
		t.Errorf("terms flag: got %v", err)
	}
	if err := svc.ValidatePayment(services.PaymentInfo{Method: "cod", AcceptsTerms: true}); err != nil {
		t.Errorf("cod needs no card fields, got %v", err)
	}
	if err := svc.ValidatePayment(services.PaymentInfo{Method: "wire", AcceptsTerms: true}); err == nil {
		t.Error("unknown method should be rejected")
	}
	if err := svc.ValidatePayment(goodCard()); err != nil {
		t.Errorf("spaced 16-digit card should validate, got %v", err)
	}
}

func TestPlaceOrderSnapshotsCartAndDecrementsStock(t *testing.T) {
	svc, db := newCheckout(t)
	sid := "sess-place"

	if err := svc.Cart.Add(sid, "3", nil, 1); err != nil { // 87.00, below free-shipping line
		t.Fatal(err)
	}
	if err := svc.Cart.ApplyCoupon(sid, "SAVE20"); err != nil {
		t.Fatal(err)
	}

	before := time.Now().UTC()
	orderID, total, err := svc.Place(sid, goodShipping(), goodCard())
	if err != nil {
		t.Fatal(err)
	}
	approx(t, 87.00-17.40+services.ShippingFee, total, "charged total")

	o, items, err := svc.Orders.Get(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != string(domain.OrderPending) {
		t.Fatalf("want PENDING, got %s", o.Status)
	}
	if !strings.HasPrefix(o.Number, "AUR-"+before.Format("20060102")+"-") {
		t.Fatalf("unexpected order number %q", o.Number)
	}
	if o.CouponCode != "SAVE20" {
		t.Fatalf("want coupon snapshot SAVE20, got %q", o.CouponCode)
	}
	approx(t, 87.00, o.Subtotal, "order subtotal")
	approx(t, 17.40, o.Discount, "order discount")
	approx(t, services.ShippingFee, o.Shipping, "order shipping")
	if len(items) != 1 || items[0].Qty != 1 || items[0].Name != "Pearl Drop Earrings" {
		t.Fatalf("unexpected items %+v", items)
	}

	placed, err := time.Parse(time.RFC3339, o.PlacedAt)
	if err != nil {
		t.Fatal(err)
	}
	est, err := time.Parse(time.RFC3339, o.EstDelivery)
	if err != nil {
		t.Fatal(err)
	}
	if got := est.Sub(placed); got != time.Duration(services.DeliveryDays)*24*time.Hour {
		t.Fatalf("want delivery estimate %d days out, got %v", services.DeliveryDays, got)
	}

	// Cart (and its coupon) were consumed by placement.
	cv, _ := svc.Cart.View(sid)
	if len(cv.Lines) != 0 || cv.Coupon != nil {
		t.Fatalf("cart should be empty after placement, got %+v", cv)
	}

	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='3'`); err != nil {
		t.Fatal(err)
	}
	if stock != 29 {
		t.Fatalf("want stock 29 after placement, got %d", stock)
	}
}

func TestPlaceOrderFreeShippingOverThreshold(t *testing.T) {
	svc, db := newCheckout(t)
	sid := "sess-freeship"

	// 123 + 50 = 173, over the free-shipping line on its own.
	if err := svc.Cart.Add(sid, "2", domain.SelectedVariants{"length": "16", "material": "gold"}, 1); err != nil {
		t.Fatal(err)
	}

	orderID, total, err := svc.Place(sid, goodShipping(), services.PaymentInfo{Method: "cod", AcceptsTerms: true})
	if err != nil {
		t.Fatal(err)
	}
	o, _, err := svc.Orders.Get(orderID)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, 0, o.Shipping, "free shipping above threshold")
	approx(t, 173.00, total, "total equals subtotal with no fee")

	// A big-ticket order with no discount charges exactly its subtotal.
	if err := repos.NewProductRepo(db).Create(domain.Product{
		ID: "lux-1", CategoryID: "rings", Name: "Emerald Estate Ring",
		Price: 5000.00, Stock: 2, Active: true,
	}); err != nil {
		t.Fatal(err)
	}
	sid = "sess-bigticket"
	if err := svc.Cart.Add(sid, "lux-1", nil, 1); err != nil {
		t.Fatal(err)
	}
	orderID, total, err = svc.Place(sid, goodShipping(), services.PaymentInfo{Method: "paypal", AcceptsTerms: true})
	if err != nil {
		t.Fatal(err)
	}
	o, _, err = svc.Orders.Get(orderID)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, 5000.00, o.Subtotal, "big-ticket subtotal")
	approx(t, 0, o.Discount, "no discount attached")
	approx(t, 0, o.Shipping, "free shipping")
	approx(t, 5000.00, total, "total is exactly the subtotal")
}

func TestPlaceOrderRejectsEmptyCartAndShortStock(t *testing.T) {
	svc, _ := newCheckout(t)

	if _, _, err := svc.Place("sess-empty", goodShipping(), goodCard()); !errors.Is(err, services.ErrCartEmpty) {
		t.Fatalf("want ErrCartEmpty, got %v", err)
	}

	// Two variant lines of one product draw from a shared pool (stock 8).
	sid := "sess-stock"
	if err := svc.Cart.Add(sid, "4", domain.SelectedVariants{"size": "s"}, 5); err != nil {
		t.Fatal(err)
	}
	if err := svc.Cart.Add(sid, "4", domain.SelectedVariants{"size": "l"}, 5); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Place(sid, goodShipping(), goodCard())
	if err == nil || !strings.Contains(err.Error(), "insufficient stock") {
		t.Fatalf("want aggregated stock failure, got %v", err)
	}
}

func TestFailedPlacementKeepsStockAndCart(t *testing.T) {
	svc, db := newCheckout(t)
	sid := "sess-rollback"
	if err := svc.Cart.Add(sid, "3", nil, 2); err != nil {
		t.Fatal(err)
	}

	// Break the order table so the insert fails after validation and the
	// stock pre-check have both passed.
	if _, err := db.Exec(`DROP TABLE orders`); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Place(sid, goodShipping(), goodCard()); err == nil {
		t.Fatal("expected placement to fail")
	}

	stock, err := repos.NewProductRepo(db).Stock("3")
	if err != nil {
		t.Fatal(err)
	}
	if stock != 30 {
		t.Fatalf("stock = %d after failed placement, want 30", stock)
	}

	cv, err := svc.Cart.View(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 2 {
		t.Fatalf("cart must survive a failed placement, got %+v", cv.Lines)
	}
}

func TestOrderNumbersDistinctWithinOneDay(t *testing.T) {
	svc, _ := newCheckout(t)
	sid := "sess-numbers"

	place := func() string {
		t.Helper()
		if err := svc.Cart.Add(sid, "5", nil, 1); err != nil {
			t.Fatal(err)
		}
		id, _, err := svc.Place(sid, goodShipping(), goodCard())
		if err != nil {
			t.Fatal(err)
		}
		o, _, err := svc.Orders.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		return o.Number
	}

	first := place()
	second := place()
	if first == second {
		t.Fatalf("two same-day orders share number %q", first)
	}
	prefix := "AUR-" + time.Now().UTC().Format("20060102") + "-"
	for _, n := range []string{first, second} {
		if !strings.HasPrefix(n, prefix) {
			t.Fatalf("order number %q lacks prefix %q", n, prefix)
		}
	}
}
