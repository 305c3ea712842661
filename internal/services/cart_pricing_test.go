package services_test

import (
	"errors"
	"math"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"aurelia/internal/domain"
	"aurelia/internal/repos"
	"aurelia/internal/services"
)

// memdb opens a seeded in-memory store: products 1-6, coupons SAVE20,
// WELCOME10, VIP25 and the expired SPRING15.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func newCartService(t *testing.T) (*services.CartService, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	return services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db), repos.NewCouponRepo(db)), db
}

func approx(t *testing.T, want, got float64, what string) {
	t.Helper()
	if math.Abs(want-got) > 0.005 {
		t.Fatalf("%s: want %.2f, got %.2f", what, want, got)
	}
}

func TestAddDedupesIdenticalVariantSelections(t *testing.T) {
	svc, _ := newCartService(t)
	sid := "sess-dedupe"

	sel := domain.SelectedVariants{"length": "18", "material": "gold"}
	if err := svc.Add(sid, "2", sel, 1); err != nil {
		t.Fatal(err)
	}
	// Same selection in a different insertion order must hit the same line.
	if err := svc.Add(sid, "2", domain.SelectedVariants{"material": "gold", "length": "18"}, 1); err != nil {
		t.Fatal(err)
	}

	cv, err := svc.View(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 {
		t.Fatalf("want 1 line, got %d", len(cv.Lines))
	}
	if cv.Lines[0].Qty != 2 {
		t.Fatalf("want qty 2, got %d", cv.Lines[0].Qty)
	}
	approx(t, 178.00, cv.Lines[0].PriceAtAdd, "unit price") // 123 + 5 + 50
	approx(t, 356.00, cv.Lines[0].Subtotal, "line total")

	// A different option value is a distinct line.
	if err := svc.Add(sid, "2", domain.SelectedVariants{"length": "20", "material": "gold"}, 1); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View(sid)
	if len(cv.Lines) != 2 {
		t.Fatalf("want 2 lines after differing selection, got %d", len(cv.Lines))
	}
}

func TestAddEnforcesRequiredVariants(t *testing.T) {
	svc, _ := newCartService(t)

	err := svc.Add("sess-gate", "2", nil, 1)
	if !errors.Is(err, services.ErrVariantRequired) {
		t.Fatalf("want ErrVariantRequired, got %v", err)
	}
	err = svc.Add("sess-gate", "2", domain.SelectedVariants{"length": "18"}, 1)
	if !errors.Is(err, services.ErrVariantRequired) {
		t.Fatalf("partial selection: want ErrVariantRequired, got %v", err)
	}

	// Product 3 declares no axes; bare add is fine.
	if err := svc.Add("sess-gate", "3", nil, 1); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateQtyDropsLineAtZero(t *testing.T) {
	svc, _ := newCartService(t)
	sid := "sess-qty"

	if err := svc.Add(sid, "3", nil, 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateQty(sid, "3", 2); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View(sid)
	if cv.Count != 3 {
		t.Fatalf("want count 3, got %d", cv.Count)
	}

	// Driving qty to zero or below removes the line, never clamps it.
	if err := svc.UpdateQty(sid, "3", -5); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View(sid)
	if len(cv.Lines) != 0 || cv.Count != 0 {
		t.Fatalf("want empty cart, got %+v", cv)
	}
}

func TestRemoveIsNoopWhenAbsent(t *testing.T) {
	svc, _ := newCartService(t)
	if err := svc.Remove("sess-rm", "nope"); err != nil {
		t.Fatalf("remove of absent line should be a no-op, got %v", err)
	}
}

func TestTotalsWithDiscountCode(t *testing.T) {
	svc, _ := newCartService(t)
	sid := "sess-disc"

	if err := svc.Add(sid, "3", nil, 1); err != nil { // 87.00
		t.Fatal(err)
	}
	if err := svc.ApplyCoupon(sid, "save20"); err != nil { // lookup is case-insensitive
		t.Fatal(err)
	}

	cv, err := svc.View(sid)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, 87.00, cv.Subtotal, "subtotal")
	approx(t, 17.40, cv.DiscountAmount, "discount")
	approx(t, 69.60, cv.Total, "total")

	if err := svc.RemoveCoupon(sid); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View(sid)
	approx(t, 0, cv.DiscountAmount, "discount after removal")
	approx(t, cv.Subtotal, cv.Total, "total equals subtotal with no discount")
}

func TestCouponRejections(t *testing.T) {
	svc, _ := newCartService(t)
	sid := "sess-coupons"

	if err := svc.Add(sid, "5", nil, 1); err != nil { // 59.00
		t.Fatal(err)
	}

	if err := svc.ApplyCoupon(sid, "NOPE"); !errors.Is(err, services.ErrCouponNotFound) {
		t.Fatalf("want ErrCouponNotFound, got %v", err)
	}
	if err := svc.ApplyCoupon(sid, "SPRING15"); !errors.Is(err, services.ErrCouponExpired) {
		t.Fatalf("want ErrCouponExpired, got %v", err)
	}
	if err := svc.ApplyCoupon(sid, "VIP25"); !errors.Is(err, services.ErrCouponMinPurchase) {
		t.Fatalf("want ErrCouponMinPurchase, got %v", err)
	}

	// A rejection leaves the prior coupon attached.
	if err := svc.ApplyCoupon(sid, "WELCOME10"); err != nil { // min 50, subtotal 59
		t.Fatal(err)
	}
	_ = svc.ApplyCoupon(sid, "VIP25")
	cv, _ := svc.View(sid)
	if cv.Coupon == nil || cv.Coupon.Code != "WELCOME10" {
		t.Fatalf("prior coupon should survive a failed apply, got %+v", cv.Coupon)
	}

	// Applying a valid new code replaces, never stacks.
	if err := svc.ApplyCoupon(sid, "SAVE20"); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View(sid)
	if cv.Coupon == nil || cv.Coupon.Code != "SAVE20" {
		t.Fatalf("want SAVE20 active, got %+v", cv.Coupon)
	}
	approx(t, 59.00*0.20, cv.DiscountAmount, "replaced discount")
}

func TestClearDropsLinesAndCoupon(t *testing.T) {
	svc, _ := newCartService(t)
	sid := "sess-clear"

	if err := svc.Add(sid, "3", nil, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.ApplyCoupon(sid, "SAVE20"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(sid); err != nil {
		t.Fatal(err)
	}

	cv, _ := svc.View(sid)
	if len(cv.Lines) != 0 || cv.Coupon != nil || cv.Total != 0 {
		t.Fatalf("clear should drop lines and coupon, got %+v", cv)
	}
}

func TestFrozenPriceSurvivesCatalogChange(t *testing.T) {
	svc, db := newCartService(t)
	sid := "sess-frozen"

	if err := svc.Add(sid, "3", nil, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE products SET price = 999.00 WHERE id='3'`); err != nil {
		t.Fatal(err)
	}

	cv, _ := svc.View(sid)
	approx(t, 87.00, cv.Lines[0].PriceAtAdd, "price frozen at add time")

	// A fresh add of the same product lands on the same line at the old
	// price: identity keys ignore price.
	if err := svc.Add(sid, "3", nil, 1); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View(sid)
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 2 {
		t.Fatalf("want one line qty 2, got %+v", cv.Lines)
	}
	approx(t, 87.00, cv.Lines[0].PriceAtAdd, "increment leaves price unchanged")
}
