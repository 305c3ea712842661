package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"aurelia/internal/domain"
	applog "aurelia/internal/log"
	"aurelia/internal/services"
	"aurelia/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// selectionFromForm collects variant_<axis> form fields into a selection map.
func selectionFromForm(c *fiber.Ctx) domain.SelectedVariants {
	sel := domain.SelectedVariants{}
	for _, axis := range []string{"size", "length", "material", "color"} {
		if v := strings.TrimSpace(c.FormValue("variant_" + axis)); v != "" {
			sel[axis] = v
		}
	}
	return sel
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv, "Err": c.Query("err"), "Notice": c.Query("notice")})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	sel := selectionFromForm(c)

	if err := h.Cart.Add(sid, productID, sel, qty); err != nil {
		if errors.Is(err, services.ErrVariantRequired) || errors.Is(err, services.ErrProductUnavailable) {
			applog.Security(c, "cart.add.reject", map[string]any{"product": productID, "reason": err.Error()})
			return c.Redirect("/product/" + productID + "?err=" + url.QueryEscape(err.Error()))
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": productID})
		return c.Status(500).SendString("Could not add item")
	}
	applog.Audit(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.Redirect("/cart?notice=added")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	key, ok := validate.ID(c.FormValue("key"))
	if !ok {
		return c.Status(400).SendString("missing key")
	}
	if err := h.Cart.Remove(sid, key); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"key": key})
		return c.Status(500).SendString("Could not remove item")
	}
	return c.Redirect("/cart")
}

// UpdateQty applies a signed delta; driving a line to zero removes it.
func (h *CartHandler) UpdateQty(c *fiber.Ctx) error {
	sid := ensureSID(c)
	key, ok := validate.ID(c.FormValue("key"))
	if !ok {
		return c.Status(400).SendString("missing key")
	}
	delta := validate.Delta(c.FormValue("delta"))
	if err := h.Cart.UpdateQty(sid, key, delta); err != nil {
		applog.Error(c, "cart.qty.fail", err, map[string]any{"key": key, "delta": delta})
		return c.Status(500).SendString("Could not update quantity")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.Clear(sid); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return c.Status(500).SendString("Could not clear cart")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	sid := ensureSID(c)
	code := strings.TrimSpace(c.FormValue("code"))
	if code == "" {
		return c.Redirect("/cart?err=" + url.QueryEscape("enter a discount code"))
	}
	if err := h.Cart.ApplyCoupon(sid, code); err != nil {
		switch {
		case errors.Is(err, services.ErrCouponNotFound),
			errors.Is(err, services.ErrCouponExpired),
			errors.Is(err, services.ErrCouponMinPurchase):
			applog.Security(c, "coupon.reject", map[string]any{"code": code, "reason": err.Error()})
			return c.Redirect("/cart?err=" + url.QueryEscape(err.Error()))
		default:
			applog.Error(c, "coupon.apply.fail", err, map[string]any{"code": code})
			return c.Status(500).SendString("Could not apply code")
		}
	}
	applog.Audit(c, "coupon.apply", map[string]any{"code": code})
	return c.Redirect("/cart?notice=" + url.QueryEscape("discount applied"))
}

func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.RemoveCoupon(sid); err != nil {
		applog.Error(c, "coupon.remove.fail", err, nil)
		return c.Status(500).SendString("Could not remove code")
	}
	return c.Redirect("/cart")
}
