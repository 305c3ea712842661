package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "aurelia/internal/log"
	"aurelia/internal/services"
)

// CheckoutHandler drives the 3-step wizard. Each step POST validates its own
// fields and, on success, renders the next step with prior fields carried
// forward as hidden inputs; placement re-validates everything server-side.
type CheckoutHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

func shippingFromForm(c *fiber.Ctx) services.ShippingInfo {
	return services.ShippingInfo{
		FullName:   c.FormValue("full_name"),
		Email:      c.FormValue("email"),
		Phone:      c.FormValue("phone"),
		Address:    c.FormValue("address"),
		City:       c.FormValue("city"),
		State:      c.FormValue("state"),
		PostalCode: c.FormValue("postal_code"),
	}
}

func paymentFromForm(c *fiber.Ctx) services.PaymentInfo {
	return services.PaymentInfo{
		Method:       c.FormValue("method"),
		CardHolder:   c.FormValue("card_holder"),
		CardNumber:   c.FormValue("card_number"),
		CVV:          c.FormValue("cvv"),
		AcceptsTerms: c.FormValue("accept_terms") == "on" || c.FormValue("accept_terms") == "1",
	}
}

// Start shows step one with the current cart summary.
func (h *CheckoutHandler) Start(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if len(cv.Lines) == 0 {
		return c.Redirect("/cart")
	}
	return render(c, "checkout_shipping", fiber.Map{"Cart": cv})
}

// Shipping validates step one and advances to payment.
func (h *CheckoutHandler) Shipping(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	ship := shippingFromForm(c)
	if verr := h.Checkout.ValidateShipping(ship); verr != nil {
		applog.Security(c, "checkout.shipping.invalid", map[string]any{"reason": verr.Error()})
		return c.Status(fiber.StatusBadRequest).
			Render("checkout_shipping", withCSRF(c, fiber.Map{"Cart": cv, "Ship": ship, "Err": verr.Error()}))
	}
	return render(c, "checkout_payment", fiber.Map{"Cart": cv, "Ship": ship})
}

// Payment validates step two and advances to the read-only review.
func (h *CheckoutHandler) Payment(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	ship := shippingFromForm(c)
	pay := paymentFromForm(c)
	if verr := h.Checkout.ValidateShipping(ship); verr != nil {
		return c.Status(fiber.StatusBadRequest).
			Render("checkout_shipping", withCSRF(c, fiber.Map{"Cart": cv, "Ship": ship, "Err": verr.Error()}))
	}
	if verr := h.Checkout.ValidatePayment(pay); verr != nil {
		applog.Security(c, "checkout.payment.invalid", map[string]any{"reason": verr.Error()})
		return c.Status(fiber.StatusBadRequest).
			Render("checkout_payment", withCSRF(c, fiber.Map{"Cart": cv, "Ship": ship, "Pay": pay, "Err": verr.Error()}))
	}

	shipping := services.ShippingFee
	if cv.Subtotal >= services.FreeShippingMin {
		shipping = 0
	}
	return render(c, "checkout_review", fiber.Map{
		"Cart": cv, "Ship": ship, "Pay": pay,
		"ShippingCost": shipping, "GrandTotal": cv.Total + shipping,
	})
}

// Place runs the final validation and creates the order.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	ship := shippingFromForm(c)
	pay := paymentFromForm(c)

	orderID, total, err := h.Checkout.Place(sid, ship, pay)
	if err != nil {
		if errors.Is(err, services.ErrCartEmpty) {
			return c.Redirect("/cart")
		}
		applog.Security(c, "order.place.fail", map[string]any{"reason": err.Error()})
		cv, verr := h.Cart.View(sid)
		if verr != nil {
			return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not place order"})
		}
		return c.Status(fiber.StatusBadRequest).
			Render("checkout_payment", withCSRF(c, fiber.Map{"Cart": cv, "Ship": ship, "Pay": pay, "Err": err.Error()}))
	}

	applog.Audit(c, "order.place", map[string]any{"order_id": orderID, "total": total})
	return c.Redirect("/order/" + orderID + "?placed=1")
}

// withCSRF mirrors render()'s token injection for direct c.Render calls that
// need a non-200 status.
func withCSRF(c *fiber.Ctx, data fiber.Map) fiber.Map {
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	return data
}
