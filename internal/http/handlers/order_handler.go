package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aurelia/internal/domain"
	applog "aurelia/internal/log"
	"aurelia/internal/repos"
	"aurelia/internal/services"
)

type OrderHandler struct {
	Repo *repos.OrderRepo
	Auth *services.AuthService
}

func orderNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
}

// View shows one order; also the post-checkout confirmation page. Only the
// owning session/user (or an admin) may see it. Strangers get the same 404
// as a missing order, so order ids cannot be enumerated.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid := c.Params("id")
	if oid == "" {
		return orderNotFound(c)
	}

	o, items, err := h.Repo.Get(oid)
	if err != nil {
		return orderNotFound(c)
	}

	if !h.canSee(c, o) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return orderNotFound(c)
	}

	return render(c, "order", fiber.Map{
		"Order": o, "Items": items,
		"Placed":   c.Query("placed") == "1",
		"Progress": statusProgress(o.Status),
	})
}

// Invoice streams the plain-text invoice as a download.
func (h *OrderHandler) Invoice(c *fiber.Ctx) error {
	oid := c.Params("id")
	o, items, err := h.Repo.Get(oid)
	if err != nil {
		return orderNotFound(c)
	}
	if !h.canSee(c, o) {
		applog.Security(c, "access.denied.invoice", map[string]any{"order_id": oid})
		return orderNotFound(c)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoice-`+o.Number+`.txt"`)
	return c.SendString(services.BuildInvoice(o, items))
}

// History lists orders for the current logged-in user, falling back to the
// session's orders for purchases made before logging in.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Orders not available"})
	}
	orders, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	if len(orders) == 0 && c.Cookies("sid") != "" {
		if sessOrders, err := h.Repo.ListBySession(c.Cookies("sid")); err == nil {
			orders = sessOrders
		}
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}

func (h *OrderHandler) canSee(c *fiber.Ctx, o repos.OrderRow) bool {
	sid := c.Cookies("sid")
	if sid != "" && sid == o.SessionID {
		return true
	}
	if h.Auth == nil || sid == "" {
		return false
	}
	u, err := h.Auth.CurrentUser(sid)
	if err != nil || u == nil {
		return false
	}
	return u.IsAdmin() || (o.UserID != "" && u.ID == o.UserID)
}

// statusProgress maps a status onto the 4-step fulfilment track for the
// progress bar; cancelled orders show no progress.
func statusProgress(status string) int {
	switch domain.OrderStatus(status) {
	case domain.OrderPending:
		return 1
	case domain.OrderProcessing:
		return 2
	case domain.OrderShipped:
		return 3
	case domain.OrderDelivered:
		return 4
	}
	return 0
}
