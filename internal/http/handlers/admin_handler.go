package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"aurelia/internal/domain"
	applog "aurelia/internal/log"
	"aurelia/internal/repos"
	"aurelia/internal/validate"
)

// AdminHandler is the back-office: thin CRUD over products, orders, coupons
// and users. Order status changes go through the lifecycle state machine.
type AdminHandler struct {
	Orders  *repos.OrderRepo
	Prods   *repos.ProductRepo
	Coupons *repos.CouponRepo
	Users   *repos.UserRepo
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ords, _ := h.Orders.ListLatest(10)
	return render(c, "admin_dashboard", fiber.Map{"Orders": ords})
}

// ---------- Orders ----------

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status. Refuses transitions the lifecycle forbids.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	next := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(c.FormValue("status"))))
	if id == "" || !next.Valid() {
		return c.Status(400).SendString("missing id or status")
	}
	o, _, err := h.Orders.Get(id)
	if err != nil {
		return c.Status(404).SendString("order not found")
	}
	cur := domain.OrderStatus(o.Status)
	if !cur.CanTransition(next) {
		applog.Security(c, "admin.orders.transition.reject", map[string]any{
			"order_id": id, "from": string(cur), "to": string(next),
		})
		return c.Status(400).SendString("invalid status transition")
	}
	if err := h.Orders.UpdateStatus(id, string(next)); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": string(next)})
	return c.Redirect("/admin/orders")
}

// ---------- Products ----------

// GET /admin/products
func (h *AdminHandler) ProductsPage(c *fiber.Ctx) error {
	prods, err := h.Prods.ListAll()
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "admin_products", fiber.Map{"Products": prods})
}

// POST /admin/products, create or update by id.
func (h *AdminHandler) SaveProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.FormValue("id"))
	catID, okCat := validate.CategoryID(c.FormValue("category_id"))
	name, okName := validate.Name(c.FormValue("name"))
	price, errPrice := strconv.ParseFloat(c.FormValue("price"), 64)
	stock, errStock := strconv.Atoi(c.FormValue("stock"))
	if !okID || !okCat || !okName || errPrice != nil || price < 0 || errStock != nil || stock < 0 {
		return c.Status(400).SendString("invalid input")
	}
	original, _ := strconv.ParseFloat(c.FormValue("original_price"), 64)
	if original < 0 {
		original = 0
	}

	p := domain.Product{
		ID:            id,
		CategoryID:    catID,
		Name:          name,
		Description:   strings.TrimSpace(c.FormValue("description")),
		Price:         price,
		OriginalPrice: original,
		Stock:         stock,
		Active:        c.FormValue("active") != "0",
		VariantsJSON:  strings.TrimSpace(c.FormValue("variants_json")),
	}
	// Reject variant JSON that would silently decode to nothing.
	if p.VariantsJSON != "" && len(p.Axes()) == 0 {
		return c.Status(400).SendString("invalid variant declarations")
	}

	var err error
	if _, getErr := h.Prods.Get(id); getErr == nil {
		err = h.Prods.Update(p)
	} else {
		err = h.Prods.Create(p)
	}
	if err != nil {
		applog.Error(c, "admin.products.save.fail", err, map[string]any{"product": id})
		return c.Status(400).SendString("could not save product")
	}
	applog.Audit(c, "admin.products.save", map[string]any{"product": id})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id/active
func (h *AdminHandler) ToggleProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	active := c.FormValue("active") == "1"
	if err := h.Prods.SetActive(id, active); err != nil {
		applog.Error(c, "admin.products.toggle.fail", err, map[string]any{"product": id})
		return c.Status(400).SendString("could not update product")
	}
	applog.Audit(c, "admin.products.toggle", map[string]any{"product": id, "active": active})
	return c.Redirect("/admin/products")
}

// ---------- Coupons ----------

// GET /admin/coupons
func (h *AdminHandler) CouponsPage(c *fiber.Ctx) error {
	coupons, err := h.Coupons.List()
	if err != nil {
		applog.Error(c, "admin.coupons.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load coupons"})
	}
	return render(c, "admin_coupons", fiber.Map{"Coupons": coupons})
}

// POST /admin/coupons
func (h *AdminHandler) SaveCoupon(c *fiber.Ctx) error {
	code, okCode := validate.ID(c.FormValue("code"))
	rate, errRate := strconv.ParseFloat(c.FormValue("rate"), 64)
	if !okCode || errRate != nil || rate <= 0 || rate > 1 {
		return c.Status(400).SendString("invalid input")
	}
	minPurchase, _ := strconv.ParseFloat(c.FormValue("min_purchase"), 64)
	if minPurchase < 0 {
		minPurchase = 0
	}
	cp := domain.Coupon{
		Code:        code,
		Rate:        rate,
		Description: strings.TrimSpace(c.FormValue("description")),
		MinPurchase: minPurchase,
		ExpiresAt:   strings.TrimSpace(c.FormValue("expires_at")),
		Active:      c.FormValue("active") != "0",
	}
	if err := h.Coupons.Upsert(cp); err != nil {
		applog.Error(c, "admin.coupons.save.fail", err, map[string]any{"code": code})
		return c.Status(400).SendString("could not save coupon")
	}
	applog.Audit(c, "admin.coupons.save", map[string]any{"code": code, "rate": rate})
	return c.Redirect("/admin/coupons")
}

// POST /admin/coupons/:code/delete
func (h *AdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	code, ok := validate.ID(c.Params("code"))
	if !ok {
		return c.Status(400).SendString("missing code")
	}
	if err := h.Coupons.Delete(code); err != nil {
		applog.Error(c, "admin.coupons.delete.fail", err, map[string]any{"code": code})
		return c.Status(400).SendString("could not delete coupon")
	}
	applog.Audit(c, "admin.coupons.delete", map[string]any{"code": code})
	return c.Redirect("/admin/coupons")
}

// ---------- Users ----------

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users})
}

// POST /admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Users.DeleteUserCascade(id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return c.Status(400).SendString("could not delete user")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.Redirect("/admin/users")
}
