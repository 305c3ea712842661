package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "aurelia/internal/log"
	"aurelia/internal/services"
	"aurelia/internal/validate"
)

type CompareHandler struct {
	Compare *services.CompareService
}

func (h *CompareHandler) List(c *fiber.Ctx) error {
	sid := ensureSID(c)
	items, err := h.Compare.List(sid)
	if err != nil {
		applog.Error(c, "compare.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load comparison"})
	}
	return render(c, "compare", fiber.Map{"Items": items, "Err": c.Query("err")})
}

// Add rejects the fourth member outright; the prior three stay as they are.
func (h *CompareHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	if err := h.Compare.Add(sid, pid); err != nil {
		if errors.Is(err, services.ErrCompareFull) {
			applog.Security(c, "compare.full", map[string]any{"product": pid})
			return c.Redirect("/compare?err=" + url.QueryEscape(err.Error()))
		}
		applog.Error(c, "compare.add.fail", err, map[string]any{"product": pid})
		return c.Status(500).SendString("Could not add to comparison")
	}
	applog.Audit(c, "compare.add", map[string]any{"product": pid})
	return c.Redirect("/compare")
}

func (h *CompareHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	if err := h.Compare.Remove(sid, pid); err != nil {
		applog.Error(c, "compare.remove.fail", err, map[string]any{"product": pid})
		return c.Status(500).SendString("Could not remove from comparison")
	}
	return c.Redirect("/compare")
}
