package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "aurelia/internal/log"
	"aurelia/internal/services"
	"aurelia/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// emptyResults builds the bind map for a search page with nothing to show.
// Every key the template touches must be present even on error paths.
func emptyResults(q, errMsg string) fiber.Map {
	return fiber.Map{
		"Q": q, "CategoryID": "", "InStock": false,
		"Products": []any{}, "Count": 0, "Err": errMsg,
	}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		return render(c, "search", emptyResults("", ""))
	}

	q, ok := validate.Q(rawQ)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return c.Status(fiber.StatusBadRequest).Render("search",
			emptyResults("", "Enter a valid keyword (letters/numbers only)"))
	}
	q = strings.ToLower(q)

	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.CategoryID(category); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).Render("search",
				emptyResults(q, "Invalid category"))
		}
	}
	inStockOnly := c.Query("instock") == "1"

	products, err := h.Catalog.Search(q, category, inStockOnly, 1, 20)
	if err != nil {
		applog.Error(c, "search.error", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load results. Please retry."})
	}

	return render(c, "search", fiber.Map{
		"Q": q, "CategoryID": category, "InStock": inStockOnly,
		"Products": products, "Count": len(products),
	})
}
