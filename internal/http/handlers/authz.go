package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aurelia/internal/domain"
	applog "aurelia/internal/log"
	"aurelia/internal/services"
)

// sessionUser resolves the sid cookie to a logged-in user, or nil.
func sessionUser(c *fiber.Ctx, auth *services.AuthService) *domain.User {
	sid := c.Cookies("sid")
	if sid == "" {
		return nil
	}
	u, err := auth.CurrentUser(sid)
	if err != nil {
		return nil
	}
	return u
}

// RequireAdmin wraps back-office routes. Anonymous visitors go to login;
// logged-in non-admins get a flat 403 with no hint of what lives here.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies("sid") == "" {
			return c.Redirect("/login")
		}
		u := sessionUser(c, auth)
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": c.Cookies("sid")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireUser gates account pages behind a live login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := sessionUser(c, auth)
		if u == nil {
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
