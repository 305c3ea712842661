package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "aurelia/internal/log"
	"aurelia/internal/services"
	"aurelia/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

// Login rejects malformed input before touching the database; every failure
// renders the same message so the form leaks nothing about accounts.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")

	reject := func(reason string) error {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		return c.Status(401).Render("login", withCSRF(c, fiber.Map{"Err": "Invalid email or password"}))
	}

	if _, ok := validate.Email(email); !ok {
		return reject("bad_format")
	}
	if !validate.Password(pass) {
		return reject("bad_password_format")
	}
	if _, err := h.Auth.Login(sid, email, pass); err != nil {
		return reject("bad_credentials")
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email, okEmail := validate.Email(c.FormValue("email"))
	name, okName := validate.Name(c.FormValue("name"))
	pass := c.FormValue("password")

	switch {
	case !okEmail:
		return c.Status(400).Render("register", withCSRF(c, fiber.Map{"Err": "Enter a valid email address"}))
	case !okName:
		return c.Status(400).Render("register", withCSRF(c, fiber.Map{"Err": "Enter your name (up to 60 characters)"}))
	case !validate.Password(pass):
		return c.Status(400).Render("register", withCSRF(c, fiber.Map{
			"Err": "Password must be 8-20 characters with upper, lower, digit and symbol",
		}))
	}

	if _, err := h.Auth.Register(sid, email, name, pass); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(400).Render("register", withCSRF(c, fiber.Map{"Err": err.Error()}))
		}
		applog.Error(c, "auth.register.fail", err, map[string]any{"email": email})
		return c.Status(500).Render("register", withCSRF(c, fiber.Map{"Err": "Could not create account"}))
	}

	applog.Audit(c, "auth.register", map[string]any{"email": email})
	return c.Redirect("/")
}

// Logout unbinds the session server-side and expires the sid cookie, so the
// next visit starts a fresh anonymous session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)

	expired := fiber.Cookie{
		Name:     "sid",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	}
	c.Cookie(&expired)

	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
