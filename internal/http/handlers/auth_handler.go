package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chatstore/internal/auth"
	applog "chatstore/internal/log"
	"chatstore/internal/validate"
)

type AuthHandler struct {
	Auth *auth.Service
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return render(c.Status(fiber.StatusBadRequest), "login", fiber.Map{"Err": "Invalid email."})
	}
	sid := ensureSID(c)

	u, err := h.Auth.Login(sid, email, c.FormValue("password"))
	if err != nil {
		applog.Security(c, "login.fail", map[string]any{"email": email})
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{"Err": "Invalid email or password."})
	}
	applog.Audit(c, "login", map[string]any{"user_id": u.ID})
	return c.Redirect("/browse")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return render(c.Status(fiber.StatusBadRequest), "register", fiber.Map{"Err": "Name must be 1-64 characters."})
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return render(c.Status(fiber.StatusBadRequest), "register", fiber.Map{"Err": "Invalid email."})
	}
	password := c.FormValue("password")
	if !validate.Password(password) {
		return render(c.Status(fiber.StatusBadRequest), "register", fiber.Map{
			"Err": "Password must be 8-64 characters with upper, lower, digit and symbol.",
		})
	}

	u, err := h.Auth.Register(name, email, password)
	if err == auth.ErrEmailTaken {
		return render(c.Status(fiber.StatusConflict), "register", fiber.Map{"Err": "Email already registered."})
	}
	if err != nil {
		applog.Error(c, "register", err, nil)
		return render(c.Status(fiber.StatusInternalServerError), "register", fiber.Map{"Err": "Could not register. Please try again."})
	}
	applog.Audit(c, "register", map[string]any{"user_id": u.ID})
	return c.Redirect("/login")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(sid); err != nil {
			applog.Error(c, "logout", err, nil)
		}
	}
	return c.Redirect("/login")
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	return render(c, "profile", fiber.Map{})
}
