package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chatstore/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if tok, ok := c.Locals("CSRFToken").(string); ok {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// currentUser returns the logged-in user attached by the session middleware.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
