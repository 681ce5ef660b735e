package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chatstore/internal/commerce"
	"chatstore/internal/domain"
	applog "chatstore/internal/log"
	"chatstore/internal/validate"
)

type CartHandler struct {
	Cart *commerce.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	lines, err := h.Cart.Contents(u.ID)
	if err != nil {
		applog.Error(c, "cart.view", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
			"Message": "Could not load your cart. Please try again.",
		})
	}
	total := 0.0
	for _, l := range lines {
		total += l.Subtotal
	}
	return render(c, "cart", fiber.Map{"Items": lines, "Total": total})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	name, ok := validate.Q(c.FormValue("product_name"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_name"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid product name")
	}
	qty := validate.Qty(c.FormValue("quantity"))

	msg, err := h.Cart.Add(u.ID, name, qty)
	if err != nil {
		if domain.IsFault(err) {
			applog.Info(c, "cart.add.reject", map[string]any{"reason": err.Error()})
			return render(c, "cart_message", fiber.Map{"Message": err.Error()})
		}
		applog.Error(c, "cart.add", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update cart. Please try again.")
	}
	applog.Audit(c, "cart.add", map[string]any{"user_id": u.ID, "product": name, "qty": qty})
	return render(c, "cart_message", fiber.Map{"Message": msg})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	name, ok := validate.Q(c.FormValue("product_name"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_name"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid product name")
	}

	msg, err := h.Cart.Remove(u.ID, name)
	if err != nil {
		if domain.IsFault(err) {
			return render(c, "cart_message", fiber.Map{"Message": err.Error()})
		}
		applog.Error(c, "cart.remove", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update cart. Please try again.")
	}
	applog.Audit(c, "cart.remove", map[string]any{"user_id": u.ID, "product": name})
	return render(c, "cart_message", fiber.Map{"Message": msg})
}
