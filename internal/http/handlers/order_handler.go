package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chatstore/internal/commerce"
	"chatstore/internal/domain"
	applog "chatstore/internal/log"
	"chatstore/internal/validate"
)

type OrderHandler struct {
	Orders *commerce.OrderService
	Cart   *commerce.CartService
}

// Checkout turns the cart into an order; domain failures render as ordinary
// messages, infrastructure failures as a generic retry page.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	u := currentUser(c)
	o, err := h.Orders.Checkout(u.ID)
	if err != nil {
		if domain.IsFault(err) {
			applog.Info(c, "order.checkout.reject", map[string]any{"reason": err.Error()})
			return render(c, "cart_message", fiber.Map{"Message": "Checkout failed: " + err.Error()})
		}
		applog.Error(c, "order.checkout", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
			"Message": "Checkout failed. Please try again.",
		})
	}
	applog.Audit(c, "order.place", map[string]any{
		"user_id": u.ID, "order_id": o.ID, "total": o.TotalAmount,
	})
	return c.Redirect("/orders")
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Orders.List(u.ID)
	if err != nil {
		applog.Error(c, "orders.history", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
			"Message": "Could not load orders.",
		})
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	u := currentUser(c)
	oid := validate.ID(c.Params("id"))
	o, err := h.Orders.Order(u.ID, oid)
	if err != nil {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	items, err := h.Orders.Items(o.ID)
	if err != nil {
		applog.Error(c, "order.items", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
			"Message": "Could not load order.",
		})
	}
	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	u := currentUser(c)
	oid := validate.ID(c.Params("id"))

	msg, err := h.Orders.Cancel(u.ID, oid)
	if err != nil {
		if domain.IsFault(err) {
			return render(c, "cart_message", fiber.Map{"Message": err.Error()})
		}
		applog.Error(c, "order.cancel", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not cancel order. Please try again.")
	}
	applog.Audit(c, "order.cancel", map[string]any{"user_id": u.ID, "order_id": oid})
	return render(c, "cart_message", fiber.Map{"Message": msg})
}

func (h *OrderHandler) Return(c *fiber.Ctx) error {
	u := currentUser(c)
	oid := validate.ID(c.Params("id"))

	msg, err := h.Orders.RequestReturn(u.ID, oid)
	if err != nil {
		if domain.IsFault(err) {
			return render(c, "cart_message", fiber.Map{"Message": err.Error()})
		}
		applog.Error(c, "order.return", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not request return. Please try again.")
	}
	applog.Audit(c, "order.return", map[string]any{"user_id": u.ID, "order_id": oid})
	return render(c, "cart_message", fiber.Map{"Message": msg})
}

// UpdateStatus is the fulfillment-facing forward transition
// (pending -> processing -> shipped -> delivered).
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	oid := validate.ID(c.Params("id"))
	next := domain.OrderStatus(c.FormValue("status"))

	if err := h.Orders.AdvanceStatus(oid, next); err != nil {
		if domain.IsFault(err) {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		applog.Error(c, "order.status", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update status.")
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": oid, "status": string(next)})
	return c.Redirect("/orders")
}
