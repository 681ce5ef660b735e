// Package agent is the assistant's tool layer over the commerce engine. Every
// executor returns a user-displayable string; error types never cross this
// boundary, only text plus the implicit success/failure of that text.
package agent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chatstore/internal/catalog"
	"chatstore/internal/commerce"
	"chatstore/internal/domain"
	applog "chatstore/internal/log"
	"chatstore/internal/repos"
)

type Tools struct {
	Cart    *commerce.CartService
	Orders  *commerce.OrderService
	Catalog *catalog.Service
	Users   *repos.UserRepo
}

func NewTools(cart *commerce.CartService, orders *commerce.OrderService, cat *catalog.Service, users *repos.UserRepo) *Tools {
	return &Tools{Cart: cart, Orders: orders, Catalog: cat, Users: users}
}

// fallback masks infrastructure errors behind a generic message.
func fallback(userID int64, op string, err error, generic string) string {
	if domain.IsFault(err) {
		return err.Error()
	}
	applog.Error(nil, "agent."+op, err, map[string]any{"user_id": userID})
	return generic
}

func (t *Tools) AddItemToCart(userID int64, productName string, qty int) string {
	if qty <= 0 {
		return "Please specify a positive quantity to add."
	}
	msg, err := t.Cart.Add(userID, productName, qty)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return fmt.Sprintf("Sorry, I couldn't find a product named '%s'.", productName)
		}
		return fallback(userID, "cart.add", err,
			"An unexpected error occurred while trying to add the item to your cart.")
	}
	return msg
}

func (t *Tools) ViewCart(userID int64) string {
	lines, err := t.Cart.Contents(userID)
	if err != nil {
		return fallback(userID, "cart.view", err,
			"An unexpected error occurred while trying to view your cart.")
	}
	if len(lines) == 0 {
		return "Your shopping cart is currently empty."
	}

	out := []string{"Here's what's in your cart:"}
	total := 0.0
	for _, l := range lines {
		out = append(out, fmt.Sprintf("- %d x %s (@ ₹%.2f each) = ₹%.2f",
			l.Quantity, l.Name, l.Price, l.Subtotal))
		total += l.Subtotal
	}
	out = append(out, fmt.Sprintf("\nTotal: ₹%.2f", total))
	return strings.Join(out, "\n")
}

func (t *Tools) RemoveItemFromCart(userID int64, productName string) string {
	msg, err := t.Cart.Remove(userID, productName)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return fmt.Sprintf("Sorry, I couldn't find a product named '%s' in the system to remove.", productName)
		}
		return fallback(userID, "cart.remove", err,
			"An unexpected error occurred while trying to remove the item from your cart.")
	}
	return msg
}

func (t *Tools) ProceedToCheckout(userID int64) string {
	o, err := t.Orders.Checkout(userID)
	if err != nil {
		if domain.IsFault(err) {
			return fmt.Sprintf("Checkout failed: %s", err.Error())
		}
		return fallback(userID, "checkout", err,
			"An unexpected error occurred during checkout. Please try again.")
	}
	return fmt.Sprintf("Checkout successful! Your order #%d has been created with status '%s'. Total: ₹%.2f.",
		o.ID, o.Status, o.TotalAmount)
}

func (t *Tools) ViewOrders(userID int64) string {
	orders, err := t.Orders.List(userID)
	if err != nil {
		return fallback(userID, "orders.view", err,
			"An error occurred while retrieving your order history.")
	}
	if len(orders) == 0 {
		return "You haven't placed any orders yet."
	}

	out := []string{"Here are your orders:"}
	for _, o := range orders {
		out = append(out, fmt.Sprintf("\n--- Order #%d ---", o.ID))
		out = append(out, fmt.Sprintf("Status: %s", o.Status))
		out = append(out, fmt.Sprintf("Placed on: %s", o.CreatedAt))
		out = append(out, fmt.Sprintf("Total: ₹%.2f", o.TotalAmount))
		out = append(out, "Items:")
		items, err := t.Orders.Items(o.ID)
		if err != nil || len(items) == 0 {
			out = append(out, "  (No item details available)")
			continue
		}
		for _, it := range items {
			out = append(out, fmt.Sprintf("  - %d x %s (@ ₹%.2f each)",
				it.Quantity, it.Name, it.PricePerUnit))
		}
	}
	return strings.Join(out, "\n")
}

func (t *Tools) CancelOrder(userID, orderID int64) string {
	msg, err := t.Orders.Cancel(userID, orderID)
	if err != nil {
		return fallback(userID, "order.cancel", err,
			"An unexpected error occurred while trying to cancel the order.")
	}
	return msg
}

func (t *Tools) RequestReturn(userID, orderID int64) string {
	msg, err := t.Orders.RequestReturn(userID, orderID)
	if err != nil {
		return fallback(userID, "order.return", err,
			"An unexpected error occurred while trying to request the return.")
	}
	return msg
}

func (t *Tools) GetProductInfo(productName string) string {
	p, err := t.Catalog.Find(productName)
	if err != nil {
		if domain.IsFault(err) {
			return fmt.Sprintf("Sorry, I couldn't find information for a product named '%s'.", productName)
		}
		return fallback(0, "product.info", err,
			"An error occurred while retrieving product information.")
	}

	out := []string{fmt.Sprintf("Here's the information for %s:", p.Name)}
	if p.Description != "" {
		out = append(out, fmt.Sprintf("- Description: %s", p.Description))
	}
	out = append(out, fmt.Sprintf("- Price: ₹%.2f", p.Price))
	out = append(out, fmt.Sprintf("- Current Rating: %.1f/5.0", p.Rating))
	status := "In Stock"
	if p.Stock <= 0 {
		status = "Out of Stock"
	}
	out = append(out, fmt.Sprintf("- Availability: %s (%d available)", status, p.Stock))
	return strings.Join(out, "\n")
}

func (t *Tools) GetUserProfile(userID int64) string {
	u, err := t.Users.ByID(userID)
	if err != nil {
		return "I'm sorry, I couldn't find your profile information. Please ensure you are logged in correctly."
	}
	joined := u.CreatedAt
	if ts, err := time.Parse("2006-01-02 15:04:05", u.CreatedAt); err == nil {
		joined = ts.Format("January 02, 2006")
	}
	return fmt.Sprintf("Your name is %s, and you joined ChatStore on %s.", u.Name, joined)
}
