package commerce

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
	"chatstore/internal/repos"
)

type OrderService struct {
	DB       *sqlx.DB
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
	Stock    *repos.StockRepo
	Orders   *repos.OrderRepo
}

func NewOrderService(db *sqlx.DB, carts *repos.CartRepo, products *repos.ProductRepo, stock *repos.StockRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{DB: db, Carts: carts, Products: products, Stock: stock, Orders: orders}
}

// Checkout converts the user's cart into an order in one atomic transaction:
// validate every line, snapshot prices into a total, create order + items,
// drain the cart without releasing stock (the units are now committed). On any
// failure nothing persists.
func (s *OrderService) Checkout(userID int64) (domain.Order, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lines, err := s.Carts.Lines(tx, userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.Faultf(domain.ErrEmptyCart, "Cannot create order: Cart is empty.")
	}

	// Re-validate against current product rows; this is the price snapshot
	// moment.
	prices := make(map[int64]float64, len(lines))
	total := 0.0
	for _, l := range lines {
		p, err := s.Products.GetTx(tx, l.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.Faultf(domain.ErrInventoryInconsistency,
				"Product data inconsistency for product ID %d.", l.ProductID)
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("validate product %d: %w", l.ProductID, err)
		}
		if p.Stock < 0 {
			return domain.Order{}, domain.Faultf(domain.ErrInventoryInconsistency,
				"Inventory issue detected for %s. Please contact support.", p.Name)
		}
		prices[l.ProductID] = p.Price
		total += float64(l.Quantity) * p.Price
	}

	orderID, err := s.Orders.Insert(tx, userID, total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	for _, l := range lines {
		if err := s.Orders.InsertItem(tx, orderID, l.ProductID, l.Quantity, prices[l.ProductID]); err != nil {
			return domain.Order{}, fmt.Errorf("create order item: %w", err)
		}
	}

	// No release here: reservations become commitments.
	if err := s.Carts.DeleteAll(tx, userID); err != nil {
		return domain.Order{}, fmt.Errorf("drain cart: %w", err)
	}

	o, err := s.Orders.Get(tx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("reload order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	return o, nil
}

// Cancel cancels an order and restocks its committed quantities, atomically
// with the status change. With orderID zero it picks the user's most recent
// cancellable order. An order already past cancellation yields soft-failure
// text, not an error.
func (s *OrderService) Cancel(userID, orderID int64) (string, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin cancel: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var o domain.Order
	if orderID != 0 {
		o, err = s.Orders.Get(tx, orderID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && o.UserID != userID) {
			return "", domain.Faultf(domain.ErrOrderNotFound,
				"Order #%d not found or does not belong to you.", orderID)
		}
		if err != nil {
			return "", fmt.Errorf("load order: %w", err)
		}
		if !o.Status.Cancellable() {
			return fmt.Sprintf("Order #%d cannot be cancelled as its status is %s.", o.ID, o.Status), nil
		}
	} else {
		o, err = s.Orders.LatestCancellable(tx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.Faultf(domain.ErrNoCancellableOrder,
				"No recent orders found that can be cancelled.")
		}
		if err != nil {
			return "", fmt.Errorf("find cancellable order: %w", err)
		}
	}

	if err := s.Orders.SetStatus(tx, o.ID, domain.StatusCancelled); err != nil {
		return "", fmt.Errorf("set status: %w", err)
	}

	items, err := s.Orders.Items(tx, o.ID)
	if err != nil {
		return "", fmt.Errorf("load order items: %w", err)
	}
	for _, it := range items {
		if err := s.Stock.Release(tx, it.ProductID, it.Quantity); err != nil {
			return "", fmt.Errorf("restock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit cancel: %w", err)
	}
	return fmt.Sprintf("Order #%d has been cancelled successfully.", o.ID), nil
}

// RequestReturn flags a delivered order for return. Any other status yields
// soft-failure text naming it. No restock happens; return completion is a
// separate fulfillment concern.
func (s *OrderService) RequestReturn(userID, orderID int64) (string, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin return request: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.Get(tx, orderID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && o.UserID != userID) {
		return "", domain.Faultf(domain.ErrOrderNotFound,
			"Order #%d not found or does not belong to you.", orderID)
	}
	if err != nil {
		return "", fmt.Errorf("load order: %w", err)
	}

	if o.Status != domain.StatusDelivered {
		return fmt.Sprintf("Cannot request return for Order #%d. Its status is %s. Only delivered orders can be returned.", o.ID, o.Status), nil
	}

	if err := s.Orders.SetStatus(tx, o.ID, domain.StatusReturnRequested); err != nil {
		return "", fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit return request: %w", err)
	}
	return fmt.Sprintf("Return request initiated for Order #%d. You will be contacted with further instructions.", o.ID), nil
}

// Order returns one order with an ownership check.
func (s *OrderService) Order(userID, orderID int64) (domain.Order, error) {
	o, err := s.Orders.Get(s.DB, orderID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && o.UserID != userID) {
		return domain.Order{}, domain.Faultf(domain.ErrOrderNotFound,
			"Order #%d not found or does not belong to you.", orderID)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("load order: %w", err)
	}
	return o, nil
}

func (s *OrderService) List(userID int64) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) Items(orderID int64) ([]repos.OrderItemView, error) {
	return s.Orders.ItemViews(orderID)
}

// AdvanceStatus moves an order one step along the fulfillment path
// (pending -> processing -> shipped -> delivered). External fulfillment drives
// this; cancellation and returns go through Cancel/RequestReturn.
func (s *OrderService) AdvanceStatus(orderID int64, next domain.OrderStatus) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.Get(tx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Faultf(domain.ErrOrderNotFound, "Order #%d not found.", orderID)
	}
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if !o.Status.CanAdvanceTo(next) {
		return domain.Faultf(domain.ErrIllegalTransition,
			"Order #%d cannot move from %s to %s.", o.ID, o.Status, next)
	}
	if err := s.Orders.SetStatus(tx, o.ID, next); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return tx.Commit()
}
