package repos

import (
	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderItemView joins line items with their product names for display.
type OrderItemView struct {
	ProductID    int64   `db:"product_id"`
	Name         string  `db:"name"`
	Quantity     int     `db:"quantity"`
	PricePerUnit float64 `db:"price_per_unit"`
	Subtotal     float64 `db:"subtotal"`
}

// Insert creates the order header with a snapshotted total.
func (r *OrderRepo) Insert(q sqlx.Execer, userID int64, total float64) (int64, error) {
	res, err := q.Exec(`
	  INSERT INTO orders(user_id, status, total_amount)
	  VALUES(?, ?, ?)
	`, userID, domain.StatusPending, total)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertItem copies one cart line into the order at its snapshotted unit price.
func (r *OrderRepo) InsertItem(q sqlx.Execer, orderID, productID int64, qty int, pricePerUnit float64) error {
	_, err := q.Exec(`
	  INSERT INTO order_items(order_id, product_id, quantity, price_per_unit)
	  VALUES(?, ?, ?, ?)
	`, orderID, productID, qty, pricePerUnit)
	return err
}

func (r *OrderRepo) Get(q sqlx.Queryer, orderID int64) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(q, &o, `
	  SELECT id, user_id, status, created_at, updated_at, total_amount
	  FROM orders WHERE id = ?
	`, orderID)
	return o, err
}

// LatestCancellable returns the user's most recent order still in a
// cancellable status, sql.ErrNoRows when none exists.
func (r *OrderRepo) LatestCancellable(q sqlx.Queryer, userID int64) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(q, &o, `
	  SELECT id, user_id, status, created_at, updated_at, total_amount
	  FROM orders
	  WHERE user_id = ? AND status IN (?, ?)
	  ORDER BY datetime(created_at) DESC, id DESC
	  LIMIT 1
	`, userID, domain.StatusPending, domain.StatusProcessing)
	return o, err
}

// SetStatus updates the one mutable part of an order and stamps updated_at.
func (r *OrderRepo) SetStatus(q sqlx.Execer, orderID int64, status domain.OrderStatus) error {
	_, err := q.Exec(`
	  UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	return err
}

func (r *OrderRepo) Items(q sqlx.Queryer, orderID int64) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := sqlx.Select(q, &out, `
	  SELECT id, order_id, product_id, quantity, price_per_unit
	  FROM order_items WHERE order_id = ?
	  ORDER BY id
	`, orderID)
	return out, err
}

func (r *OrderRepo) ItemViews(orderID int64) ([]OrderItemView, error) {
	var out []OrderItemView
	err := r.db.Select(&out, `
	  SELECT oi.product_id, p.name, oi.quantity, oi.price_per_unit,
	         (oi.quantity * oi.price_per_unit) AS subtotal
	  FROM order_items oi JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY oi.id
	`, orderID)
	return out, err
}

// ListByUser returns the user's orders newest-first.
func (r *OrderRepo) ListByUser(userID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT id, user_id, status, created_at, updated_at, total_amount
	  FROM orders WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC, id DESC
	`, userID)
	return out, err
}
