package repos

import (
	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLineView carries enough product data to compute a line total.
type CartLineView struct {
	ProductID int64   `db:"product_id"`
	Name      string  `db:"name"`
	Quantity  int     `db:"quantity"`
	Price     float64 `db:"price"`
	Subtotal  float64 `db:"subtotal"`
	AddedAt   string  `db:"added_at"`
}

// Line returns the user's line for a product, sql.ErrNoRows when absent.
func (r *CartRepo) Line(q sqlx.Queryer, userID, productID int64) (domain.CartItem, error) {
	var it domain.CartItem
	err := sqlx.Get(q, &it, `
	  SELECT id, user_id, product_id, quantity, added_at
	  FROM cart_items WHERE user_id = ? AND product_id = ?
	`, userID, productID)
	return it, err
}

// InsertLine creates a fresh line; pairs with a Reserve in the same tx.
func (r *CartRepo) InsertLine(q sqlx.Execer, userID, productID int64, qty int) error {
	_, err := q.Exec(`
	  INSERT INTO cart_items(user_id, product_id, quantity)
	  VALUES(?, ?, ?)
	`, userID, productID, qty)
	return err
}

// MergeLine folds an additional quantity into an existing line; pairs with a
// Reserve of the same delta in the same tx.
func (r *CartRepo) MergeLine(q sqlx.Execer, lineID int64, delta int) error {
	_, err := q.Exec(`UPDATE cart_items SET quantity = quantity + ? WHERE id = ?`, delta, lineID)
	return err
}

func (r *CartRepo) DeleteLine(q sqlx.Execer, lineID int64) error {
	_, err := q.Exec(`DELETE FROM cart_items WHERE id = ?`, lineID)
	return err
}

// Lines returns the raw cart lines oldest-first.
func (r *CartRepo) Lines(q sqlx.Queryer, userID int64) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := sqlx.Select(q, &out, `
	  SELECT id, user_id, product_id, quantity, added_at
	  FROM cart_items WHERE user_id = ?
	  ORDER BY added_at, id
	`, userID)
	return out, err
}

// View returns joined lines, oldest-first, with line totals precomputed.
func (r *CartRepo) View(userID int64) ([]CartLineView, error) {
	var out []CartLineView
	err := r.db.Select(&out, `
	  SELECT ci.product_id, p.name, ci.quantity, p.price,
	         (ci.quantity * p.price) AS subtotal, ci.added_at
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.added_at, ci.id
	`, userID)
	return out, err
}

// DeleteAll removes every line for the user without touching the ledger.
// Checkout uses it inside its transaction: the quantities are committed to the
// new order, not released.
func (r *CartRepo) DeleteAll(q sqlx.Execer, userID int64) error {
	_, err := q.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
