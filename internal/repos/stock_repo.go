package repos

import (
	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
)

// StockRepo is the stock ledger: the only code that moves units in or out of
// products.stock. Every method takes the transaction its caller runs in, so a
// ledger change always commits together with the cart or order rows it
// accompanies.
type StockRepo struct{}

func NewStockRepo() *StockRepo { return &StockRepo{} }

// Reserve subtracts qty units iff enough unreserved stock exists. The guarded
// UPDATE re-checks the predicate under the write lock, so two racing reserves
// cannot both pass the stock check and overdraw.
func (r *StockRepo) Reserve(q sqlx.Execer, productID int64, qty int) error {
	res, err := q.Exec(`
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Faultf(domain.ErrInsufficientStock, "insufficient stock for product %d", productID)
	}
	return nil
}

// Release returns qty units to the ledger unconditionally. Idempotency is the
// caller's responsibility: cancel gates on order status before releasing.
func (r *StockRepo) Release(q sqlx.Execer, productID int64, qty int) error {
	_, err := q.Exec(`UPDATE products SET stock = stock + ? WHERE id = ?`, qty, productID)
	return err
}
