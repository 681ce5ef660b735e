package repos

import (
	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, name, COALESCE(description,'') AS description, price, stock, rating, category
	  FROM products WHERE id = ?
	`, id)
	return p, err
}

// GetTx re-reads a product inside a transaction (checkout re-validation).
func (r *ProductRepo) GetTx(q sqlx.Queryer, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(q, &p, `
	  SELECT id, name, COALESCE(description,'') AS description, price, stock, rating, category
	  FROM products WHERE id = ?
	`, id)
	return p, err
}

// ByName resolves a product by exact, case-insensitive name match.
func (r *ProductRepo) ByName(name string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, name, COALESCE(description,'') AS description, price, stock, rating, category
	  FROM products WHERE name = ? COLLATE NOCASE
	`, name)
	return p, err
}

// BrowseFilter narrows the product listing; zero values mean "no constraint".
type BrowseFilter struct {
	Search      string
	Category    string
	MinPrice    float64
	MaxPrice    float64
	MinRating   float64
	InStockOnly bool
	Limit       int
	Offset      int
}

func (r *ProductRepo) Browse(f BrowseFilter) ([]domain.Product, error) {
	where := `1=1`
	args := []any{}
	if f.Search != "" {
		where += ` AND (name LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)`
		args = append(args, "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.MinPrice > 0 {
		where += ` AND price >= ?`
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where += ` AND price <= ?`
		args = append(args, f.MaxPrice)
	}
	if f.MinRating > 0 {
		where += ` AND rating >= ?`
		args = append(args, f.MinRating)
	}
	if f.InStockOnly {
		where += ` AND stock > 0`
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)

	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT id, name, COALESCE(description,'') AS description, price, stock, rating, category
	  FROM products
	  WHERE `+where+`
	  ORDER BY name
	  LIMIT ? OFFSET ?
	`, args...)
	return out, err
}

func (r *ProductRepo) Categories() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `SELECT DISTINCT category FROM products ORDER BY category`)
	return out, err
}

// Insert adds a catalog entry; the unique name index rejects duplicates.
func (r *ProductRepo) Insert(p domain.Product) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO products(name, description, price, stock, rating, category)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.Price, p.Stock, p.Rating, p.Category)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetPrice changes the catalog price. Existing order items keep the price they
// were created with.
func (r *ProductRepo) SetPrice(id int64, price float64) error {
	_, err := r.db.Exec(`UPDATE products SET price = ? WHERE id = ?`, price, id)
	return err
}
