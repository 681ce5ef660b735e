// Package catalog is the read-mostly product surface: lookup, browse and
// admin-style catalog edits. It never mutates the stock ledger.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"chatstore/internal/domain"
	"chatstore/internal/repos"
)

var ErrDuplicateName = errors.New("product name already exists")

type Service struct {
	Products *repos.ProductRepo
}

func NewService(products *repos.ProductRepo) *Service {
	return &Service{Products: products}
}

// Find resolves a product by exact, case-insensitive name.
func (s *Service) Find(name string) (domain.Product, error) {
	p, err := s.Products.ByName(name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.Faultf(domain.ErrProductNotFound,
			"Product '%s' not found.", name)
	}
	return p, err
}

func (s *Service) Browse(f repos.BrowseFilter) ([]domain.Product, error) {
	return s.Products.Browse(f)
}

func (s *Service) Categories() ([]string, error) {
	return s.Products.Categories()
}

// Create adds a product; duplicate names (case-insensitive) are rejected.
func (s *Service) Create(p domain.Product) (domain.Product, error) {
	if _, err := s.Products.ByName(p.Name); err == nil {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, err
	}
	id, err := s.Products.Insert(p)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	return p, nil
}

// SetPrice updates the catalog price. Orders already placed keep the unit
// price captured at their creation.
func (s *Service) SetPrice(name string, price float64) error {
	if price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	p, err := s.Find(name)
	if err != nil {
		return err
	}
	return s.Products.SetPrice(p.ID, price)
}
