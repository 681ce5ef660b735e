// Package commerce is the inventory-consistent transaction engine: it keeps
// product stock, cart contents and order records mutually consistent. It is
// the only entry point allowed to mutate the stock ledger.
package commerce

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
	"chatstore/internal/repos"
)

type CartService struct {
	DB       *sqlx.DB
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
	Stock    *repos.StockRepo
}

func NewCartService(db *sqlx.DB, carts *repos.CartRepo, products *repos.ProductRepo, stock *repos.StockRepo) *CartService {
	return &CartService{DB: db, Carts: carts, Products: products, Stock: stock}
}

// Add reserves qty units of the named product into the user's cart. When a
// line already exists, only the additional quantity is reserved; reservation
// and line update commit together.
func (s *CartService) Add(userID int64, productName string, qty int) (string, error) {
	if qty <= 0 {
		return "", domain.Faultf(domain.ErrInvalidQuantity, "Quantity must be positive.")
	}

	p, err := s.Products.ByName(productName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.Faultf(domain.ErrProductNotFound, "Product '%s' not found.", productName)
	}
	if err != nil {
		return "", fmt.Errorf("look up product: %w", err)
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin cart add: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	line, err := s.Carts.Line(tx, userID, p.ID)
	switch {
	case err == nil:
		// Reserve the delta, then merge it into the existing line.
		if err := s.Stock.Reserve(tx, p.ID, qty); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return "", domain.Faultf(domain.ErrInsufficientStock,
					"Not enough stock for %s. Only %d more available.", p.Name, p.Stock)
			}
			return "", err
		}
		if err := s.Carts.MergeLine(tx, line.ID, qty); err != nil {
			return "", fmt.Errorf("merge cart line: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("commit cart add: %w", err)
		}
		return fmt.Sprintf("Updated %s quantity to %d in your cart.", p.Name, line.Quantity+qty), nil

	case errors.Is(err, sql.ErrNoRows):
		if err := s.Stock.Reserve(tx, p.ID, qty); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return "", domain.Faultf(domain.ErrInsufficientStock,
					"Not enough stock for %s. Only %d available.", p.Name, p.Stock)
			}
			return "", err
		}
		if err := s.Carts.InsertLine(tx, userID, p.ID, qty); err != nil {
			return "", fmt.Errorf("insert cart line: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("commit cart add: %w", err)
		}
		return fmt.Sprintf("Added %d x %s to your cart.", qty, p.Name), nil

	default:
		return "", fmt.Errorf("load cart line: %w", err)
	}
}

// Remove drops the whole line for the named product and releases its reserved
// quantity back to the ledger, atomically.
func (s *CartService) Remove(userID int64, productName string) (string, error) {
	p, err := s.Products.ByName(productName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.Faultf(domain.ErrProductNotFound, "Product '%s' not found.", productName)
	}
	if err != nil {
		return "", fmt.Errorf("look up product: %w", err)
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin cart remove: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	line, err := s.Carts.Line(tx, userID, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.Faultf(domain.ErrItemNotInCart, "Item not found in your cart.")
	}
	if err != nil {
		return "", fmt.Errorf("load cart line: %w", err)
	}

	if err := s.Stock.Release(tx, p.ID, line.Quantity); err != nil {
		return "", fmt.Errorf("release stock: %w", err)
	}
	if err := s.Carts.DeleteLine(tx, line.ID); err != nil {
		return "", fmt.Errorf("delete cart line: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit cart remove: %w", err)
	}
	return fmt.Sprintf("Removed %s from your cart.", p.Name), nil
}

// Contents lists the user's cart oldest-first; an empty cart is a valid result.
func (s *CartService) Contents(userID int64) ([]repos.CartLineView, error) {
	return s.Carts.View(userID)
}

// Total sums quantity x current price over the cart.
func (s *CartService) Total(userID int64) (float64, error) {
	lines, err := s.Carts.View(userID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, l := range lines {
		total += l.Subtotal
	}
	return total, nil
}

// Clear abandons the cart: releases every line's reservation, then deletes all
// lines, as one transaction. Empty cart is a no-op. Checkout does NOT use this;
// it drains lines without release because the units move into the order.
func (s *CartService) Clear(userID int64) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin cart clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lines, err := s.Carts.Lines(tx, userID)
	if err != nil {
		return fmt.Errorf("load cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	for _, l := range lines {
		if err := s.Stock.Release(tx, l.ProductID, l.Quantity); err != nil {
			return fmt.Errorf("release stock: %w", err)
		}
	}
	if err := s.Carts.DeleteAll(tx, userID); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}
	return tx.Commit()
}
