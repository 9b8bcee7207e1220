package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Product is an inventory record. Stock changes go through the repository's
// atomic decrement, never through a read-modify-write on this struct.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
}

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InStock reports whether the requested quantity is currently available.
func (p *Product) InStock(quantity int) bool {
	return p.StockQuantity >= quantity
}
