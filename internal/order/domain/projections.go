package domain

import "github.com/shopspring/decimal"

// Customer is a read-only projection of the identity collaborator's record.
// It is fetched fresh per request and never mutated here.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// Product is a read-only projection of the inventory collaborator's record.
// Stock is only ever changed through the collaborator's reduce-stock call.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
}
