// Package ports declares the interfaces the order workflow depends on.
// The workflow orchestrates these abstractions; the concrete adapters
// (HTTP clients, SQLite repository) live under adapters/.
package ports

import (
	"context"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
)

// CustomerClient resolves customer records from the identity collaborator.
type CustomerClient interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

// ProductClient talks to the inventory collaborator.
type ProductClient interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CheckAvailability(ctx context.Context, id string, quantity int) (bool, error)
	ReduceStock(ctx context.Context, id string, quantity int) error
}

// Repository is the order store. Save is an upsert keyed by order ID.
type Repository interface {
	Save(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
}
