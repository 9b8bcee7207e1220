// Package memrepo is an in-memory product store for tests and for running
// the service without Redis.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jcmexdev/ecommerce-orders/internal/product/app"
	"github.com/jcmexdev/ecommerce-orders/internal/product/domain"
)

type Repository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

var _ app.Repository = (*Repository)(nil)

func New() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

func (r *Repository) Save(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(r.products, id)
	return nil
}

// DecrementStock checks and decrements under one lock.
func (r *Repository) DecrementStock(ctx context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if p.StockQuantity < quantity {
		return fmt.Errorf("%w: product %s, requested %d", domain.ErrInsufficientStock, id, quantity)
	}
	p.StockQuantity -= quantity
	r.products[id] = p
	return nil
}
