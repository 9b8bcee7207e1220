// Package app holds the product service use cases over a pluggable store.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-orders/internal/product/domain"
)

// Repository is the product store port. DecrementStock must be atomic:
// the check and the decrement happen under the store's own synchronization
// so concurrent orders cannot oversell.
type Repository interface {
	Save(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, quantity int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateProduct stores a new product. An empty ID gets a generated one;
// caller-supplied IDs are kept so fixtures and imports stay stable.
func (s *Service) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	slog.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	slog.InfoContext(ctx, "product updated", "product_id", id)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	slog.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// CheckAvailability reports whether quantity units are currently in stock.
func (s *Service) CheckAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.InStock(quantity), nil
}

// ReduceStock decrements stock by quantity, rejecting with
// domain.ErrInsufficientStock when the atomic decrement would go negative.
func (s *Service) ReduceStock(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if err := s.repo.DecrementStock(ctx, id, quantity); err != nil {
		return err
	}
	slog.InfoContext(ctx, "stock reduced", "product_id", id, "quantity", quantity)
	return nil
}
