// Package app holds the user service use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-orders/internal/user/domain"
)

// Repository is the customer store port.
type Repository interface {
	Save(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindAll(ctx context.Context) ([]*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCustomer rejects duplicate email addresses.
func (s *Service) CreateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	if c.Email == "" {
		return nil, domain.ErrEmailRequired
	}
	if existing, _ := s.repo.FindByEmail(ctx, c.Email); existing != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, c.Email)
	}

	c.ID = uuid.NewString()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	slog.InfoContext(ctx, "customer created", "customer_id", c.ID)
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.FindAll(ctx)
}

// UpdateCustomer keeps email uniqueness: changing to an address owned by
// another customer is rejected.
func (s *Service) UpdateCustomer(ctx context.Context, id string, c *domain.Customer) (*domain.Customer, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Email != current.Email {
		if existing, _ := s.repo.FindByEmail(ctx, c.Email); existing != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, c.Email)
		}
	}

	c.ID = id
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer %s: %w", id, err)
	}
	slog.InfoContext(ctx, "customer updated", "customer_id", id)
	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	slog.InfoContext(ctx, "customer deleted", "customer_id", id)
	return nil
}
