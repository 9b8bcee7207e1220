package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleOrder(id, customerID string) *domain.Order {
	return &domain.Order{
		ID:         id,
		CustomerID: customerID,
		ProductID:  "p1",
		Quantity:   2,
		TotalPrice: decimal.RequireFromString("20.00"),
		Status:     domain.StatusPending,
		OrderDate:  time.Date(2024, 1, 31, 10, 30, 0, 0, time.UTC),
	}
}

func TestSaveAndFindByID(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleOrder("o1", "c1")))

	got, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CustomerID)
	assert.Equal(t, "p1", got.ProductID)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, time.Date(2024, 1, 31, 10, 30, 0, 0, time.UTC), got.OrderDate)
}

func TestSaveUpdatesStatusOnly(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	o := sampleOrder("o1", "c1")
	require.NoError(t, repo.Save(ctx, o))

	o.Status = domain.StatusConfirmed
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("20.00")), "price is immutable across status updates")
}

func TestFindByIDNotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
}

func TestFindByCustomer(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleOrder("o1", "c1")))
	require.NoError(t, repo.Save(ctx, sampleOrder("o2", "c2")))
	require.NoError(t, repo.Save(ctx, sampleOrder("o3", "c1")))

	got, err := repo.FindByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, o := range got {
		assert.Equal(t, "c1", o.CustomerID)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindAllEmpty(t *testing.T) {
	repo := openTestRepo(t)
	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
