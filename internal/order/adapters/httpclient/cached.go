package httpclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/cache"
)

// customerTTL and productTTL bound staleness of cached projections. Short on
// purpose: names and prices change rarely, stock changes constantly, so
// stock-sensitive calls (availability, reduce) are never cached.
const (
	customerTTL = 5 * time.Minute
	productTTL  = 30 * time.Second
)

// CachedCustomerClient wraps a CustomerClient with a read-through cache.
// Cache failures degrade to the underlying client, never to an error.
type CachedCustomerClient struct {
	next  ports.CustomerClient
	cache cache.Cache
}

var _ ports.CustomerClient = (*CachedCustomerClient)(nil)

func NewCachedCustomerClient(next ports.CustomerClient, c cache.Cache) *CachedCustomerClient {
	return &CachedCustomerClient{next: next, cache: c}
}

func (c *CachedCustomerClient) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	key := c.cache.Key("customer", id)

	var cached domain.Customer
	if hit := lookup(ctx, c.cache, key, &cached); hit {
		return &cached, nil
	}

	customer, err := c.next.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	store(ctx, c.cache, key, customer, customerTTL)
	return customer, nil
}

// CachedProductClient caches GetProduct only. CheckAvailability and
// ReduceStock always reach the product service: they must see live stock.
type CachedProductClient struct {
	next  ports.ProductClient
	cache cache.Cache
}

var _ ports.ProductClient = (*CachedProductClient)(nil)

func NewCachedProductClient(next ports.ProductClient, c cache.Cache) *CachedProductClient {
	return &CachedProductClient{next: next, cache: c}
}

func (c *CachedProductClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := c.cache.Key("product", id)

	var cached domain.Product
	if hit := lookup(ctx, c.cache, key, &cached); hit {
		return &cached, nil
	}

	product, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	store(ctx, c.cache, key, product, productTTL)
	return product, nil
}

func (c *CachedProductClient) CheckAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	return c.next.CheckAvailability(ctx, id, quantity)
}

func (c *CachedProductClient) ReduceStock(ctx context.Context, id string, quantity int) error {
	return c.next.ReduceStock(ctx, id, quantity)
}

func lookup(ctx context.Context, c cache.Cache, key string, out any) bool {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		slog.WarnContext(ctx, "cache entry corrupt, ignoring", "key", key, "error", err)
		return false
	}
	return true
}

func store(ctx context.Context, c cache.Cache, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Set(ctx, key, string(raw), ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
