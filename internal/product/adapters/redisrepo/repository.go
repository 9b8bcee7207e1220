// Package redisrepo stores products as Redis hashes, one hash per product
// under "product:<id>", with a set "products" as the listing index.
// The stock decrement uses HIncrBy so the check-and-decrement is atomic on
// the Redis side; a decrement that would go negative is rolled back.
package redisrepo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/product/app"
	"github.com/jcmexdev/ecommerce-orders/internal/product/domain"
)

const indexKey = "products"

type Repository struct {
	client *redis.Client
}

var _ app.Repository = (*Repository)(nil)

func New(addr string) *Repository {
	return &Repository{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewWithClient is used by tests and callers that manage the client.
func NewWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func key(id string) string {
	return "product:" + id
}

func (r *Repository) Save(ctx context.Context, p *domain.Product) error {
	fields := map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price.String(),
		"stockQuantity": p.StockQuantity,
		"category":      p.Category,
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key(p.ID), fields)
	pipe.SAdd(ctx, indexKey, p.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save product %q: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	fields, err := r.client.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get product %q: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return fromFields(fields)
}

func (r *Repository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list product ids: %w", err)
	}

	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key(id))
	pipe.SRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: delete product %q: %w", id, err)
	}
	return nil
}

// DecrementStock applies HIncrBy(-quantity) and rolls back if the result
// went negative, reporting insufficient stock. HIncrBy is atomic per key, so
// two concurrent decrements cannot both pass a stale check.
func (r *Repository) DecrementStock(ctx context.Context, id string, quantity int) error {
	exists, err := r.client.Exists(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis: check product %q: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	left, err := r.client.HIncrBy(ctx, key(id), "stockQuantity", int64(-quantity)).Result()
	if err != nil {
		return fmt.Errorf("redis: decrement stock of %q: %w", id, err)
	}
	if left < 0 {
		if _, err := r.client.HIncrBy(ctx, key(id), "stockQuantity", int64(quantity)).Result(); err != nil {
			return fmt.Errorf("redis: CRITICAL: roll back oversold decrement of %q: %w", id, err)
		}
		return fmt.Errorf("%w: product %s, requested %d", domain.ErrInsufficientStock, id, quantity)
	}
	return nil
}

func fromFields(fields map[string]string) (*domain.Product, error) {
	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return nil, fmt.Errorf("redis: parse price %q: %w", fields["price"], err)
	}
	stock, err := strconv.Atoi(fields["stockQuantity"])
	if err != nil {
		return nil, fmt.Errorf("redis: parse stockQuantity %q: %w", fields["stockQuantity"], err)
	}
	return &domain.Product{
		ID:            fields["id"],
		Name:          fields["name"],
		Description:   fields["description"],
		Price:         price,
		StockQuantity: stock,
		Category:      fields["category"],
	}, nil
}
