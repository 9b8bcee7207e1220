// Package cache is a small Redis-backed string cache used to soften
// collaborator lookups on the hot read paths.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores string values under namespaced keys. A miss is not an error:
// Get reports it through the ok return.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Key(kind, id string) string
}

type redisCache struct {
	client    *redis.Client
	namespace string
}

var _ Cache = (*redisCache)(nil)

// NewRedis builds a cache over the Redis at addr. namespace prefixes every
// key so services sharing one Redis do not collide.
func NewRedis(addr, namespace string) Cache {
	return &redisCache{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		namespace: namespace,
	}
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *redisCache) Key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, kind, id)
}
