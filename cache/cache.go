// Package cache provides a generic time-bounded keyed store backed by
// redis. A nil client degrades every operation to a no-op so callers stay
// testable without a live redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines a general caching interface
type ICache[T any] interface {
	Get(context.Context, string) (*T, error)
	Set(context.Context, string, *T, ...time.Duration) error
	Delete(context.Context, string) error
}

// Cache implements the ICache interface
type Cache[T any] struct {
	rc     *redis.Client
	prefix string
}

// NewCache creates a new Cache instance. All fields are stored under
// "<prefix>:<field>".
func NewCache[T any](rc *redis.Client, prefix string) *Cache[T] {
	return &Cache[T]{rc: rc, prefix: prefix}
}

func (c *Cache[T]) key(field string) string {
	return fmt.Sprintf("%s:%s", c.prefix, field)
}

// Get retrieves a single item from cache. A cache miss returns (nil, nil).
func (c *Cache[T]) Get(ctx context.Context, field string) (*T, error) {
	if c.rc == nil {
		return nil, nil
	}

	result, err := c.rc.Get(ctx, c.key(field)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var row T
	if err = json.Unmarshal([]byte(result), &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &row, nil
}

// Set saves a single item into cache with an optional expiry.
func (c *Cache[T]) Set(ctx context.Context, field string, data *T, expire ...time.Duration) error {
	if c.rc == nil {
		return nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	exp := time.Duration(0)
	if len(expire) > 0 {
		exp = expire[0]
	}

	if err := c.rc.Set(ctx, c.key(field), bytes, exp).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes data from cache
func (c *Cache[T]) Delete(ctx context.Context, field string) error {
	if c.rc == nil {
		return nil
	}

	if err := c.rc.Del(ctx, c.key(field)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}
