package redissvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheRead and ErrCacheWrite mark failures of the cache itself, as
// opposed to failures of the loader.
var (
	ErrCacheRead  = errors.New("failed to read cache")
	ErrCacheWrite = errors.New("failed to write cache")
)

// Cache stores JSON values under versioned keys. Invalidate bumps the
// version so every previously built key stops matching.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Cache) versionKey() string {
	return c.prefix + ":version"
}

// BuildKey returns the key for base under the current version.
func (c *Cache) BuildKey(ctx context.Context, base string) (string, error) {
	v, err := c.rdb.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: version: %v", ErrCacheRead, err)
	}
	return fmt.Sprintf("%s:v%d:%s", c.prefix, v, base), nil
}

// FetchJSON decodes the cached value at key into dst. On a miss it calls
// load, stores its result and decodes that instead. When only the store step
// fails dst is still filled and the error wraps ErrCacheWrite.
func (c *Cache) FetchJSON(ctx context.Context, key string, dst any, load func(ctx context.Context) (any, error)) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(data, dst)
	}
	if !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrCacheRead, err)
	}

	value, err := load(ctx)
	if err != nil {
		return err
	}
	data, err = json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.versionKey()).Err()
}
