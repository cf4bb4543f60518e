package rdx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the process-wide Redis handle. Used for the session-token hash
// (so sign-out invalidates live sessions) and the public listing cache.
type Cache struct {
	Conn *redis.Client
}

func New(addr string) *Cache {
	return &Cache{Conn: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.Conn.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.Conn.Get(ctx, key).Result()
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	return c.Conn.Del(ctx, keys...).Err()
}

func (c *Cache) HSet(ctx context.Context, hash, field, value string) error {
	return c.Conn.HSet(ctx, hash, field, value).Err()
}

func (c *Cache) HGet(ctx context.Context, hash, field string) (string, error) {
	return c.Conn.HGet(ctx, hash, field).Result()
}

func (c *Cache) HDel(ctx context.Context, hash, field string) error {
	return c.Conn.HDel(ctx, hash, field).Err()
}

// IsMiss reports whether err is a plain cache miss rather than a Redis
// failure.
func IsMiss(err error) bool {
	return err == redis.Nil
}
