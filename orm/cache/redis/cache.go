package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coderi421/kyuu-orm/orm/cache"
	redis "github.com/redis/go-redis/v9"
)

var _ cache.Cache = &Cache{}

// Option is a function type for configuring a Cache.
type Option func(c *Cache)

type Cache struct {
	prefix     string // redis 中 key 的前缀
	client     redis.Cmdable
	expiration time.Duration // 默认过期时间
}

// NewCache creates a Cache backed by client.
func NewCache(client redis.Cmdable, opts ...Option) *Cache {
	res := &Cache{
		client:     client,
		prefix:     "orm",
		expiration: time.Minute * 15,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

func WithExpiration(expiration time.Duration) Option {
	return func(c *Cache) {
		c.expiration = expiration
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s_%s", c.prefix, key)
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrKeyNotFound
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = c.expiration
	}
	return c.client.Set(ctx, c.key(key), val, expiration).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := c.client.Del(ctx, c.key(key)).Result()
	return err
}
