package memory

import (
	"context"
	"time"

	"github.com/coderi421/kyuu-orm/orm/cache"
	gocache "github.com/patrickmn/go-cache"
)

var _ cache.Cache = &Cache{}

// Cache 本地缓存，利用 go-cache 来帮助我们管理过期时间
type Cache struct {
	c          *gocache.Cache
	expiration time.Duration
}

// NewCache creates a Cache whose entries expire after expiration by default.
// Expired entries are purged every cleanup interval.
func NewCache(expiration, cleanup time.Duration) *Cache {
	return &Cache{
		c:          gocache.New(expiration, cleanup),
		expiration: expiration,
	}
}

func (m *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := m.c.Get(key)
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return val.([]byte), nil
}

func (m *Cache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = m.expiration
	}
	// 复制一份，避免调用方修改切片
	data := make([]byte, len(val))
	copy(data, val)
	m.c.Set(key, data, expiration)
	return nil
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}
