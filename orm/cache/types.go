package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound 缓存中没有这个 key，或者已经过期
var ErrKeyNotFound = errors.New("cache: key not found")

// Cache 查询结果缓存，值是序列化之后的数据
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set expiration 为 0 的时候使用实现自己的默认过期时间
	Set(ctx context.Context, key string, val []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
