package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	"github.com/jon4hz/bankdesk/internal/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by PrefixedCache.Get if the key holds no value.
var ErrMiss = errors.New("cache miss")

// PrefixedCache wraps a cache.Cache, adds a prefix to all keys and stores
// values as JSON.
type PrefixedCache[T any] struct {
	cache     *cache.Cache[any]
	cacheType config.CacheType
	prefix    string
}

// NewPrefixedCache creates a new prefixed cache wrapper.
func NewPrefixedCache[T any](cache *cache.Cache[any], cacheType config.CacheType, prefix string) *PrefixedCache[T] {
	return &PrefixedCache[T]{
		cache:     cache,
		cacheType: cacheType,
		prefix:    prefix,
	}
}

func (p *PrefixedCache[T]) key(key any) string {
	return p.prefix + fmt.Sprintf("%v", key)
}

// Get retrieves a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Get(ctx context.Context, key any) (T, error) {
	raw, err := p.cache.Get(ctx, p.key(key))
	if err != nil {
		if isNotFound(err) {
			return *new(T), ErrMiss
		}
		return *new(T), err
	}

	// redis hands back strings, the memory store the bytes we put in
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return *new(T), fmt.Errorf("unexpected %T in %s cache", raw, p.cacheType)
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return *new(T), err
	}
	return result, nil
}

// Set stores a value in the cache with the prefixed key.
func (p *PrefixedCache[T]) Set(ctx context.Context, key any, object T, ttl time.Duration) error {
	data, err := json.Marshal(object)
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, p.key(key), data, store.WithExpiration(ttl))
}

// Delete removes a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Delete(ctx context.Context, key any) error {
	return p.cache.Delete(ctx, p.key(key))
}

func isNotFound(err error) bool {
	var nf *store.NotFound
	if errors.As(err, &nf) {
		return true
	}
	return strings.Contains(err.Error(), "value not found")
}

func newCacheInstanceByType(cfg *config.CacheConfig, cleanupInterval time.Duration) *cache.Cache[any] {
	switch cfg.Type {
	case config.CacheTypeRedis:
		return newRedisCache[any](cfg)
	default:
		return newMemoryCache[any](cleanupInterval)
	}
}

func newMemoryCache[T any](cleanupInterval time.Duration) *cache.Cache[T] {
	// entries carry their own expiration, the janitor drops them
	gocacheClient := gocache.New(gocache.NoExpiration, cleanupInterval)
	gocacheStore := go_store.NewGoCache(gocacheClient)
	return cache.New[T](gocacheStore)
}

func newRedisCache[T any](cfg *config.CacheConfig) *cache.Cache[T] {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	redisStore := redis_store.NewRedis(redisClient)
	return cache.New[T](redisStore)
}
