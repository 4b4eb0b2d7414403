package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

var (
	// ErrCacheMiss is returned by Get when the key does not exist.
	ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")
	// ErrSerializationFailed is returned when a value cannot be encoded or decoded.
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "cache serialization failed")
)

// nullSentinel marks a cached negative lookup so repeated misses do not hit
// the database.
const nullSentinel = "__null__"

// Cache is the cache-aside port used by the application layer.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	GetOrSet(ctx context.Context, key string, dest any, ttl time.Duration, loader func(ctx context.Context) (any, error)) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Serializer converts cached values to and from bytes.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonSerializer) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CacheOption configures a redisCache.
type CacheOption func(*redisCache)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// WithDefaultTTL sets the TTL used when a call passes ttl <= 0.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithNullCacheTTL sets how long negative lookups are cached.
func WithNullCacheTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.nullTTL = ttl }
}

// WithSerializer replaces the JSON serializer.
func WithSerializer(s Serializer) CacheOption {
	return func(c *redisCache) { c.serializer = s }
}

type redisCache struct {
	rdb        *redis.Client
	logger     logging.Logger
	serializer Serializer
	prefix     string
	defaultTTL time.Duration
	nullTTL    time.Duration
	group      singleflight.Group
}

// NewCache builds a Cache on top of a connected Client.
func NewCache(client *Client, opts ...CacheOption) Cache {
	c := &redisCache{
		rdb:        client.Redis(),
		logger:     client.logger,
		serializer: jsonSerializer{},
		defaultTTL: 15 * time.Minute,
		nullTTL:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) key(k string) string {
	return c.prefix + k
}

// jitterTTL spreads expirations by up to ±10% so hot keys do not expire in
// lockstep.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Int63n(int64(ttl)/5+1)) - ttl/10
	return ttl + jitter
}

func (c *redisCache) ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return jitterTTL(ttl)
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache get failed")
	}
	if string(data) == nullSentinel {
		return ErrCacheMiss
	}
	if err := c.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := c.rdb.Set(ctx, c.key(key), data, c.ttlOrDefault(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set failed")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

// DeleteByPrefix scans for keys under prefix and removes them in batches.
// Used to invalidate a client's portfolio keys after a ledger write.
func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := c.key(prefix) + "*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return errors.Wrap(err, errors.ErrCodeCacheError, "cache prefix delete failed")
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache scan failed")
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "cache prefix delete failed")
		}
	}
	return nil
}

// GetOrSet reads key from the cache and falls back to loader on a miss.
// Concurrent misses for the same key are collapsed with singleflight so the
// loader runs once. A loader returning (nil, nil) caches a null sentinel.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest any, ttl time.Duration, loader func(ctx context.Context) (any, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.IsCode(err, errors.ErrCodeNotFound) {
		c.logger.Warn("cache read failed, falling through to loader",
			logging.String("key", key), logging.Err(err))
	}

	value, err, _ := c.group.Do(c.key(key), func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			if err := c.rdb.Set(ctx, c.key(key), nullSentinel, jitterTTL(c.nullTTL)).Err(); err != nil {
				c.logger.Warn("null sentinel write failed", logging.String("key", key), logging.Err(err))
			}
			return nil, nil
		}
		if err := c.Set(ctx, key, loaded, ttl); err != nil {
			c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
		}
		return loaded, nil
	})
	if err != nil {
		return err
	}
	if value == nil {
		return ErrCacheMiss
	}

	// Round-trip through the serializer so dest is filled regardless of the
	// loader's concrete type.
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := c.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed
	}
	return nil
}

// Incr increments a counter key, creating it at 1. Used by the fixed-window
// rate limiter.
func (c *redisCache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, c.key(key)).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "cache incr failed")
	}
	return n, nil
}

func (c *redisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.rdb.Expire(ctx, c.key(key), ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache expire failed")
	}
	return nil
}

// NopCache satisfies Cache without storing anything. Every Get misses and the
// loader always runs. Useful in tests and when Redis is disabled.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string, dest any) error { return ErrCacheMiss }
func (NopCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
func (NopCache) Delete(ctx context.Context, keys ...string) error          { return nil }
func (NopCache) DeleteByPrefix(ctx context.Context, prefix string) error   { return nil }
func (NopCache) Incr(ctx context.Context, key string) (int64, error)       { return 0, nil }
func (NopCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }
func (NopCache) GetOrSet(ctx context.Context, key string, dest any, ttl time.Duration, loader func(ctx context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	if value == nil {
		return ErrCacheMiss
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed
	}
	return nil
}

// CacheKey joins parts with ':' for consistent key construction.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
