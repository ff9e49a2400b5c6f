package compile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache stores compiled PDFs by key. Get reports a miss with found == false.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// engineNamer is implemented by compilers that report their LaTeX engine.
type engineNamer interface {
	Engine() string
}

// CachedCompiler memoizes another Compiler by engine and document hash.
// Cache failures are logged and never fail a compilation.
type CachedCompiler struct {
	inner  Compiler
	engine string
	cache  Cache
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewCachedCompiler wraps inner with cache. Keys include inner's engine when it reports one.
// A nil logger uses the logrus standard logger.
func NewCachedCompiler(inner Compiler, cache Cache, ttl time.Duration, logger logrus.FieldLogger) *CachedCompiler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	var engine string
	if n, ok := inner.(engineNamer); ok {
		engine = n.Engine()
	}
	return &CachedCompiler{inner: inner, engine: engine, cache: cache, ttl: ttl, logger: logger}
}

// Compile returns the cached PDF for document or compiles and stores it.
func (c *CachedCompiler) Compile(ctx context.Context, document string) ([]byte, error) {
	key := CacheKey(c.engine, document)

	if data, found, err := c.cache.Get(ctx, key); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("pdf cache lookup failed")
	} else if found {
		c.logger.WithField("key", key).Debug("pdf cache hit")
		return data, nil
	}

	pdf, err := c.inner.Compile(ctx, document)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, pdf, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("pdf cache store failed")
	}
	return pdf, nil
}

// CacheKey returns the cache key for document compiled by engine.
func CacheKey(engine, document string) string {
	h := sha256.New()
	h.Write([]byte(engine))
	h.Write([]byte{0})
	h.Write([]byte(document))
	return "pdf:" + hex.EncodeToString(h.Sum(nil))
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at url (redis://...).
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Ping tests the Redis connection
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the cached value for key.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
