package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

// RedisOptions configures the shared Redis client used for locks and the
// score cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces every key written by this process.
	KeyPrefix string
}

// NewRedisClient creates a pooled Redis client.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

// PingRedis tests the Redis connection.
func PingRedis(ctx context.Context, client redis.UniversalClient) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements ports.Locker with SET NX PX and a token-checked
// release.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	token  func() string
}

var _ ports.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker writing keys under prefix + "lock:".
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix + "lock:",
		token:  uuid.NewString,
	}
}

// Acquire implements ports.Locker.
func (l *RedisLocker) Acquire(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, error) {
	lockKey := l.prefix + key
	token := l.token()

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, ports.NewStoreError("redis", "lock", key, classify(err))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, key)
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil &&
			!errors.Is(err, redis.Nil) {
			return ports.NewStoreError("redis", "unlock", key, classify(err))
		}
		return nil
	}
	return release, nil
}

// RedisCache implements ports.CacheStore on Redis strings.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.CacheStore = (*RedisCache)(nil)

// NewRedisCache creates a cache writing keys under prefix + "cache:".
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix + "cache:"}
}

// Get implements ports.CacheStore.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ports.NewCacheError(key, "get", classify(err))
	}
	return b, true, nil
}

// Set implements ports.CacheStore.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, expiration).Err(); err != nil {
		return ports.NewCacheError(key, "set", classify(err))
	}
	return nil
}

// Delete implements ports.CacheStore.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return ports.NewCacheError(key, "delete", classify(err))
	}
	return nil
}
