package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

// MemoryLocker implements ports.Locker for a single process. Expired locks
// are reclaimed lazily on the next Acquire.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryLock
	clock func() time.Time
}

type memoryLock struct {
	token   string
	expires time.Time
}

var _ ports.Locker = (*MemoryLocker)(nil)

// NewMemoryLocker creates an empty locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryLock), clock: time.Now}
}

// Acquire implements ports.Locker.
func (l *MemoryLocker) Acquire(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, key)
	}

	token := uuid.NewString()
	l.held[key] = memoryLock{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

// MemoryCache implements ports.CacheStore in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

var _ ports.CacheStore = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), clock: time.Now}
}

// Get implements ports.CacheStore.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || (!e.expires.IsZero() && !c.clock().Before(e.expires)) {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set implements ports.CacheStore.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if expiration > 0 {
		e.expires = c.clock().Add(expiration)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements ports.CacheStore.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
