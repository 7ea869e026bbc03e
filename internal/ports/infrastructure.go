package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-compare/internal/domain"
)

// ComparativeRepository persists comparatives. Implementations own the
// Version field: Create stores version 1 and every successful Save
// increments it.
type ComparativeRepository interface {
	// Get returns the comparative with the given ID.
	// It returns an error wrapping domain.ErrNotFound when none exists.
	Get(ctx context.Context, id string) (domain.Comparative, error)

	// Create stores a new comparative and returns it with its version set.
	Create(ctx context.Context, c domain.Comparative) (domain.Comparative, error)

	// Save replaces the stored comparative if its stored version still
	// equals c.Version. On success the returned comparative carries the new
	// version. A stale version yields an error wrapping
	// domain.ErrVersionConflict; the stored data is left unchanged.
	Save(ctx context.Context, c domain.Comparative) (domain.Comparative, error)

	// List returns the IDs of all stored comparatives in ascending order.
	List(ctx context.Context) ([]string, error)
}

// TemplateStore persists named criteria templates. Template names are
// matched case-insensitively.
type TemplateStore interface {
	// Get returns the named template, or an error wrapping
	// domain.ErrTemplateNotFound.
	Get(ctx context.Context, name string) (domain.Template, error)

	// Save creates or replaces a template.
	Save(ctx context.Context, t domain.Template) error

	// List returns all template names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a template. Deleting a missing template is not an error.
	Delete(ctx context.Context, name string) error
}

// Locker serializes recomputes of the same comparative across processes.
type Locker interface {
	// Acquire takes the lock for key for at most ttl. It returns an error
	// wrapping domain.ErrLockNotAcquired when another holder has it. The
	// returned release function frees the lock only if it is still held by
	// this caller.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// CacheStore defines the interface for caching recompute results.
// Implementations could use Redis or in-memory storage.
// Caching is optional; a miss simply triggers a recompute.
type CacheStore interface {
	// Get retrieves a cached value by key.
	// Returns the value and true if found, or nil and false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with an expiration time.
	// A zero duration means the item doesn't expire.
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like recomputes, conflicts, and
	// warnings.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like in-flight recomputes.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like item counts or
	// winning scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ConfigLoader defines the interface for loading configuration.
// Implementations could read from files, environment variables,
// remote configuration services, or a combination of sources.
type ConfigLoader interface {
	// Load reads configuration from the underlying source.
	// It should populate the provided configuration struct.
	// The config parameter should be a pointer to a struct.
	//
	// Example:
	//
	//	var config AppConfig
	//	err := loader.Load(ctx, &config)
	Load(ctx context.Context, config any) error
}
