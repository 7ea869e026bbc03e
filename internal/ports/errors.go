package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while talking to storage,
// lock, and cache backends.
var (
	// ErrRateLimited indicates that a batch recompute was refused by the rate limiter.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that a backend is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrCacheCorrupted indicates that cached data is corrupted or invalid.
	ErrCacheCorrupted = errors.New("cache corrupted")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// StoreError represents a failed repository or template store operation.
// It records the backend and the key involved.
type StoreError struct {
	// Backend names the storage implementation, e.g. "postgres" or "sqlite".
	Backend string

	// Operation is the name of the operation that failed.
	Operation string

	// Key identifies the comparative or template involved.
	Key string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: backend=%s, operation=%s, key=%s, err=%v",
		e.Backend, e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the operation
// can be retried. Conflicts and missing records are not retryable.
func (e *StoreError) IsRetryable() bool {
	return errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// IsRetryable reports whether err wraps a StoreError that IsRetryable.
func IsRetryable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.IsRetryable()
}

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(backend, operation, key string, err error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Key:       key,
		Err:       err,
	}
}

// CacheError represents an error from cache operations.
// It includes the key and operation that failed.
type CacheError struct {
	// Key is the cache key that was involved in the failed operation.
	Key string

	// Operation is the name of the cache operation that failed.
	Operation string

	// Err is the underlying error that caused the cache operation to fail.
	Err error
}

// Error implements the error interface for CacheError.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error { return e.Err }

// NewCacheError creates a new CacheError with the given details.
func NewCacheError(key, operation string, err error) *CacheError {
	return &CacheError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
