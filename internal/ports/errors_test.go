package ports

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-compare/internal/domain"
)

// TestStoreError tests message formatting, unwrapping, and retry
// classification of StoreError.
func TestStoreError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := NewStoreError("postgres", "Save", "cmp-1", domain.ErrVersionConflict)

		assert.Equal(t, "store error: backend=postgres, operation=Save, key=cmp-1, err=version conflict", err.Error())
		assert.True(t, errors.Is(err, domain.ErrVersionConflict))

		wrapped := fmt.Errorf("recompute: %w", err)
		var se *StoreError
		assert.True(t, errors.As(wrapped, &se))
		assert.Equal(t, "cmp-1", se.Key)
	})

	t.Run("retryable errors", func(t *testing.T) {
		for _, baseErr := range []error{ErrServiceUnavailable, ErrTimeout} {
			err := NewStoreError("sqlite", "Get", "k", baseErr)
			assert.True(t, err.IsRetryable(), "%v should be retryable", baseErr)
		}

		for _, baseErr := range []error{domain.ErrNotFound, domain.ErrVersionConflict, ErrCacheCorrupted} {
			err := NewStoreError("sqlite", "Get", "k", baseErr)
			assert.False(t, err.IsRetryable(), "%v should not be retryable", baseErr)
		}
	})

	t.Run("IsRetryable looks through wrapping", func(t *testing.T) {
		transport := fmt.Errorf("%w: connection refused", ErrServiceUnavailable)
		wrapped := fmt.Errorf("Recompute cmp-1: %w", NewStoreError("postgres", "get", "cmp-1", transport))
		assert.True(t, IsRetryable(wrapped))

		assert.False(t, IsRetryable(ErrTimeout), "bare sentinels are not store errors")
		assert.False(t, IsRetryable(NewStoreError("postgres", "save", "cmp-1", domain.ErrVersionConflict)))
		assert.False(t, IsRetryable(nil))
	})
}

// TestCacheError verifies that the error message is formatted correctly and
// contains the expected context.
func TestCacheError(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		operation string
		err       error
		wantMsg   string
	}{
		{
			name:      "cache miss",
			key:       "scores:cmp-1:3",
			operation: "Get",
			err:       errors.New("key not found"),
			wantMsg:   "cache error: operation=Get, key=scores:cmp-1:3, err=key not found",
		},
		{
			name:      "cache corruption",
			key:       "scores:cmp-2:1",
			operation: "Get",
			err:       ErrCacheCorrupted,
			wantMsg:   "cache error: operation=Get, key=scores:cmp-2:1, err=cache corrupted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCacheError(tt.key, tt.operation, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.key, err.Key)
			assert.Equal(t, tt.operation, err.Operation)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

// TestConfigError tests the functionality of the ConfigError error type.
func TestConfigError(t *testing.T) {
	err := NewConfigError("postgres.dsn", ErrConfigNotFound)

	assert.Equal(t, "config error: key=postgres.dsn, err=configuration not found", err.Error())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}
