package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/ports"
	"github.com/ahrav/go-compare/internal/testutils"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoadConfig_Defaults verifies that a missing default config file is not
// an error and yields DefaultConfig.
func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "comparer.yaml", `
logging:
  level: debug
  format: json
storage:
  backend: postgres
postgres:
  dsn: "postgres://localhost/compare?sslmode=disable"
  conn_max_lifetime: 2m
redis:
  enabled: true
  address: "redis:6379"
recompute:
  lock_ttl: 10s
  concurrency: 8
  rate_per_second: 2.5
  burst: 4
`)
	t.Setenv("COMPARER_RECOMPUTE_CONCURRENCY", "16")
	t.Setenv("COMPARER_REDIS_KEY_PREFIX", "test:")

	cfg, err := LoadConfig(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://localhost/compare?sslmode=disable", cfg.Postgres.DSN)
	assert.Equal(t, 2*time.Minute, cfg.Postgres.ConnMaxLifetime)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns, "unset keys keep their defaults")
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "test:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Second, cfg.Recompute.LockTTL)
	assert.Equal(t, 16, cfg.Recompute.Concurrency, "environment overrides the file")
	assert.InDelta(t, 2.5, cfg.Recompute.RatePerSecond, 1e-9)
	assert.Equal(t, 4, cfg.Recompute.Burst)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "COMPARER_LOGGING_LEVEL=warn\n")
	t.Cleanup(func() { _ = os.Unsetenv("COMPARER_LOGGING_LEVEL") })
	t.Chdir(dir)

	cfg, err := LoadConfig(context.Background(), "", envFile)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		missing bool
		errMsg  string
	}{
		{
			name:    "explicit file missing",
			missing: true,
			errMsg:  "config error",
		},
		{
			name:   "bad log level",
			yaml:   "logging:\n  level: chatty\n",
			errMsg: "level",
		},
		{
			name:   "postgres without dsn",
			yaml:   "storage:\n  backend: postgres\n",
			errMsg: "postgres.dsn",
		},
		{
			name:   "unknown backend",
			yaml:   "storage:\n  backend: mongo\n",
			errMsg: "backend",
		},
		{
			name:   "redis enabled without address",
			yaml:   "redis:\n  enabled: true\n  address: \"\"\n",
			errMsg: "address",
		},
		{
			name:   "zero concurrency",
			yaml:   "recompute:\n  concurrency: 0\n",
			errMsg: "concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "comparer.yaml")
			if !tt.missing {
				path = writeFile(t, dir, "comparer.yaml", tt.yaml)
			}

			_, err := LoadConfig(context.Background(), path, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestViperLoader_ImplementsConfigLoader(t *testing.T) {
	var loader ports.ConfigLoader = NewViperLoader("", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var cfg Config
	assert.ErrorIs(t, loader.Load(ctx, &cfg), context.Canceled)
}

func TestConfig_StructTagsUseFileKeys(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, testutils.NewTestValidator().Struct(cfg))

	cfg.Recompute.Concurrency = 0
	cfg.Logging.Format = "xml"
	err := testutils.NewTestValidator().Struct(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.recompute.concurrency")
	assert.Contains(t, err.Error(), "Config.logging.format")
}
