// Package application provides the orchestration layer of the comparison
// service: configuration, template loading, and the comparative service.
package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ahrav/go-compare/internal/ports"
)

// EnvPrefix prefixes every environment variable override, e.g.
// COMPARER_POSTGRES_DSN overrides postgres.dsn.
const EnvPrefix = "COMPARER"

// Storage backends selectable through storage.backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the complete runtime configuration of the comparison service
// and its command-line front end.
// Use LoadConfig to read it from a YAML file merged with environment
// overrides; the zero value is not usable.
type Config struct {
	// Logging controls the zap logger built at start-up.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	// Storage selects where comparatives are persisted.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	// Postgres configures the PostgreSQL repository. It is required when
	// Storage.Backend is "postgres".
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	// Redis configures distributed locks and the score cache. When disabled
	// the service falls back to in-process locks and caching.
	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
	// Templates configures the criteria template store.
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	// Metrics toggles the Prometheus collectors.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	// Recompute bounds locking, caching, and batch recompute throughput.
	Recompute RecomputeConfig `mapstructure:"recompute" yaml:"recompute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
}

// StorageConfig selects the comparative repository.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=memory postgres"`
}

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns" validate:"min=0,max=500"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns" validate:"min=0,max=500"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime" validate:"min=0"`
	// Migrate creates the comparatives table on start-up.
	Migrate bool `mapstructure:"migrate" yaml:"migrate"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Address   string `mapstructure:"address" yaml:"address" validate:"required_if=Enabled true"`
	Password  string `mapstructure:"password" yaml:"password"`
	DB        int    `mapstructure:"db" yaml:"db" validate:"min=0,max=15"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix" validate:"max=64"`
}

// TemplatesConfig configures template persistence.
type TemplatesConfig struct {
	// Database is the SQLite file holding saved templates, or ":memory:".
	Database string `mapstructure:"database" yaml:"database" validate:"required"`
	// SeedDir, when set, is scanned for *.yaml template files that are
	// loaded into the store on start-up.
	SeedDir string `mapstructure:"seed_dir" yaml:"seed_dir"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// RecomputeConfig bounds recompute operations.
type RecomputeConfig struct {
	// LockTTL is how long a per-comparative lock may be held before it
	// expires on its own.
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl" validate:"min=1ms"`
	// CacheTTL is how long computed score results stay cached. Zero
	// disables caching.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"min=0"`
	// Concurrency caps the number of parallel recomputes in a batch.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" validate:"min=1,max=256"`
	// RatePerSecond paces batch recomputes. Zero means unlimited.
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second" validate:"min=0"`
	// Burst is the token bucket size used with RatePerSecond.
	Burst int `mapstructure:"burst" yaml:"burst" validate:"min=1"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present: in-memory storage, in-process locks, and an
// in-memory template store.
func DefaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Storage:   StorageConfig{Backend: BackendMemory},
		Postgres:  PostgresConfig{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: 5 * time.Minute},
		Redis:     RedisConfig{Address: "localhost:6379", KeyPrefix: "comparer:"},
		Templates: TemplatesConfig{Database: ":memory:"},
		Recompute: RecomputeConfig{
			LockTTL:       30 * time.Second,
			CacheTTL:      5 * time.Minute,
			Concurrency:   4,
			RatePerSecond: 0,
			Burst:         1,
		},
	}
}

// Validate checks struct tags and the cross-field rules that tags cannot
// express.
func (c *Config) Validate() error {
	if err := newConfigValidator().Struct(c); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if c.Storage.Backend == BackendPostgres && strings.TrimSpace(c.Postgres.DSN) == "" {
		return ports.NewConfigError("postgres.dsn", ports.ErrConfigNotFound)
	}
	return nil
}

// newConfigValidator reports mapstructure keys in validation errors so
// messages name the same keys operators write in files.
func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ViperLoader implements ports.ConfigLoader on top of viper. It merges, in
// increasing precedence, the defaults, an optional YAML file, an optional
// .env file, and COMPARER_* environment variables.
type ViperLoader struct {
	v        *viper.Viper
	envFile  string
	explicit bool
}

var _ ports.ConfigLoader = (*ViperLoader)(nil)

// NewViperLoader creates a loader. configFile and envFile may be empty.
func NewViperLoader(configFile, envFile string) *ViperLoader {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("comparer")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	return &ViperLoader{v: v, envFile: envFile, explicit: configFile != ""}
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("postgres.dsn", d.Postgres.DSN)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime", d.Postgres.ConnMaxLifetime)
	v.SetDefault("postgres.migrate", d.Postgres.Migrate)
	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.address", d.Redis.Address)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)
	v.SetDefault("templates.database", d.Templates.Database)
	v.SetDefault("templates.seed_dir", d.Templates.SeedDir)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("recompute.lock_ttl", d.Recompute.LockTTL)
	v.SetDefault("recompute.cache_ttl", d.Recompute.CacheTTL)
	v.SetDefault("recompute.concurrency", d.Recompute.Concurrency)
	v.SetDefault("recompute.rate_per_second", d.Recompute.RatePerSecond)
	v.SetDefault("recompute.burst", d.Recompute.Burst)
}

// Load implements ports.ConfigLoader. config must be a *Config; other
// targets are decoded without the Config-specific validation.
func (l *ViperLoader) Load(ctx context.Context, config any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if l.envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return ports.NewConfigError(l.envFile, err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Only a file named by the caller must exist.
		var notFound viper.ConfigFileNotFoundError
		if l.explicit || !errors.As(err, &notFound) {
			return ports.NewConfigError(l.v.ConfigFileUsed(), fmt.Errorf("read config: %w", err))
		}
	}

	if err := l.v.Unmarshal(config); err != nil {
		return ports.NewConfigError("", fmt.Errorf("failed to unmarshal config: %w", err))
	}

	if cfg, ok := config.(*Config); ok {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}

// LoadConfig is a convenience wrapper around ViperLoader.
func LoadConfig(ctx context.Context, configFile, envFile string) (*Config, error) {
	var cfg Config
	if err := NewViperLoader(configFile, envFile).Load(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
