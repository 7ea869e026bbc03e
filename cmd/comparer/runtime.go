package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-compare/infrastructure/middleware"
	"github.com/ahrav/go-compare/infrastructure/storage"
	"github.com/ahrav/go-compare/internal/application"
	"github.com/ahrav/go-compare/internal/logger"
	"github.com/ahrav/go-compare/internal/ports"
)

// runtime is the fully wired service behind the commands that work on
// stored comparatives and templates.
type runtime struct {
	cfg       *application.Config
	log       logger.Logger
	service   *application.ComparativeService
	templates *storage.SQLiteTemplateStore
	loader    *application.TemplateLoader
	registry  *prometheus.Registry

	closers []func() error
}

// newRuntime loads the configuration and connects every backend it names.
// The caller must Close the runtime.
func newRuntime(ctx context.Context, opts *rootOptions) (rt *runtime, err error) {
	cfg, err := application.LoadConfig(ctx, opts.configFile, opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	rt = &runtime{cfg: cfg, log: logger.NewZapAdapter(zl)}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	repo, err := rt.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	if rt.templates, err = storage.OpenSQLiteTemplateStore(ctx, cfg.Templates.Database); err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, rt.templates.Close)

	locker, cache, err := rt.openCoordination(ctx)
	if err != nil {
		return nil, err
	}

	svcOpts := []application.ServiceOption{
		application.WithLogger(rt.log),
		application.WithCache(cache, cfg.Recompute.CacheTTL),
	}
	var metrics ports.MetricsCollector
	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		metrics = middleware.NewPrometheusMetrics(rt.registry)
		svcOpts = append(svcOpts, application.WithMetrics(metrics))
	}
	svcOpts = append(svcOpts, application.WithObserver(middleware.NewOTelRecomputeObserver(metrics)))

	rt.service, err = application.NewComparativeServiceFromConfig(cfg.Recompute, repo, rt.templates, locker, svcOpts...)
	if err != nil {
		return nil, err
	}

	if rt.loader, err = application.NewTemplateLoader(); err != nil {
		return nil, err
	}
	if cfg.Templates.SeedDir != "" {
		names, err := rt.loader.LoadDir(ctx, cfg.Templates.SeedDir, rt.templates)
		if err != nil {
			return nil, fmt.Errorf("failed to seed templates: %w", err)
		}
		rt.log.Debug("seeded templates", map[string]any{"dir": cfg.Templates.SeedDir, "count": len(names)})
	}

	return rt, nil
}

func (rt *runtime) openRepository(ctx context.Context) (ports.ComparativeRepository, error) {
	if rt.cfg.Storage.Backend != application.BackendPostgres {
		rt.log.Debug("using in-memory comparative repository", nil)
		return storage.NewMemoryRepository(), nil
	}

	pc := rt.cfg.Postgres
	db, err := storage.OpenPostgres(storage.PostgresOptions{
		DSN:             pc.DSN,
		MaxOpenConns:    pc.MaxOpenConns,
		MaxIdleConns:    pc.MaxIdleConns,
		ConnMaxLifetime: pc.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	repo := storage.NewPostgresRepository(db)
	rt.closers = append(rt.closers, repo.Close)

	if err := repo.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if pc.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (rt *runtime) openCoordination(ctx context.Context) (ports.Locker, ports.CacheStore, error) {
	rc := rt.cfg.Redis
	if !rc.Enabled {
		return storage.NewMemoryLocker(), storage.NewMemoryCache(), nil
	}

	client := storage.NewRedisClient(storage.RedisOptions{
		Addr:      rc.Address,
		Password:  rc.Password,
		DB:        rc.DB,
		KeyPrefix: rc.KeyPrefix,
	})
	rt.closers = append(rt.closers, client.Close)

	if err := storage.PingRedis(ctx, client); err != nil {
		return nil, nil, err
	}
	return storage.NewRedisLocker(client, rc.KeyPrefix), storage.NewRedisCache(client, rc.KeyPrefix), nil
}

// writeMetrics writes the collected metrics in the Prometheus text format.
// It is a no-op when metrics are disabled.
func (rt *runtime) writeMetrics(w io.Writer) error {
	if rt.registry == nil {
		return nil
	}
	families, err := rt.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// Close releases every backend in reverse order of acquisition.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	// Syncing a terminal-backed logger fails on some platforms; ignore it.
	_ = rt.log.Sync()
	return errors.Join(errs...)
}

// withRuntime builds a runtime for the duration of fn.
func withRuntime(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *runtime) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, rt)
}
