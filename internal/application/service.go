package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/logger"
	"github.com/ahrav/go-compare/internal/ports"
	"github.com/ahrav/go-compare/internal/scoring"
)

// Operation names reported to observers and logs.
const (
	OpCreate              = "Create"
	OpRecompute           = "Recompute"
	OpUpdateCriteria      = "UpdateCriteria"
	OpRedistributeWeights = "RedistributeWeights"
	OpSetItemValue        = "SetItemValue"
	OpSetWinner           = "SetWinner"
	OpSetScoringMethod    = "SetScoringMethod"
	OpSetHighlightWinner  = "SetHighlightWinner"
	OpApplyTemplate       = "ApplyTemplate"
)

// ComparativeService orchestrates the scoring engine at the persistence
// boundary. Every mutation runs under a per-comparative lock: load, edit,
// validate, recompute, and persist with an optimistic version check.
// It is safe for concurrent use.
type ComparativeService struct {
	repo      ports.ComparativeRepository
	templates ports.TemplateStore
	locker    ports.Locker

	cache    ports.CacheStore
	observer ports.RecomputeObserver
	metrics  ports.MetricsCollector
	log      logger.Logger
	engine   *scoring.Engine

	lockTTL     time.Duration
	cacheTTL    time.Duration
	concurrency int
	limiter     *rate.Limiter
}

// ServiceOption configures a ComparativeService.
type ServiceOption func(*ComparativeService)

// WithCache enables the score read cache.
func WithCache(cache ports.CacheStore, ttl time.Duration) ServiceOption {
	return func(s *ComparativeService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithObserver brackets every recompute with observer callbacks.
func WithObserver(o ports.RecomputeObserver) ServiceOption {
	return func(s *ComparativeService) { s.observer = o }
}

// WithMetrics sets the collector used for cache statistics.
func WithMetrics(m ports.MetricsCollector) ServiceOption {
	return func(s *ComparativeService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) ServiceOption {
	return func(s *ComparativeService) { s.log = l }
}

// WithEngine replaces the default scoring engine.
func WithEngine(e *scoring.Engine) ServiceOption {
	return func(s *ComparativeService) { s.engine = e }
}

// WithLockTTL sets how long a recompute may hold its lock.
func WithLockTTL(ttl time.Duration) ServiceOption {
	return func(s *ComparativeService) { s.lockTTL = ttl }
}

// WithBatchLimits bounds RecomputeMany. ratePerSecond <= 0 disables pacing.
func WithBatchLimits(concurrency int, ratePerSecond float64, burst int) ServiceOption {
	return func(s *ComparativeService) {
		s.concurrency = concurrency
		if ratePerSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
		} else {
			s.limiter = nil
		}
	}
}

// NewComparativeService wires a service. repo, templates, and locker are
// required.
func NewComparativeService(
	repo ports.ComparativeRepository,
	templates ports.TemplateStore,
	locker ports.Locker,
	opts ...ServiceOption,
) (*ComparativeService, error) {
	if repo == nil || templates == nil || locker == nil {
		return nil, errors.New("repository, template store, and locker are required")
	}

	s := &ComparativeService{
		repo:        repo,
		templates:   templates,
		locker:      locker,
		log:         logger.NewNoOpLogger(),
		engine:      scoring.NewEngine(),
		lockTTL:     30 * time.Second,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s, nil
}

// NewComparativeServiceFromConfig wires a service with the limits in cfg.
func NewComparativeServiceFromConfig(
	cfg RecomputeConfig,
	repo ports.ComparativeRepository,
	templates ports.TemplateStore,
	locker ports.Locker,
	opts ...ServiceOption,
) (*ComparativeService, error) {
	base := []ServiceOption{
		WithLockTTL(cfg.LockTTL),
		WithBatchLimits(cfg.Concurrency, cfg.RatePerSecond, cfg.Burst),
	}
	return NewComparativeService(repo, templates, locker, append(base, opts...)...)
}

// Get returns the stored comparative.
func (s *ComparativeService) Get(ctx context.Context, id string) (domain.Comparative, error) {
	return s.repo.Get(ctx, id)
}

// List returns the IDs of all stored comparatives.
func (s *ComparativeService) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// Create validates c, scores it, and stores it as version 1.
func (s *ComparativeService) Create(ctx context.Context, c domain.Comparative) (domain.Comparative, domain.ScoreResult, error) {
	start := time.Now()
	ctx = s.pre(ctx, OpCreate, c.ID)

	var (
		subject = c
		res     domain.ScoreResult
		err     error
	)
	defer func() { s.post(ctx, OpCreate, c.ID, subject, res, time.Since(start), err) }()

	if err = scoring.ValidateComparative(c); err != nil {
		return domain.Comparative{}, domain.ScoreResult{}, err
	}
	scored, result := s.engine.Apply(c)
	out, err := s.repo.Create(ctx, scored)
	if err != nil {
		err = fmt.Errorf("create %s: %w", c.ID, err)
		return domain.Comparative{}, domain.ScoreResult{}, err
	}
	subject, res = out, result
	s.cacheResult(ctx, out, res)
	return out, res, nil
}

// Recompute rescores the stored comparative and persists the new ranks,
// scores, and winner.
func (s *ComparativeService) Recompute(ctx context.Context, id string) (domain.Comparative, domain.ScoreResult, error) {
	return s.Mutate(ctx, OpRecompute, id, func(*domain.Comparative) error { return nil })
}

// Mutate applies edit to the stored comparative under its lock, validates
// the result, recomputes, and persists it. operation names the change in
// logs and traces. A failing edit or validation leaves storage untouched.
func (s *ComparativeService) Mutate(
	ctx context.Context,
	operation, id string,
	edit func(*domain.Comparative) error,
) (domain.Comparative, domain.ScoreResult, error) {
	start := time.Now()
	ctx = s.pre(ctx, operation, id)

	var (
		subject domain.Comparative
		res     domain.ScoreResult
		err     error
	)
	defer func() { s.post(ctx, operation, id, subject, res, time.Since(start), err) }()

	subject, res, err = s.mutateLocked(ctx, id, edit)
	if err != nil {
		res = domain.ScoreResult{}
		err = fmt.Errorf("%s %s: %w", operation, id, err)
		return domain.Comparative{}, domain.ScoreResult{}, err
	}
	return subject, res, nil
}

// mutateLocked runs one locked edit. On failure the returned comparative is
// the unsaved draft (or the loaded version when the edit never ran) so
// observers can still label the attempt; it is never handed to callers.
func (s *ComparativeService) mutateLocked(
	ctx context.Context,
	id string,
	edit func(*domain.Comparative) error,
) (domain.Comparative, domain.ScoreResult, error) {
	release, err := s.locker.Acquire(ctx, id, s.lockTTL)
	if err != nil {
		return domain.Comparative{ID: id}, domain.ScoreResult{}, err
	}
	defer func() {
		// Release on a fresh context so a canceled caller still frees the lock.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := release(relCtx); err != nil {
			s.log.Warn("failed to release lock", map[string]any{"comparative_id": id, "error": err.Error()})
		}
	}()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Comparative{ID: id}, domain.ScoreResult{}, err
	}

	draft := current.Clone()
	if err := edit(&draft); err != nil {
		return current, domain.ScoreResult{}, err
	}
	draft.ID, draft.Version = current.ID, current.Version

	if err := scoring.ValidateComparative(draft); err != nil {
		return draft, domain.ScoreResult{}, err
	}

	scored, res := s.engine.Apply(draft)
	saved, err := s.repo.Save(ctx, scored)
	if err != nil {
		return scored, domain.ScoreResult{}, err
	}
	s.cacheResult(ctx, saved, res)
	return saved, res, nil
}

// UpdateCriteria replaces the criteria configuration. Values keyed by
// criteria that no longer exist are dropped from every item.
func (s *ComparativeService) UpdateCriteria(
	ctx context.Context,
	id string,
	criteria []domain.Criterion,
) (domain.Comparative, domain.ScoreResult, error) {
	if err := scoring.ValidateCriteria(criteria); err != nil {
		return domain.Comparative{}, domain.ScoreResult{}, err
	}
	return s.Mutate(ctx, OpUpdateCriteria, id, func(c *domain.Comparative) error {
		keep := make(map[string]struct{}, len(criteria))
		for _, cr := range criteria {
			keep[cr.ID] = struct{}{}
		}
		for i := range c.Items {
			for key := range c.Items[i].Values {
				if _, ok := keep[key]; !ok {
					delete(c.Items[i].Values, key)
				}
			}
		}
		c.Criteria = domain.CloneCriteria(criteria)
		return nil
	})
}

// RedistributeWeights spreads 100 weight points evenly over the visible
// criteria.
func (s *ComparativeService) RedistributeWeights(ctx context.Context, id string) (domain.Comparative, domain.ScoreResult, error) {
	return s.Mutate(ctx, OpRedistributeWeights, id, func(c *domain.Comparative) error {
		c.Criteria = scoring.RedistributeWeights(c.Criteria)
		return nil
	})
}

// SetItemValue sets one item's value for one criterion. A nil value removes
// the entry.
func (s *ComparativeService) SetItemValue(
	ctx context.Context,
	id, itemID, criterionID string,
	value any,
) (domain.Comparative, domain.ScoreResult, error) {
	return s.Mutate(ctx, OpSetItemValue, id, func(c *domain.Comparative) error {
		items, err := scoring.SetItemValue(c.Items, c.Criteria, itemID, criterionID, value)
		if err != nil {
			return err
		}
		c.Items = items
		return nil
	})
}

// SetWinner records a manual winner. It fails with domain.ErrWinnerManaged
// while highlightWinner is on. An empty itemID clears the winner.
func (s *ComparativeService) SetWinner(ctx context.Context, id, itemID string) (domain.Comparative, domain.ScoreResult, error) {
	return s.Mutate(ctx, OpSetWinner, id, func(c *domain.Comparative) error {
		if c.HighlightWinner {
			return domain.ErrWinnerManaged
		}
		if itemID != "" {
			if _, ok := c.Item(itemID); !ok {
				return fmt.Errorf("%w: item %q", domain.ErrNotFound, itemID)
			}
		}
		c.WinnerID = itemID
		return nil
	})
}

// SetScoringMethod switches the aggregation rule.
func (s *ComparativeService) SetScoringMethod(
	ctx context.Context,
	id string,
	method domain.ScoringMethod,
) (domain.Comparative, domain.ScoreResult, error) {
	if _, err := domain.ParseScoringMethod(string(method)); err != nil {
		return domain.Comparative{}, domain.ScoreResult{}, err
	}
	return s.Mutate(ctx, OpSetScoringMethod, id, func(c *domain.Comparative) error {
		c.ScoringMethod = method
		return nil
	})
}

// SetHighlightWinner toggles automatic winner selection. Turning it off
// keeps the current winner until it is changed manually.
func (s *ComparativeService) SetHighlightWinner(ctx context.Context, id string, on bool) (domain.Comparative, domain.ScoreResult, error) {
	return s.Mutate(ctx, OpSetHighlightWinner, id, func(c *domain.Comparative) error {
		c.HighlightWinner = on
		return nil
	})
}

// ApplyTemplate replaces the comparative's criteria with a fresh copy of the
// named template. Item values are left as they are.
func (s *ComparativeService) ApplyTemplate(ctx context.Context, id, name string) (domain.Comparative, domain.ScoreResult, error) {
	t, err := s.templates.Get(ctx, name)
	if err != nil {
		return domain.Comparative{}, domain.ScoreResult{}, err
	}
	return s.Mutate(ctx, OpApplyTemplate, id, func(c *domain.Comparative) error {
		c.Criteria = scoring.ApplyTemplate(t.Criteria)
		return nil
	})
}

// SaveTemplate snapshots the comparative's criteria under name.
func (s *ComparativeService) SaveTemplate(ctx context.Context, id, name, description string) (domain.Template, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Template{}, err
	}
	t, err := scoring.NewTemplate(name, description, c.Criteria)
	if err != nil {
		return domain.Template{}, err
	}
	if err := s.templates.Save(ctx, t); err != nil {
		return domain.Template{}, err
	}
	s.log.Info("template saved", map[string]any{
		"template":       t.Name,
		"comparative_id": id,
		"criteria":       len(t.Criteria),
	})
	return t, nil
}

// Templates returns the stored template names.
func (s *ComparativeService) Templates(ctx context.Context) ([]string, error) {
	return s.templates.List(ctx)
}

// Scores returns the score result for the stored comparative without
// persisting anything. Results are cached per comparative version, so a
// cache entry can never describe a newer version.
func (s *ComparativeService) Scores(ctx context.Context, id string) (domain.ScoreResult, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	if s.cache != nil {
		key := scoresKey(c.ID, c.Version)
		data, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("score cache read failed", map[string]any{"key": key, "error": err.Error()})
		case ok:
			var res domain.ScoreResult
			decodeErr := json.Unmarshal(data, &res)
			if decodeErr == nil {
				s.count(ports.MetricScoreCacheHits)
				return res, nil
			}
			corrupt := ports.NewCacheError(key, "decode", fmt.Errorf("%w: %v", ports.ErrCacheCorrupted, decodeErr))
			s.log.WithError(corrupt).Warn("discarding corrupt score cache entry", map[string]any{"key": key})
			s.count(ports.MetricScoreCacheCorrupt)
			if err := s.cache.Delete(ctx, key); err != nil {
				s.log.Warn("failed to delete corrupt score cache entry", map[string]any{"key": key, "error": err.Error()})
			}
		}
		s.count(ports.MetricScoreCacheMisses)
	}

	res := s.engine.ComputeScores(c)
	s.cacheResult(ctx, c, res)
	return res, nil
}

// maxBatchAttempts bounds how often RecomputeMany tries one comparative when
// the backend reports a retryable failure.
const maxBatchAttempts = 3

// BatchResult reports the outcome of one comparative in RecomputeMany.
type BatchResult struct {
	ID       string
	Version  int64
	WinnerID string
	Warnings []domain.DegenerateInputWarning
	// Attempts is how many recomputes were run; more than one means earlier
	// attempts hit a retryable backend failure.
	Attempts int
	Err      error
}

// RecomputeMany recomputes ids with bounded parallelism, paced by the
// configured rate limit. A comparative whose recompute fails with a
// retryable backend error (ports.IsRetryable) is tried again, up to
// maxBatchAttempts times, each retry waiting on the rate limiter. Version
// conflicts, lock contention and validation failures are not retried.
//
// Per-comparative failures are reported in the results; the returned error
// is non-nil only when ctx ends or the rate limiter refuses to wait. Results
// follow the order of ids.
func (s *ComparativeService) RecomputeMany(ctx context.Context, ids []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		if err := s.wait(gctx); err != nil {
			_ = g.Wait()
			return results, err
		}
		g.Go(func() error {
			results[i] = s.recomputeWithRetry(gctx, id)
			if results[i].Err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.log.Info("batch recompute finished", map[string]any{"total": len(ids), "failed": failed})
	return results, nil
}

func (s *ComparativeService) recomputeWithRetry(ctx context.Context, id string) BatchResult {
	r := BatchResult{ID: id}
	for r.Attempts < maxBatchAttempts {
		if r.Attempts > 0 {
			if err := s.wait(ctx); err != nil {
				r.Err = err
				return r
			}
			s.count(ports.MetricBatchRetries)
		}
		r.Attempts++

		c, res, err := s.Recompute(ctx, id)
		r.Version, r.WinnerID, r.Warnings, r.Err = c.Version, res.WinnerID, res.Warnings, err
		if err == nil || !ports.IsRetryable(err) {
			return r
		}
		s.log.WithError(err).Warn("retryable recompute failure", map[string]any{
			"comparative_id": id,
			"attempt":        r.Attempts,
		})
	}
	return r
}

// wait paces batch work on the configured limiter.
func (s *ComparativeService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrRateLimited, err)
	}
	return nil
}

func scoresKey(id string, version int64) string {
	return fmt.Sprintf("scores:%s:%d", id, version)
}

func (s *ComparativeService) cacheResult(ctx context.Context, c domain.Comparative, res domain.ScoreResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		s.log.Warn("failed to encode score result", map[string]any{"comparative_id": c.ID, "error": err.Error()})
		return
	}
	if err := s.cache.Set(ctx, scoresKey(c.ID, c.Version), data, s.cacheTTL); err != nil {
		s.log.Warn("score cache write failed", map[string]any{"comparative_id": c.ID, "error": err.Error()})
	}
}

func (s *ComparativeService) count(metric string) {
	if s.metrics != nil {
		s.metrics.RecordCounter(metric, 1, nil)
	}
}

func (s *ComparativeService) pre(ctx context.Context, operation, id string) context.Context {
	if s.observer != nil {
		return s.observer.PreRecompute(ctx, operation, id)
	}
	return ctx
}

func (s *ComparativeService) post(
	ctx context.Context,
	operation, id string,
	c domain.Comparative,
	res domain.ScoreResult,
	elapsed time.Duration,
	err error,
) {
	if s.observer != nil {
		s.observer.PostRecompute(ctx, operation, c, res, elapsed, err)
	}

	fields := map[string]any{
		"operation":      operation,
		"comparative_id": id,
		"elapsed_ms":     elapsed.Milliseconds(),
	}
	if err != nil {
		s.log.WithError(err).Warn("comparative operation failed", fields)
		return
	}
	fields["version"] = c.Version
	fields["winner_id"] = res.WinnerID
	for _, w := range res.Warnings {
		s.log.Warn("degenerate scoring input", map[string]any{
			"comparative_id": id,
			"code":           string(w.Code),
			"message":        w.Message,
		})
	}
	s.log.Info("comparative recomputed", fields)
}
