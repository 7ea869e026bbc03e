package ports

// Metric names emitted through MetricsCollector.
const (
	// MetricRecomputeTotal counts recompute attempts by method and status.
	MetricRecomputeTotal = "recompute_total"

	// MetricDegenerateWarnings counts degenerate-input warnings by code.
	MetricDegenerateWarnings = "degenerate_warnings_total"

	// MetricItemsScored observes how many items one recompute scored.
	MetricItemsScored = "items_scored"

	// MetricWinnerScore observes the composite score of the rank-1 item.
	MetricWinnerScore = "winner_score"

	// MetricRecomputeInFlight reports recomputes currently running.
	MetricRecomputeInFlight = "recompute_in_flight"

	// MetricScoreCacheHits counts score reads served from the cache.
	MetricScoreCacheHits = "score_cache_hits_total"

	// MetricScoreCacheMisses counts score reads that had to compute.
	MetricScoreCacheMisses = "score_cache_misses_total"

	// MetricScoreCacheCorrupt counts cached score entries that failed to decode.
	MetricScoreCacheCorrupt = "score_cache_corrupt_total"

	// MetricBatchRetries counts RecomputeMany attempts repeated after a
	// retryable backend failure.
	MetricBatchRetries = "batch_retries_total"
)

// Metric label keys.
const (
	LabelOperation = "operation"
	LabelMethod    = "method"
	LabelStatus    = "status"
	LabelCode      = "code"
)

// Recompute status label values.
const (
	StatusSuccess     = "success"
	StatusConflict    = "conflict"
	StatusLocked      = "locked"
	StatusInvalid     = "invalid"
	StatusUnavailable = "unavailable"
	StatusError       = "error"
)
