package domain

// Aggregator defines the interface for combining an item's normalized
// criterion scores into a single composite score.
// Implementations provide the different scoring methods such as weighted
// average, simple average, or plain sum.
type Aggregator interface {
	// Method returns the scoring method this aggregator implements.
	Method() ScoringMethod

	// Aggregate combines one item's scores into its composite score.
	// The scores slice contains only visible, scoring-eligible criteria and
	// every Normalized value is finite and within [0,100].
	//
	// The method should handle edge cases such as:
	//   - Empty score lists (return 0)
	//   - Zero total weight (return 0 rather than NaN)
	//
	// Example:
	//
	//	scores := []WeightedScore{{Normalized: 100, Weight: 60}, {Normalized: 50, Weight: 40}}
	//	composite := aggregator.Aggregate(scores) // 80 for weighted_average
	Aggregate(scores []WeightedScore) float64
}
