package scoring

import (
	"fmt"

	"github.com/ahrav/go-compare/internal/domain"
)

var (
	_ domain.Aggregator = WeightedAverageAggregator{}
	_ domain.Aggregator = SimpleAverageAggregator{}
	_ domain.Aggregator = SumAggregator{}
	_ domain.Aggregator = NoneAggregator{}
)

// WeightedAverageAggregator computes Σ(normalized·weight)/100.
//
// The denominator is the target weight sum rather than the actual one, so
// weights that do not add up to 100 scale every score proportionally instead
// of being silently renormalized. When the eligible weights sum to 0 the
// score is 0.
type WeightedAverageAggregator struct{}

// Method implements domain.Aggregator.
func (WeightedAverageAggregator) Method() domain.ScoringMethod {
	return domain.ScoringWeightedAverage
}

// Aggregate implements domain.Aggregator.
func (WeightedAverageAggregator) Aggregate(scores []domain.WeightedScore) float64 {
	var sum float64
	var total int
	for _, s := range scores {
		w := clampWeight(s.Weight)
		sum += s.Normalized * float64(w)
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / TargetWeightSum
}

// SimpleAverageAggregator gives each eligible criterion weight 1/N.
type SimpleAverageAggregator struct{}

// Method implements domain.Aggregator.
func (SimpleAverageAggregator) Method() domain.ScoringMethod {
	return domain.ScoringSimpleAverage
}

// Aggregate implements domain.Aggregator.
func (SimpleAverageAggregator) Aggregate(scores []domain.WeightedScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s.Normalized
	}
	return sum / float64(len(scores))
}

// SumAggregator adds normalized scores without scaling; results may exceed 100.
type SumAggregator struct{}

// Method implements domain.Aggregator.
func (SumAggregator) Method() domain.ScoringMethod { return domain.ScoringSum }

// Aggregate implements domain.Aggregator.
func (SumAggregator) Aggregate(scores []domain.WeightedScore) float64 {
	var sum float64
	for _, s := range scores {
		sum += s.Normalized
	}
	return sum
}

// NoneAggregator scores every item 0. Ranking then follows manual order.
type NoneAggregator struct{}

// Method implements domain.Aggregator.
func (NoneAggregator) Method() domain.ScoringMethod { return domain.ScoringNone }

// Aggregate implements domain.Aggregator.
func (NoneAggregator) Aggregate([]domain.WeightedScore) float64 { return 0 }

// builtinAggregators maps each scoring method to its aggregator.
var builtinAggregators = map[domain.ScoringMethod]domain.Aggregator{
	domain.ScoringWeightedAverage: WeightedAverageAggregator{},
	domain.ScoringSimpleAverage:   SimpleAverageAggregator{},
	domain.ScoringSum:             SumAggregator{},
	domain.ScoringNone:            NoneAggregator{},
}

// AggregatorFor returns the built-in aggregator for method.
func AggregatorFor(method domain.ScoringMethod) (domain.Aggregator, error) {
	agg, ok := builtinAggregators[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScoringMethod, method)
	}
	return agg, nil
}
