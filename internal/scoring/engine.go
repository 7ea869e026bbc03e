package scoring

import (
	"fmt"
	"sort"

	"github.com/ahrav/go-compare/internal/domain"
)

// Engine runs the recompute pipeline: normalize every criterion, aggregate
// per item, rank, and resolve the winner.
//
// The zero value is not usable; construct one with NewEngine. An Engine holds
// only its aggregator table, which is read-only after construction, so a
// single Engine can serve concurrent recomputes.
type Engine struct {
	aggregators map[domain.ScoringMethod]domain.Aggregator
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithAggregator replaces the aggregator used for agg.Method().
func WithAggregator(agg domain.Aggregator) EngineOption {
	return func(e *Engine) {
		if agg != nil {
			e.aggregators[agg.Method()] = agg
		}
	}
}

// NewEngine returns an Engine with the built-in aggregators.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{aggregators: make(map[domain.ScoringMethod]domain.Aggregator, len(builtinAggregators))}
	for method, agg := range builtinAggregators {
		e.aggregators[method] = agg
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// ComputeScores runs the pipeline with the built-in aggregators.
func ComputeScores(c domain.Comparative) domain.ScoreResult {
	return defaultEngine.ComputeScores(c)
}

// ComputeScores produces normalized values, composite scores, ranks, and the
// winner for c.
//
// The input is never modified. Returned items are deep copies in ranked
// display order. For every criterion the item has a value for, the value's
// NormalizedScore and DisplayValue are rewritten; absent values stay absent.
// Values keyed by unknown criterion IDs are carried over unchanged.
//
// ComputeScores never fails. Degenerate input (mismatched weights, nothing to
// score, an unknown scoring method) yields a defined result plus warnings.
// Running it again on its own output yields the same output.
func (e *Engine) ComputeScores(c domain.Comparative) domain.ScoreResult {
	items := domain.CloneItems(c.Items)
	criteria := sortedCriteria(c.Criteria)

	method := c.ScoringMethod
	agg, ok := e.aggregators[method]
	if !ok {
		method = domain.ScoringNone
		agg = NoneAggregator{}
	}

	normalized := make([][]float64, len(criteria))
	for ci, cr := range criteria {
		scores := normalizeItems(cr, items)
		normalized[ci] = scores

		for i := range items {
			v, present := items[i].Values[cr.ID]
			if !present {
				continue
			}
			v.CriterionID = cr.ID
			v.NormalizedScore = scores[i]
			v.DisplayValue = FormatDisplayValue(cr, v.Value)
			items[i].Values[cr.ID] = v
		}
	}

	var eligible []int
	for ci, cr := range criteria {
		if cr.IsVisible && cr.Type.Scorable() {
			eligible = append(eligible, ci)
		}
	}

	for i := range items {
		ws := make([]domain.WeightedScore, 0, len(eligible))
		for _, ci := range eligible {
			ws = append(ws, domain.WeightedScore{
				CriterionID: criteria[ci].ID,
				Normalized:  normalized[ci][i],
				Weight:      clampWeight(criteria[ci].Weight),
			})
		}
		items[i].Score = agg.Aggregate(ws)
	}

	ranked := Rank(items, method)
	return domain.ScoreResult{
		Items:    ranked,
		WinnerID: ResolveWinner(ranked, c.HighlightWinner, c.WinnerID),
		Warnings: Diagnose(c.Criteria, c.ScoringMethod),
	}
}

// Apply runs ComputeScores and returns a copy of c carrying the result.
func (e *Engine) Apply(c domain.Comparative) (domain.Comparative, domain.ScoreResult) {
	res := e.ComputeScores(c)
	out := c.Clone()
	out.Items = domain.CloneItems(res.Items)
	out.WinnerID = res.WinnerID
	return out, res
}

// Diagnose reports degenerate input for the given criteria and method.
// Warnings are returned in a stable order.
func Diagnose(criteria []domain.Criterion, method domain.ScoringMethod) []domain.DegenerateInputWarning {
	var warnings []domain.DegenerateInputWarning

	if !method.Valid() {
		warnings = append(warnings, domain.DegenerateInputWarning{
			Code:    domain.WarnUnknownScoringMethod,
			Message: fmt.Sprintf("scoring method %q is not supported; items were ranked by manual order", method),
		})
		return warnings
	}
	if method == domain.ScoringNone {
		return nil
	}

	eligible := 0
	for _, c := range criteria {
		if c.IsVisible && c.Type.Scorable() {
			eligible++
		}
	}
	if eligible == 0 {
		warnings = append(warnings, domain.DegenerateInputWarning{
			Code:    domain.WarnNoEligibleCriteria,
			Message: "no visible criterion can be scored; every score is 0",
		})
	}

	if method != domain.ScoringWeightedAverage {
		return warnings
	}

	if eligible > 0 && eligibleWeightSum(criteria) == 0 {
		warnings = append(warnings, domain.DegenerateInputWarning{
			Code:    domain.WarnZeroTotalWeight,
			Message: "all scorable criteria have weight 0; every score is 0",
		})
	}
	if sum := VisibleWeightSum(criteria); sum != TargetWeightSum {
		warnings = append(warnings, domain.DegenerateInputWarning{
			Code:    domain.WarnWeightSumMismatch,
			Message: fmt.Sprintf("visible weights sum to %d instead of %d; scores scale proportionally", sum, TargetWeightSum),
		})
	}

	sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].Code < warnings[j].Code })
	return warnings
}
