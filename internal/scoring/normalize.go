package scoring

import (
	"math"

	"github.com/ahrav/go-compare/internal/domain"
)

// Normalize converts every item's raw value for criterion into a
// direction-adjusted score in [0,100], keyed by item ID.
//
// Per type:
//   - boolean: true → 100, false → 0.
//   - rating: (value-1)/4·100 with value clamped to [1,5].
//   - numeric, price, percentage: (value-min)/(max-min)·100 over the values
//     observed across items. When max == min every item with a value gets 100.
//   - text, select: 0 for everyone; these criteria are never aggregated.
//
// Boolean, rating, and range scores are inverted (100-x) when
// HigherIsBetter is false. Items with a missing or unparseable value get 0
// and are left out of the observed range.
//
// Items are expected to have unique IDs; when they do not, the last
// duplicate wins in the returned map.
func Normalize(criterion domain.Criterion, items []domain.Item) map[string]float64 {
	scores := normalizeItems(criterion, items)
	out := make(map[string]float64, len(items))
	for i, it := range items {
		out[it.ID] = scores[i]
	}
	return out
}

// normalizeItems is Normalize keyed by item index.
func normalizeItems(criterion domain.Criterion, items []domain.Item) []float64 {
	scores := make([]float64, len(items))

	switch criterion.Type {
	case domain.CriterionBoolean:
		for i, it := range items {
			b, ok := boolValue(rawValue(it, criterion.ID))
			if !ok {
				continue
			}
			s := MinScore
			if b {
				s = MaxScore
			}
			scores[i] = orient(s, criterion.HigherIsBetter)
		}

	case domain.CriterionRating:
		for i, it := range items {
			v, ok := numericValue(rawValue(it, criterion.ID))
			if !ok {
				continue
			}
			v = min(max(v, RatingMin), RatingMax)
			s := (v - RatingMin) / (RatingMax - RatingMin) * MaxScore
			scores[i] = orient(s, criterion.HigherIsBetter)
		}

	case domain.CriterionNumeric, domain.CriterionPrice, domain.CriterionPercentage:
		normalizeRange(criterion, items, scores)

	case domain.CriterionText, domain.CriterionSelect:
		// Display-only; every score stays 0.
	}

	for i := range scores {
		scores[i] = clampScore(scores[i])
	}
	return scores
}

// normalizeRange fills scores for range-based criteria using the min and max
// observed across items that have a parseable value.
func normalizeRange(criterion domain.Criterion, items []domain.Item, scores []float64) {
	values := make([]float64, len(items))
	present := make([]bool, len(items))

	var lo, hi float64
	seen := false
	for i, it := range items {
		v, ok := numericValue(rawValue(it, criterion.ID))
		if !ok {
			continue
		}
		values[i], present[i] = v, true
		if !seen {
			lo, hi, seen = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if !seen {
		return
	}

	// hi-lo overflows to +Inf when the values sit near opposite float64
	// limits; halving both ends keeps the span finite.
	scale := 1.0
	if math.IsInf(hi-lo, 0) {
		scale = 0.5
	}
	span := hi*scale - lo*scale
	for i := range items {
		if !present[i] {
			continue
		}
		// A criterion that cannot discriminate must not penalize anyone.
		if span == 0 {
			scores[i] = MaxScore
			continue
		}
		s := (values[i]*scale - lo*scale) / span * MaxScore
		scores[i] = orient(s, criterion.HigherIsBetter)
	}
}

// orient flips s when lower raw values are preferable.
func orient(s float64, higherIsBetter bool) float64 {
	if higherIsBetter {
		return s
	}
	return MaxScore - s
}

// rawValue returns the item's raw value for criterionID, or nil when absent.
func rawValue(it domain.Item, criterionID string) any {
	v, ok := it.Values[criterionID]
	if !ok {
		return nil
	}
	return v.Value
}
