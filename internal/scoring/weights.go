package scoring

import (
	"sort"

	"github.com/ahrav/go-compare/internal/domain"
)

// RedistributeWeights spreads exactly 100 weight points over the visible
// criteria. Each gets floor(100/n); the remaining points go one each to the
// first visible criteria by Order. Invisible criteria get weight 0.
//
// The returned slice is a copy in input order. With no visible criteria every
// weight is 0.
func RedistributeWeights(criteria []domain.Criterion) []domain.Criterion {
	out := domain.CloneCriteria(criteria)

	visible := make([]int, 0, len(out))
	for i := range out {
		if out[i].IsVisible {
			visible = append(visible, i)
		} else {
			out[i].Weight = 0
		}
	}
	if len(visible) == 0 {
		return out
	}

	sort.SliceStable(visible, func(a, b int) bool {
		return out[visible[a]].Order < out[visible[b]].Order
	})

	base := TargetWeightSum / len(visible)
	remainder := TargetWeightSum - base*len(visible)
	for rank, idx := range visible {
		out[idx].Weight = base
		if rank < remainder {
			out[idx].Weight++
		}
	}
	return out
}

// VisibleWeightSum returns the total weight of visible criteria.
func VisibleWeightSum(criteria []domain.Criterion) int {
	total := 0
	for _, c := range criteria {
		if c.IsVisible {
			total += c.Weight
		}
	}
	return total
}

// eligibleWeightSum returns the total weight of visible, scorable criteria.
func eligibleWeightSum(criteria []domain.Criterion) int {
	total := 0
	for _, c := range criteria {
		if c.IsVisible && c.Type.Scorable() {
			total += clampWeight(c.Weight)
		}
	}
	return total
}

// ValidateWeights checks that every weight is within 0..100. It does not
// require the visible weights to sum to 100; that condition is reported as
// a warning by Diagnose.
func ValidateWeights(criteria []domain.Criterion) error {
	ve := domain.NewValidationError("criteria weights")
	for _, c := range criteria {
		if c.Weight < 0 || c.Weight > 100 {
			ve.AddErrorf("criterion %q: weight %d outside 0..100", c.ID, c.Weight)
		}
	}
	return ve.ErrOrNil()
}
