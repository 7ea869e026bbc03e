package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/testutils"
)

func visibleCriteria(n int) []domain.Criterion {
	out := make([]domain.Criterion, n)
	for i := range out {
		out[i] = testutils.Crit(fmt.Sprintf("c%d", i), domain.CriterionNumeric, 0, true, i)
	}
	return out
}

func TestRedistributeWeights(t *testing.T) {
	t.Run("three visible", func(t *testing.T) {
		out := RedistributeWeights(visibleCriteria(3))
		assert.Equal(t, []int{34, 33, 33}, weightsOf(out))
	})

	t.Run("remainder follows order not position", func(t *testing.T) {
		in := visibleCriteria(3)
		in[0].Order, in[2].Order = 2, 0

		out := RedistributeWeights(in)
		assert.Equal(t, []int{33, 33, 34}, weightsOf(out))
		assert.Equal(t, "c0", out[0].ID, "input order is preserved")
	})

	t.Run("invisible criteria get zero", func(t *testing.T) {
		in := visibleCriteria(4)
		in[1].IsVisible = false
		in[1].Weight = 70

		out := RedistributeWeights(in)
		assert.Equal(t, []int{34, 0, 33, 33}, weightsOf(out))
	})

	t.Run("no visible criteria", func(t *testing.T) {
		in := visibleCriteria(2)
		in[0].IsVisible, in[1].IsVisible = false, false
		in[0].Weight = 50

		out := RedistributeWeights(in)
		assert.Equal(t, []int{0, 0}, weightsOf(out))
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := visibleCriteria(2)
		_ = RedistributeWeights(in)
		assert.Equal(t, []int{0, 0}, weightsOf(in))
	})

	t.Run("sum is exactly 100 and spread at most 1", func(t *testing.T) {
		for n := 1; n <= 150; n++ {
			out := RedistributeWeights(visibleCriteria(n))
			require.Equal(t, 100, VisibleWeightSum(out), "n=%d", n)

			lo, hi := out[0].Weight, out[0].Weight
			for _, c := range out {
				lo, hi = min(lo, c.Weight), max(hi, c.Weight)
			}
			require.LessOrEqual(t, hi-lo, 1, "n=%d", n)
		}
	})
}

func weightsOf(criteria []domain.Criterion) []int {
	out := make([]int, len(criteria))
	for i, c := range criteria {
		out[i] = c.Weight
	}
	return out
}

func TestValidateWeights(t *testing.T) {
	ok := visibleCriteria(2)
	ok[0].Weight, ok[1].Weight = 0, 100
	assert.NoError(t, ValidateWeights(ok))

	bad := visibleCriteria(2)
	bad[0].Weight, bad[1].Weight = -1, 101
	err := ValidateWeights(bad)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), `criterion "c0": weight -1 outside 0..100`)
	assert.Contains(t, err.Error(), `criterion "c1": weight 101 outside 0..100`)
}

func TestWeightSums(t *testing.T) {
	criteria := []domain.Criterion{
		testutils.Crit("a", domain.CriterionNumeric, 40, true, 0),
		testutils.Crit("b", domain.CriterionText, 30, true, 1),
		testutils.Crit("c", domain.CriterionRating, 20, true, 2),
	}
	criteria[2].IsVisible = false

	assert.Equal(t, 70, VisibleWeightSum(criteria))
	assert.Equal(t, 40, eligibleWeightSum(criteria))
}
