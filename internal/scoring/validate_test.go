package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/testutils"
)

func TestValidateCriterion(t *testing.T) {
	lo, hi := 10.0, 1.0

	tests := []struct {
		name    string
		mutate  func(*domain.Criterion)
		wantErr string
	}{
		{name: "valid", mutate: func(*domain.Criterion) {}},
		{
			name:    "unknown type",
			mutate:  func(c *domain.Criterion) { c.Type = "color" },
			wantErr: `unknown criterion type: "color"`,
		},
		{
			name:    "missing name",
			mutate:  func(c *domain.Criterion) { c.Name = "" },
			wantErr: "Criterion.Name is required",
		},
		{
			name:    "weight too high",
			mutate:  func(c *domain.Criterion) { c.Weight = 101 },
			wantErr: "Criterion.Weight must be at most 100",
		},
		{
			name:    "negative weight",
			mutate:  func(c *domain.Criterion) { c.Weight = -5 },
			wantErr: "Criterion.Weight must be at least 0",
		},
		{
			name:    "inverted bounds",
			mutate:  func(c *domain.Criterion) { c.Min, c.Max = &lo, &hi },
			wantErr: "min 10 greater than max 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutils.Crit("price", domain.CriterionPrice, 60, false, 0)
			tt.mutate(&c)

			err := ValidateCriterion(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCriteria(t *testing.T) {
	criteria := []domain.Criterion{
		testutils.Crit("a", domain.CriterionNumeric, 50, true, 0),
		testutils.Crit("a", domain.CriterionNumeric, 50, true, 1),
		testutils.Crit("b", domain.CriterionType("nope"), 0, true, 2),
	}

	err := ValidateCriteria(criteria)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `criteria[1]: duplicate id: "a"`)
	assert.Contains(t, err.Error(), "criteria[2]: ")

	assert.NoError(t, ValidateCriteria(testutils.ProductComparison().Criteria))
}

func TestValidateComparative(t *testing.T) {
	t.Run("valid fixtures", func(t *testing.T) {
		assert.NoError(t, ValidateComparative(testutils.ProductComparison()))
		assert.NoError(t, ValidateComparative(testutils.MixedTypeComparison()))
	})

	t.Run("unknown scoring method", func(t *testing.T) {
		c := testutils.ProductComparison()
		c.ScoringMethod = "median"

		err := ValidateComparative(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown scoring method")
	})

	t.Run("duplicate items and mismatched value keys", func(t *testing.T) {
		c := testutils.ProductComparison()
		c.Items[2].ID = c.Items[0].ID
		c.Items[1].Values["rating"] = domain.CriterionValue{CriterionID: "price", Value: 1}

		err := ValidateComparative(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `items[2]: duplicate id: "item-1"`)
		assert.Contains(t, err.Error(), `value keyed "rating" references criterion "price"`)
	})

	t.Run("invalid nested criterion", func(t *testing.T) {
		c := testutils.ProductComparison()
		c.Criteria[0].Weight = 300

		err := ValidateComparative(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Comparative.Criteria[0].Weight must be at most 100")
	})
}

func TestValidateTemplate(t *testing.T) {
	tmpl := domain.Template{Name: "Phones", Criteria: testutils.ProductComparison().Criteria}
	assert.NoError(t, ValidateTemplate(tmpl))

	tmpl.Criteria = nil
	err := ValidateTemplate(tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Template.Criteria is required")
}
