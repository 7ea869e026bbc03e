package testutils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/domain"
)

func TestValidateComparativeDataset(t *testing.T) {
	tests := []struct {
		name    string
		dataset *ComparativeDataset
		wantErr string
	}{
		{
			name:    "nil dataset",
			dataset: nil,
			wantErr: "dataset is nil",
		},
		{
			name:    "missing name",
			dataset: &ComparativeDataset{},
			wantErr: "dataset name is required",
		},
		{
			name: "size mismatch",
			dataset: &ComparativeDataset{
				Metadata:     DatasetMetadata{Name: "d", Size: 2},
				Comparatives: []domain.Comparative{ProductComparison()},
			},
			wantErr: "metadata size (2) doesn't match actual comparative count (1)",
		},
		{
			name: "duplicate comparative",
			dataset: &ComparativeDataset{
				Metadata:     DatasetMetadata{Name: "d", Size: 2},
				Comparatives: []domain.Comparative{ProductComparison(), ProductComparison()},
			},
			wantErr: "duplicate comparative ID: cmp-products",
		},
		{
			name: "duplicate item",
			dataset: func() *ComparativeDataset {
				c := ProductComparison()
				c.Items[1].ID = c.Items[0].ID
				return &ComparativeDataset{
					Metadata:     DatasetMetadata{Name: "d", Size: 1},
					Comparatives: []domain.Comparative{c},
				}
			}(),
			wantErr: "comparative cmp-products: duplicate item ID: item-1",
		},
		{
			name: "valid",
			dataset: &ComparativeDataset{
				Metadata:     DatasetMetadata{Name: "d", Size: 2},
				Comparatives: []domain.Comparative{ProductComparison(), TiedComparison()},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComparativeDataset(tt.dataset)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestGenerateComparativeDataset(t *testing.T) {
	t.Run("deterministic for a seed", func(t *testing.T) {
		a := GenerateComparativeDataset(20, 42)
		b := GenerateComparativeDataset(20, 42)
		assert.Equal(t, a, b)
	})

	t.Run("well formed", func(t *testing.T) {
		dataset := GenerateComparativeDataset(50, 7)
		require.NoError(t, ValidateComparativeDataset(dataset))

		for _, c := range dataset.Comparatives {
			assert.True(t, c.ScoringMethod.Valid())
			assert.NotEmpty(t, c.Criteria)
			assert.LessOrEqual(t, len(c.Criteria), MaxGeneratedCriteria)
			assert.LessOrEqual(t, len(c.Items), MaxGeneratedItems)
			for _, cr := range c.Criteria {
				assert.True(t, cr.Type.Valid())
				assert.GreaterOrEqual(t, cr.Weight, 0)
				assert.LessOrEqual(t, cr.Weight, 100)
			}
		}
	})

	t.Run("statistics", func(t *testing.T) {
		dataset := GenerateComparativeDataset(30, 3)
		stats := ComputeDatasetStatistics(dataset)

		assert.Equal(t, 30, stats.TotalComparatives)
		total := 0
		for _, n := range stats.MethodCount {
			total += n
		}
		assert.Equal(t, 30, total)
		assert.LessOrEqual(t, stats.AvgItems, float64(stats.MaxItems))
	})
}

func TestSaveAndLoadComparativeDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dataset.json")
	dataset := &ComparativeDataset{
		Metadata:     DatasetMetadata{Name: "fixtures", Size: 2},
		Comparatives: []domain.Comparative{ProductComparison(), MixedTypeComparison()},
	}

	require.NoError(t, SaveComparativeDataset(dataset, path))

	loaded, err := LoadComparativeDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", loaded.Metadata.Name)
	require.Len(t, loaded.Comparatives, 2)
	assert.Equal(t, dataset.Comparatives[0].Criteria, loaded.Comparatives[0].Criteria)

	_, err = LoadComparativeDataset(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewTestValidator(t *testing.T) {
	type section struct {
		Addr string `mapstructure:"addr" validate:"required"`
	}

	err := NewTestValidator().Struct(section{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section.addr")
}
