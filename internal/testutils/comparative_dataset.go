package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ahrav/go-compare/internal/domain"
)

// ComparativeDataset is a collection of comparatives used for load testing
// and property checks of the scoring engine.
type ComparativeDataset struct {
	// Comparatives contains the generated comparatives.
	Comparatives []domain.Comparative `json:"comparatives"`

	// Metadata provides information about the dataset itself.
	Metadata DatasetMetadata `json:"metadata"`
}

// DatasetMetadata describes how a dataset was produced.
type DatasetMetadata struct {
	// Name identifies the dataset.
	Name string `json:"name"`

	// Seed is the generator seed, so the dataset can be reproduced.
	Seed int64 `json:"seed"`

	// Description provides details about the dataset contents.
	Description string `json:"description"`

	// Size indicates the total number of comparatives.
	Size int `json:"comparative_count"`
}

// LoadComparativeDataset loads a dataset from a JSON file and validates it.
func LoadComparativeDataset(path string) (*ComparativeDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var dataset ComparativeDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}

	if err := ValidateComparativeDataset(&dataset); err != nil {
		return nil, fmt.Errorf("dataset validation failed: %w", err)
	}

	return &dataset, nil
}

// ValidateComparativeDataset checks the dataset's structural integrity:
// metadata, unique comparative IDs, and unique criterion and item IDs inside
// each comparative.
func ValidateComparativeDataset(dataset *ComparativeDataset) error {
	if dataset == nil {
		return fmt.Errorf("dataset is nil")
	}
	if dataset.Metadata.Name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if dataset.Metadata.Size != len(dataset.Comparatives) {
		return fmt.Errorf("metadata size (%d) doesn't match actual comparative count (%d)",
			dataset.Metadata.Size, len(dataset.Comparatives))
	}

	seenIDs := make(map[string]bool, len(dataset.Comparatives))
	for i, c := range dataset.Comparatives {
		if c.ID == "" {
			return fmt.Errorf("comparative %d: ID is required", i)
		}
		if seenIDs[c.ID] {
			return fmt.Errorf("duplicate comparative ID: %s", c.ID)
		}
		seenIDs[c.ID] = true

		criteria := make(map[string]bool, len(c.Criteria))
		for _, cr := range c.Criteria {
			if criteria[cr.ID] {
				return fmt.Errorf("comparative %s: duplicate criterion ID: %s", c.ID, cr.ID)
			}
			criteria[cr.ID] = true
		}

		items := make(map[string]bool, len(c.Items))
		for _, it := range c.Items {
			if items[it.ID] {
				return fmt.Errorf("comparative %s: duplicate item ID: %s", c.ID, it.ID)
			}
			items[it.ID] = true
		}
	}
	return nil
}

// DatasetStatistics provides summary statistics about a dataset.
type DatasetStatistics struct {
	// TotalComparatives is the number of comparatives in the dataset.
	TotalComparatives int

	// MethodCount maps scoring methods to comparative counts.
	MethodCount map[domain.ScoringMethod]int

	// TypeCount maps criterion types to criterion counts.
	TypeCount map[domain.CriterionType]int

	// AvgItems is the average number of items per comparative.
	AvgItems float64

	// MaxItems is the largest item count of any comparative.
	MaxItems int
}

// ComputeDatasetStatistics analyzes a dataset and returns summary statistics.
func ComputeDatasetStatistics(dataset *ComparativeDataset) *DatasetStatistics {
	stats := &DatasetStatistics{
		TotalComparatives: len(dataset.Comparatives),
		MethodCount:       make(map[domain.ScoringMethod]int),
		TypeCount:         make(map[domain.CriterionType]int),
	}

	totalItems := 0
	for _, c := range dataset.Comparatives {
		stats.MethodCount[c.ScoringMethod]++
		for _, cr := range c.Criteria {
			stats.TypeCount[cr.Type]++
		}
		totalItems += len(c.Items)
		stats.MaxItems = max(stats.MaxItems, len(c.Items))
	}

	if stats.TotalComparatives > 0 {
		stats.AvgItems = float64(totalItems) / float64(stats.TotalComparatives)
	}
	return stats
}

// SaveComparativeDataset writes a dataset to a JSON file.
func SaveComparativeDataset(dataset *ComparativeDataset, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}
