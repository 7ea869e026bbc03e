package testutils

import (
	"fmt"
	"math/rand"

	"github.com/ahrav/go-compare/internal/domain"
)

// Generator bounds.
const (
	// MaxGeneratedCriteria caps the criteria count of a generated comparative.
	MaxGeneratedCriteria = 8

	// MaxGeneratedItems caps the item count of a generated comparative.
	MaxGeneratedItems = 12

	// MissingValueRate is the probability that a generated value is omitted.
	MissingValueRate = 0.15
)

var generatedMethods = []domain.ScoringMethod{
	domain.ScoringWeightedAverage,
	domain.ScoringSimpleAverage,
	domain.ScoringSum,
	domain.ScoringNone,
}

// GenerateComparative builds a random but well-formed comparative. The seed
// parameter controls randomization; the same seed always yields the same
// comparative. Weights are arbitrary in 0..100, values are occasionally
// missing, and items may share Order values.
func GenerateComparative(id string, seed int64) domain.Comparative {
	rng := rand.New(rand.NewSource(seed))

	c := domain.Comparative{
		ID:              id,
		Title:           fmt.Sprintf("Generated comparison %s", id),
		ScoringMethod:   generatedMethods[rng.Intn(len(generatedMethods))],
		HighlightWinner: rng.Intn(2) == 0,
	}

	nCriteria := 1 + rng.Intn(MaxGeneratedCriteria)
	for i := range nCriteria {
		typ := domain.CriterionTypes[rng.Intn(len(domain.CriterionTypes))]
		cr := domain.Criterion{
			ID:             fmt.Sprintf("c%d", i),
			Name:           fmt.Sprintf("%s %d", typ, i),
			Type:           typ,
			Weight:         rng.Intn(101),
			HigherIsBetter: rng.Intn(2) == 0,
			Order:          i,
			IsVisible:      rng.Float64() > 0.2,
		}
		if typ == domain.CriterionSelect {
			cr.Options = []string{"small", "medium", "large"}
		}
		c.Criteria = append(c.Criteria, cr)
	}

	nItems := rng.Intn(MaxGeneratedItems + 1)
	for i := range nItems {
		it := domain.Item{
			ID:     fmt.Sprintf("i%d", i),
			Name:   fmt.Sprintf("Item %d", i),
			Order:  rng.Intn(nItems),
			Values: make(map[string]domain.CriterionValue),
		}
		for _, cr := range c.Criteria {
			if rng.Float64() < MissingValueRate {
				continue
			}
			it.Values[cr.ID] = domain.CriterionValue{
				CriterionID: cr.ID,
				Value:       generateValue(rng, cr),
			}
		}
		c.Items = append(c.Items, it)
	}
	return c
}

func generateValue(rng *rand.Rand, cr domain.Criterion) any {
	switch cr.Type {
	case domain.CriterionBoolean:
		return rng.Intn(2) == 0
	case domain.CriterionRating:
		return float64(1 + rng.Intn(5))
	case domain.CriterionPercentage:
		return float64(rng.Intn(101))
	case domain.CriterionPrice:
		return float64(rng.Intn(100000)) / 100
	case domain.CriterionNumeric:
		// Small integer range so equal values show up regularly.
		return float64(rng.Intn(10) - 3)
	case domain.CriterionSelect:
		return cr.Options[rng.Intn(len(cr.Options))]
	case domain.CriterionText:
		return fmt.Sprintf("note %d", rng.Intn(1000))
	}
	return nil
}

// GenerateComparativeDataset builds size comparatives from seed.
func GenerateComparativeDataset(size int, seed int64) *ComparativeDataset {
	rng := rand.New(rand.NewSource(seed))

	dataset := &ComparativeDataset{
		Metadata: DatasetMetadata{
			Name:        "Generated comparative dataset",
			Seed:        seed,
			Description: "Random comparatives for exercising the scoring engine.",
			Size:        size,
		},
		Comparatives: make([]domain.Comparative, 0, size),
	}
	for i := range size {
		dataset.Comparatives = append(dataset.Comparatives,
			GenerateComparative(fmt.Sprintf("gen-%04d", i), rng.Int63()))
	}
	return dataset
}
