// Package testutils provides fixtures and data generators for testing.
// These components are intended for internal use within the project's test
// suites and are not part of the public API.
package testutils

import (
	"github.com/ahrav/go-compare/internal/domain"
)

// Fixture identifiers shared by the product comparison fixtures.
const (
	CriterionPrice  = "price"
	CriterionRating = "rating"
	CriterionWiFi   = "wifi"
	CriterionNotes  = "notes"

	Item1 = "item-1"
	Item2 = "item-2"
	Item3 = "item-3"
)

// Crit builds a visible criterion.
func Crit(id string, typ domain.CriterionType, weight int, higherIsBetter bool, order int) domain.Criterion {
	return domain.Criterion{
		ID:             id,
		Name:           id,
		Type:           typ,
		Weight:         weight,
		HigherIsBetter: higherIsBetter,
		Order:          order,
		IsVisible:      true,
	}
}

// ItemWith builds an item whose raw values are keyed by criterion ID.
func ItemWith(id string, order int, values map[string]any) domain.Item {
	it := domain.Item{
		ID:     id,
		Name:   id,
		Order:  order,
		Values: make(map[string]domain.CriterionValue, len(values)),
	}
	for k, v := range values {
		it.Values[k] = domain.CriterionValue{CriterionID: k, Value: v}
	}
	return it
}

// ProductComparison returns three products compared by price (60, lower is
// better) and rating (40). Under weighted_average the composites are
// item-1=100, item-2=20, item-3=60.
func ProductComparison() domain.Comparative {
	return domain.Comparative{
		ID:              "cmp-products",
		Title:           "Product comparison",
		ScoringMethod:   domain.ScoringWeightedAverage,
		HighlightWinner: true,
		Criteria: []domain.Criterion{
			Crit(CriterionPrice, domain.CriterionNumeric, 60, false, 0),
			Crit(CriterionRating, domain.CriterionRating, 40, true, 1),
		},
		Items: []domain.Item{
			ItemWith(Item1, 0, map[string]any{CriterionPrice: 50.0, CriterionRating: 5.0}),
			ItemWith(Item2, 1, map[string]any{CriterionPrice: 100.0, CriterionRating: 3.0}),
			ItemWith(Item3, 2, map[string]any{CriterionPrice: 75.0, CriterionRating: 4.0}),
		},
	}
}

// TiedComparison returns one item at 80 and two tied at 60 under sum.
func TiedComparison() domain.Comparative {
	return domain.Comparative{
		ID:            "cmp-tied",
		ScoringMethod: domain.ScoringSum,
		Criteria: []domain.Criterion{
			Crit(CriterionRating, domain.CriterionRating, 100, true, 0),
		},
		Items: []domain.Item{
			ItemWith("tied-b", 2, map[string]any{CriterionRating: 3.4}),
			ItemWith("top", 0, map[string]any{CriterionRating: 4.2}),
			ItemWith("tied-a", 1, map[string]any{CriterionRating: 3.4}),
		},
	}
}

// ZeroWeightComparison returns the product comparison with every weight set
// to 0.
func ZeroWeightComparison() domain.Comparative {
	c := ProductComparison()
	c.ID = "cmp-zero-weight"
	for i := range c.Criteria {
		c.Criteria[i].Weight = 0
	}
	return c
}

// MixedTypeComparison returns a comparative that exercises every criterion
// type, including display-only and hidden criteria.
func MixedTypeComparison() domain.Comparative {
	notes := Crit(CriterionNotes, domain.CriterionText, 0, true, 3)
	hidden := Crit("warranty", domain.CriterionNumeric, 0, true, 4)
	hidden.IsVisible = false
	size := Crit("size", domain.CriterionSelect, 0, true, 5)
	size.Options = []string{"S", "M", "L"}

	return domain.Comparative{
		ID:            "cmp-mixed",
		ScoringMethod: domain.ScoringWeightedAverage,
		Criteria: []domain.Criterion{
			Crit(CriterionPrice, domain.CriterionPrice, 50, false, 0),
			Crit(CriterionWiFi, domain.CriterionBoolean, 25, true, 1),
			Crit("battery", domain.CriterionPercentage, 25, true, 2),
			notes,
			hidden,
			size,
		},
		Items: []domain.Item{
			ItemWith("router-a", 0, map[string]any{
				CriterionPrice: "$129.99", CriterionWiFi: true, "battery": "80%",
				CriterionNotes: "Compact", "warranty": 2, "size": "S",
			}),
			ItemWith("router-b", 1, map[string]any{
				CriterionPrice: 89.5, CriterionWiFi: "no", "battery": 60,
				CriterionNotes: "Loud fan", "warranty": 3, "size": "L",
			}),
			ItemWith("router-c", 2, map[string]any{
				CriterionWiFi: "yes", "battery": 100,
			}),
		},
	}
}
