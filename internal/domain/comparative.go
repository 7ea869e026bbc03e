package domain

import "fmt"

// ScoringMethod selects how an item's normalized criterion scores are
// combined into its composite score.
type ScoringMethod string

// Supported scoring methods.
const (
	// ScoringWeightedAverage computes Σ(normalized·weight)/100.
	ScoringWeightedAverage ScoringMethod = "weighted_average"

	// ScoringSimpleAverage gives every eligible criterion equal weight.
	ScoringSimpleAverage ScoringMethod = "simple_average"

	// ScoringSum adds the normalized scores without scaling.
	ScoringSum ScoringMethod = "sum"

	// ScoringNone disables scoring; ranking follows the manual item order.
	ScoringNone ScoringMethod = "none"
)

// ParseScoringMethod converts s into a ScoringMethod.
func ParseScoringMethod(s string) (ScoringMethod, error) {
	m := ScoringMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScoringMethod, s)
	}
	return m, nil
}

// Valid reports whether m is a supported scoring method.
func (m ScoringMethod) Valid() bool {
	switch m {
	case ScoringWeightedAverage, ScoringSimpleAverage, ScoringSum, ScoringNone:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (m ScoringMethod) String() string { return string(m) }

// CriterionValue holds one item's raw value for one criterion together with
// the values the engine derives from it.
type CriterionValue struct {
	// CriterionID references the criterion this value belongs to.
	CriterionID string `json:"criterion_id" yaml:"criterion_id"`

	// Value is the raw value: a number, a boolean, or a string.
	Value any `json:"value" yaml:"value"`

	// DisplayValue is the type-formatted, human-readable rendering of Value.
	DisplayValue string `json:"display_value,omitempty" yaml:"display_value,omitempty"`

	// NormalizedScore is the computed, direction-adjusted score in [0,100].
	NormalizedScore float64 `json:"normalized_score" yaml:"normalized_score"`
}

// Item is one of the things being compared.
type Item struct {
	// ID uniquely identifies the item within its comparative.
	ID string `json:"id" yaml:"id" validate:"required,max=100"`

	// Name is the human-readable label.
	Name string `json:"name" yaml:"name" validate:"max=255"`

	// Order is the manual display order. It breaks score ties.
	Order int `json:"order" yaml:"order" validate:"min=0"`

	// IsHighlighted is a manual emphasis flag, independent of ranking.
	IsHighlighted bool `json:"is_highlighted" yaml:"is_highlighted"`

	// Values maps criterion IDs to this item's values. A missing entry means
	// the item has no value for that criterion.
	Values map[string]CriterionValue `json:"values" yaml:"values"`

	// Score is the computed composite score.
	Score float64 `json:"score" yaml:"score"`

	// Rank is the computed 1-based competition rank.
	Rank int `json:"rank" yaml:"rank"`
}

// Value returns the item's value for criterionID, if present.
func (it Item) Value(criterionID string) (CriterionValue, bool) {
	v, ok := it.Values[criterionID]
	return v, ok
}

// Clone returns a copy of the item with its own Values map.
func (it Item) Clone() Item {
	out := it
	if it.Values != nil {
		out.Values = make(map[string]CriterionValue, len(it.Values))
		for k, v := range it.Values {
			out.Values[k] = v
		}
	}
	return out
}

// CloneItems returns a copy of items in which every Values map is private.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Comparative is a content item comparing several Items along a set of
// Criteria. It owns both collections exclusively.
type Comparative struct {
	// ID identifies the comparative at the persistence boundary.
	ID string `json:"id" yaml:"id"`

	// Title is the editor-facing name.
	Title string `json:"title,omitempty" yaml:"title,omitempty" validate:"max=255"`

	// Criteria is the evaluation configuration.
	Criteria []Criterion `json:"criteria" yaml:"criteria" validate:"max=200,dive"`

	// Items are the things being compared.
	Items []Item `json:"items" yaml:"items" validate:"max=1000,dive"`

	// ScoringMethod selects the aggregation rule.
	ScoringMethod ScoringMethod `json:"scoring_method" yaml:"scoring_method" validate:"required,scoringmethod"`

	// HighlightWinner makes the engine set WinnerID to the rank-1 item.
	HighlightWinner bool `json:"highlight_winner" yaml:"highlight_winner"`

	// WinnerID is the winning item's ID, or empty when there is none.
	WinnerID string `json:"winner_id,omitempty" yaml:"winner_id,omitempty"`

	// Version is the optimistic concurrency token maintained by repositories.
	Version int64 `json:"version" yaml:"version"`
}

// Clone returns a deep copy of c.
func (c Comparative) Clone() Comparative {
	out := c
	out.Criteria = CloneCriteria(c.Criteria)
	out.Items = CloneItems(c.Items)
	return out
}

// Criterion returns the criterion with the given ID, if present.
func (c Comparative) Criterion(id string) (Criterion, bool) {
	for _, cr := range c.Criteria {
		if cr.ID == id {
			return cr, true
		}
	}
	return Criterion{}, false
}

// Item returns the item with the given ID, if present.
func (c Comparative) Item(id string) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// WeightedScore is one normalized criterion score paired with the weight of
// its criterion, as handed to an Aggregator.
type WeightedScore struct {
	// CriterionID identifies the source criterion.
	CriterionID string

	// Normalized is the criterion's normalized score in [0,100].
	Normalized float64

	// Weight is the criterion's configured weight.
	Weight int
}

// ScoreResult is the output of one recompute pass.
type ScoreResult struct {
	// Items are the scored items in ranked display order.
	Items []Item `json:"items"`

	// WinnerID is the resolved winner, or empty when there is none.
	WinnerID string `json:"winner_id,omitempty"`

	// Warnings lists non-fatal degenerate-input signals.
	Warnings []DegenerateInputWarning `json:"warnings,omitempty"`
}

// HasWarnings reports whether the pass surfaced any degenerate input.
func (r ScoreResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// HasWarning reports whether a warning with the given code was surfaced.
func (r ScoreResult) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
