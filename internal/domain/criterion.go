// Package domain contains pure, dependency-free domain models and types
// for the comparison scoring engine.
package domain

import (
	"fmt"
	"strings"
)

// CriterionType identifies how a criterion's raw values are interpreted and
// normalized. The set is closed; ParseCriterionType rejects anything else.
type CriterionType string

// Recognized criterion types.
const (
	// CriterionNumeric is a free number normalized against the observed range.
	CriterionNumeric CriterionType = "numeric"

	// CriterionBoolean is a yes/no value mapped to 100 or 0.
	CriterionBoolean CriterionType = "boolean"

	// CriterionRating is a 1-5 rating mapped linearly onto 0-100.
	CriterionRating CriterionType = "rating"

	// CriterionText is free text. It is displayed but never scored.
	CriterionText CriterionType = "text"

	// CriterionPrice is a monetary amount normalized against the observed range.
	CriterionPrice CriterionType = "price"

	// CriterionPercentage is a percentage normalized against the observed range.
	CriterionPercentage CriterionType = "percentage"

	// CriterionSelect is a categorical choice. It is displayed but never scored.
	CriterionSelect CriterionType = "select"
)

// CriterionTypes lists every recognized criterion type in a stable order.
var CriterionTypes = []CriterionType{
	CriterionNumeric,
	CriterionBoolean,
	CriterionRating,
	CriterionText,
	CriterionPrice,
	CriterionPercentage,
	CriterionSelect,
}

// ParseCriterionType converts s into a CriterionType. Matching ignores case
// and surrounding whitespace.
func ParseCriterionType(s string) (CriterionType, error) {
	t := CriterionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCriterionType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the recognized criterion types.
func (t CriterionType) Valid() bool {
	switch t {
	case CriterionNumeric, CriterionBoolean, CriterionRating, CriterionText,
		CriterionPrice, CriterionPercentage, CriterionSelect:
		return true
	}
	return false
}

// Scorable reports whether values of this type take part in aggregation.
// Text and select criteria have no intrinsic ordering and are display-only.
func (t CriterionType) Scorable() bool {
	switch t {
	case CriterionNumeric, CriterionBoolean, CriterionRating,
		CriterionPrice, CriterionPercentage:
		return true
	case CriterionText, CriterionSelect:
		return false
	}
	return false
}

// RangeBased reports whether the type is normalized against the range of
// values observed across items rather than a fixed scale.
func (t CriterionType) RangeBased() bool {
	switch t {
	case CriterionNumeric, CriterionPrice, CriterionPercentage:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t CriterionType) String() string { return string(t) }

// Criterion is a named, typed, weighted dimension along which the items of a
// comparative are evaluated.
type Criterion struct {
	// ID is unique within the owning comparative.
	ID string `json:"id" yaml:"id" validate:"required,max=100"`

	// Name is the human-readable label.
	Name string `json:"name" yaml:"name" validate:"required,min=1,max=255"`

	// Type selects the normalization rule.
	Type CriterionType `json:"type" yaml:"type" validate:"required,criteriontype"`

	// Weight is only meaningful under the weighted_average scoring method.
	Weight int `json:"weight" yaml:"weight" validate:"min=0,max=100"`

	// HigherIsBetter is the direction of desirability.
	HigherIsBetter bool `json:"higher_is_better" yaml:"higher_is_better"`

	// Order defines both display and iteration order.
	Order int `json:"order" yaml:"order" validate:"min=0"`

	// IsVisible excludes the criterion from aggregation and display when false.
	IsVisible bool `json:"is_visible" yaml:"is_visible"`

	// Min and Max are validation hints for numeric-family types. Normalization
	// always uses the observed range instead.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// Unit is an optional display affix, e.g. "$" for prices or "kg".
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty" validate:"max=16"`

	// Options lists the allowed choices of a select criterion.
	Options []string `json:"options,omitempty" yaml:"options,omitempty" validate:"max=100,dive,min=1,max=255"`
}

// Clone returns a deep copy of c.
func (c Criterion) Clone() Criterion {
	out := c
	if c.Min != nil {
		v := *c.Min
		out.Min = &v
	}
	if c.Max != nil {
		v := *c.Max
		out.Max = &v
	}
	if c.Options != nil {
		out.Options = append([]string(nil), c.Options...)
	}
	return out
}

// CloneCriteria returns a deep copy of criteria.
func CloneCriteria(criteria []Criterion) []Criterion {
	if criteria == nil {
		return nil
	}
	out := make([]Criterion, len(criteria))
	for i, c := range criteria {
		out[i] = c.Clone()
	}
	return out
}

// Template is a reusable, comparative-independent snapshot of a criteria
// configuration. Applying a template copies it; nothing refers back to it.
type Template struct {
	// Name identifies the template in a template store.
	Name string `json:"name" yaml:"name" validate:"required,min=1,max=255"`

	// Description is free-form documentation for editors.
	Description string `json:"description,omitempty" yaml:"description,omitempty" validate:"max=1000"`

	// Criteria is the configuration that gets cloned onto a comparative.
	Criteria []Criterion `json:"criteria" yaml:"criteria" validate:"required,min=1,max=200,dive"`
}
