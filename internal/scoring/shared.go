// Package scoring implements the comparison scoring engine: per-type
// normalization onto a 0-100 scale, aggregation by scoring method,
// competition ranking, winner resolution, weight redistribution, and
// template application.
//
// Everything in this package is a pure function of its inputs. Nothing here
// performs I/O, blocks, or keeps state between calls, so all of it is safe
// for concurrent use.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-compare/internal/domain"
)

// Scale bounds and tolerances shared across the engine.
const (
	// MinScore is the lowest normalized score.
	MinScore = 0.0

	// MaxScore is the highest normalized score.
	MaxScore = 100.0

	// TieEpsilon is the largest score difference still treated as a tie.
	TieEpsilon = 1e-6

	// RatingMin and RatingMax bound the rating scale.
	RatingMin = 1.0
	RatingMax = 5.0

	// TargetWeightSum is the expected sum of visible weights under
	// weighted_average.
	TargetWeightSum = 100
)

// Common errors returned by editing helpers.
var (
	// ErrDuplicateID is returned when an ID is already used in the collection.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrIndexOutOfRange is returned when a move references a missing position.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Package-level validator instance for criterion and comparative validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		panic(fmt.Sprintf("scoring: register validators: %v", err))
	}
	return v
}

// RegisterValidators registers the custom tags used by domain struct tags
// (criteriontype, scoringmethod) with v.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("criteriontype", validateCriterionTypeTag); err != nil {
		return fmt.Errorf("failed to register criteriontype validator: %w", err)
	}
	if err := v.RegisterValidation("scoringmethod", validateScoringMethodTag); err != nil {
		return fmt.Errorf("failed to register scoringmethod validator: %w", err)
	}
	return nil
}

func validateCriterionTypeTag(fl validator.FieldLevel) bool {
	return domain.CriterionType(fl.Field().String()).Valid()
}

func validateScoringMethodTag(fl validator.FieldLevel) bool {
	return domain.ScoringMethod(fl.Field().String()).Valid()
}

// clampScore forces s into [MinScore, MaxScore]. NaN becomes MinScore.
func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// clampWeight forces w into the valid weight range.
func clampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}

// tied reports whether two composite scores are equal within TieEpsilon.
func tied(a, b float64) bool { return math.Abs(a-b) <= TieEpsilon }
