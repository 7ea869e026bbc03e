package scoring

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-compare/internal/domain"
)

// ValidateCriterion checks a single criterion at mutation time. Unknown
// types, out-of-range weights, and min > max bounds are rejected with a
// *domain.ValidationError.
func ValidateCriterion(c domain.Criterion) error {
	ve := domain.NewValidationError(fmt.Sprintf("criterion %q", c.ID))
	addFieldErrors(ve, "", validate.Struct(c))
	checkBounds(ve, c)
	return ve.ErrOrNil()
}

// ValidateCriteria validates every criterion and rejects duplicate IDs.
func ValidateCriteria(criteria []domain.Criterion) error {
	ve := domain.NewValidationError("criteria")
	for i, c := range criteria {
		addFieldErrors(ve, fmt.Sprintf("criteria[%d]: ", i), validate.Struct(c))
	}
	checkCriteria(ve, criteria)
	return ve.ErrOrNil()
}

// ValidateTemplate validates a template's metadata and criteria.
func ValidateTemplate(t domain.Template) error {
	ve := domain.NewValidationError(fmt.Sprintf("template %q", t.Name))
	addFieldErrors(ve, "", validate.Struct(t))
	checkCriteria(ve, t.Criteria)
	return ve.ErrOrNil()
}

// ValidateComparative validates the full comparative: scoring method,
// criteria, items, and value keys. It is meant for the edge of the system;
// ComputeScores itself never fails.
func ValidateComparative(c domain.Comparative) error {
	ve := domain.NewValidationError(fmt.Sprintf("comparative %q", c.ID))
	addFieldErrors(ve, "", validate.Struct(c))

	checkCriteria(ve, c.Criteria)

	seen := make(map[string]struct{}, len(c.Items))
	for i, it := range c.Items {
		if _, dup := seen[it.ID]; dup && it.ID != "" {
			ve.AddErrorf("items[%d]: %v: %q", i, ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}

		for key, v := range it.Values {
			if v.CriterionID != "" && v.CriterionID != key {
				ve.AddErrorf("items[%d]: value keyed %q references criterion %q", i, key, v.CriterionID)
			}
		}
	}
	return ve.ErrOrNil()
}

// checkCriteria runs the checks struct tags cannot express: duplicate IDs
// and inverted Min/Max hints.
func checkCriteria(ve *domain.ValidationError, criteria []domain.Criterion) {
	seen := make(map[string]struct{}, len(criteria))
	for i, c := range criteria {
		checkBounds(ve, c)
		if _, dup := seen[c.ID]; dup && c.ID != "" {
			ve.AddErrorf("criteria[%d]: %v: %q", i, ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
}

// checkBounds rejects inverted Min/Max hints.
func checkBounds(ve *domain.ValidationError, c domain.Criterion) {
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		ve.AddErrorf("criterion %q: min %v greater than max %v", c.ID, *c.Min, *c.Max)
	}
}

// addFieldErrors converts validator output into readable messages on ve.
func addFieldErrors(ve *domain.ValidationError, prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.AddError(prefix + err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.AddError(prefix + describeFieldError(fe))
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "criteriontype":
		return fmt.Sprintf("%s: %v: %q", fe.Namespace(), domain.ErrUnknownCriterionType, fmt.Sprint(fe.Value()))
	case "scoringmethod":
		return fmt.Sprintf("%s: %v: %q", fe.Namespace(), domain.ErrUnknownScoringMethod, fmt.Sprint(fe.Value()))
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}
