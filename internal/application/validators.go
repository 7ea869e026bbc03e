package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-compare/internal/scoring"
)

// registerCustomValidators registers the semantic version check and the
// criterion type and scoring method tags used by the domain structs.
// registerCustomValidators returns an error if any registration fails.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := scoring.RegisterValidators(v); err != nil {
		return fmt.Errorf("failed to register scoring validators: %w", err)
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}
