package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while editing or scoring comparatives.
var (
	// ErrUnknownCriterionType indicates a criterion type outside the closed set.
	ErrUnknownCriterionType = errors.New("unknown criterion type")

	// ErrUnknownScoringMethod indicates an unsupported scoring method.
	ErrUnknownScoringMethod = errors.New("unknown scoring method")

	// ErrNotFound indicates that a comparative, criterion, or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a comparative with the same ID is stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionConflict indicates that a comparative changed since it was read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrLockNotAcquired indicates that another recompute holds the comparative.
	ErrLockNotAcquired = errors.New("lock not acquired")

	// ErrTemplateNotFound indicates that no template with the requested name exists.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrWinnerManaged indicates a manual winner override while the engine
	// owns the winner.
	ErrWinnerManaged = errors.New("winner is managed by ranking")
)

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf adds a formatted error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// ErrOrNil returns e when it holds errors and nil otherwise, so callers can
// return it directly as an error value.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// WarningCode classifies a DegenerateInputWarning.
type WarningCode string

// Degenerate input conditions surfaced next to scoring results.
const (
	// WarnWeightSumMismatch means visible weights do not add up to 100 under
	// weighted_average; scores scale proportionally.
	WarnWeightSumMismatch WarningCode = "weight_sum_mismatch"

	// WarnZeroTotalWeight means every eligible criterion has weight 0 under
	// weighted_average; every score is 0.
	WarnZeroTotalWeight WarningCode = "zero_total_weight"

	// WarnNoEligibleCriteria means no visible criterion can be scored.
	WarnNoEligibleCriteria WarningCode = "no_eligible_criteria"

	// WarnUnknownScoringMethod means the comparative names a scoring method
	// the engine does not implement; it is scored as "none".
	WarnUnknownScoringMethod WarningCode = "unknown_scoring_method"
)

// DegenerateInputWarning is a non-fatal signal that scoring produced a usable
// but degenerate result. It is returned alongside results, never thrown.
type DegenerateInputWarning struct {
	// Code identifies the condition.
	Code WarningCode `json:"code"`

	// Message describes the condition for the editor.
	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (w DegenerateInputWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
