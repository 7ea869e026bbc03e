package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ahrav/go-compare/internal/domain"
)

// Display strings are produced with a fixed English printer. Localized
// labels belong to the presentation layer.
var printer = message.NewPrinter(language.English)

// FormatDisplayValue renders raw as a human-readable string for criterion's
// type. Values that cannot be interpreted for the type are rendered as-is so
// the editor still sees what was entered.
func FormatDisplayValue(criterion domain.Criterion, raw any) string {
	if raw == nil {
		return ""
	}

	switch criterion.Type {
	case domain.CriterionBoolean:
		b, ok := boolValue(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		if b {
			return "Yes"
		}
		return "No"

	case domain.CriterionRating:
		v, ok := numericValue(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		v = min(max(v, RatingMin), RatingMax)
		return formatNumber(v) + "/5"

	case domain.CriterionPercentage:
		v, ok := numericValue(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		return formatNumber(v) + "%"

	case domain.CriterionPrice:
		v, ok := numericValue(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		return withUnit(printer.Sprintf("%.2f", v), criterion.Unit)

	case domain.CriterionNumeric:
		v, ok := numericValue(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		return withUnit(formatNumber(v), criterion.Unit)

	case domain.CriterionText, domain.CriterionSelect:
		return fmt.Sprint(raw)
	}
	return fmt.Sprint(raw)
}

// formatNumber prints integers without decimals and everything else with at
// most two, using digit grouping.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	s := printer.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// withUnit attaches a unit: single-symbol units ("$", "€") are prefixed,
// longer ones ("kg", "USD") are suffixed after a space.
func withUnit(s, unit string) string {
	unit = strings.TrimSpace(unit)
	switch {
	case unit == "":
		return s
	case utf8.RuneCountInString(unit) == 1:
		if strings.HasPrefix(s, "-") {
			return "-" + unit + s[1:]
		}
		return unit + s
	default:
		return s + " " + unit
	}
}
