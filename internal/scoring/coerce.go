package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// currencySymbols are stripped from the front of numeric strings.
const currencySymbols = "$€£¥₹"

// numericValue extracts a finite float64 from a raw criterion value.
// Unparseable input, booleans, NaN and ±Inf report false and are treated as
// missing by normalization.
func numericValue(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := parseNumericString(v)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseNumericString accepts editor-entered numbers such as " 1,250 ",
// "$49.99" or "75%".
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimLeft(s, currencySymbols)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// boolValue extracts a boolean from a raw criterion value. Numbers map
// nonzero to true; strings accept strconv.ParseBool forms plus yes/no/on/off.
func boolValue(raw any) (bool, bool) {
	switch v := raw.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "yes", "y", "on":
			return true, true
		case "no", "n", "off":
			return false, true
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, false
		}
		return b, true
	}

	if f, ok := numericValue(raw); ok {
		return f != 0, true
	}
	return false, false
}
