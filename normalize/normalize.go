/*
normalize.go - Raw cell value normalization

PURPOSE:
  Converts untyped cells (numbers, currency strings, dates, identifiers)
  into typed values. Every function returns (value, ok): malformed or
  missing input yields ok=false, NEVER a zero or default value. "Missing is
  not zero" is the core governance rule of the whole engine, and it starts
  here.

KEY CONCEPTS:
  - Number:  float64 after stripping thousands separators / currency symbols
  - Money:   decimal.Decimal for currency amounts (no float drift in sums)
  - Date:    permissive parsing via dateparse
  - Key:     project identity normalization (trim + upper-case); rejects
             the known not-an-identifier sentinels

DESIGN PRINCIPLES:
  1. Absence is explicit: ok=false propagates, it is never silently filled
  2. Precision: currency goes through decimal.Decimal
  3. Tolerance: any cell type the caller's spreadsheet layer produces is
     accepted (string, numeric, time.Time)

SEE ALSO:
  - tabular/mapper.go: Decides WHICH column to normalize
  - portfolio: Consumes these values with per-metric presence gating
*/
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// currencyCleaner strips thousands separators and common currency symbols.
var currencyCleaner = strings.NewReplacer(",", "", "$", "", "€", "", "£", "")

// =============================================================================
// TEXT
// =============================================================================

// Text returns the trimmed string form of a cell. ok=false for nil, empty,
// NaN, or the literal strings "nan"/"none" that spreadsheet exports leak.
func Text(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return "", false
		}
		switch strings.ToLower(s) {
		case "nan", "none", "nat":
			return "", false
		}
		return s, true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case time.Time:
		return x.Format("2006-01-02"), true
	default:
		s := strings.TrimSpace(fmt.Sprint(x))
		if s == "" {
			return "", false
		}
		return s, true
	}
}

// =============================================================================
// NUMBERS
// =============================================================================

// Number parses a cell as a float. Strings are cleaned of separators and
// currency symbols first. Unparsable or missing input is absent, never 0.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case float32:
		return Number(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(currencyCleaner.Replace(x))
		if s == "" {
			return 0, false
		}
		// ParseFloat accepts the literals "nan" and "inf"; those are
		// missing data here, not numbers.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Money parses a cell as a currency amount. Same cleaning as Number, but the
// result is an exact decimal so portfolio-wide sums do not drift.
func Money(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		return Money(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		s := strings.TrimSpace(currencyCleaner.Replace(x))
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// =============================================================================
// DATES
// =============================================================================

// Date parses a cell as a date. time.Time cells pass through; strings go
// through the permissive dateparse parser. Invalid input is absent.
func Date(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		switch strings.ToLower(s) {
		case "nan", "none", "nat":
			return time.Time{}, false
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// =============================================================================
// PROJECT KEYS
// =============================================================================

// Key normalizes a raw identifier for cross-source matching: trimmed and
// upper-cased. ok=false for missing values and for the sentinels that mean
// "no identifier" rather than an identifier ("UNKNOWN", "NOT SPECIFIED").
func Key(v any) (string, bool) {
	s, ok := Text(v)
	if !ok {
		return "", false
	}
	return KeyString(s)
}

// KeyString normalizes an already-string identifier. Same rules as Key.
func KeyString(s string) (string, bool) {
	k := strings.ToUpper(strings.TrimSpace(s))
	if k == "" || k == "UNKNOWN" || k == "NOT SPECIFIED" {
		return "", false
	}
	return k, true
}

// ValidKey reports whether a raw identifier normalizes to a usable key.
func ValidKey(v any) bool {
	_, ok := Key(v)
	return ok
}
