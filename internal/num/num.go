// Package num parses loosely formatted numeric form values, substituting a
// fallback instead of failing.
package num

import (
	"math"
	"strconv"
	"strings"
)

// Getter is satisfied by url.Values and anything else keyed by form field name.
type Getter interface {
	Get(key string) string
}

// Float parses raw as a decimal number. Blank, unparsable, NaN and infinite
// values yield fallback.
func Float(raw string, fallback float64) float64 {
	cleaned := clean(raw)
	if cleaned == "" {
		return fallback
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	return value
}

// MaxMoney is the largest amount Money accepts. Sums of a worksheet's fields
// stay far inside float64 range below it.
const MaxMoney = 1e12

// Money is Float restricted to amounts in [0, MaxMoney].
func Money(raw string, fallback float64) float64 {
	value := Float(raw, fallback)
	if value < 0 || value > MaxMoney {
		return fallback
	}
	return value
}

// Int parses raw as a whole number. Decimal input is truncated toward zero
// ("48.0" and "48.9" both give 48). Values outside the int32 range yield
// fallback.
func Int(raw string, fallback int) int {
	cleaned := clean(raw)
	if cleaned == "" {
		return fallback
	}

	if value, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		if value > math.MaxInt32 || value < math.MinInt32 {
			return fallback
		}
		return int(value)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	if value > math.MaxInt32 || value < math.MinInt32 {
		return fallback
	}
	return int(value)
}

// Present reports whether any of keys carries a non-blank value.
func Present(values Getter, keys ...string) bool {
	for _, key := range keys {
		if strings.TrimSpace(values.Get(key)) != "" {
			return true
		}
	}
	return false
}

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}
