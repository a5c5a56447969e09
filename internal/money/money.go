package money

import (
	"github.com/shopspring/decimal"
)

// Cents rounds v half away from zero to two decimal places.
func Cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format renders v rounded to two decimals, e.g. "1471.68".
func Format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
