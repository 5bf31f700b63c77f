package advisor

import (
	"math"
	"regexp"

	"github.com/shopspring/decimal"
)

var nonNumericChars = regexp.MustCompile(`[^\d.\-]`)

// ParseAmount coerces a cell into a signed decimal. Text is stripped of every
// character except digits, '.' and '-' ("$1,200.50" -> 1200.50, "-45 kr" ->
// -45). Anything that still does not parse, NaN and infinities count as zero.
func ParseAmount(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case string:
		cleaned := nonNumericChars.ReplaceAllString(val, "")
		if cleaned == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
