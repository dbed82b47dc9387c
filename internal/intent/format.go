package intent

import (
	"math"
	"strconv"
	"strings"
)

// DefaultRechargeAmount is applied when no amount is sent or the sent
// value cannot be parsed as an integer.
const DefaultRechargeAmount = 199

// formatBalance renders a balance the way the billing system displays it:
// integral values keep one decimal place ("150.0"), fractional values
// print in full.
func formatBalance(balance float64) string {
	if balance == math.Trunc(balance) {
		return strconv.FormatFloat(balance, 'f', 1, 64)
	}
	return strconv.FormatFloat(balance, 'f', -1, 64)
}

// parseAmount coerces a raw request value to a whole rupee amount.
// JSON numbers are truncated, numeric strings parsed as integers after
// trimming whitespace, booleans coerce to 0/1, and everything else
// falls back to DefaultRechargeAmount.
func parseAmount(raw any) int {
	switch v := raw.(type) {
	case nil:
		return DefaultRechargeAmount
	case float64:
		return int(v)
	case int:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return DefaultRechargeAmount
		}
		return n
	default:
		return DefaultRechargeAmount
	}
}
