// Package format converts amounts and dates between the loosely typed values
// the remote API returns and canonical numbers and display strings.
package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// ParseAmount converts a number, numeric string or localized currency string
// into a float. It never returns NaN or an infinity; anything it cannot
// understand is 0.
func ParseAmount(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case json.Number:
		return ParseAmountString(x.String())
	case string:
		return ParseAmountString(x)
	case gjson.Result:
		return ParseAmountResult(x)
	default:
		return 0
	}
}

// ParseAmountResult parses a JSON value. Numbers are used as-is, strings go
// through ParseAmountString, everything else is 0.
func ParseAmountResult(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return finite(r.Num)
	case gjson.String:
		return ParseAmountString(r.Str)
	default:
		return 0
	}
}

// ParseAmountString strips every rune that is not a digit, minus sign or
// decimal point and parses the longest numeric prefix of what remains, so
// "₹2,36,000.00" is 236000 and "invalid" is 0.
func ParseAmountString(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	num := numericPrefix(b.String())
	if num == "" {
		return 0
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// numericPrefix returns the leading -?digits[.digits] run of s, or "" when
// it contains no digit.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i]
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(finite(x)).Round(2).InexactFloat64()
}

// FormatPercent renders a percentage with one decimal, e.g. "42.5%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(finite(p)).StringFixed(1) + "%"
}
