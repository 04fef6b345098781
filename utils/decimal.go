package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LenientDecimal decodes JSON numbers and user-formatted strings such as
// "20,000", "$ 1,234.50" or "-3". Anything that cannot be read as a number
// decodes to zero instead of failing the request; quantity and unit price
// inputs are coerced, not validated.
type LenientDecimal struct {
	decimal.Decimal
}

func (d *LenientDecimal) UnmarshalJSON(data []byte) error {
	d.Decimal = ParseDecimalLenient(string(data))
	return nil
}

func (d LenientDecimal) MarshalJSON() ([]byte, error) {
	return []byte(d.Decimal.String()), nil
}

// ParseDecimalLenient keeps digits, '.' and a leading '-', drops everything
// else (quotes, currency markers, thousands separators) and falls back to
// zero when nothing numeric remains.
func ParseDecimalLenient(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero
	}
	if neg {
		clean = "-" + clean
	}

	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return val
}
