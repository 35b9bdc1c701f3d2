package extract

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// decimalPlaces is the precision stored for torque and angle values.
const decimalPlaces = 2

// SafeDecimal parses text as a decimal rounded to two places, half away from
// zero. Blank or unparsable text yields zero.
func SafeDecimal(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(decimalPlaces)
}

// SafeInt parses text as a non-negative integer. Blank, unparsable,
// out-of-range or negative text yields zero.
func SafeInt(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
