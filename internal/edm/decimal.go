package edm

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Edm.Decimal follows the 96-bit decimal range of the content platform.
var (
	maxDecimal = decimal.RequireFromString("79228162514264337593543950335")
	minDecimal = maxDecimal.Neg()
)

// ParseDecimal parses a decimal literal and checks it against the Edm.Decimal range.
func ParseDecimal(text string) (Literal, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Null(), fmt.Errorf("cannot parse '%s' as Edm.Decimal: %w", text, err)
	}
	if d.GreaterThan(maxDecimal) || d.LessThan(minDecimal) {
		return Null(), fmt.Errorf("value %s out of range for Edm.Decimal", text)
	}
	return Decimal(d), nil
}
