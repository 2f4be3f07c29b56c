package edm

import (
	"fmt"
	"math"
	"time"
)

var (
	minDateTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDateTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999900, time.UTC)
)

// MinValue returns the smallest representable value of a rangeable kind.
func MinValue(kind Kind) (Literal, error) {
	switch kind {
	case KindInt32:
		return Int32(math.MinInt32), nil
	case KindInt64:
		return Int64(math.MinInt64), nil
	case KindSingle:
		return Single(-math.MaxFloat32), nil
	case KindDouble:
		return Double(-math.MaxFloat64), nil
	case KindDecimal:
		return Decimal(minDecimal), nil
	case KindDateTime:
		return DateTime(minDateTime), nil
	}
	return Null(), fmt.Errorf("type %s has no minimum value", kind)
}

// MaxValue returns the largest representable value of a rangeable kind.
func MaxValue(kind Kind) (Literal, error) {
	switch kind {
	case KindInt32:
		return Int32(math.MaxInt32), nil
	case KindInt64:
		return Int64(math.MaxInt64), nil
	case KindSingle:
		return Single(math.MaxFloat32), nil
	case KindDouble:
		return Double(math.MaxFloat64), nil
	case KindDecimal:
		return Decimal(maxDecimal), nil
	case KindDateTime:
		return DateTime(maxDateTime), nil
	}
	return Null(), fmt.Errorf("type %s has no maximum value", kind)
}

// Promote returns the kind two numeric operands are compared as.
func Promote(a, b Kind) (Kind, bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return KindNull, false
	}
	if a == b {
		return a, true
	}
	if a == KindDecimal || b == KindDecimal {
		other := a
		if a == KindDecimal {
			other = b
		}
		if other == KindInt32 || other == KindInt64 {
			return KindDecimal, true
		}
		return KindDouble, true
	}
	if numericRank[a] > numericRank[b] {
		return a, true
	}
	return b, true
}

var numericRank = map[Kind]int{
	KindInt32:  1,
	KindInt64:  2,
	KindSingle: 3,
	KindDouble: 4,
}
