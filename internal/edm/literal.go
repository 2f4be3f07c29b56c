package edm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Literal is a literal value tagged with its semantic type.
// The zero value is the null literal.
type Literal struct {
	kind  Kind
	value interface{}
}

// Null returns the null literal.
func Null() Literal { return Literal{kind: KindNull} }

// String returns an Edm.String literal.
func String(v string) Literal { return Literal{kind: KindString, value: v} }

// Int32 returns an Edm.Int32 literal.
func Int32(v int32) Literal { return Literal{kind: KindInt32, value: v} }

// Int64 returns an Edm.Int64 literal.
func Int64(v int64) Literal { return Literal{kind: KindInt64, value: v} }

// Boolean returns an Edm.Boolean literal.
func Boolean(v bool) Literal { return Literal{kind: KindBoolean, value: v} }

// DateTime returns a date-time literal normalized to UTC.
func DateTime(v time.Time) Literal { return Literal{kind: KindDateTime, value: v.UTC()} }

// Decimal returns an Edm.Decimal literal.
func Decimal(v decimal.Decimal) Literal { return Literal{kind: KindDecimal, value: v} }

// Single returns an Edm.Single literal.
func Single(v float32) Literal { return Literal{kind: KindSingle, value: v} }

// Double returns an Edm.Double literal.
func Double(v float64) Literal { return Literal{kind: KindDouble, value: v} }

// Kind returns the literal's type.
func (l Literal) Kind() Kind { return l.kind }

// IsNull reports whether the literal is null.
func (l Literal) IsNull() bool { return l.kind == KindNull }

// Value returns the underlying Go value: string, int32, int64, bool,
// time.Time, decimal.Decimal, float32, float64, or nil for null.
func (l Literal) Value() interface{} { return l.value }

// Float64 returns the literal as a float64 for numeric kinds.
func (l Literal) Float64() (float64, bool) {
	switch v := l.value.(type) {
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	}
	return 0, false
}

// Time returns the literal as a time for date-time literals.
func (l Literal) Time() (time.Time, bool) {
	t, ok := l.value.(time.Time)
	return t, ok
}

// Text returns the literal as a plain string without quoting.
func (l Literal) Text() string {
	switch v := l.value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case decimal.Decimal:
		return v.String()
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// String converts to OData literal format
func (l Literal) String() string {
	switch l.kind {
	case KindString:
		return "'" + l.Text() + "'"
	case KindInt64:
		return l.Text() + "L"
	case KindDecimal:
		return l.Text() + "M"
	case KindSingle:
		return l.Text() + "f"
	case KindDouble:
		return l.Text() + "d"
	default:
		return l.Text()
	}
}

// Equal reports whether two literals have the same kind and value.
func (l Literal) Equal(other Literal) bool {
	if l.kind != other.kind {
		return false
	}
	switch v := l.value.(type) {
	case time.Time:
		o, ok := other.value.(time.Time)
		return ok && v.Equal(o)
	case decimal.Decimal:
		o, ok := other.value.(decimal.Decimal)
		return ok && v.Equal(o)
	default:
		return l.value == other.value
	}
}

// MarshalJSON encodes the literal as {"type": ..., "value": ...}.
func (l Literal) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch v := l.value.(type) {
	case decimal.Decimal:
		value = v.String()
	case time.Time:
		value = v.Format(time.RFC3339Nano)
	default:
		value = v
	}
	return json.Marshal(struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value"`
	}{Type: l.kind.String(), Value: value})
}
