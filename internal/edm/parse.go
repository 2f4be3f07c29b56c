package edm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseNumber infers the kind of a numeric literal from its text.
//
// Suffixes select the kind explicitly: L (Int64), M (Decimal), F (Single),
// D (Double). Without a suffix an integer is Int32 when it fits and Int64
// otherwise, a fractional value is Decimal, and an exponent makes it Double.
func ParseNumber(text string) (Literal, error) {
	if text == "" {
		return Null(), fmt.Errorf("empty numeric literal")
	}

	body, suffix := text, byte(0)
	switch last := text[len(text)-1]; last {
	case 'l', 'L', 'm', 'M', 'f', 'F', 'd', 'D':
		body, suffix = text[:len(text)-1], last|0x20
	}

	switch suffix {
	case 'l':
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Null(), fmt.Errorf("value %s out of range for Edm.Int64", text)
		}
		return Int64(v), nil
	case 'm':
		return ParseDecimal(body)
	case 'f':
		v, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return Null(), fmt.Errorf("cannot parse '%s' as Edm.Single", text)
		}
		return Single(float32(v)), nil
	case 'd':
		return parseDouble(body)
	}

	if strings.ContainsAny(body, "eE") {
		return parseDouble(body)
	}
	if strings.Contains(body, ".") {
		return ParseDecimal(body)
	}

	v, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return Null(), fmt.Errorf("numeric literal %s out of range for Edm.Int64", text)
	}
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int32(int32(v)), nil
	}
	return Int64(v), nil
}

func parseDouble(text string) (Literal, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Null(), fmt.Errorf("cannot parse '%s' as Edm.Double", text)
	}
	return Double(v), nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// ParseDateTime parses a date-time literal (RFC 3339, seconds optional) or
// a date literal, which is taken as midnight UTC.
func ParseDateTime(text string) (Literal, error) {
	if !strings.Contains(text, "T") {
		d, err := time.Parse("2006-01-02", text)
		if err != nil {
			return Null(), fmt.Errorf("cannot parse '%s' as Edm.Date: %w", text, err)
		}
		return DateTime(d), nil
	}
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return DateTime(t), nil
		}
		lastErr = err
	}
	return Null(), fmt.Errorf("cannot parse '%s' as Edm.DateTimeOffset: %w", text, lastErr)
}
