package edm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  Literal
	}{
		{"123", Int32(123)},
		{"-5", Int32(-5)},
		{"2147483648", Int64(2147483648)},
		{"5L", Int64(5)},
		{"1.5", Decimal(decimal.RequireFromString("1.5"))},
		{"1.5M", Decimal(decimal.RequireFromString("1.5"))},
		{"2.5f", Single(2.5)},
		{"2.5d", Double(2.5)},
		{"1e3", Double(1000)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if err != nil {
				t.Fatalf("ParseNumber(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseNumber(%q) = %v (%s), want %v (%s)", tt.input, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestParseNumber_Errors(t *testing.T) {
	for _, input := range []string{"", "99999999999999999999", "1.5L", "79228162514264337593543950336M"} {
		if _, err := ParseNumber(input); err == nil {
			t.Errorf("ParseNumber(%q) expected error", input)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2017-12-01T12:00:00Z", time.Date(2017, 12, 1, 12, 0, 0, 0, time.UTC)},
		{"2017-12-01T12:00Z", time.Date(2017, 12, 1, 12, 0, 0, 0, time.UTC)},
		{"2017-12-01T13:00:00+01:00", time.Date(2017, 12, 1, 12, 0, 0, 0, time.UTC)},
		{"2017-12-01T12:00:00.5Z", time.Date(2017, 12, 1, 12, 0, 0, 500000000, time.UTC)},
		{"2017-12-01", time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			if err != nil {
				t.Fatalf("ParseDateTime(%q) error: %v", tt.input, err)
			}
			if got.Kind() != KindDateTime {
				t.Fatalf("kind = %s, want %s", got.Kind(), KindDateTime)
			}
			value, _ := got.Time()
			if !value.Equal(tt.want) || value.Location() != time.UTC {
				t.Errorf("ParseDateTime(%q) = %v, want %v", tt.input, value, tt.want)
			}
		})
	}
}

func TestParseDateTime_Errors(t *testing.T) {
	for _, input := range []string{"2017-13-01", "2017-12-01T25:00:00Z", "2017-12-01T12:00:00"} {
		if _, err := ParseDateTime(input); err == nil {
			t.Errorf("ParseDateTime(%q) expected error", input)
		}
	}
}
