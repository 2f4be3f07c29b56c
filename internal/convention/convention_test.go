package convention

import (
	"testing"

	"github.com/nlstn/go-odata-search/internal/edm"
)

func TestVerbatim(t *testing.T) {
	if got := (Verbatim{}).FieldName("ContentApiModel.Name", edm.KindString, false); got != "ContentApiModel.Name" {
		t.Errorf("FieldName() = %q", got)
	}
}

func TestTypeSuffix(t *testing.T) {
	tests := []struct {
		kind edm.Kind
		want string
	}{
		{edm.KindString, "M.Name$$string"},
		{edm.KindInt32, "M.Name$$number"},
		{edm.KindInt64, "M.Name$$number"},
		{edm.KindDecimal, "M.Name$$number"},
		{edm.KindSingle, "M.Name$$number"},
		{edm.KindDouble, "M.Name$$number"},
		{edm.KindDateTime, "M.Name$$date"},
		{edm.KindBoolean, "M.Name$$bool"},
		{edm.KindNull, "M.Name"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := (TypeSuffix{}).FieldName("M.Name", tt.kind, false); got != tt.want {
				t.Errorf("FieldName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunc(t *testing.T) {
	c := Func(func(q string, _ edm.Kind, collection bool) string {
		if collection {
			return q + "[]"
		}
		return q
	})
	if got := c.FieldName("M.Tags", edm.KindString, true); got != "M.Tags[]" {
		t.Errorf("FieldName() = %q", got)
	}
}

func TestByName(t *testing.T) {
	tests := map[string]Convention{
		"":            Verbatim{},
		"verbatim":    Verbatim{},
		"TypeSuffix":  TypeSuffix{},
		"type-suffix": TypeSuffix{},
	}
	for name, want := range tests {
		got, err := ByName(name)
		if err != nil {
			t.Errorf("ByName(%q) error: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ByName(%q) = %T, want %T", name, got, want)
		}
	}
	if _, err := ByName("camel"); err == nil {
		t.Error("expected error for unknown convention")
	}
}
