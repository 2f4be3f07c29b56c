// Package convention provides the field-naming conventions search backends
// use to map a qualified property name to the physical indexed field.
package convention

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// Convention maps a qualified property name and its declared type to the
// name of the indexed field.
type Convention interface {
	FieldName(qualified string, kind edm.Kind, collection bool) string
}

// Func adapts a function to the Convention interface.
type Func func(qualified string, kind edm.Kind, collection bool) string

// FieldName calls f.
func (f Func) FieldName(qualified string, kind edm.Kind, collection bool) string {
	return f(qualified, kind, collection)
}

// Verbatim uses the qualified name as the field name.
type Verbatim struct{}

// FieldName returns qualified unchanged.
func (Verbatim) FieldName(qualified string, _ edm.Kind, _ bool) string {
	return qualified
}

// Type suffixes appended by TypeSuffix.
const (
	SuffixString = "$$string"
	SuffixNumber = "$$number"
	SuffixDate   = "$$date"
	SuffixBool   = "$$bool"
)

// TypeSuffix appends a suffix naming the backend type of the field, so that
// values of different types never share an indexed field.
type TypeSuffix struct{}

// FieldName returns qualified followed by the suffix of kind.
func (TypeSuffix) FieldName(qualified string, kind edm.Kind, _ bool) string {
	switch {
	case kind == edm.KindString:
		return qualified + SuffixString
	case kind.IsNumeric():
		return qualified + SuffixNumber
	case kind == edm.KindDateTime:
		return qualified + SuffixDate
	case kind == edm.KindBoolean:
		return qualified + SuffixBool
	default:
		return qualified
	}
}

// ByName returns the convention registered under name ("verbatim" or "typesuffix").
func ByName(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "verbatim":
		return Verbatim{}, nil
	case "typesuffix", "type-suffix", "type_suffix":
		return TypeSuffix{}, nil
	}
	return nil, fmt.Errorf("unknown field naming convention: %s", name)
}
