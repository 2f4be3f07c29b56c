// Package search translates bound query expressions into backend-agnostic
// filter trees and sort specifications.
package search

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// FilterNode is a node of a filter tree. The set of node types is closed:
// Term, Not, Exists, Range, Wildcard, And and Or.
type FilterNode interface {
	fmt.Stringer
	json.Marshaler
	filterNode()
}

// Term matches documents whose field equals the value exactly.
type Term struct {
	Field string
	Value edm.Literal
}

// Not matches documents the inner filter does not match.
type Not struct {
	Filter FilterNode
}

// Exists matches documents that have a value for the field.
type Exists struct {
	Field string
}

// Range matches documents whose field lies between the bounds. Both bounds
// are always set; an open side is the minimum or maximum of Type.
type Range struct {
	Field        string
	Type         edm.Kind
	Lower        edm.Literal
	Upper        edm.Literal
	IncludeLower bool
	IncludeUpper bool
}

// Wildcard matches documents whose field matches the pattern, where '*'
// matches any sequence of characters.
type Wildcard struct {
	Field   string
	Pattern string
}

// And matches documents both children match.
type And struct {
	Left  FilterNode
	Right FilterNode
}

// Or matches documents either child matches.
type Or struct {
	Left  FilterNode
	Right FilterNode
}

func (*Term) filterNode()     {}
func (*Not) filterNode()      {}
func (*Exists) filterNode()   {}
func (*Range) filterNode()    {}
func (*Wildcard) filterNode() {}
func (*And) filterNode()      {}
func (*Or) filterNode()       {}

func (f *Term) String() string { return fmt.Sprintf("term(%s, %s)", f.Field, f.Value) }

func (f *Not) String() string { return fmt.Sprintf("not(%s)", f.Filter) }

func (f *Exists) String() string { return fmt.Sprintf("exists(%s)", f.Field) }

func (f *Range) String() string {
	open, closing := "(", ")"
	if f.IncludeLower {
		open = "["
	}
	if f.IncludeUpper {
		closing = "]"
	}
	return fmt.Sprintf("range(%s, %s, %s%s, %s%s)", f.Field, f.Type, open, f.Lower, f.Upper, closing)
}

func (f *Wildcard) String() string { return fmt.Sprintf("wildcard(%s, %s)", f.Field, f.Pattern) }

func (f *And) String() string { return fmt.Sprintf("and(%s, %s)", f.Left, f.Right) }

func (f *Or) String() string { return fmt.Sprintf("or(%s, %s)", f.Left, f.Right) }

func (f *Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string      `json:"type"`
		Field string      `json:"field"`
		Value edm.Literal `json:"value"`
	}{"term", f.Field, f.Value})
}

func (f *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string     `json:"type"`
		Filter FilterNode `json:"filter"`
	}{"not", f.Filter})
}

func (f *Exists) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Field string `json:"field"`
	}{"exists", f.Field})
}

func (f *Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type         string      `json:"type"`
		Field        string      `json:"field"`
		ValueType    string      `json:"valueType"`
		Lower        edm.Literal `json:"lower"`
		Upper        edm.Literal `json:"upper"`
		IncludeLower bool        `json:"includeLower"`
		IncludeUpper bool        `json:"includeUpper"`
	}{"range", f.Field, f.Type.String(), f.Lower, f.Upper, f.IncludeLower, f.IncludeUpper})
}

func (f *Wildcard) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Field   string `json:"field"`
		Pattern string `json:"pattern"`
	}{"wildcard", f.Field, f.Pattern})
}

func (f *And) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string     `json:"type"`
		Left  FilterNode `json:"left"`
		Right FilterNode `json:"right"`
	}{"and", f.Left, f.Right})
}

func (f *Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string     `json:"type"`
		Left  FilterNode `json:"left"`
		Right FilterNode `json:"right"`
	}{"or", f.Left, f.Right})
}

// Fingerprint returns a hash of the canonical form of a filter tree. Equal
// trees have equal fingerprints.
func Fingerprint(f FilterNode) uint64 {
	if f == nil {
		return 0
	}
	return xxhash.Sum64String(f.String())
}
