// Package odatasearch translates OData $filter and $orderby expressions into
// backend-agnostic filter trees and sort specifications for a document search
// index.
//
// A Translator binds expressions against the Schema of one content type:
//
//	schema := odatasearch.MustSchema("ArticlePage", true,
//		odatasearch.Property{Path: "Name", Kind: odatasearch.KindString},
//		odatasearch.Property{Path: "ContentLink.Id", Kind: odatasearch.KindInt32},
//	)
//	t, err := odatasearch.NewTranslator(schema)
//	...
//	filter, err := t.ParseFilter("ContentLink/Id eq 123 and Name eq 'Start'")
//	// and(term(ContentApiModel.ContentLink.Id, 123), term(ContentApiModel.Name, 'Start'))
//
// Every translation failure is reported as a *FilterParseError or an
// *OrderByParseError.
package odatasearch

import (
	"io"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/search"
)

// Filter tree.
type (
	FilterNode = search.FilterNode
	Term       = search.Term
	Not        = search.Not
	Exists     = search.Exists
	Range      = search.Range
	Wildcard   = search.Wildcard
	And        = search.And
	Or         = search.Or
)

// Sort specification.
type (
	SortCriterion = search.SortCriterion
	Direction     = search.Direction
	MissingPolicy = search.MissingPolicy
)

const (
	Ascending  = search.Ascending
	Descending = search.Descending

	MissingFirst = search.MissingFirst
	MissingLast  = search.MissingLast
)

// Errors.
type (
	FilterParseError  = search.FilterParseError
	OrderByParseError = search.OrderByParseError
)

// Schema and values.
type (
	Schema   = metadata.Schema
	Property = metadata.Property
	Kind     = edm.Kind
	Literal  = edm.Literal
)

const (
	KindNull     = edm.KindNull
	KindString   = edm.KindString
	KindInt32    = edm.KindInt32
	KindInt64    = edm.KindInt64
	KindBoolean  = edm.KindBoolean
	KindDateTime = edm.KindDateTime
	KindDecimal  = edm.KindDecimal
	KindSingle   = edm.KindSingle
	KindDouble   = edm.KindDouble
)

// Field naming.
type (
	Naming     = search.Naming
	Convention = convention.Convention
)

// DefaultNaming returns the naming of the content index: namespace
// ContentApiModel with the .lowercase and .sort companion suffixes.
func DefaultNaming() Naming { return search.DefaultNaming() }

// ConventionByName returns the field-naming convention registered under
// name: "verbatim" (the default) or "typesuffix".
func ConventionByName(name string) (Convention, error) { return convention.ByName(name) }

// NewSchema creates the schema of a content type.
func NewSchema(name string, open bool, props ...Property) (*Schema, error) {
	return metadata.NewSchema(name, open, props...)
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, open bool, props ...Property) *Schema {
	return metadata.MustSchema(name, open, props...)
}

// SchemaFromStruct derives a schema from the exported fields of a struct.
func SchemaFromStruct(v interface{}, open bool) (*Schema, error) {
	return metadata.AnalyzeStruct(v, open)
}

// LoadSchema reads a YAML schema document.
func LoadSchema(r io.Reader) (*Schema, error) { return metadata.LoadSchema(r) }

// Fingerprint returns a hash of the canonical form of a filter tree.
func Fingerprint(f FilterNode) uint64 { return search.Fingerprint(f) }
