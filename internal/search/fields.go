package search

import (
	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
)

// Default field naming of the content index.
const (
	DefaultNamespace       = "ContentApiModel"
	DefaultLowercaseSuffix = ".lowercase"
	DefaultSortSuffix      = ".sort"
)

// Naming holds the fixed tokens used to build physical field names.
type Naming struct {
	// Namespace prefixes every property path.
	Namespace string
	// LowercaseSuffix is appended to fields compared through tolower.
	LowercaseSuffix string
	// SortSuffix is appended to string fields used for sorting.
	SortSuffix string
}

// DefaultNaming returns the naming of the content index.
func DefaultNaming() Naming {
	return Naming{
		Namespace:       DefaultNamespace,
		LowercaseSuffix: DefaultLowercaseSuffix,
		SortSuffix:      DefaultSortSuffix,
	}
}

// Qualify prefixes a dotted property path with the namespace.
func (n Naming) Qualify(path string) string {
	if n.Namespace == "" {
		return path
	}
	return n.Namespace + "." + path
}

// FieldResolver maps property paths to physical field names. It is
// immutable and safe for concurrent use.
type FieldResolver struct {
	schema     *metadata.Schema
	naming     Naming
	convention convention.Convention
}

// NewFieldResolver creates a resolver for the schema. A nil convention uses
// the qualified path as field name.
func NewFieldResolver(schema *metadata.Schema, naming Naming, conv convention.Convention) *FieldResolver {
	if conv == nil {
		conv = convention.Verbatim{}
	}
	return &FieldResolver{schema: schema, naming: naming, convention: conv}
}

// Naming returns the naming tokens of the resolver.
func (r *FieldResolver) Naming() Naming { return r.naming }

// Resolve returns the field for a dotted property path and the function
// applied to it. Declared properties are named by the convention, open
// properties use the qualified path verbatim. Fields compared through
// tolower get the lowercase suffix.
func (r *FieldResolver) Resolve(path, function string) string {
	qualified := r.naming.Qualify(path)

	field := qualified
	if p, ok := r.declared(path); ok {
		field = r.convention.FieldName(qualified, p.Kind, p.Collection)
	}

	if function == FunctionToLower {
		field += r.naming.LowercaseSuffix
	}
	return field
}

// SortField returns the field to sort by for a dotted property path. String
// properties sort on their normalized companion field.
func (r *FieldResolver) SortField(path string) string {
	field := r.Resolve(path, "")
	if p, ok := r.declared(path); ok && p.Kind == edm.KindString {
		field += r.naming.SortSuffix
	}
	return field
}

func (r *FieldResolver) declared(path string) (metadata.Property, bool) {
	p, ok := r.schema.Property(path)
	if !ok || p.Complex {
		return metadata.Property{}, false
	}
	return p, true
}
