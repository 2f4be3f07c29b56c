package search

import (
	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/query"
)

// Compiler translates $filter and $orderby text for one content schema. It
// is immutable and safe for concurrent use.
type Compiler struct {
	schema  *metadata.Schema
	fields  *FieldResolver
	builder *Builder
}

// NewCompiler creates a compiler for the schema.
func NewCompiler(schema *metadata.Schema, naming Naming, conv convention.Convention) *Compiler {
	fields := NewFieldResolver(schema, naming, conv)
	return &Compiler{
		schema:  schema,
		fields:  fields,
		builder: NewBuilder(fields),
	}
}

// Schema returns the schema the compiler binds against.
func (c *Compiler) Schema() *metadata.Schema { return c.schema }

// Fields returns the field resolver of the compiler.
func (c *Compiler) Fields() *FieldResolver { return c.fields }

// ParseFilter translates $filter text into a filter tree. Every failure is a
// *FilterParseError.
func (c *Compiler) ParseFilter(text string) (FilterNode, error) {
	node, err := query.ParseFilter(text, c.schema)
	if err != nil {
		return nil, &FilterParseError{Message: "invalid filter expression", Err: err}
	}
	return c.builder.Filter(node)
}

// ParseOrderBy translates $orderby text into sort criteria in clause order.
// Every failure is an *OrderByParseError.
func (c *Compiler) ParseOrderBy(text string) ([]SortCriterion, error) {
	clause, err := query.ParseOrderBy(text, c.schema)
	if err != nil {
		return nil, &OrderByParseError{Message: "invalid orderby expression", Err: err}
	}
	return c.builder.OrderBy(clause)
}
