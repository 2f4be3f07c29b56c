package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/query"
)

func TestExtractPath(t *testing.T) {
	link := &query.PropertyAccess{Name: "ContentLink", Property: metadata.Property{Path: "ContentLink", Complex: true}}
	id := &query.PropertyAccess{Name: "Id", Source: link, Property: metadata.Property{Path: "ContentLink.Id", Kind: edm.KindInt32}}
	open := &query.OpenPropertyAccess{Name: "Custom", Source: link}
	variable := &query.RangeVariable{Name: "t", ElementKind: edm.KindString}

	tests := []struct {
		name         string
		node         query.Node
		wantPath     string
		wantFunction string
	}{
		{"Strongly typed path", id, "ContentLink.Id", ""},
		{"Open path", open, "ContentLink.Custom", ""},
		{"Conversion unwrapped", &query.TypeConversion{Source: id, Target: edm.KindInt64}, "ContentLink.Id", ""},
		{"Function over property", &query.FunctionCall{Name: "tolower", Parameters: []query.Node{open}}, "ContentLink.Custom", "tolower"},
		{
			"Function over converted property",
			&query.FunctionCall{Name: "length", Parameters: []query.Node{&query.TypeConversion{Source: id, Target: edm.KindString}}},
			"ContentLink.Id", "length",
		},
		{
			"Converted function",
			&query.TypeConversion{Source: &query.FunctionCall{Name: "tolower", Parameters: []query.Node{id}}, Target: edm.KindBoolean},
			"ContentLink.Id", "tolower",
		},
		{
			"Nested function",
			&query.FunctionCall{Name: "trim", Parameters: []query.Node{&query.FunctionCall{Name: "tolower", Parameters: []query.Node{id}}}},
			"", "",
		},
		{"Constant", &query.Constant{Value: edm.Int32(1)}, "", ""},
		{"Range variable", variable, "", ""},
		{"Path through range variable", &query.PropertyAccess{Name: "Title", Source: variable}, "", ""},
		{"Lambda", &query.AnyLambda{Source: id}, "", ""},
		{"Nil", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, function := ExtractPath(tt.node)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantFunction, function)
		})
	}
}

func TestExtractPropertyPath(t *testing.T) {
	name := &query.PropertyAccess{Name: "Name", Property: metadata.Property{Path: "Name", Kind: edm.KindString}}

	assert.Equal(t, "Name", ExtractPropertyPath(name))
	assert.Equal(t, "Name", ExtractPropertyPath(&query.TypeConversion{Source: name, Target: edm.KindString}))
	assert.Equal(t, "", ExtractPropertyPath(&query.FunctionCall{Name: "tolower", Parameters: []query.Node{name}}))
	assert.Equal(t, "", ExtractPropertyPath(&query.TypeConversion{Source: &query.TypeConversion{Source: name}}))
}
