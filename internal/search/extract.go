package search

import (
	"strings"

	"github.com/nlstn/go-odata-search/internal/query"
)

// Canonical functions the builder translates.
const (
	FunctionToLower  = "tolower"
	FunctionContains = "contains"
)

// ExtractPath returns the dotted property path a node refers to and the name
// of the function applied to it, if any. One type conversion is unwrapped.
// Nodes without a property reference yield an empty path, as do function
// calls whose arguments are not plain properties.
func ExtractPath(n query.Node) (path, function string) {
	switch n := unwrapConversion(n).(type) {
	case *query.PropertyAccess, *query.OpenPropertyAccess:
		return propertyPath(n), ""
	case *query.FunctionCall:
		for _, param := range n.Parameters {
			switch param := unwrapConversion(param).(type) {
			case *query.PropertyAccess, *query.OpenPropertyAccess:
				if p := propertyPath(param); p != "" {
					return p, n.Name
				}
			}
		}
	}
	return "", ""
}

// ExtractPropertyPath returns the dotted property path of a property
// reference, unwrapping one type conversion. Any other node yields an empty
// path.
func ExtractPropertyPath(n query.Node) string {
	switch n := unwrapConversion(n).(type) {
	case *query.PropertyAccess, *query.OpenPropertyAccess:
		return propertyPath(n)
	}
	return ""
}

// propertyPath joins the names of a property access chain. Chains rooted at
// a lambda range variable have no path of their own.
func propertyPath(n query.Node) string {
	var segments []string
	for n != nil {
		switch access := n.(type) {
		case *query.PropertyAccess:
			segments = append(segments, access.Name)
			n = access.Source
		case *query.OpenPropertyAccess:
			segments = append(segments, access.Name)
			n = access.Source
		default:
			return ""
		}
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}

func unwrapConversion(n query.Node) query.Node {
	if conversion, ok := n.(*query.TypeConversion); ok {
		return conversion.Source
	}
	return n
}
