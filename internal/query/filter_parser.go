package query

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-odata-search/internal/metadata"
)

// ParseFilter parses a $filter expression and binds it against the schema.
// The root of the returned tree is boolean; a root of unknown type is wrapped
// in a conversion to Edm.Boolean.
func ParseFilter(filterStr string, schema *metadata.Schema) (Node, error) {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, errEmptyFilter)
	}

	// Use the tokenizer and AST parser
	tokenizer := NewTokenizer(filterStr)
	tokens, err := tokenizer.TokenizeAll()
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	parser := NewASTParser(tokens, schema)
	node, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}

	return ensureBoolean(node, "$filter")
}
