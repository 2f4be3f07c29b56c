package query

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-odata-search/internal/metadata"
)

// ParseOrderBy parses an $orderby expression into its chain of clauses. Each
// clause is an expression followed by an optional direction, asc or desc in
// any case; clauses are separated by commas.
func ParseOrderBy(orderByStr string, schema *metadata.Schema) (*OrderByClause, error) {
	orderByStr = strings.TrimSpace(orderByStr)
	if orderByStr == "" {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, errEmptyOrderBy)
	}

	tokenizer := NewTokenizer(orderByStr)
	tokens, err := tokenizer.TokenizeAll()
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	parser := NewASTParser(tokens, schema)

	var head, tail *OrderByClause
	for {
		clause, err := parser.parseOrderByClause()
		if err != nil {
			return nil, fmt.Errorf("parsing failed: %w", err)
		}
		if head == nil {
			head = clause
		} else {
			tail.ThenBy = clause
		}
		tail = clause

		if parser.currentToken().Type == TokenEOF {
			return head, nil
		}
		if _, err := parser.expect(TokenComma); err != nil {
			return nil, fmt.Errorf("parsing failed: %w", err)
		}
	}
}

// parseOrderByClause parses a single "<expression> [asc|desc]" clause
func (p *ASTParser) parseOrderByClause() (*OrderByClause, error) {
	if t := p.currentToken().Type; t == TokenComma || t == TokenEOF {
		return nil, p.unexpected("where an orderby clause was expected")
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	clause := &OrderByClause{Expression: expr, Direction: Ascending}

	// Check for "desc" or "asc" suffix
	if token := p.currentToken(); token.Type == TokenIdentifier {
		switch strings.ToLower(token.Value) {
		case "asc":
		case "desc":
			clause.Direction = Descending
		default:
			return nil, fmt.Errorf("%w: invalid direction '%s', expected 'asc' or 'desc' at position %d", ErrSyntax, token.Value, token.Pos)
		}
		p.advance()
	}

	return clause, nil
}
