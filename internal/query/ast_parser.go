package query

import (
	"fmt"

	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
)

// ASTParser parses filter and orderby expressions into a bound tree. Property
// references are resolved against the schema while parsing.
type ASTParser struct {
	tokens  []*Token
	current int
	schema  *metadata.Schema
	scopes  []lambdaScope
}

// NewASTParser creates a new AST parser
func NewASTParser(tokens []*Token, schema *metadata.Schema) *ASTParser {
	return &ASTParser{
		tokens:  tokens,
		current: 0,
		schema:  schema,
	}
}

// currentToken returns the current token
func (p *ASTParser) currentToken() *Token {
	if p.current >= len(p.tokens) {
		return &Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

// peekToken returns the token after the current one
func (p *ASTParser) peekToken() *Token {
	if p.current+1 >= len(p.tokens) {
		return &Token{Type: TokenEOF}
	}
	return p.tokens[p.current+1]
}

// advance moves to the next token
func (p *ASTParser) advance() *Token {
	token := p.currentToken()
	if p.current < len(p.tokens)-1 {
		p.current++
	}
	return token
}

// expect checks if the current token matches the expected type and advances
func (p *ASTParser) expect(tokenType TokenType) (*Token, error) {
	token := p.currentToken()
	if token.Type != tokenType {
		return nil, fmt.Errorf("%w: expected %v, got %v at position %d", ErrSyntax, tokenType, describeToken(token), token.Pos)
	}
	return p.advance(), nil
}

// Parse parses the tokens into a single expression
func (p *ASTParser) Parse() (Node, error) {
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	// Verify all tokens were consumed (except EOF)
	if p.currentToken().Type != TokenEOF {
		return nil, p.unexpected("after expression")
	}

	return node, nil
}

// parseOr handles OR expressions (lowest precedence)
func (p *ASTParser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenLogical && p.currentToken().Value == "or" {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left, err = bindLogical(OpOr, left, right)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parseAnd handles AND expressions
func (p *ASTParser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenLogical && p.currentToken().Value == "and" {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left, err = bindLogical(OpAnd, left, right)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parseNot handles NOT expressions
func (p *ASTParser) parseNot() (Node, error) {
	if p.currentToken().Type == TokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		operand, err = ensureBoolean(operand, "not")
		if err != nil {
			return nil, err
		}
		return &UnaryOperator{Kind: OpNot, Operand: operand}, nil
	}

	return p.parseComparison()
}

var comparisonOperators = map[string]BinaryOperatorKind{
	"eq":  OpEqual,
	"ne":  OpNotEqual,
	"gt":  OpGreaterThan,
	"ge":  OpGreaterThanOrEqual,
	"lt":  OpLessThan,
	"le":  OpLessThanOrEqual,
	"has": OpHas,
}

// parseComparison handles comparison expressions
func (p *ASTParser) parseComparison() (Node, error) {
	left, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}

	// Check for comparison operators
	if p.currentToken().Type == TokenOperator {
		op := p.advance()

		if op.Value == "in" {
			return nil, fmt.Errorf("%w: %w at position %d", ErrUnsupported, errInOperator, op.Pos)
		}

		right, err := p.parseArithmetic()
		if err != nil {
			return nil, err
		}
		kind := comparisonOperators[op.Value]
		if kind == OpHas {
			return &BinaryOperator{Kind: OpHas, Left: left, Right: right}, nil
		}
		return bindComparison(kind, left, right)
	}

	return left, nil
}

// parseArithmetic handles additive expressions
func (p *ASTParser) parseArithmetic() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenArithmetic &&
		(p.currentToken().Value == "add" || p.currentToken().Value == "sub") {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		kind := OpAdd
		if op.Value == "sub" {
			kind = OpSubtract
		}
		left, err = bindArithmetic(kind, left, right)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

var multiplicativeOperators = map[string]BinaryOperatorKind{
	"mul": OpMultiply,
	"div": OpDivide,
	"mod": OpModulo,
}

// parseTerm handles multiplication, division, and modulo
func (p *ASTParser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenArithmetic {
		kind, ok := multiplicativeOperators[p.currentToken().Value]
		if !ok {
			break
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left, err = bindArithmetic(kind, left, right)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parseUnary handles arithmetic negation
func (p *ASTParser) parseUnary() (Node, error) {
	if p.currentToken().Type == TokenArithmetic && p.currentToken().Value == "-" {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if kind, known := StaticKind(operand); known && !kind.IsNumeric() {
			return nil, fmt.Errorf("%w: cannot negate %s at position %d", ErrIncompatibleTypes, kind, op.Pos)
		}
		return &UnaryOperator{Kind: OpNegate, Operand: operand}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles primary expressions (literals, property paths, function calls, grouped expressions)
func (p *ASTParser) parsePrimary() (Node, error) {
	token := p.currentToken()

	// Grouped expression
	if token.Type == TokenLParen {
		return p.parseGroupedExpression()
	}

	// Literals
	if node, ok, err := p.parseLiteral(token); ok {
		return node, err
	}

	// Property path or function call
	if token.Type == TokenIdentifier {
		if p.peekToken().Type == TokenLParen {
			return p.parseFunctionCall()
		}
		return p.parsePropertyPath()
	}

	return nil, p.unexpected("")
}

// parseGroupedExpression parses a grouped expression like (expr)
func (p *ASTParser) parseGroupedExpression() (Node, error) {
	p.advance() // consume '('
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseLiteral parses literal values (string, number, date-time, boolean, null)
func (p *ASTParser) parseLiteral(token *Token) (Node, bool, error) {
	switch token.Type {
	case TokenString:
		p.advance()
		return &Constant{Value: edm.String(token.Value)}, true, nil
	case TokenNumber:
		p.advance()
		lit, err := edm.ParseNumber(token.Value)
		if err != nil {
			return nil, true, fmt.Errorf("%w: %w at position %d", ErrSyntax, err, token.Pos)
		}
		return &Constant{Value: lit}, true, nil
	case TokenDateTime:
		p.advance()
		lit, err := edm.ParseDateTime(token.Value)
		if err != nil {
			return nil, true, fmt.Errorf("%w: %w at position %d", ErrSyntax, err, token.Pos)
		}
		return &Constant{Value: lit}, true, nil
	case TokenBoolean:
		p.advance()
		return &Constant{Value: edm.Boolean(token.Value == "true")}, true, nil
	case TokenNull:
		p.advance()
		return &Constant{Value: edm.Null()}, true, nil
	default:
		return nil, false, nil
	}
}

// unexpected builds the syntax error for the current token
func (p *ASTParser) unexpected(context string) error {
	token := p.currentToken()
	if context != "" {
		context = " " + context
	}
	return fmt.Errorf("%w: unexpected %s%s at position %d", ErrSyntax, describeToken(token), context, token.Pos)
}

func describeToken(token *Token) string {
	if token.Type == TokenEOF {
		return token.Type.String()
	}
	return fmt.Sprintf("%v '%s'", token.Type, token.Value)
}
