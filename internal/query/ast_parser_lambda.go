package query

import (
	"fmt"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// lambdaScope is a range variable visible inside an any() body
type lambdaScope struct {
	variable *RangeVariable
	// path is the schema path of the iterated collection, empty when open
	path string
	open bool
}

// pathState tracks the binding of a property path while it is parsed
type pathState struct {
	node Node
	path string
	open bool
}

// parsePropertyPath parses a property path with slashes (e.g., ContentLink/Id
// or Tags/any(t: t eq 'x'))
func (p *ASTParser) parsePropertyPath() (Node, error) {
	first := p.advance()

	state, err := p.bindFirstSegment(first)
	if err != nil {
		return nil, err
	}

	// Build the property path
	for p.currentToken().Type == TokenSlash {
		p.advance() // consume '/'

		segment := p.currentToken()
		if segment.Type != TokenIdentifier {
			return nil, fmt.Errorf("%w: expected identifier after '/' in property path at position %d", ErrSyntax, segment.Pos)
		}
		p.advance()

		// Check if this is a lambda operator (any/all)
		if (segment.Value == "any" || segment.Value == "all") && p.currentToken().Type == TokenLParen {
			return p.parseLambdaExpression(state, segment)
		}

		state, err = p.bindSegment(state, segment)
		if err != nil {
			return nil, err
		}
	}

	return state.node, nil
}

// bindFirstSegment resolves the first segment of a path, which is either a
// range variable or a property of the schema root
func (p *ASTParser) bindFirstSegment(token *Token) (pathState, error) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		scope := p.scopes[i]
		if scope.variable.Name == token.Value {
			return pathState{node: scope.variable, path: scope.path, open: scope.open}, nil
		}
	}
	return p.bindSegment(pathState{}, token)
}

// bindSegment resolves the next segment of a path against the schema
func (p *ASTParser) bindSegment(state pathState, token *Token) (pathState, error) {
	name := token.Value
	if state.open {
		return pathState{node: &OpenPropertyAccess{Name: name, Source: state.node}, open: true}, nil
	}

	switch source := state.node.(type) {
	case *PropertyAccess:
		if !source.Property.Complex {
			return pathState{}, fmt.Errorf("%w: %w: %s at position %d", ErrIncompatibleTypes, errPathThroughPrimitive, source.Property.Path, token.Pos)
		}
		if source.Property.Collection {
			return pathState{}, fmt.Errorf("%w: %w: %s at position %d", ErrIncompatibleTypes, errPathThroughCollection, source.Property.Path, token.Pos)
		}
	case *RangeVariable:
		if source.ElementKind != edm.KindNull {
			return pathState{}, fmt.Errorf("%w: %w: %s at position %d", ErrIncompatibleTypes, errPathThroughPrimitive, source.Name, token.Pos)
		}
	}

	path := name
	if state.path != "" {
		path = state.path + "." + name
	}

	if property, ok := p.schema.Property(path); ok {
		return pathState{node: &PropertyAccess{Name: name, Source: state.node, Property: property}, path: path}, nil
	}

	if p.schema.IsOpen() {
		return pathState{node: &OpenPropertyAccess{Name: name, Source: state.node}, open: true}, nil
	}

	return pathState{}, fmt.Errorf("%w named '%s' on type '%s' at position %d", ErrPropertyNotFound, name, p.schema.Name(), token.Pos)
}

// parseLambdaExpression parses a lambda expression like any(x: x eq 'a')
func (p *ASTParser) parseLambdaExpression(source pathState, operator *Token) (Node, error) {
	if operator.Value == "all" {
		return nil, fmt.Errorf("%w: %w at position %d", ErrUnsupported, errAllLambda, operator.Pos)
	}

	variable := &RangeVariable{}
	scope := lambdaScope{variable: variable, open: source.open}
	switch collection := source.node.(type) {
	case *PropertyAccess:
		if !collection.Property.Collection {
			return nil, fmt.Errorf("%w: %w: %s at position %d", ErrIncompatibleTypes, errLambdaNotCollection, collection.Property.Path, operator.Pos)
		}
		scope.path = collection.Property.Path
		if !collection.Property.Complex {
			variable.ElementKind = collection.Property.Kind
		}
	case *OpenPropertyAccess:
	default:
		return nil, fmt.Errorf("%w: %w at position %d", ErrIncompatibleTypes, errLambdaNotCollection, operator.Pos)
	}

	p.advance() // consume '('

	// Check if this is parameterless any (e.g., Tags/any())
	if p.currentToken().Type == TokenRParen {
		p.advance() // consume ')'
		return &AnyLambda{Source: source.node}, nil
	}

	// Parse range variable (e.g., "t" in "t: ...")
	nameToken, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	for _, outer := range p.scopes {
		if outer.variable.Name == nameToken.Value {
			return nil, fmt.Errorf("%w: %w: %s at position %d", ErrSyntax, errLambdaVariableInUse, nameToken.Value, nameToken.Pos)
		}
	}
	variable.Name = nameToken.Value

	// Expect colon
	if _, err := p.expect(TokenColon); err != nil {
		return nil, fmt.Errorf("expected ':' after lambda range variable: %w", err)
	}

	// Parse the predicate
	p.scopes = append(p.scopes, scope)
	body, err := p.parseOr()
	p.scopes = p.scopes[:len(p.scopes)-1]
	if err != nil {
		return nil, err
	}
	body, err = ensureBoolean(body, "any")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return &AnyLambda{Source: source.node, Variable: variable, Body: body}, nil
}
