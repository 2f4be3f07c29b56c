package query

import (
	"fmt"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// kindNumeric marks a parameter accepting any numeric kind
const kindNumeric edm.Kind = -1

// functionSignature describes a canonical function. A KindNull return kind
// means the function returns the kind of its first argument.
type functionSignature struct {
	params   []edm.Kind
	optional int
	returns  edm.Kind
}

var (
	stringPredicate = functionSignature{params: []edm.Kind{edm.KindString, edm.KindString}, returns: edm.KindBoolean}
	stringTransform = functionSignature{params: []edm.Kind{edm.KindString}, returns: edm.KindString}
	datePart        = functionSignature{params: []edm.Kind{edm.KindDateTime}, returns: edm.KindInt32}
	dateConstant    = functionSignature{returns: edm.KindDateTime}
	rounding        = functionSignature{params: []edm.Kind{kindNumeric}, returns: edm.KindNull}
)

// canonicalFunctions lists the OData canonical functions the parser accepts.
// Which of them are translatable is decided by the consumer of the tree.
var canonicalFunctions = map[string]functionSignature{
	"contains":           stringPredicate,
	"startswith":         stringPredicate,
	"endswith":           stringPredicate,
	"matchespattern":     stringPredicate,
	"length":             {params: []edm.Kind{edm.KindString}, returns: edm.KindInt32},
	"indexof":            {params: []edm.Kind{edm.KindString, edm.KindString}, returns: edm.KindInt32},
	"substring":          {params: []edm.Kind{edm.KindString, edm.KindInt32, edm.KindInt32}, optional: 1, returns: edm.KindString},
	"concat":             {params: []edm.Kind{edm.KindString, edm.KindString}, returns: edm.KindString},
	"tolower":            stringTransform,
	"toupper":            stringTransform,
	"trim":               stringTransform,
	"year":               datePart,
	"month":              datePart,
	"day":                datePart,
	"hour":               datePart,
	"minute":             datePart,
	"second":             datePart,
	"totaloffsetminutes": datePart,
	"fractionalseconds":  {params: []edm.Kind{edm.KindDateTime}, returns: edm.KindDecimal},
	"date":               {params: []edm.Kind{edm.KindDateTime}, returns: edm.KindDateTime},
	"now":                dateConstant,
	"maxdatetime":        dateConstant,
	"mindatetime":        dateConstant,
	"round":              rounding,
	"floor":              rounding,
	"ceiling":            rounding,
}

// parseFunctionCall parses a function call like func(arg1, arg2)
func (p *ASTParser) parseFunctionCall() (Node, error) {
	nameToken := p.advance()
	p.advance() // consume '('

	signature, ok := canonicalFunctions[nameToken.Value]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' at position %d", ErrUnknownFunction, nameToken.Value, nameToken.Pos)
	}

	var args []Node

	// Parse function arguments
	if p.currentToken().Type != TokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.currentToken().Type == TokenComma {
				p.advance()
			} else {
				break
			}
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	call := &FunctionCall{Name: nameToken.Value, Parameters: args}
	if err := signature.check(call); err != nil {
		return nil, err
	}
	return call, nil
}

// check validates the argument count and the known argument kinds
func (s functionSignature) check(call *FunctionCall) error {
	minArgs, maxArgs := len(s.params)-s.optional, len(s.params)
	if n := len(call.Parameters); n < minArgs || n > maxArgs {
		if minArgs == maxArgs {
			return fmt.Errorf("%w: function %s requires %d argument(s), got %d", ErrSyntax, call.Name, minArgs, n)
		}
		return fmt.Errorf("%w: function %s requires %d to %d arguments, got %d", ErrSyntax, call.Name, minArgs, maxArgs, n)
	}

	for i, arg := range call.Parameters {
		if isCollection(arg) {
			return fmt.Errorf("%w: argument %d of %s is a collection", ErrIncompatibleTypes, i+1, call.Name)
		}
		kind, known := StaticKind(arg)
		if !known || kind == edm.KindNull {
			continue
		}
		want := s.params[i]
		switch {
		case want == kindNumeric || want.IsNumeric():
			if !kind.IsNumeric() {
				return fmt.Errorf("%w: argument %d of %s must be numeric, got %s", ErrIncompatibleTypes, i+1, call.Name, kind)
			}
		case kind != want:
			return fmt.Errorf("%w: argument %d of %s must be %s, got %s", ErrIncompatibleTypes, i+1, call.Name, want, kind)
		}
	}
	return nil
}

// functionReturnKind returns the result kind of a call. Calls with an
// argument of unknown type have an unknown result type.
func functionReturnKind(call *FunctionCall) (edm.Kind, bool) {
	signature, ok := canonicalFunctions[call.Name]
	if !ok {
		return edm.KindNull, false
	}
	for _, arg := range call.Parameters {
		if _, known := StaticKind(arg); !known {
			return edm.KindNull, false
		}
	}
	if signature.returns == edm.KindNull {
		if len(call.Parameters) == 0 {
			return edm.KindNull, false
		}
		return StaticKind(call.Parameters[0])
	}
	return signature.returns, true
}
