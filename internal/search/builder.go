package search

import (
	"fmt"

	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/query"
)

// Builder turns bound query trees into filter trees and sort specifications.
// It is immutable and safe for concurrent use.
type Builder struct {
	fields *FieldResolver
}

// NewBuilder creates a builder resolving fields with the resolver.
func NewBuilder(fields *FieldResolver) *Builder {
	return &Builder{fields: fields}
}

// Filter translates a bound $filter tree. Every failure is a *FilterParseError.
func (b *Builder) Filter(n query.Node) (result FilterNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, AsFilterParseError(recovered(r))
		}
	}()

	result, err = b.filter(n)
	if err != nil {
		return nil, AsFilterParseError(err)
	}
	return result, nil
}

func (b *Builder) filter(n query.Node) (FilterNode, error) {
	switch n := unwrapConversion(n).(type) {
	case *query.FunctionCall:
		return b.contains(n)
	case *query.AnyLambda:
		return b.any(n)
	case *query.BinaryOperator:
		switch {
		case n.Kind == query.OpOr:
			left, right, err := b.children(n)
			if err != nil {
				return nil, err
			}
			return &Or{Left: left, Right: right}, nil
		case n.Kind == query.OpAnd:
			left, right, err := b.children(n)
			if err != nil {
				return nil, err
			}
			return &And{Left: left, Right: right}, nil
		case n.Kind.IsComparison():
			return b.valueFilter(n)
		}
		return nil, fmt.Errorf("%w: operator %s", ErrUnsupportedExpression, n.Kind)
	case *query.UnaryOperator:
		return nil, fmt.Errorf("%w: operator %s", ErrUnsupportedExpression, n.Kind)
	case nil:
		return nil, fmt.Errorf("%w: empty expression", ErrUnsupportedExpression)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedExpression, n)
	}
}

func (b *Builder) children(n *query.BinaryOperator) (FilterNode, FilterNode, error) {
	left, err := b.filter(n.Left)
	if err != nil {
		return nil, nil, err
	}
	right, err := b.filter(n.Right)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// contains translates contains(property, 'value') to a wildcard filter
func (b *Builder) contains(call *query.FunctionCall) (FilterNode, error) {
	if call.Name != FunctionContains {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFunction, call.Name)
	}
	if len(call.Parameters) != 2 {
		return nil, fmt.Errorf("%w: contains requires 2 arguments, got %d", ErrUnsupportedExpression, len(call.Parameters))
	}

	path, function, err := b.propertyOperand(call.Parameters[0])
	if err != nil {
		return nil, err
	}

	value, err := literalOperand(call.Parameters[1])
	if err != nil {
		return nil, err
	}
	if value.Kind() != edm.KindString {
		return nil, fmt.Errorf("%w: contains requires a string value, got %s", ErrUnsupportedType, value.Kind())
	}

	return &Wildcard{
		Field:   b.fields.Resolve(path, function),
		Pattern: "*" + value.Text() + "*",
	}, nil
}

// any translates Collection/any(x: x eq 'value') to a term filter on the
// collection field and the ne form to its negation. No other lambda shape
// is supported.
func (b *Builder) any(lambda *query.AnyLambda) (FilterNode, error) {
	source, ok := lambda.Source.(*query.PropertyAccess)
	if !ok {
		return nil, fmt.Errorf("%w: any() requires a declared collection property", ErrUnsupportedLambda)
	}
	if lambda.Body == nil || lambda.Variable == nil {
		return nil, fmt.Errorf("%w: any() requires a predicate", ErrUnsupportedLambda)
	}

	body, ok := unwrapConversion(lambda.Body).(*query.BinaryOperator)
	if !ok || (body.Kind != query.OpEqual && body.Kind != query.OpNotEqual) {
		return nil, fmt.Errorf("%w: any() predicate must compare the range variable with eq or ne", ErrUnsupportedLambda)
	}
	variable, ok := unwrapConversion(body.Left).(*query.RangeVariable)
	if !ok || variable.Name != lambda.Variable.Name {
		return nil, fmt.Errorf("%w: any() predicate must compare the range variable %s", ErrUnsupportedLambda, lambda.Variable.Name)
	}
	constant, ok := unwrapConversion(body.Right).(*query.Constant)
	if !ok || constant.Value.IsNull() {
		return nil, fmt.Errorf("%w: any() predicate must compare against a non-null literal", ErrUnsupportedLambda)
	}

	path := ExtractPropertyPath(source)
	if path == "" {
		return nil, fmt.Errorf("%w: any() source", ErrMissingProperty)
	}

	term := &Term{Field: b.fields.Resolve(path, ""), Value: constant.Value}
	if body.Kind == query.OpNotEqual {
		return &Not{Filter: term}, nil
	}
	return term, nil
}

// valueFilter translates a comparison of a property against a literal
func (b *Builder) valueFilter(n *query.BinaryOperator) (FilterNode, error) {
	path, function, err := b.propertyOperand(n.Left)
	if err != nil {
		return nil, err
	}
	value, err := literalOperand(n.Right)
	if err != nil {
		return nil, err
	}

	field := b.fields.Resolve(path, function)

	switch n.Kind {
	case query.OpEqual:
		if value.IsNull() {
			return &Not{Filter: &Exists{Field: field}}, nil
		}
		return &Term{Field: field, Value: value}, nil
	case query.OpNotEqual:
		if value.IsNull() {
			return &Exists{Field: field}, nil
		}
		return &Not{Filter: &Term{Field: field, Value: value}}, nil
	case query.OpGreaterThan, query.OpGreaterThanOrEqual:
		upper, err := rangeBound(value, edm.MaxValue)
		if err != nil {
			return nil, err
		}
		return &Range{
			Field:        field,
			Type:         value.Kind(),
			Lower:        value,
			Upper:        upper,
			IncludeLower: n.Kind == query.OpGreaterThanOrEqual,
			IncludeUpper: true,
		}, nil
	case query.OpLessThan, query.OpLessThanOrEqual:
		lower, err := rangeBound(value, edm.MinValue)
		if err != nil {
			return nil, err
		}
		return &Range{
			Field:        field,
			Type:         value.Kind(),
			Lower:        lower,
			Upper:        value,
			IncludeLower: true,
			IncludeUpper: n.Kind == query.OpLessThanOrEqual,
		}, nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrUnsupportedExpression, n.Kind)
}

// propertyOperand extracts the property path of an operand and checks the
// applied function
func (b *Builder) propertyOperand(n query.Node) (string, string, error) {
	path, function := ExtractPath(n)
	if path == "" {
		return "", "", fmt.Errorf("%w: left operand must be a property", ErrMissingProperty)
	}
	if function != "" && function != FunctionToLower {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFunction, function)
	}
	return path, function, nil
}

// literalOperand returns the literal of a constant operand as written
func literalOperand(n query.Node) (edm.Literal, error) {
	constant, ok := unwrapConversion(n).(*query.Constant)
	if !ok {
		return edm.Null(), fmt.Errorf("%w: right operand must be a literal", ErrMissingLiteral)
	}
	return constant.Value, nil
}

// rangeBound returns the clamped bound for a range over the literal's type
func rangeBound(value edm.Literal, bound func(edm.Kind) (edm.Literal, error)) (edm.Literal, error) {
	if value.IsNull() {
		return edm.Null(), fmt.Errorf("%w: null cannot be used in a range comparison", ErrUnsupportedType)
	}
	if !value.Kind().IsRangeable() {
		return edm.Null(), fmt.Errorf("%w: range comparisons are not supported for %s", ErrUnsupportedType, value.Kind())
	}
	return bound(value.Kind())
}

// OrderBy translates a bound $orderby clause chain, preserving clause order.
// Every failure is an *OrderByParseError.
func (b *Builder) OrderBy(clause *query.OrderByClause) (result []SortCriterion, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, AsOrderByParseError(recovered(r))
		}
	}()

	if clause == nil {
		return nil, AsOrderByParseError(fmt.Errorf("%w: empty orderby", ErrMissingProperty))
	}

	for c := clause; c != nil; c = c.ThenBy {
		path := ExtractPropertyPath(c.Expression)
		if path == "" {
			return nil, AsOrderByParseError(fmt.Errorf("%w: orderby clauses must reference a property", ErrMissingProperty))
		}

		direction := Ascending
		if c.Direction == query.Descending {
			direction = Descending
		}
		result = append(result, NewSortCriterion(b.fields.SortField(path), direction))
	}
	return result, nil
}
