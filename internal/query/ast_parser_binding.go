package query

import (
	"fmt"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// StaticKind returns the type of an expression as far as it is known from
// the schema. The second result is false for expressions over open
// properties, whose type is only known at query time.
func StaticKind(n Node) (edm.Kind, bool) {
	switch n := n.(type) {
	case *Constant:
		return n.Value.Kind(), true
	case *PropertyAccess:
		if n.Property.Complex {
			return edm.KindNull, false
		}
		return n.Property.Kind, true
	case *OpenPropertyAccess:
		return edm.KindNull, false
	case *TypeConversion:
		return n.Target, true
	case *BinaryOperator:
		if !n.Kind.IsArithmetic() {
			return edm.KindBoolean, true
		}
		left, lok := StaticKind(n.Left)
		right, rok := StaticKind(n.Right)
		if !lok || !rok {
			return edm.KindNull, false
		}
		if kind, ok := edm.Promote(left, right); ok {
			return kind, true
		}
		return edm.KindNull, false
	case *UnaryOperator:
		if n.Kind == OpNot {
			return edm.KindBoolean, true
		}
		return StaticKind(n.Operand)
	case *FunctionCall:
		return functionReturnKind(n)
	case *AnyLambda:
		return edm.KindBoolean, true
	case *RangeVariable:
		return n.ElementKind, n.ElementKind != edm.KindNull
	}
	return edm.KindNull, false
}

// isCollection reports whether n references a multi-valued property
func isCollection(n Node) bool {
	access, ok := n.(*PropertyAccess)
	return ok && access.Property.Collection
}

// ensureBoolean checks that n can be used where a boolean is required.
// Expressions of unknown type are wrapped in a conversion to Edm.Boolean.
func ensureBoolean(n Node, context string) (Node, error) {
	kind, known := StaticKind(n)
	if !known {
		return &TypeConversion{Source: n, Target: edm.KindBoolean}, nil
	}
	if kind != edm.KindBoolean && kind != edm.KindNull {
		return nil, fmt.Errorf("%w: %s requires a boolean operand, got %s", ErrIncompatibleTypes, context, kind)
	}
	return n, nil
}

// bindLogical builds an and/or operator over two boolean operands
func bindLogical(kind BinaryOperatorKind, left, right Node) (Node, error) {
	left, err := ensureBoolean(left, kind.String())
	if err != nil {
		return nil, err
	}
	right, err = ensureBoolean(right, kind.String())
	if err != nil {
		return nil, err
	}
	return &BinaryOperator{Kind: kind, Left: left, Right: right}, nil
}

// bindComparison builds a comparison, converting the narrower of two numeric
// operands to the wider kind. Literals are never converted.
func bindComparison(kind BinaryOperatorKind, left, right Node) (Node, error) {
	if isCollection(left) || isCollection(right) {
		return nil, fmt.Errorf("%w: collection properties cannot be compared with %s, use any()", ErrIncompatibleTypes, kind)
	}

	left, right, err := promoteOperands(kind, left, right)
	if err != nil {
		return nil, err
	}
	return &BinaryOperator{Kind: kind, Left: left, Right: right}, nil
}

// bindArithmetic builds an arithmetic operator over two numeric operands
func bindArithmetic(kind BinaryOperatorKind, left, right Node) (Node, error) {
	for _, operand := range []Node{left, right} {
		if k, known := StaticKind(operand); known && k != edm.KindNull && !k.IsNumeric() {
			return nil, fmt.Errorf("%w: operator %s requires numeric operands, got %s", ErrIncompatibleTypes, kind, k)
		}
	}

	left, right, err := promoteOperands(kind, left, right)
	if err != nil {
		return nil, err
	}
	return &BinaryOperator{Kind: kind, Left: left, Right: right}, nil
}

func promoteOperands(kind BinaryOperatorKind, left, right Node) (Node, Node, error) {
	lk, lok := StaticKind(left)
	rk, rok := StaticKind(right)
	if !lok || !rok || lk == edm.KindNull || rk == edm.KindNull || lk == rk {
		return left, right, nil
	}

	target, ok := edm.Promote(lk, rk)
	if !ok {
		return nil, nil, fmt.Errorf("%w: cannot apply %s to %s and %s", ErrIncompatibleTypes, kind, lk, rk)
	}
	return convert(left, lk, target), convert(right, rk, target), nil
}

func convert(n Node, from, target edm.Kind) Node {
	if from == target {
		return n
	}
	if _, ok := n.(*Constant); ok {
		return n
	}
	return &TypeConversion{Source: n, Target: target}
}
