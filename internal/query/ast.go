package query

import (
	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
)

// Node is a node of a bound query expression tree. The set of node types is
// closed; consumers switch over the concrete types.
type Node interface {
	node()
}

// BinaryOperatorKind identifies the operator of a BinaryOperator.
type BinaryOperatorKind int

const (
	OpOr BinaryOperatorKind = iota
	OpAnd
	OpEqual
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpHas
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
)

var binaryOperatorNames = map[BinaryOperatorKind]string{
	OpOr:                 "or",
	OpAnd:                "and",
	OpEqual:              "eq",
	OpNotEqual:           "ne",
	OpGreaterThan:        "gt",
	OpGreaterThanOrEqual: "ge",
	OpLessThan:           "lt",
	OpLessThanOrEqual:    "le",
	OpHas:                "has",
	OpAdd:                "add",
	OpSubtract:           "sub",
	OpMultiply:           "mul",
	OpDivide:             "div",
	OpModulo:             "mod",
}

func (k BinaryOperatorKind) String() string { return binaryOperatorNames[k] }

// IsComparison reports whether the operator compares its operands.
func (k BinaryOperatorKind) IsComparison() bool {
	return k >= OpEqual && k <= OpLessThanOrEqual
}

// IsArithmetic reports whether the operator is an arithmetic operator.
func (k BinaryOperatorKind) IsArithmetic() bool {
	return k >= OpAdd
}

// BinaryOperator is a logical, comparison or arithmetic operation.
type BinaryOperator struct {
	Kind  BinaryOperatorKind
	Left  Node
	Right Node
}

// UnaryOperatorKind identifies the operator of a UnaryOperator.
type UnaryOperatorKind int

const (
	OpNot UnaryOperatorKind = iota
	OpNegate
)

func (k UnaryOperatorKind) String() string {
	if k == OpNot {
		return "not"
	}
	return "-"
}

// UnaryOperator is a logical negation or an arithmetic negation.
type UnaryOperator struct {
	Kind    UnaryOperatorKind
	Operand Node
}

// FunctionCall is a call of a canonical function.
type FunctionCall struct {
	Name       string
	Parameters []Node
}

// PropertyAccess references a property declared in the schema. Source is the
// node the property is accessed on: nil for the root, the parent property for
// nested properties, or a RangeVariable inside a lambda.
type PropertyAccess struct {
	Name     string
	Source   Node
	Property metadata.Property
}

// OpenPropertyAccess references a property that is not declared in the
// schema, identified only by its name.
type OpenPropertyAccess struct {
	Name   string
	Source Node
}

// TypeConversion converts its source to the target type. It is inserted by
// the binder and never written in the query text.
type TypeConversion struct {
	Source Node
	Target edm.Kind
}

// Constant is a typed literal.
type Constant struct {
	Value edm.Literal
}

// AnyLambda is an any() lambda over a collection. Body is nil for the
// parameterless form path/any().
type AnyLambda struct {
	Source   Node
	Variable *RangeVariable
	Body     Node
}

// RangeVariable references the element of the collection an any() lambda
// iterates. ElementKind is edm.KindNull for open or complex elements.
type RangeVariable struct {
	Name        string
	ElementKind edm.Kind
}

// Direction is the sort direction of an OrderByClause.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// OrderByClause is one clause of an orderby expression. ThenBy links the
// next clause, in the order they appear in the text.
type OrderByClause struct {
	Expression Node
	Direction  Direction
	ThenBy     *OrderByClause
}

func (n *BinaryOperator) node()     {}
func (n *UnaryOperator) node()      {}
func (n *FunctionCall) node()       {}
func (n *PropertyAccess) node()     {}
func (n *OpenPropertyAccess) node() {}
func (n *TypeConversion) node()     {}
func (n *Constant) node()           {}
func (n *AnyLambda) node()          {}
func (n *RangeVariable) node()      {}
