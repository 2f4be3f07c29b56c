package query

import "errors"

// Error categories returned by the parser. Parse errors wrap one of these
// with the details of the offending input; callers use errors.Is.
var (
	// ErrSyntax reports text that does not conform to the grammar.
	ErrSyntax = errors.New("syntax error")
	// ErrPropertyNotFound reports an undeclared property of a closed schema.
	ErrPropertyNotFound = errors.New("could not find a property")
	// ErrIncompatibleTypes reports operands whose types cannot be compared or combined.
	ErrIncompatibleTypes = errors.New("incompatible types")
	// ErrUnknownFunction reports a call to a function that is not a canonical OData function.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrUnsupported reports grammar that is recognised but not supported.
	ErrUnsupported = errors.New("unsupported expression")
)

// Pre-defined errors for common cases to reduce fmt.Errorf allocations
var (
	errEmptyFilter           = errors.New("filter expression is empty")
	errEmptyOrderBy          = errors.New("orderby expression is empty")
	errInOperator            = errors.New("the 'in' operator is not supported")
	errAllLambda             = errors.New("the 'all' lambda operator is not supported")
	errLambdaNotCollection   = errors.New("lambda operators can only be applied to collection properties")
	errLambdaVariableInUse   = errors.New("lambda range variable is already in use")
	errPathThroughPrimitive  = errors.New("property path traverses a primitive property")
	errPathThroughCollection = errors.New("property path traverses a collection property")
)
