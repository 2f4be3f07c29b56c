package search

import (
	"errors"
	"fmt"
)

// FilterParseError reports a $filter expression that cannot be translated.
type FilterParseError struct {
	Message string
	Err     error
}

func (e *FilterParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FilterParseError) Unwrap() error { return e.Err }

// OrderByParseError reports an $orderby expression that cannot be translated.
type OrderByParseError struct {
	Message string
	Err     error
}

func (e *OrderByParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderByParseError) Unwrap() error { return e.Err }

// AsFilterParseError returns the FilterParseError in err's chain, or wraps
// err in a new one.
func AsFilterParseError(err error) *FilterParseError {
	if err == nil {
		return nil
	}
	var parseErr *FilterParseError
	if errors.As(err, &parseErr) {
		return parseErr
	}
	return &FilterParseError{Message: "failed to parse filter", Err: err}
}

// AsOrderByParseError returns the OrderByParseError in err's chain, or wraps
// err in a new one.
func AsOrderByParseError(err error) *OrderByParseError {
	if err == nil {
		return nil
	}
	var parseErr *OrderByParseError
	if errors.As(err, &parseErr) {
		return parseErr
	}
	return &OrderByParseError{Message: "failed to parse orderby", Err: err}
}

// Causes of translation failures, wrapped by the two parse error kinds.
var (
	ErrUnsupportedExpression = errors.New("unsupported expression")
	ErrUnsupportedFunction   = errors.New("unsupported function")
	ErrUnsupportedType       = errors.New("unsupported type")
	ErrUnsupportedLambda     = errors.New("unsupported lambda expression")
	ErrMissingProperty       = errors.New("expression does not reference a property")
	ErrMissingLiteral        = errors.New("expression does not compare against a literal")
)

// recovered converts a recovered panic value into an error
func recovered(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrUnsupportedExpression, err)
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedExpression, r)
}
