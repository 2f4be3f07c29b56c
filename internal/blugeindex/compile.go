// Package blugeindex executes translated filter trees and sort criteria
// against a bluge index of content documents.
package blugeindex

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blugelabs/bluge"

	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/search"
)

// FieldsField is the keyword field listing the name of every field a
// document has a value for. Exists filters are term queries on it.
const FieldsField = "_fields"

// ErrUnsupportedNode is returned for filter nodes or values the index cannot
// express.
var ErrUnsupportedNode = errors.New("unsupported filter node")

// Compile converts a filter tree into a bluge query. A nil filter matches all
// documents.
func Compile(f search.FilterNode) (bluge.Query, error) {
	c, err := compile(f)
	if err != nil {
		return nil, err
	}
	return c.query, nil
}

// Explain returns the structure of the bluge query Compile builds for f.
func Explain(f search.FilterNode) (string, error) {
	c, err := compile(f)
	if err != nil {
		return "", err
	}
	return c.explain, nil
}

// compiled pairs a query with a readable description of it
type compiled struct {
	query   bluge.Query
	explain string
}

func compile(f search.FilterNode) (compiled, error) {
	switch f := f.(type) {
	case nil:
		return compiled{bluge.NewMatchAllQuery(), "MatchAllQuery"}, nil
	case *search.Term:
		return compileTerm(f)
	case *search.Not:
		inner, err := compile(f.Filter)
		if err != nil {
			return compiled{}, err
		}
		q := bluge.NewBooleanQuery().
			AddMust(bluge.NewMatchAllQuery()).
			AddMustNot(inner.query)
		return compiled{q, fmt.Sprintf("BooleanQuery{must: [MatchAllQuery], mustNot: [%s]}", inner.explain)}, nil
	case *search.Exists:
		q := bluge.NewTermQuery(f.Field).SetField(FieldsField)
		return compiled{q, fmt.Sprintf("TermQuery{field: %s, term: %s}", FieldsField, f.Field)}, nil
	case *search.Range:
		return compileRange(f)
	case *search.Wildcard:
		q := bluge.NewWildcardQuery(f.Pattern).SetField(f.Field)
		return compiled{q, fmt.Sprintf("WildcardQuery{field: %s, pattern: %s}", f.Field, f.Pattern)}, nil
	case *search.And:
		left, right, err := compileChildren(f.Left, f.Right)
		if err != nil {
			return compiled{}, err
		}
		q := bluge.NewBooleanQuery().AddMust(left.query, right.query)
		return compiled{q, fmt.Sprintf("BooleanQuery{must: [%s, %s]}", left.explain, right.explain)}, nil
	case *search.Or:
		left, right, err := compileChildren(f.Left, f.Right)
		if err != nil {
			return compiled{}, err
		}
		q := bluge.NewBooleanQuery().AddShould(left.query, right.query).SetMinShould(1)
		return compiled{q, fmt.Sprintf("BooleanQuery{should: [%s, %s], minShould: 1}", left.explain, right.explain)}, nil
	default:
		return compiled{}, fmt.Errorf("%w: %T", ErrUnsupportedNode, f)
	}
}

func compileChildren(left, right search.FilterNode) (compiled, compiled, error) {
	l, err := compile(left)
	if err != nil {
		return compiled{}, compiled{}, err
	}
	r, err := compile(right)
	if err != nil {
		return compiled{}, compiled{}, err
	}
	return l, r, nil
}

// maxExactInt is the largest integer magnitude a float64 holds exactly.
const maxExactInt = 1 << 53

// compileTerm matches strings and booleans by term and numbers and dates by
// a single-point inclusive range, the way they are indexed. Numbers are
// indexed as float64, so Int64 terms beyond 2^53 are rejected and Decimal
// terms match their nearest float64.
func compileTerm(f *search.Term) (compiled, error) {
	value := f.Value
	switch kind := value.Kind(); {
	case kind == edm.KindString || kind == edm.KindBoolean:
		q := bluge.NewTermQuery(value.Text()).SetField(f.Field)
		return compiled{q, fmt.Sprintf("TermQuery{field: %s, term: %s}", f.Field, value.Text())}, nil
	case kind.IsNumeric():
		if i, ok := value.Value().(int64); ok && (i > maxExactInt || i < -maxExactInt) {
			return compiled{}, fmt.Errorf("%w: integer %s cannot be matched exactly", ErrUnsupportedNode, value.Text())
		}
		v, _ := value.Float64()
		q := bluge.NewNumericRangeInclusiveQuery(v, v, true, true).SetField(f.Field)
		return compiled{q, fmt.Sprintf("NumericRangeQuery{field: %s, [%s, %s]}", f.Field, value.Text(), value.Text())}, nil
	case kind == edm.KindDateTime:
		t, _ := value.Time()
		if !representable(t) {
			return compiled{}, fmt.Errorf("%w: date %s is outside the indexable range", ErrUnsupportedNode, value.Text())
		}
		q := bluge.NewDateRangeInclusiveQuery(t, t, true, true).SetField(f.Field)
		return compiled{q, fmt.Sprintf("DateRangeQuery{field: %s, [%s, %s]}", f.Field, value.Text(), value.Text())}, nil
	default:
		return compiled{}, fmt.Errorf("%w: term value of type %s", ErrUnsupportedNode, value.Kind())
	}
}

// compileRange builds numeric ranges over float64 bounds. Int64 and Decimal
// bounds are rounded to the nearest float64, which is also how documents are
// indexed.
func compileRange(f *search.Range) (compiled, error) {
	bounds := func(open, closing string) string {
		var b strings.Builder
		b.WriteString(open)
		b.WriteString(f.Lower.Text())
		b.WriteString(", ")
		b.WriteString(f.Upper.Text())
		b.WriteString(closing)
		return b.String()
	}
	open, closing := "(", ")"
	if f.IncludeLower {
		open = "["
	}
	if f.IncludeUpper {
		closing = "]"
	}

	switch {
	case f.Type.IsNumeric():
		lower, lok := f.Lower.Float64()
		upper, uok := f.Upper.Float64()
		if !lok || !uok {
			return compiled{}, fmt.Errorf("%w: non-numeric bounds for %s range", ErrUnsupportedNode, f.Type)
		}
		q := bluge.NewNumericRangeInclusiveQuery(lower, upper, f.IncludeLower, f.IncludeUpper).SetField(f.Field)
		return compiled{q, fmt.Sprintf("NumericRangeQuery{field: %s, %s}", f.Field, bounds(open, closing))}, nil
	case f.Type == edm.KindDateTime:
		lower, lok := f.Lower.Time()
		upper, uok := f.Upper.Time()
		if !lok || !uok {
			return compiled{}, fmt.Errorf("%w: non-date bounds for %s range", ErrUnsupportedNode, f.Type)
		}
		// Bounds beyond the nanosecond epoch range are open sides.
		if !representable(lower) {
			lower = time.Time{}
		}
		if !representable(upper) {
			upper = time.Time{}
		}
		if lower.IsZero() && upper.IsZero() {
			q := bluge.NewTermQuery(f.Field).SetField(FieldsField)
			return compiled{q, fmt.Sprintf("TermQuery{field: %s, term: %s}", FieldsField, f.Field)}, nil
		}
		q := bluge.NewDateRangeInclusiveQuery(lower, upper, f.IncludeLower, f.IncludeUpper).SetField(f.Field)
		return compiled{q, fmt.Sprintf("DateRangeQuery{field: %s, %s}", f.Field, bounds(open, closing))}, nil
	default:
		return compiled{}, fmt.Errorf("%w: range over %s", ErrUnsupportedNode, f.Type)
	}
}

var (
	minIndexableTime = time.Unix(0, -1<<63).UTC()
	maxIndexableTime = time.Unix(0, 1<<63-1).UTC()
)

// representable reports whether t can be indexed as nanoseconds since the epoch.
func representable(t time.Time) bool {
	return !t.Before(minIndexableTime) && !t.After(maxIndexableTime)
}
