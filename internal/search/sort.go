package search

import "fmt"

// Direction is the direction of a sort criterion.
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

// MarshalText encodes the direction as "asc" or "desc".
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// MissingPolicy places documents without a value for the sort field.
type MissingPolicy int

const (
	MissingFirst MissingPolicy = iota
	MissingLast
)

func (m MissingPolicy) String() string {
	if m == MissingLast {
		return "last"
	}
	return "first"
}

// MarshalText encodes the policy as "first" or "last".
func (m MissingPolicy) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// SortCriterion orders search results by one field.
type SortCriterion struct {
	Field                string        `json:"field"`
	Direction            Direction     `json:"direction"`
	Missing              MissingPolicy `json:"missing"`
	IgnoreUnmappedFields bool          `json:"ignoreUnmappedFields"`
}

// NewSortCriterion returns a criterion that sorts documents missing the field
// first when ascending and last when descending. Fields absent from the
// index mapping are ignored instead of failing the search.
func NewSortCriterion(field string, direction Direction) SortCriterion {
	missing := MissingFirst
	if direction == Descending {
		missing = MissingLast
	}
	return SortCriterion{
		Field:                field,
		Direction:            direction,
		Missing:              missing,
		IgnoreUnmappedFields: true,
	}
}

func (c SortCriterion) String() string {
	return fmt.Sprintf("%s %s (missing %s)", c.Field, c.Direction, c.Missing)
}
