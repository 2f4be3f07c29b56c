package search

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-search/internal/edm"
)

func TestFilterNode_String(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		filter string
		want   string
	}{
		{"ContentLink/Id eq 123 and Name eq 'Start'", "and(term(ContentApiModel.ContentLink.Id, 123), term(ContentApiModel.Name, 'Start'))"},
		{"Name ne null or contains(Name, 'x')", "or(exists(ContentApiModel.Name), wildcard(ContentApiModel.Name, *x*))"},
		{"Name eq null", "not(exists(ContentApiModel.Name))"},
		{"Count gt 5L", "range(ContentApiModel.Count, Edm.Int64, (5L, 9223372036854775807L])"},
		{"Count le 5L", "range(ContentApiModel.Count, Edm.Int64, [-9223372036854775808L, 5L])"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.want, mustFilter(t, c, tt.filter).String())
		})
	}
}

func TestFilterNode_JSON(t *testing.T) {
	c := newTestCompiler(t)

	f := mustFilter(t, c, "(ContentLink/Id eq 123 and Name ne 'a') or Count ge 5L")
	data, err := json.Marshal(f)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "or",
		"left": {
			"type": "and",
			"left": {"type": "term", "field": "ContentApiModel.ContentLink.Id", "value": {"type": "Edm.Int32", "value": 123}},
			"right": {"type": "not", "filter": {"type": "term", "field": "ContentApiModel.Name", "value": {"type": "Edm.String", "value": "a"}}}
		},
		"right": {
			"type": "range",
			"field": "ContentApiModel.Count",
			"valueType": "Edm.Int64",
			"lower": {"type": "Edm.Int64", "value": 5},
			"upper": {"type": "Edm.Int64", "value": 9223372036854775807},
			"includeLower": true,
			"includeUpper": true
		}
	}`, string(data))
}

func TestFilterNode_JSONLeaves(t *testing.T) {
	tests := []struct {
		node FilterNode
		want string
	}{
		{&Exists{Field: "f"}, `{"type":"exists","field":"f"}`},
		{&Wildcard{Field: "f", Pattern: "*a*"}, `{"type":"wildcard","field":"f","pattern":"*a*"}`},
		{&Term{Field: "f", Value: edm.Boolean(true)}, `{"type":"term","field":"f","value":{"type":"Edm.Boolean","value":true}}`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.node)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))
	}
}

func TestFingerprint(t *testing.T) {
	c := newTestCompiler(t)

	a := mustFilter(t, c, "Name eq 'a' and Count gt 5L")
	b := mustFilter(t, c, "(Name eq 'a') and (Count gt 5L)")
	other := mustFilter(t, c, "Name eq 'b' and Count gt 5L")

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(other))
	assert.Zero(t, Fingerprint(nil))
}

func TestAsFilterParseError(t *testing.T) {
	original := &FilterParseError{Message: "bad"}
	assert.Same(t, original, AsFilterParseError(original))

	wrapped := AsFilterParseError(errors.Join(errors.New("context"), original))
	assert.Same(t, original, wrapped)

	cause := errors.New("boom")
	converted := AsFilterParseError(cause)
	assert.ErrorIs(t, converted, cause)
	assert.Equal(t, "failed to parse filter: boom", converted.Error())

	assert.Nil(t, AsFilterParseError(nil))
}

func TestAsOrderByParseError(t *testing.T) {
	original := &OrderByParseError{Message: "bad"}
	assert.Same(t, original, AsOrderByParseError(original))
	assert.Equal(t, "bad", original.Error())

	converted := AsOrderByParseError(errors.New("boom"))
	assert.Equal(t, "failed to parse orderby: boom", converted.Error())
	assert.Nil(t, AsOrderByParseError(nil))
}
