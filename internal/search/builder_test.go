package search

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/query"
)

var literalComparer = cmp.Comparer(func(a, b edm.Literal) bool { return a.Equal(b) })

func testSchema(t *testing.T, open bool) *metadata.Schema {
	t.Helper()
	s, err := metadata.NewSchema("ArticlePage", open,
		metadata.Property{Path: "Name", Kind: edm.KindString},
		metadata.Property{Path: "ContentLink.Id", Kind: edm.KindInt32},
		metadata.Property{Path: "Created", Kind: edm.KindDateTime},
		metadata.Property{Path: "Price", Kind: edm.KindDouble},
		metadata.Property{Path: "Rating", Kind: edm.KindSingle},
		metadata.Property{Path: "Amount", Kind: edm.KindDecimal},
		metadata.Property{Path: "Count", Kind: edm.KindInt64},
		metadata.Property{Path: "IsActive", Kind: edm.KindBoolean},
		metadata.Property{Path: "Tags", Kind: edm.KindString, Collection: true},
		metadata.Property{Path: "Blocks", Complex: true, Collection: true},
		metadata.Property{Path: "Blocks.Title", Kind: edm.KindString},
	)
	require.NoError(t, err)
	return s
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	return NewCompiler(testSchema(t, true), DefaultNaming(), nil)
}

func mustFilter(t *testing.T, c *Compiler, text string) FilterNode {
	t.Helper()
	f, err := c.ParseFilter(text)
	require.NoError(t, err, "ParseFilter(%q)", text)
	return f
}

func assertFilter(t *testing.T, want, got FilterNode) {
	t.Helper()
	if diff := cmp.Diff(want, got, literalComparer); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFilter_Examples(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		name   string
		filter string
		want   FilterNode
	}{
		{
			name:   "Nested property and string",
			filter: "ContentLink/Id eq 123 and Name eq 'Start'",
			want: &And{
				Left:  &Term{Field: "ContentApiModel.ContentLink.Id", Value: edm.Int32(123)},
				Right: &Term{Field: "ContentApiModel.Name", Value: edm.String("Start")},
			},
		},
		{
			name:   "Date-time range",
			filter: "Created ge 2017-12-01T12:00:00Z",
			want: &Range{
				Field:        "ContentApiModel.Created",
				Type:         edm.KindDateTime,
				Lower:        edm.DateTime(time.Date(2017, 12, 1, 12, 0, 0, 0, time.UTC)),
				Upper:        edm.DateTime(time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC)),
				IncludeLower: true,
				IncludeUpper: true,
			},
		},
		{
			name:   "Lower-cased comparison",
			filter: "tolower(Name) eq 'test'",
			want:   &Term{Field: "ContentApiModel.Name.lowercase", Value: edm.String("test")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFilter(t, tt.want, mustFilter(t, c, tt.filter))
		})
	}
}

func TestParseFilter_StringRangeFails(t *testing.T) {
	c := newTestCompiler(t)

	for _, filter := range []string{"Name ge 'A'", "Name gt 'A'", "Name lt 'Z'", "Name le 'Z'", "tolower(Name) gt 'a'"} {
		t.Run(filter, func(t *testing.T) {
			_, err := c.ParseFilter(filter)
			var parseErr *FilterParseError
			require.ErrorAs(t, err, &parseErr)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestParseFilter_Equality(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		filter string
		want   FilterNode
	}{
		{"Name eq 'X'", &Term{Field: "ContentApiModel.Name", Value: edm.String("X")}},
		{"Name ne 'X'", &Not{Filter: &Term{Field: "ContentApiModel.Name", Value: edm.String("X")}}},
		{"Name eq null", &Not{Filter: &Exists{Field: "ContentApiModel.Name"}}},
		{"Name ne null", &Exists{Field: "ContentApiModel.Name"}},
		{"IsActive eq true", &Term{Field: "ContentApiModel.IsActive", Value: edm.Boolean(true)}},
		{"Count eq 5L", &Term{Field: "ContentApiModel.Count", Value: edm.Int64(5)}},
		{"MyProperty eq 'x'", &Term{Field: "ContentApiModel.MyProperty", Value: edm.String("x")}},
		{"Custom/Nested ne 3", &Not{Filter: &Term{Field: "ContentApiModel.Custom.Nested", Value: edm.Int32(3)}}},
		{"Name eq 'O''Brien'", &Term{Field: "ContentApiModel.Name", Value: edm.String("O'Brien")}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assertFilter(t, tt.want, mustFilter(t, c, tt.filter))
		})
	}
}

func TestParseFilter_Ranges(t *testing.T) {
	c := newTestCompiler(t)

	maxOf := func(k edm.Kind) edm.Literal {
		v, err := edm.MaxValue(k)
		require.NoError(t, err)
		return v
	}
	minOf := func(k edm.Kind) edm.Literal {
		v, err := edm.MinValue(k)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		filter string
		field  string
		value  edm.Literal
	}{
		{"ContentLink/Id %s 5", "ContentApiModel.ContentLink.Id", edm.Int32(5)},
		{"Count %s 5L", "ContentApiModel.Count", edm.Int64(5)},
		{"Rating %s 2.5f", "ContentApiModel.Rating", edm.Single(2.5)},
		{"Price %s 2.5d", "ContentApiModel.Price", edm.Double(2.5)},
		{"Amount %s 1.5M", "ContentApiModel.Amount", edm.Decimal(decimal.RequireFromString("1.5"))},
		{"Created %s 2017-12-01", "ContentApiModel.Created", edm.DateTime(time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		kind := tt.value.Kind()
		t.Run(kind.String(), func(t *testing.T) {
			for _, op := range []string{"gt", "ge"} {
				got := mustFilter(t, c, fmt.Sprintf(tt.filter, op))
				assertFilter(t, &Range{
					Field:        tt.field,
					Type:         kind,
					Lower:        tt.value,
					Upper:        maxOf(kind),
					IncludeLower: op == "ge",
					IncludeUpper: true,
				}, got)
			}
			for _, op := range []string{"lt", "le"} {
				got := mustFilter(t, c, fmt.Sprintf(tt.filter, op))
				assertFilter(t, &Range{
					Field:        tt.field,
					Type:         kind,
					Lower:        minOf(kind),
					Upper:        tt.value,
					IncludeLower: true,
					IncludeUpper: op == "le",
				}, got)
			}
		})
	}
}

func TestParseFilter_RangeTypeFromLiteral(t *testing.T) {
	c := newTestCompiler(t)

	got := mustFilter(t, c, "Price gt 5")
	r, ok := got.(*Range)
	require.True(t, ok, "expected *Range, got %T", got)
	assert.Equal(t, edm.KindInt32, r.Type)
	assert.True(t, r.Upper.Equal(edm.Int32(math.MaxInt32)))
}

func TestParseFilter_UnsupportedRangeTypes(t *testing.T) {
	c := newTestCompiler(t)

	for _, filter := range []string{"IsActive gt true", "Price gt null", "MyProperty le null"} {
		t.Run(filter, func(t *testing.T) {
			_, err := c.ParseFilter(filter)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestParseFilter_Contains(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		filter string
		want   FilterNode
	}{
		{"contains(Name, 'test')", &Wildcard{Field: "ContentApiModel.Name", Pattern: "*test*"}},
		{"contains(tolower(Name), 'test')", &Wildcard{Field: "ContentApiModel.Name.lowercase", Pattern: "*test*"}},
		{"contains(Title, 'a')", &Wildcard{Field: "ContentApiModel.Title", Pattern: "*a*"}},
		{
			"contains(tolower(Title), 'x') and Name eq 'a'",
			&And{
				Left:  &Wildcard{Field: "ContentApiModel.Title.lowercase", Pattern: "*x*"},
				Right: &Term{Field: "ContentApiModel.Name", Value: edm.String("a")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assertFilter(t, tt.want, mustFilter(t, c, tt.filter))
		})
	}

	_, err := c.ParseFilter("contains(Name, null)")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseFilter_Connectives(t *testing.T) {
	c := newTestCompiler(t)

	a, b := "Name eq 'A'", "Created lt 2020-01-01T00:00:00Z"
	left, right := mustFilter(t, c, a), mustFilter(t, c, b)

	assertFilter(t, &And{Left: left, Right: right}, mustFilter(t, c, a+" and "+b))
	assertFilter(t, &Or{Left: left, Right: right}, mustFilter(t, c, a+" or "+b))
	assertFilter(t, &Or{Left: left, Right: right}, mustFilter(t, c, "("+a+") or ("+b+")"))
}

func TestParseFilter_Any(t *testing.T) {
	c := newTestCompiler(t)

	assertFilter(t,
		&Term{Field: "ContentApiModel.Tags", Value: edm.String("news")},
		mustFilter(t, c, "Tags/any(t: t eq 'news')"))
	assertFilter(t,
		&Not{Filter: &Term{Field: "ContentApiModel.Tags", Value: edm.String("news")}},
		mustFilter(t, c, "Tags/any(t: t ne 'news')"))

	failures := []string{
		"Others/any(o: o eq 'a')",
		"Tags/any()",
		"Tags/any(t: t eq 'a' or t eq 'b')",
		"Tags/any(t: 'a' eq t)",
		"Tags/any(t: t eq null)",
		"Tags/any(t: contains(t, 'a'))",
		"Blocks/any(b: b/Title eq 'x')",
		"Tags/any(t: Name eq 'x')",
	}
	for _, filter := range failures {
		t.Run(filter, func(t *testing.T) {
			_, err := c.ParseFilter(filter)
			var parseErr *FilterParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}

	_, err := c.ParseFilter("Name/any(n: n eq 'a')")
	var parseErr *FilterParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, query.ErrIncompatibleTypes)
}

func TestParseFilter_Unsupported(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		filter  string
		wantErr error
	}{
		{"not (Name eq 'a')", ErrUnsupportedExpression},
		{"Price add 1 gt 5", ErrMissingProperty},
		{"toupper(Name) eq 'X'", ErrUnsupportedFunction},
		{"startswith(Name, 'a')", ErrUnsupportedFunction},
		{"IsActive", ErrUnsupportedExpression},
		{"Name has 'x'", ErrUnsupportedExpression},
		{"Price eq Count", ErrMissingLiteral},
		{"Name eq Test", ErrMissingLiteral},
		{"trim(tolower(Name)) eq 'a'", ErrMissingProperty},
		{"'a' eq Name", ErrMissingProperty},
		{"Name eq 'a' and Name in ('a')", query.ErrUnsupported},
		{"Name eq Test and", query.ErrSyntax},
		{"", query.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			_, err := c.ParseFilter(tt.filter)
			var parseErr *FilterParseError
			require.ErrorAs(t, err, &parseErr)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseFilter_ClosedSchemaRejectsOpenProperties(t *testing.T) {
	c := NewCompiler(testSchema(t, false), DefaultNaming(), nil)

	_, err := c.ParseFilter("MyProperty eq 'x'")
	var parseErr *FilterParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, query.ErrPropertyNotFound)

	_, err = c.ParseFilter("Name eq 'x'")
	assert.NoError(t, err)
}

func TestParseFilter_TypeSuffixConvention(t *testing.T) {
	c := NewCompiler(testSchema(t, true), DefaultNaming(), convention.TypeSuffix{})

	assertFilter(t,
		&Term{Field: "ContentApiModel.Name$$string.lowercase", Value: edm.String("a")},
		mustFilter(t, c, "tolower(Name) eq 'a'"))
	assertFilter(t,
		&Term{Field: "ContentApiModel.ContentLink.Id$$number", Value: edm.Int32(1)},
		mustFilter(t, c, "ContentLink/Id eq 1"))
	assertFilter(t,
		&Term{Field: "ContentApiModel.MyProperty", Value: edm.Int32(1)},
		mustFilter(t, c, "MyProperty eq 1"))
}

func TestBuilder_RecoversPanics(t *testing.T) {
	panicking := convention.Func(func(string, edm.Kind, bool) string { panic("convention failed") })
	c := NewCompiler(testSchema(t, true), DefaultNaming(), panicking)

	_, err := c.ParseFilter("Name eq 'a'")
	var parseErr *FilterParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
	assert.Contains(t, err.Error(), "convention failed")

	_, err = c.ParseOrderBy("Name")
	var orderErr *OrderByParseError
	require.ErrorAs(t, err, &orderErr)
}

func TestBuilder_NilInput(t *testing.T) {
	b := NewBuilder(NewFieldResolver(nil, DefaultNaming(), nil))

	_, err := b.Filter(nil)
	var parseErr *FilterParseError
	require.ErrorAs(t, err, &parseErr)

	_, err = b.OrderBy(nil)
	var orderErr *OrderByParseError
	require.ErrorAs(t, err, &orderErr)
}

func TestCompiler_ConcurrentUse(t *testing.T) {
	c := newTestCompiler(t)
	want := mustFilter(t, c, "ContentLink/Id eq 123 and contains(tolower(Name), 'start')")

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.ParseFilter("ContentLink/Id eq 123 and contains(tolower(Name), 'start')")
			if err != nil {
				errs <- err
				return
			}
			if got.String() != want.String() {
				errs <- errors.New("concurrent translation produced " + got.String())
			}
			if _, err := c.ParseOrderBy("Name desc, Created"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
