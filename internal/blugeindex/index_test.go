package blugeindex

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/search"
)

const testDocuments = `[
	{"id": "1", "fields": {"Name": "Start", "ContentLink": {"Id": 123}, "Created": "2017-12-05T00:00:00Z", "Price": 10, "Tags": ["news", "go"], "MyProperty": "alpha"}},
	{"id": "2", "fields": {"Name": "start page", "ContentLink": {"Id": 7}, "Created": "2017-11-01T00:00:00Z", "Price": 25.5, "Tags": ["sports"]}},
	{"id": "3", "fields": {"Name": "Other", "ContentLink": {"Id": 123}, "Price": 5, "MyProperty": "beta"}}
]`

func testSchema(t *testing.T) *metadata.Schema {
	t.Helper()
	s, err := metadata.NewSchema("ArticlePage", true,
		metadata.Property{Path: "Name", Kind: edm.KindString},
		metadata.Property{Path: "ContentLink.Id", Kind: edm.KindInt32},
		metadata.Property{Path: "Created", Kind: edm.KindDateTime},
		metadata.Property{Path: "Price", Kind: edm.KindDouble},
		metadata.Property{Path: "Tags", Kind: edm.KindString, Collection: true},
	)
	require.NoError(t, err)
	return s
}

type fixture struct {
	index    *Index
	compiler *search.Compiler
}

func newFixture(t *testing.T, conv convention.Convention) *fixture {
	t.Helper()
	schema := testSchema(t)

	ix, err := Open(Config{Schema: schema, Naming: search.DefaultNaming(), Convention: conv})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	var docs []Document
	require.NoError(t, json.Unmarshal([]byte(testDocuments), &docs))
	require.NoError(t, ix.Index(context.Background(), docs...))

	return &fixture{index: ix, compiler: search.NewCompiler(schema, search.DefaultNaming(), conv)}
}

func (f *fixture) search(t *testing.T, filter, orderby string, size, from int) *Result {
	t.Helper()
	req := Request{Size: size, From: from}
	if filter != "" {
		node, err := f.compiler.ParseFilter(filter)
		require.NoError(t, err, filter)
		req.Filter = node
	}
	if orderby != "" {
		criteria, err := f.compiler.ParseOrderBy(orderby)
		require.NoError(t, err, orderby)
		req.Sort = criteria
	}
	result, err := f.index.Search(context.Background(), req)
	require.NoError(t, err)
	return result
}

func TestIndex_Filters(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		filter string
		want   []string
	}{
		{"ContentLink/Id eq 123 and Name eq 'Start'", []string{"1"}},
		{"ContentLink/Id eq 123", []string{"1", "3"}},
		{"Created ge 2017-12-01T12:00:00Z", []string{"1"}},
		{"Created lt 2017-12-01T00:00:00Z", []string{"2"}},
		{"tolower(Name) eq 'start'", []string{"1"}},
		{"contains(Name, 'tar')", []string{"1", "2"}},
		{"Name ne 'Start'", []string{"2", "3"}},
		{"Created eq null", []string{"3"}},
		{"Created ne null", []string{"1", "2"}},
		{"Price gt 5", []string{"1", "2"}},
		{"Price le 10", []string{"1", "3"}},
		{"Price eq 10", []string{"1"}},
		{"Tags/any(t: t eq 'go')", []string{"1"}},
		{"Tags/any(t: t ne 'go')", []string{"2", "3"}},
		{"MyProperty eq 'alpha' or MyProperty eq 'beta'", []string{"1", "3"}},
		{"MyProperty eq null", []string{"2"}},
		{"tolower(Name) ne null", []string{"1", "2", "3"}},
		{"tolower(Name) eq null", nil},
		{"tolower(MyProperty) ne null", []string{"1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			result := f.search(t, tt.filter, "", 10, 0)
			ids := append([]string(nil), result.IDs...)
			sort.Strings(ids)
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, uint64(len(tt.want)), result.Total)
		})
	}
}

func TestIndex_Sort(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		orderby string
		want    []string
	}{
		{"Price desc", []string{"2", "1", "3"}},
		{"Price", []string{"3", "1", "2"}},
		{"Name", []string{"3", "1", "2"}},
		{"Name desc", []string{"2", "1", "3"}},
		{"Created desc", []string{"1", "2", "3"}},
		{"Created", []string{"3", "2", "1"}},
		{"ContentLink/Id desc, Price", []string{"3", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.orderby, func(t *testing.T) {
			assert.Equal(t, tt.want, f.search(t, "", tt.orderby, 10, 0).IDs)
		})
	}
}

func TestIndex_SortMissingValues(t *testing.T) {
	f := newFixture(t, nil)

	// Document 2 has no MyProperty and document 3 has no Created.
	tests := []struct {
		orderby string
		want    []string
	}{
		{"MyProperty desc", []string{"3", "1", "2"}},
		{"MyProperty", []string{"2", "1", "3"}},
		{"Created desc", []string{"1", "2", "3"}},
		{"Created asc", []string{"3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.orderby, func(t *testing.T) {
			assert.Equal(t, tt.want, f.search(t, "", tt.orderby, 10, 0).IDs)
		})
	}
}

func TestIndex_Paging(t *testing.T) {
	f := newFixture(t, nil)

	result := f.search(t, "", "Name", 1, 1)
	assert.Equal(t, []string{"1"}, result.IDs)
	assert.Equal(t, uint64(3), result.Total)

	result = f.search(t, "ContentLink/Id eq 123", "", 0, 0)
	assert.Empty(t, result.IDs)
	assert.Equal(t, uint64(2), result.Total)

	_, err := f.index.Search(context.Background(), Request{Size: -1})
	assert.Error(t, err)
}

func TestIndex_TypeSuffixConvention(t *testing.T) {
	f := newFixture(t, convention.TypeSuffix{})

	ids := f.search(t, "Name eq 'Start' and Price gt 1", "", 10, 0).IDs
	assert.Equal(t, []string{"1"}, ids)
	assert.Equal(t, []string{"3", "1", "2"}, f.search(t, "", "Name", 10, 0).IDs)
}

func TestIndex_ReplaceDocument(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.index.Index(ctx, Document{ID: "3", Fields: map[string]any{"Name": "Start"}}))
	ids := f.search(t, "Name eq 'Start'", "", 10, 0).IDs
	sort.Strings(ids)
	assert.Equal(t, []string{"1", "3"}, ids)
	assert.Empty(t, f.search(t, "MyProperty eq 'beta'", "", 10, 0).IDs)
}

func TestIndex_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.Error(t, f.index.Index(ctx, Document{Fields: map[string]any{"Name": "x"}}))
	assert.Error(t, f.index.Index(ctx, Document{ID: "9", Fields: map[string]any{"Created": "yesterday"}}))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, f.index.Index(canceled, Document{ID: "9"}), context.Canceled)

	require.NoError(t, f.index.Close())
	require.NoError(t, f.index.Close())
	_, err := f.index.Search(ctx, Request{Size: 1})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.index.Index(ctx, Document{ID: "9"}), ErrClosed)
}

func TestDocumentMapper_FieldNames(t *testing.T) {
	m := NewDocumentMapper(search.DefaultNaming(), nil, testSchema(t))

	doc, err := m.Map(Document{ID: "1", Fields: map[string]any{
		"Name":        "Start",
		"ContentLink": map[string]any{"Id": float64(123)},
		"MyProperty":  "open",
	}})
	require.NoError(t, err)

	names := map[string]int{}
	present := map[string]bool{}
	for _, field := range *doc {
		names[field.Name()]++
		if field.Name() == FieldsField {
			present[string(field.Value())] = true
		}
	}

	assert.Equal(t, 1, names["ContentApiModel.Name"])
	assert.Equal(t, 1, names["ContentApiModel.Name.lowercase"])
	assert.Equal(t, 1, names["ContentApiModel.Name.sort"])
	assert.Equal(t, 1, names["ContentApiModel.ContentLink.Id"])
	assert.Equal(t, 1, names["ContentApiModel.MyProperty"])
	assert.Equal(t, 1, names["ContentApiModel.MyProperty.lowercase"])
	assert.Zero(t, names["ContentApiModel.MyProperty.sort"])

	assert.Equal(t, map[string]bool{
		"ContentApiModel.Name":                 true,
		"ContentApiModel.Name.lowercase":       true,
		"ContentApiModel.Name.sort":            true,
		"ContentApiModel.ContentLink":          true,
		"ContentApiModel.ContentLink.Id":       true,
		"ContentApiModel.MyProperty":           true,
		"ContentApiModel.MyProperty.lowercase": true,
	}, present)
}
