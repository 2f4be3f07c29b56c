package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlstn/go-odata-search/internal/convention"
)

func TestFieldResolver_Resolve(t *testing.T) {
	r := NewFieldResolver(testSchema(t, true), DefaultNaming(), nil)

	tests := []struct {
		path     string
		function string
		want     string
	}{
		{"Name", "", "ContentApiModel.Name"},
		{"Name", "tolower", "ContentApiModel.Name.lowercase"},
		{"ContentLink.Id", "", "ContentApiModel.ContentLink.Id"},
		{"ContentLink", "", "ContentApiModel.ContentLink"},
		{"MyProperty", "tolower", "ContentApiModel.MyProperty.lowercase"},
		{"Name", "toupper", "ContentApiModel.Name"},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.function, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.path, tt.function))
		})
	}
}

func TestFieldResolver_SortField(t *testing.T) {
	r := NewFieldResolver(testSchema(t, true), DefaultNaming(), convention.TypeSuffix{})

	assert.Equal(t, "ContentApiModel.Name$$string.sort", r.SortField("Name"))
	assert.Equal(t, "ContentApiModel.Created$$date", r.SortField("Created"))
	assert.Equal(t, "ContentApiModel.MyProperty", r.SortField("MyProperty"))
}

func TestFieldResolver_CustomNaming(t *testing.T) {
	naming := Naming{Namespace: "", LowercaseSuffix: "_lc", SortSuffix: "_sort"}
	r := NewFieldResolver(testSchema(t, true), naming, nil)

	assert.Equal(t, "Name_lc", r.Resolve("Name", "tolower"))
	assert.Equal(t, "Name_sort", r.SortField("Name"))
	assert.Equal(t, naming, r.Naming())
}
