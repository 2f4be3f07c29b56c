package blugeindex

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blugelabs/bluge"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/search"
)

// Document is a content item to index. Fields holds the property values as
// decoded from JSON: nested objects are maps, collections are slices.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// DocumentMapper maps content documents to bluge documents under the
// physical field names a search.FieldResolver with the same schema, naming
// and convention produces.
type DocumentMapper struct {
	schema *metadata.Schema
	fields *search.FieldResolver
}

// NewDocumentMapper creates a mapper. Declared properties are indexed as
// their schema type; values of open properties are indexed as the JSON type
// they have.
func NewDocumentMapper(naming search.Naming, conv convention.Convention, schema *metadata.Schema) *DocumentMapper {
	return &DocumentMapper{
		schema: schema,
		fields: search.NewFieldResolver(schema, naming, conv),
	}
}

// Map converts a content document into a bluge document.
func (m *DocumentMapper) Map(doc Document) (*bluge.Document, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("document has no id")
	}

	out := bluge.NewDocument(doc.ID)
	present := map[string]struct{}{}
	if err := m.mapObject(out, present, "", doc.Fields); err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}

	names := make([]string, 0, len(present))
	for name := range present {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.AddField(bluge.NewKeywordField(FieldsField, name))
	}
	return out, nil
}

func (m *DocumentMapper) mapObject(out *bluge.Document, present map[string]struct{}, prefix string, fields map[string]any) error {
	for name, value := range fields {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if err := m.mapValue(out, present, path, value); err != nil {
			return err
		}
	}
	return nil
}

func (m *DocumentMapper) mapValue(out *bluge.Document, present map[string]struct{}, path string, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		present[m.fields.Resolve(path, "")] = struct{}{}
		return m.mapObject(out, present, path, v)
	case []any:
		for _, element := range v {
			if err := m.mapValue(out, present, path, element); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, element := range v {
			if err := m.mapValue(out, present, path, element); err != nil {
				return err
			}
		}
		return nil
	}

	kind, err := m.kindOf(path, value)
	if err != nil {
		return err
	}

	field := m.fields.Resolve(path, "")
	present[field] = struct{}{}

	switch kind {
	case edm.KindString:
		s := fmt.Sprint(value)
		lower := m.fields.Resolve(path, search.FunctionToLower)
		present[lower] = struct{}{}
		out.AddField(bluge.NewKeywordField(lower, strings.ToLower(s)))
		// Strings without a sort companion sort on their own value.
		if sortField := m.fields.SortField(path); sortField != field {
			present[sortField] = struct{}{}
			out.AddField(bluge.NewKeywordField(field, s).StoreValue())
			out.AddField(bluge.NewKeywordField(sortField, strings.ToLower(s)).Sortable())
		} else {
			out.AddField(bluge.NewKeywordField(field, s).StoreValue().Sortable())
		}
	case edm.KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("property %s: expected a boolean, got %T", path, value)
		}
		out.AddField(bluge.NewKeywordField(field, fmt.Sprint(b)).Sortable())
	case edm.KindDateTime:
		t, err := toTime(value)
		if err != nil {
			return fmt.Errorf("property %s: %w", path, err)
		}
		out.AddField(bluge.NewDateTimeField(field, t).Sortable())
	default:
		f, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("property %s: %w", path, err)
		}
		out.AddField(bluge.NewNumericField(field, f).Sortable())
	}
	return nil
}

// kindOf returns the declared kind of a property, or the kind of the value
// for open properties.
func (m *DocumentMapper) kindOf(path string, value any) (edm.Kind, error) {
	if p, ok := m.schema.Property(path); ok && !p.Complex {
		return p.Kind, nil
	}
	switch value.(type) {
	case string:
		return edm.KindString, nil
	case bool:
		return edm.KindBoolean, nil
	case time.Time:
		return edm.KindDateTime, nil
	case float64, float32, int, int32, int64:
		return edm.KindDouble, nil
	}
	return edm.KindNull, fmt.Errorf("property %s: unsupported value type %T", path, value)
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		lit, err := edm.ParseDateTime(v)
		if err != nil {
			return time.Time{}, err
		}
		t, _ := lit.Time()
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected a date, got %T", value)
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		lit, err := edm.ParseNumber(v)
		if err != nil {
			return 0, err
		}
		f, _ := lit.Float64()
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", value)
}
