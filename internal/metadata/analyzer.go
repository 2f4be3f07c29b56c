package metadata

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// AnalyzeStruct extracts a schema from a Go struct describing a content model.
//
// Exported fields become properties named after the field. Nested structs
// become complex properties whose fields are addressed with dotted paths,
// slices become collections. The `odata` tag accepts comma-separated parts:
// "name=<Name>" renames the property and "ignore" (or "-") skips it.
func AnalyzeStruct(entity interface{}, open bool) (*Schema, error) {
	entityType := reflect.TypeOf(entity)
	if entityType == nil {
		return nil, fmt.Errorf("entity must be a struct, got nil")
	}

	// Handle pointer types
	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}

	if entityType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity must be a struct, got %s", entityType.Kind())
	}

	a := &analyzer{visiting: map[reflect.Type]bool{}}
	if err := a.analyzeStruct(entityType, ""); err != nil {
		return nil, err
	}

	return NewSchema(entityType.Name(), open, a.props...)
}

type analyzer struct {
	props    []Property
	visiting map[reflect.Type]bool
}

func (a *analyzer) analyzeStruct(structType reflect.Type, prefix string) error {
	if a.visiting[structType] {
		return fmt.Errorf("type %s is recursive at %s", structType.Name(), prefix)
	}
	a.visiting[structType] = true
	defer delete(a.visiting, structType)

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		name, skip := analyzeODataTag(field)
		if skip {
			continue
		}

		if err := a.analyzeField(field.Type, joinPath(prefix, name)); err != nil {
			return err
		}
	}
	return nil
}

// analyzeField registers a single struct field and its nested properties
func (a *analyzer) analyzeField(fieldType reflect.Type, path string) error {
	if fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	if kind, err := edm.KindOf(fieldType); err == nil {
		a.props = append(a.props, Property{Path: path, Kind: kind})
		return nil
	}

	switch fieldType.Kind() {
	case reflect.Struct:
		a.props = append(a.props, Property{Path: path, Complex: true})
		return a.analyzeStruct(fieldType, path)
	case reflect.Slice, reflect.Array:
		elem := fieldType.Elem()
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if kind, err := edm.KindOf(elem); err == nil {
			a.props = append(a.props, Property{Path: path, Kind: kind, Collection: true})
			return nil
		}
		if elem.Kind() == reflect.Struct {
			a.props = append(a.props, Property{Path: path, Complex: true, Collection: true})
		}
		return nil
	}

	// Maps and interfaces carry dynamic content and stay open
	return nil
}

// analyzeODataTag returns the property name of a field and whether it is ignored
func analyzeODataTag(field reflect.StructField) (string, bool) {
	name := field.Name
	odataTag := field.Tag.Get("odata")
	if odataTag == "" {
		return name, false
	}

	for _, part := range strings.Split(odataTag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "-" || part == "ignore":
			return "", true
		case strings.HasPrefix(part, "name="):
			if renamed := strings.TrimPrefix(part, "name="); renamed != "" {
				name = renamed
			}
		}
	}
	return name, false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
