package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// Property describes a strongly typed property of a content model.
type Property struct {
	// Path is the dotted property path (e.g. "ContentLink.Id").
	Path string
	// Kind is the declared type. It is edm.KindNull for complex properties.
	Kind edm.Kind
	// Collection is true for multi-valued properties.
	Collection bool
	// Complex is true for properties that only group nested properties.
	Complex bool
}

// Name returns the last segment of the property path.
func (p Property) Name() string {
	if idx := strings.LastIndex(p.Path, "."); idx >= 0 {
		return p.Path[idx+1:]
	}
	return p.Path
}

// Schema is the immutable description of a content model: which dotted
// property paths are strongly typed and whether other names are accepted as
// open (dynamic) properties.
type Schema struct {
	name       string
	open       bool
	properties map[string]Property
}

// NewSchema builds a schema from property declarations. Parents of dotted
// paths are registered as complex properties when not declared.
func NewSchema(name string, open bool, props ...Property) (*Schema, error) {
	s := &Schema{
		name:       name,
		open:       open,
		properties: make(map[string]Property, len(props)),
	}

	for _, p := range props {
		p.Path = strings.TrimSpace(p.Path)
		if p.Path == "" {
			return nil, fmt.Errorf("schema %s: property path is required", name)
		}
		if strings.Contains(p.Path, "/") || strings.Contains(p.Path, "..") ||
			strings.HasPrefix(p.Path, ".") || strings.HasSuffix(p.Path, ".") {
			return nil, fmt.Errorf("schema %s: invalid property path %q", name, p.Path)
		}
		if p.Kind == edm.KindNull {
			p.Complex = true
		}
		if existing, ok := s.properties[p.Path]; ok && !(existing.Complex && p.Complex) {
			return nil, fmt.Errorf("schema %s: property %s declared twice", name, p.Path)
		}
		s.properties[p.Path] = p
	}

	for _, p := range props {
		segments := strings.Split(strings.TrimSpace(p.Path), ".")
		for i := 1; i < len(segments); i++ {
			parent := strings.Join(segments[:i], ".")
			existing, ok := s.properties[parent]
			if !ok {
				s.properties[parent] = Property{Path: parent, Complex: true}
				continue
			}
			if !existing.Complex {
				return nil, fmt.Errorf("schema %s: property %s has primitive parent %s", name, p.Path, parent)
			}
		}
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on invalid declarations.
func MustSchema(name string, open bool, props ...Property) *Schema {
	s, err := NewSchema(name, open, props...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the content model name.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// IsOpen reports whether undeclared properties are accepted as open
// properties. A nil schema declares nothing and is open.
func (s *Schema) IsOpen() bool { return s == nil || s.open }

// Property looks up a declared property by dotted path.
func (s *Schema) Property(path string) (Property, bool) {
	if s == nil {
		return Property{}, false
	}
	p, ok := s.properties[path]
	return p, ok
}

// Properties returns all declarations sorted by path.
func (s *Schema) Properties() []Property {
	if s == nil {
		return nil
	}
	props := make([]Property, 0, len(s.properties))
	for _, p := range s.properties {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Path < props[j].Path })
	return props
}
