package metadata

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nlstn/go-odata-search/internal/edm"
)

// SchemaFile is the YAML representation of a content schema.
//
//	name: ArticlePage
//	open: true
//	properties:
//	  - path: Name
//	    type: Edm.String
//	  - path: Tags
//	    type: string
//	    collection: true
type SchemaFile struct {
	Name       string         `yaml:"name"`
	Open       *bool          `yaml:"open,omitempty"`
	Properties []PropertyFile `yaml:"properties"`
}

// PropertyFile is a single property declaration of a SchemaFile.
type PropertyFile struct {
	Path       string `yaml:"path"`
	Type       string `yaml:"type,omitempty"`
	Collection bool   `yaml:"collection,omitempty"`
}

// LoadSchema decodes a YAML schema document. Schemas are open unless the
// document says otherwise. A property without a type is complex.
func LoadSchema(r io.Reader) (*Schema, error) {
	var file SchemaFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return file.Schema()
}

// Schema builds the schema described by the file.
func (f SchemaFile) Schema() (*Schema, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	open := true
	if f.Open != nil {
		open = *f.Open
	}

	props := make([]Property, 0, len(f.Properties))
	for _, pf := range f.Properties {
		p := Property{Path: pf.Path, Collection: pf.Collection}
		if pf.Type == "" {
			p.Complex = true
		} else {
			kind, err := edm.ParseKind(pf.Type)
			if err != nil {
				return nil, fmt.Errorf("schema %s: property %s: %w", f.Name, pf.Path, err)
			}
			p.Kind = kind
		}
		props = append(props, p)
	}
	return NewSchema(f.Name, open, props...)
}

// File returns the YAML representation of the schema, omitting the complex
// parents that NewSchema registers implicitly.
func (s *Schema) File() SchemaFile {
	open := s.open
	file := SchemaFile{Name: s.name, Open: &open}
	for _, p := range s.Properties() {
		if p.Complex && !p.Collection && s.hasChildren(p.Path) {
			continue
		}
		pf := PropertyFile{Path: p.Path, Collection: p.Collection}
		if !p.Complex {
			pf.Type = p.Kind.String()
		}
		file.Properties = append(file.Properties, pf)
	}
	return file
}

// WriteSchema encodes the schema as YAML.
func WriteSchema(w io.Writer, s *Schema) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.File()); err != nil {
		return fmt.Errorf("failed to encode schema %s: %w", s.name, err)
	}
	return enc.Close()
}

func (s *Schema) hasChildren(path string) bool {
	prefix := path + "."
	for other := range s.properties {
		if len(other) > len(prefix) && other[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
