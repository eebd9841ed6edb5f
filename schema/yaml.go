package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/schema/edge"
	"github.com/syssam/graphbundle/schema/field"
)

type yamlFile struct {
	Types []yamlType `yaml:"types"`
}

type yamlType struct {
	Name    string      `yaml:"name"`
	Comment string      `yaml:"comment"`
	Fields  []yamlField `yaml:"fields"`
	Edges   []yamlEdge  `yaml:"edges"`
}

type yamlField struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Optional bool     `yaml:"optional"`
	Unique   bool     `yaml:"unique"`
	NotEmpty bool     `yaml:"not_empty"`
	MinLen   *int     `yaml:"min_len"`
	MaxLen   *int     `yaml:"max_len"`
	Pattern  string   `yaml:"pattern"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Values   []string `yaml:"values"`
	Comment  string   `yaml:"comment"`
}

type yamlEdge struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Direction     string `yaml:"direction"`
	Label         string `yaml:"label"`
	Unique        bool   `yaml:"unique"`
	Dependent     bool   `yaml:"dependent"`
	DependentOnly bool   `yaml:"dependent_only"`
	WhenNotLite   bool   `yaml:"when_not_lite"`
	BelowDepth    int    `yaml:"below_depth"`
	Comment       string `yaml:"comment"`
}

// definition is a type declared in YAML.
type definition struct {
	Base
	name    graphbundle.EntityType
	comment string
	fields  []Field
	edges   []Edge
}

func (d definition) TypeName() graphbundle.EntityType { return d.name }
func (d definition) Comment() string { return d.comment }
func (d definition) Fields() []Field { return d.fields }
func (d definition) Edges() []Edge { return d.edges }

// LoadFile reads a YAML schema file. See LoadYAML.
func LoadFile(path string, base ...Interface) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return LoadYAML(bytes.NewReader(data), base...)
}

// LoadYAML reads a YAML schema and returns a registry holding its types
// and the base definitions. YAML types may relate to base types.
func LoadYAML(r io.Reader, base ...Interface) (*Registry, error) {
	defs, err := ParseYAML(r)
	if err != nil {
		return nil, err
	}
	return NewRegistry(append(base, defs...)...)
}

// ParseYAML decodes the type definitions of a YAML schema without
// resolving them.
func ParseYAML(r io.Reader) ([]Interface, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	defs := make([]Interface, 0, len(f.Types))
	var errs []error
	for _, t := range f.Types {
		def, err := t.definition()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return defs, nil
}

// TypeNameOf canonicalises a type name: "documentary_unit" becomes
// "DocumentaryUnit".
func TypeNameOf(s string) graphbundle.EntityType {
	return graphbundle.EntityType(inflect.Camelize(s))
}

// PropertyNameOf canonicalises a field or edge name: "scope_and_content"
// becomes "scopeAndContent".
func PropertyNameOf(s string) string {
	if s == "" {
		return ""
	}
	return inflect.CamelizeDownFirst(s)
}

func (t yamlType) definition() (Interface, error) {
	if t.Name == "" {
		return nil, errors.New("schema: yaml type without name")
	}
	def := definition{name: TypeNameOf(t.Name), comment: t.Comment}
	var errs []error
	for _, f := range t.Fields {
		fd, err := f.field()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def.fields = append(def.fields, fd)
	}
	for _, e := range t.Edges {
		ed, err := e.edge()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def.edges = append(def.edges, ed)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("schema: type %s: %w", def.name, err)
	}
	return def, nil
}

func (f yamlField) field() (Field, error) {
	name := PropertyNameOf(f.Name)
	kind, ok := field.ParseKind(f.Kind)
	if !ok {
		return nil, fmt.Errorf("field %q: unknown kind %q", name, f.Kind)
	}
	switch kind {
	case field.KindString, field.KindText, field.KindDate, field.KindStrings:
		newString := field.String
		switch kind {
		case field.KindText:
			newString = field.Text
		case field.KindDate:
			newString = field.Date
		case field.KindStrings:
			newString = field.Strings
		}
		sb := newString(name)
		if f.Optional {
			sb.Optional()
		}
		if f.Unique {
			sb.Unique()
		}
		if f.NotEmpty {
			sb.NotEmpty()
		}
		if f.MinLen != nil {
			sb.MinLen(*f.MinLen)
		}
		if f.MaxLen != nil {
			sb.MaxLen(*f.MaxLen)
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			sb.Match(re)
		}
		return sb.Comment(f.Comment), nil
	case field.KindInt:
		ib := field.Int(name)
		if f.Optional {
			ib.Optional()
		}
		if f.Unique {
			ib.Unique()
		}
		if f.Min != nil {
			n, err := intBound(name, *f.Min)
			if err != nil {
				return nil, err
			}
			ib.Min(n)
		}
		if f.Max != nil {
			n, err := intBound(name, *f.Max)
			if err != nil {
				return nil, err
			}
			ib.Max(n)
		}
		return ib.Comment(f.Comment), nil
	case field.KindFloat:
		fb := field.Float(name)
		if f.Optional {
			fb.Optional()
		}
		if f.Unique {
			fb.Unique()
		}
		if f.Min != nil {
			fb.Min(*f.Min)
		}
		if f.Max != nil {
			fb.Max(*f.Max)
		}
		return fb.Comment(f.Comment), nil
	case field.KindBool:
		bb := field.Bool(name)
		if f.Optional {
			bb.Optional()
		}
		return bb.Comment(f.Comment), nil
	case field.KindEnum:
		eb := field.Enum(name).Values(f.Values...)
		if f.Optional {
			eb.Optional()
		}
		return eb.Comment(f.Comment), nil
	default:
		return nil, fmt.Errorf("field %q: unsupported kind %s", name, kind)
	}
}

func intBound(name string, v float64) (int64, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("field %q: bound %v is not an integer", name, v)
	}
	return int64(v), nil
}

func (e yamlEdge) edge() (Edge, error) {
	name := PropertyNameOf(e.Name)
	dir, ok := graphbundle.ParseDirection(e.Direction)
	if !ok {
		return nil, fmt.Errorf("edge %q: unknown direction %q", name, e.Direction)
	}
	b := edge.To(name, TypeNameOf(e.Type))
	if dir == graphbundle.Incoming {
		b = edge.From(name, TypeNameOf(e.Type))
	}
	if e.Label != "" {
		b.Label(e.Label)
	}
	if e.Unique {
		b.Unique()
	}
	if e.Dependent {
		b.Dependent()
	}
	if e.DependentOnly {
		b.DependentOnly()
	}
	if e.WhenNotLite {
		b.WhenNotLite()
	}
	if e.BelowDepth != 0 {
		b.IfBelowDepth(e.BelowDepth)
	}
	return b.Comment(e.Comment), nil
}
