package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/schema/edge"
	"github.com/syssam/graphbundle/schema/field"
)

// Field is implemented by the field builders.
type Field interface {
	Descriptor() *field.Descriptor
}

// Edge is implemented by the edge builders.
type Edge interface {
	Descriptor() *edge.Descriptor
}

// Mixin is a reusable group of fields and edges.
type Mixin interface {
	Fields() []Field
	Edges() []Edge
}

// Interface is implemented by entity type definitions.
type Interface interface {
	Mixin
	Mixin() []Mixin
}

// Namer lets a definition name its type explicitly instead of by its Go
// type name.
type Namer interface {
	TypeName() graphbundle.EntityType
}

// Commenter lets a definition document its type.
type Commenter interface {
	Comment() string
}

// Base is the default implementation of Interface. It is embedded in
// every type definition.
type Base struct{}

// Fields of the type.
func (Base) Fields() []Field { return nil }

// Edges of the type.
func (Base) Edges() []Edge { return nil }

// Mixin of the type.
func (Base) Mixin() []Mixin { return nil }

var _ Interface = (*Base)(nil)

// Type is a resolved entity type: its fields and relations in declaration
// order, mixins first.
type Type struct {
	Name    graphbundle.EntityType
	Comment string
	Fields  []*field.Descriptor
	Edges   []*edge.Descriptor

	fields map[string]*field.Descriptor
	edges  map[string]*edge.Descriptor
}

// Field returns the named field declaration.
func (t *Type) Field(name string) (*field.Descriptor, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Edge returns the named relation declaration.
func (t *Type) Edge(name string) (*edge.Descriptor, bool) {
	e, ok := t.edges[name]
	return e, ok
}

// MandatoryFields returns the names of the fields that are not optional,
// in declaration order.
func (t *Type) MandatoryFields() []string {
	var names []string
	for _, f := range t.Fields {
		if f.Mandatory() {
			names = append(names, f.Name)
		}
	}
	return names
}

// UniqueFields returns the fields declared unique.
func (t *Type) UniqueFields() []*field.Descriptor {
	var out []*field.Descriptor
	for _, f := range t.Fields {
		if f.Unique {
			out = append(out, f)
		}
	}
	return out
}

// NewType resolves a single definition. Errors from field and edge
// builders and duplicate names are joined in the returned error.
func NewType(def Interface) (*Type, error) {
	t := &Type{
		Name:   TypeName(def),
		fields: make(map[string]*field.Descriptor),
		edges:  make(map[string]*edge.Descriptor),
	}
	if c, ok := def.(Commenter); ok {
		t.Comment = c.Comment()
	}
	if t.Name == "" {
		return nil, fmt.Errorf("schema: cannot infer type name of %T", def)
	}
	var errs []error
	add := func(m Mixin) {
		for _, f := range m.Fields() {
			d := f.Descriptor()
			switch {
			case d.Err != nil:
				errs = append(errs, d.Err)
			case d.Name == "":
				errs = append(errs, errors.New("field name is required"))
			case t.fields[d.Name] != nil || t.edges[d.Name] != nil:
				errs = append(errs, fmt.Errorf("duplicate name %q", d.Name))
			default:
				t.fields[d.Name] = d
				t.Fields = append(t.Fields, d)
			}
		}
		for _, e := range m.Edges() {
			d := e.Descriptor()
			switch {
			case d.Err != nil:
				errs = append(errs, d.Err)
			case d.Name == "":
				errs = append(errs, errors.New("edge name is required"))
			case t.fields[d.Name] != nil || t.edges[d.Name] != nil:
				errs = append(errs, fmt.Errorf("duplicate name %q", d.Name))
			case d.DependentOnly && !d.Dependent:
				errs = append(errs, fmt.Errorf("edge %q: dependent-only relations must be dependent", d.Name))
			default:
				t.edges[d.Name] = d
				t.Edges = append(t.Edges, d)
			}
		}
	}
	for _, m := range def.Mixin() {
		add(m)
	}
	add(def)
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("schema: type %s: %w", t.Name, err)
	}
	return t, nil
}

// TypeName returns the entity type name of a definition: its TypeName
// method if it has one, otherwise its Go type name.
func TypeName(def any) graphbundle.EntityType {
	if n, ok := def.(Namer); ok {
		return n.TypeName()
	}
	rt := reflect.TypeOf(def)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return ""
	}
	return graphbundle.EntityType(rt.Name())
}

// Registry is an immutable set of resolved entity types.
type Registry struct {
	types map[graphbundle.EntityType]*Type
	names []graphbundle.EntityType
}

// NewRegistry resolves the definitions and checks that they are
// consistent: names are unique and every relation targets a registered
// type. All problems are reported together.
func NewRegistry(defs ...Interface) (*Registry, error) {
	types := make([]*Type, 0, len(defs))
	var errs []error
	for _, def := range defs {
		t, err := NewType(def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		types = append(types, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return NewRegistryFromTypes(types...)
}

// NewRegistryFromTypes builds a registry from already resolved types.
func NewRegistryFromTypes(types ...*Type) (*Registry, error) {
	r := &Registry{types: make(map[graphbundle.EntityType]*Type, len(types))}
	var errs []error
	for _, t := range types {
		if _, ok := r.types[t.Name]; ok {
			errs = append(errs, fmt.Errorf("schema: duplicate type %s", t.Name))
			continue
		}
		r.types[t.Name] = t
		r.names = append(r.names, t.Name)
	}
	for _, t := range types {
		for _, e := range t.Edges {
			if _, ok := r.types[e.Type]; !ok {
				errs = append(errs, fmt.Errorf("schema: type %s: edge %q targets unknown type %s", t.Name, e.Name, e.Type))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	slices.Sort(r.names)
	return r, nil
}

// Lookup returns the named type or an *graphbundle.UnknownTypeError.
func (r *Registry) Lookup(t graphbundle.EntityType) (*Type, error) {
	if typ, ok := r.types[t]; ok {
		return typ, nil
	}
	return nil, graphbundle.NewUnknownTypeError(t)
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []graphbundle.EntityType {
	return slices.Clone(r.names)
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.names) }
