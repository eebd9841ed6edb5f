// Package bundle implements the portable, nested document form of a graph
// record: a declared entity type, an ordered property map and named,
// ordered lists of child bundles.
//
// Bundles are immutable. Every With* method and every path mutation
// returns a new *Bundle and leaves the receiver untouched, so a bundle can
// be shared freely between goroutines once built:
//
//	b := bundle.New("DocumentaryUnit").
//	    WithDataValue("identifier", "c1").
//	    WithRelation("describes",
//	        bundle.New("DocumentaryUnitDescription").
//	            WithDataValue("name", "Papers").
//	            WithDataValue("languageCode", "eng"),
//	    )
//
//	name, err := b.Get("describes[0]/name") // "Papers"
package bundle

import (
	"slices"

	"github.com/syssam/graphbundle"
)

// Bundle is an immutable document describing one record and its related
// records. The zero value is not useful; use New.
type Bundle struct {
	id   string
	typ  graphbundle.EntityType
	data properties
	rels relations
}

// properties is an insertion-ordered property map.
type properties struct {
	keys   []string
	values map[string]any
}

func (p properties) clone() properties {
	c := properties{keys: slices.Clone(p.keys), values: make(map[string]any, len(p.values))}
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}

// copyValue returns v, with list values copied so callers cannot reach
// the bundle's backing array.
func copyValue(v any) any {
	if l, ok := v.([]any); ok {
		return slices.Clone(l)
	}
	return v
}

func (p *properties) set(k string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[k]; !ok {
		p.keys = append(p.keys, k)
	}
	p.values[k] = v
}

func (p *properties) remove(k string) {
	if _, ok := p.values[k]; !ok {
		return
	}
	delete(p.values, k)
	p.keys = slices.DeleteFunc(p.keys, func(s string) bool { return s == k })
}

// relations is an insertion-ordered map of relation name to children.
type relations struct {
	names    []string
	children map[string][]*Bundle
}

func (r relations) clone() relations {
	c := relations{names: slices.Clone(r.names), children: make(map[string][]*Bundle, len(r.children))}
	for k, v := range r.children {
		c.children[k] = slices.Clone(v)
	}
	return c
}

func (r *relations) set(name string, children []*Bundle) {
	if r.children == nil {
		r.children = make(map[string][]*Bundle)
	}
	if _, ok := r.children[name]; !ok {
		r.names = append(r.names, name)
	}
	r.children[name] = children
}

func (r *relations) remove(name string) {
	if _, ok := r.children[name]; !ok {
		return
	}
	delete(r.children, name)
	r.names = slices.DeleteFunc(r.names, func(s string) bool { return s == name })
}

// New returns an empty bundle of the given type with no id.
func New(t graphbundle.EntityType) *Bundle {
	return &Bundle{typ: t}
}

func (b *Bundle) clone() *Bundle {
	return &Bundle{id: b.id, typ: b.typ, data: b.data.clone(), rels: b.rels.clone()}
}

// Type returns the declared entity type.
func (b *Bundle) Type() graphbundle.EntityType { return b.typ }

// ID returns the persisted identifier, or "" for a transient record.
func (b *Bundle) ID() string { return b.id }

// HasID reports whether the bundle represents an already-persisted record.
func (b *Bundle) HasID() bool { return b.id != "" }

// WithID returns a copy of the bundle with the given id.
func (b *Bundle) WithID(id string) *Bundle {
	c := b.clone()
	c.id = id
	return c
}

// WithType returns a copy of the bundle with the given type.
func (b *Bundle) WithType(t graphbundle.EntityType) *Bundle {
	c := b.clone()
	c.typ = t
	return c
}

// DataKeys returns the property names in insertion order.
func (b *Bundle) DataKeys() []string { return slices.Clone(b.data.keys) }

// Data returns a copy of the property map.
func (b *Bundle) Data() map[string]any {
	m := make(map[string]any, len(b.data.keys))
	for _, k := range b.data.keys {
		m[k] = copyValue(b.data.values[k])
	}
	return m
}

// DataValue returns the value of a property and whether it is present.
func (b *Bundle) DataValue(name string) (any, bool) {
	v, ok := b.data.values[name]
	return copyValue(v), ok
}

// WithDataValue returns a copy of the bundle with the property set. The
// value is normalized (see Normalize); a nil value removes the property.
// Values that cannot be normalized are kept as given and rejected later
// by encoders and the validator.
func (b *Bundle) WithDataValue(name string, v any) *Bundle {
	c := b.clone()
	if v == nil {
		c.data.remove(name)
		return c
	}
	if n, err := Normalize(v); err == nil {
		v = n
	}
	c.data.set(name, v)
	return c
}

// WithDataValues sets several properties at once, in sorted key order for
// keys not already present.
func (b *Bundle) WithDataValues(values map[string]any) *Bundle {
	c := b
	for _, k := range sortedKeys(values) {
		c = c.WithDataValue(k, values[k])
	}
	if c == b {
		return b.clone()
	}
	return c
}

// WithoutDataValue returns a copy of the bundle without the named property.
func (b *Bundle) WithoutDataValue(name string) *Bundle {
	c := b.clone()
	c.data.remove(name)
	return c
}

// RelationNames returns the relation names in insertion order.
func (b *Bundle) RelationNames() []string { return slices.Clone(b.rels.names) }

// HasRelation reports whether the relation key is present, even if its
// list is empty.
func (b *Bundle) HasRelation(name string) bool {
	_, ok := b.rels.children[name]
	return ok
}

// Relation returns a copy of the children under the named relation.
func (b *Bundle) Relation(name string) []*Bundle {
	return slices.Clone(b.rels.children[name])
}

// Relations returns a copy of the relation map.
func (b *Bundle) Relations() map[string][]*Bundle {
	m := make(map[string][]*Bundle, len(b.rels.names))
	for _, name := range b.rels.names {
		m[name] = slices.Clone(b.rels.children[name])
	}
	return m
}

// WithRelation returns a copy of the bundle whose named relation holds
// exactly the given children. Nil children are dropped.
func (b *Bundle) WithRelation(name string, children ...*Bundle) *Bundle {
	c := b.clone()
	c.rels.set(name, slices.DeleteFunc(slices.Clone(children), func(x *Bundle) bool { return x == nil }))
	return c
}

// WithChild returns a copy of the bundle with child appended to the named
// relation, creating the relation if needed.
func (b *Bundle) WithChild(name string, child *Bundle) *Bundle {
	if child == nil {
		return b.clone()
	}
	c := b.clone()
	c.rels.set(name, append(c.rels.children[name], child))
	return c
}

// WithoutRelation returns a copy of the bundle without the named relation.
func (b *Bundle) WithoutRelation(name string) *Bundle {
	c := b.clone()
	c.rels.remove(name)
	return c
}

// Depth returns the length of the longest relation chain from b to a leaf.
// A bundle without children has depth 0.
func (b *Bundle) Depth() int {
	depth := 0
	for _, name := range b.rels.names {
		for _, child := range b.rels.children[name] {
			if d := child.Depth() + 1; d > depth {
				depth = d
			}
		}
	}
	return depth
}

// Equal reports whether two bundles carry the same id, type, property
// values and relations. Property order is ignored; child order is not.
// Relation keys holding empty lists are not equal to absent keys.
func (b *Bundle) Equal(o *Bundle) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.id != o.id || b.typ != o.typ {
		return false
	}
	if len(b.data.values) != len(o.data.values) || len(b.rels.children) != len(o.rels.children) {
		return false
	}
	for k, v := range b.data.values {
		ov, ok := o.data.values[k]
		if !ok || !ValueEqual(v, ov) {
			return false
		}
	}
	for name, children := range b.rels.children {
		other, ok := o.rels.children[name]
		if !ok || len(other) != len(children) {
			return false
		}
		for i := range children {
			if !children[i].Equal(other[i]) {
				return false
			}
		}
	}
	return true
}

// WalkFunc is called for every bundle in a tree with its path from the root.
// The root is visited with an empty path.
type WalkFunc func(path string, b *Bundle) error

// Walk visits b and its descendants depth-first, in relation and child order.
// Walking stops at the first error returned by fn.
func (b *Bundle) Walk(fn WalkFunc) error {
	return b.walk("", fn)
}

func (b *Bundle) walk(path string, fn WalkFunc) error {
	if err := fn(path, b); err != nil {
		return err
	}
	for _, name := range b.rels.names {
		for i, child := range b.rels.children[name] {
			if err := child.walk(joinPath(path, indexed(name, i)), fn); err != nil {
				return err
			}
		}
	}
	return nil
}
