package edge

import (
	"errors"
	"fmt"

	"github.com/syssam/graphbundle"
)

// Descriptor holds the declaration of a relation.
type Descriptor struct {
	Name      string
	Type      graphbundle.EntityType
	Direction graphbundle.Direction
	// Label is the graph edge label; it defaults to Name.
	Label         string
	Unique        bool
	Dependent     bool
	DependentOnly bool
	WhenNotLite   bool
	// BelowDepth, when positive, limits the relation to records at a
	// depth less than BelowDepth.
	BelowDepth int
	Comment    string
	// Err is the first builder error, if any.
	Err error
}

// EdgeLabel returns the graph label backing the relation.
func (d *Descriptor) EdgeLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

func (d *Descriptor) addError(err error) {
	if d.Err == nil {
		d.Err = fmt.Errorf("edge %q: %w", d.Name, err)
	}
}

// To returns a builder for a relation following outgoing edges.
func To(name string, t graphbundle.EntityType) *assocBuilder {
	return newBuilder(name, t, graphbundle.Outgoing)
}

// From returns a builder for a relation following incoming edges.
func From(name string, t graphbundle.EntityType) *assocBuilder {
	return newBuilder(name, t, graphbundle.Incoming)
}

func newBuilder(name string, t graphbundle.EntityType, dir graphbundle.Direction) *assocBuilder {
	b := &assocBuilder{desc: &Descriptor{Name: name, Type: t, Direction: dir}}
	if t == "" {
		b.desc.addError(errors.New("target type is required"))
	}
	return b
}

// assocBuilder is the builder for relations.
type assocBuilder struct {
	desc *Descriptor
}

// Label sets the graph edge label when it differs from the relation name.
func (b *assocBuilder) Label(l string) *assocBuilder {
	b.desc.Label = l
	return b
}

// Unique limits the relation to at most one child.
func (b *assocBuilder) Unique() *assocBuilder {
	b.desc.Unique = true
	return b
}

// Dependent marks children as owned by the parent.
func (b *assocBuilder) Dependent() *assocBuilder {
	b.desc.Dependent = true
	return b
}

// DependentOnly marks the relation as followed only by dependent-only
// traversals. It implies Dependent.
func (b *assocBuilder) DependentOnly() *assocBuilder {
	b.desc.Dependent = true
	b.desc.DependentOnly = true
	return b
}

// WhenNotLite skips the relation for non-root records in lite mode.
func (b *assocBuilder) WhenNotLite() *assocBuilder {
	b.desc.WhenNotLite = true
	return b
}

// IfBelowDepth follows the relation only while the record depth is less
// than n.
func (b *assocBuilder) IfBelowDepth(n int) *assocBuilder {
	if n <= 0 {
		b.desc.addError(fmt.Errorf("depth limit must be positive, got %d", n))
		return b
	}
	b.desc.BelowDepth = n
	return b
}

// Comment sets the relation comment.
func (b *assocBuilder) Comment(c string) *assocBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema.Edge interface.
func (b *assocBuilder) Descriptor() *Descriptor { return b.desc }
