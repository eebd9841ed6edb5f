// Package mixin provides the base mixin implementation and the shared
// groups of fields and relations used by archival entity types.
//
// A mixin is a reusable set of fields and edges that can be embedded in
// several type definitions. To create one, embed Schema and override the
// methods you need:
//
//	type Audited struct {
//	    mixin.Schema
//	}
//
//	func (Audited) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.String("createdBy").Optional(),
//	    }
//	}
//
// Mixins are applied in the order listed, before the type's own fields.
package mixin

import (
	"regexp"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/edge"
	"github.com/syssam/graphbundle/schema/field"
)

// Schema is the default implementation for the schema.Mixin interface.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

// Edges returns the edges of the mixin.
func (Schema) Edges() []schema.Edge { return nil }

var _ schema.Mixin = (*Schema)(nil)

// Identified adds the mandatory, unique local identifier.
type Identified struct {
	Schema
}

// Fields returns the identifier field.
func (Identified) Fields() []schema.Field {
	return []schema.Field{
		field.String("identifier").
			Unique().
			NotEmpty().
			MaxLen(255).
			Comment("Local identifier, unique per type"),
	}
}

var languageCode = regexp.MustCompile(`^[a-z]{3}$`)

// Localized adds the name and ISO 639-2 language code carried by every
// description.
type Localized struct {
	Schema
}

// Fields returns the name and languageCode fields.
func (Localized) Fields() []schema.Field {
	return []schema.Field{
		field.String("name").NotEmpty(),
		field.String("languageCode").
			Match(languageCode).
			Comment("ISO 639-2 three-letter code"),
	}
}

// Described adds the dependent descriptions of a record, one per
// language. Descriptions point at the record they describe.
type Described struct {
	Schema
	Description graphbundle.EntityType
}

// Edges returns the describes relation.
func (d Described) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("describes", d.Description).
			Dependent().
			Comment("Descriptions of the record, one per language"),
	}
}

// Temporal adds the dependent date periods of a description.
type Temporal struct {
	Schema
}

// Edges returns the hasDate relation.
func (Temporal) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("hasDate", "DatePeriod").Dependent(),
	}
}

// Maintained adds the maintenance history of a description. The events
// are only followed by dependent-only traversals.
type Maintained struct {
	Schema
}

// Edges returns the hasMaintenanceEvent relation.
func (Maintained) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("hasMaintenanceEvent", "MaintenanceEvent").DependentOnly(),
	}
}

// AccessPoints adds the dependent subject, place and name access points
// of a description.
type AccessPoints struct {
	Schema
}

// Edges returns the relatesTo relation.
func (AccessPoints) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("relatesTo", "AccessPoint").Dependent(),
	}
}

// OptionalFields wraps a mixin and marks all its fields optional.
//
//	mixin.OptionalFields(mixin.Localized{})
func OptionalFields(m schema.Mixin) schema.Mixin {
	return optionalFields{Mixin: m}
}

type optionalFields struct {
	schema.Mixin
}

func (o optionalFields) Fields() []schema.Field {
	fields := o.Mixin.Fields()
	for i := range fields {
		fields[i].Descriptor().Optional = true
	}
	return fields
}
