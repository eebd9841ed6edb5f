// Package schema provides the entity type registry that drives bundle
// serialization and validation.
//
// Entity types are declared with the builders of its subpackages:
//
//   - [field]: property declarations and value validators
//   - [edge]: relation declarations and traversal policies
//   - [mixin]: reusable groups of fields and edges
//
// # Quick Start
//
// Declare a type by embedding schema.Base and implementing the methods you
// need. The type name is the struct name:
//
//	type Repository struct{ schema.Base }
//
//	func (Repository) Mixin() []schema.Mixin {
//	    return []schema.Mixin{mixin.Described{Description: "RepositoryDescription"}}
//	}
//
//	func (Repository) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.String("identifier").Unique().NotEmpty(),
//	        field.Int("priority").Optional().Range(-1, 5),
//	    }
//	}
//
//	func (Repository) Edges() []schema.Edge {
//	    return []schema.Edge{
//	        edge.To("hasCountry", "Country").Unique().WhenNotLite(),
//	    }
//	}
//
//	reg, err := schema.NewRegistry(Repository{}, RepositoryDescription{}, Country{})
//
// # YAML Schemas
//
// Types can also be declared in YAML and loaded with LoadYAML or LoadFile.
// Names written in snake_case are canonicalised: type names to
// UpperCamelCase, field and edge names to lowerCamelCase.
//
//	types:
//	  - name: country
//	    fields:
//	      - {name: country_code, kind: string, unique: true}
//	      - {name: history, kind: text, optional: true}
//
// Watch reloads such a file whenever it changes.
package schema
