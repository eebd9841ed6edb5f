// Package edge provides fluent builders for declaring the relations of an
// entity type.
//
// A relation is a named list of child bundles. In the graph it is backed
// by edges with a label, followed in one direction from the record:
//
//   - edge.To: the record is the edge source (outgoing)
//   - edge.From: the record is the edge target (incoming)
//
// The label defaults to the relation name:
//
//	// DocumentaryUnit schema: descriptions point at the unit they describe.
//	edge.From("describes", "DocumentaryUnitDescription").Dependent()
//
//	// A unit is held by one repository.
//	edge.To("heldBy", "Repository").Unique()
//
//	// Relation name and graph label differ.
//	edge.To("childOf", "DocumentaryUnit").Label("isPartOf").Unique()
//
// # Dependency
//
// Dependent relations own their children: the children are persisted with
// the parent and have no life of their own. Relations to independent
// records (repositories, countries, agents) are references and are never
// marked Dependent.
//
//	edge.From("describes", "RepositoryDescription").Dependent()
//	edge.To("hasAddress", "Address").Dependent()
//
// DependentOnly relations are followed only by dependent-only traversals,
// e.g. maintenance events that are part of a record but too noisy for the
// normal view. DependentOnly implies Dependent.
//
// # Traversal Policies
//
//	edge.To("heldBy", "Repository").WhenNotLite()  // skipped below the root in lite mode
//	edge.To("childOf", "DocumentaryUnit").IfBelowDepth(1)
//
// IfBelowDepth(n) follows the relation only while the depth of the record
// being serialized is less than n, the root being at depth 0.
package edge
