// Package graphbundle converts graph-backed archival records to and from
// bundles: portable, nested documents with a declared entity type, a
// property map and named, ordered relation lists.
//
// The root package holds the symbols shared by every layer: entity type
// symbols, relation directions, the error kinds surfaced to callers, and
// the byte-level cache contract used by the serializer's identity cache.
//
// The conversion engine itself lives in subpackages:
//
//   - bundle: the immutable Bundle value, the validation ErrorSet and path navigation
//   - schema: the registry of entity types with field and edge descriptors
//   - serialize: graph record to Bundle, with depth, lite and inclusion policies
//   - validate: Bundle to graph-ready Record, or a bundle-shaped error tree
//   - graph, persist, dialect/sql/sqlgraph: the graph access and persistence boundary
package graphbundle

import "strings"

// EntityType is the symbol identifying an entity schema, e.g. "DocumentaryUnit".
// The set of valid symbols is closed and known by the schema registry.
type EntityType string

// String implements fmt.Stringer.
func (t EntityType) String() string { return string(t) }

// Direction is the direction of a relation relative to the record declaring it.
type Direction uint8

const (
	// Outgoing relations point from the declaring record to its targets.
	Outgoing Direction = iota
	// Incoming relations point from the targets to the declaring record.
	Incoming
)

// String returns "out" or "in".
func (d Direction) String() string {
	if d == Incoming {
		return "in"
	}
	return "out"
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Incoming {
		return Outgoing
	}
	return Incoming
}

// ParseDirection parses "out"/"outgoing" or "in"/"incoming", case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "out", "outgoing":
		return Outgoing, true
	case "in", "incoming":
		return Incoming, true
	default:
		return Outgoing, false
	}
}
