// Package graph defines the read interface the serializer uses to walk
// stored records, and an in-memory graph implementing it.
//
// A record is a Node: an id, an entity type and a flat property map. Nodes
// are connected by labelled, directed edges. Related returns the nodes at
// the other end of the edges with a given label, in edge insertion order,
// following them outgoing (from the node) or incoming (to the node):
//
//	unit, err := g.Node(ctx, "c1")
//	descs, err := g.Related(ctx, "c1", "describes", graphbundle.Incoming)
//
// Both operations take a context because real graphs are remote; see the
// SQL-backed store in dialect/sql/sqlgraph.
package graph
