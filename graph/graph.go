package graph

import (
	"context"
	"maps"

	"github.com/syssam/graphbundle"
)

// Node is a record stored in the graph.
type Node struct {
	ID         string
	Type       graphbundle.EntityType
	Properties map[string]any
}

// Clone returns a copy of the node with its own property map. Property
// values are scalars or []any and are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{ID: n.ID, Type: n.Type, Properties: maps.Clone(n.Properties)}
}

// Property returns a property value and whether it is set.
func (n *Node) Property(name string) (any, bool) {
	v, ok := n.Properties[name]
	return v, ok
}

// Edge is a labelled, directed connection between two nodes.
type Edge struct {
	Source string
	Label  string
	Target string
}

// Reader gives read access to a graph.
type Reader interface {
	// Node returns the node with the given id or a
	// *graphbundle.NotFoundError.
	Node(ctx context.Context, id string) (*Node, error)
	// Related returns the nodes connected to id by edges with the given
	// label, in edge order. Outgoing follows edges whose source is id,
	// Incoming edges whose target is id.
	Related(ctx context.Context, id, label string, dir graphbundle.Direction) ([]*Node, error)
}

// Writer mutates a graph.
type Writer interface {
	PutNode(ctx context.Context, n *Node) error
	AddEdge(ctx context.Context, e Edge) error
	RemoveNode(ctx context.Context, id string) error
}

// ReadWriter groups Reader and Writer.
type ReadWriter interface {
	Reader
	Writer
}

// Orient returns the edge connecting from to to under label, following
// dir from the point of view of from.
func Orient(from, label, to string, dir graphbundle.Direction) Edge {
	if dir == graphbundle.Incoming {
		return Edge{Source: to, Label: label, Target: from}
	}
	return Edge{Source: from, Label: label, Target: to}
}

// BatchReader is implemented by readers that load several nodes at once.
type BatchReader interface {
	// Nodes returns the nodes with the given ids in the same order. A
	// missing id fails the whole call with a *graphbundle.NotFoundError.
	Nodes(ctx context.Context, ids []string) ([]*Node, error)
}

// Nodes loads ids through r, in one batch when r is a BatchReader and one
// by one otherwise.
func Nodes(ctx context.Context, r Reader, ids []string) ([]*Node, error) {
	if br, ok := r.(BatchReader); ok {
		return br.Nodes(ctx, ids)
	}
	out := make([]*Node, len(ids))
	for i, id := range ids {
		n, err := r.Node(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
