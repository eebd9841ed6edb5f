package graph

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/syssam/graphbundle"
)

// Memory is an in-memory graph. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	edges []Edge
}

var _ ReadWriter = (*Memory)(nil)

// NewMemory returns an empty graph.
func NewMemory() *Memory {
	return &Memory{nodes: make(map[string]*Node)}
}

// Node implements Reader.
func (m *Memory) Node(ctx context.Context, id string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, graphbundle.NewNotFoundError(id)
	}
	return n.Clone(), nil
}

// Related implements Reader.
func (m *Memory) Related(ctx context.Context, id, label string, dir graphbundle.Direction) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.nodes[id]; !ok {
		return nil, graphbundle.NewNotFoundError(id)
	}
	var out []*Node
	for _, e := range m.edges {
		if e.Label != label {
			continue
		}
		var other string
		switch {
		case dir == graphbundle.Outgoing && e.Source == id:
			other = e.Target
		case dir == graphbundle.Incoming && e.Target == id:
			other = e.Source
		default:
			continue
		}
		if n, ok := m.nodes[other]; ok {
			out = append(out, n.Clone())
		}
	}
	return out, nil
}

// PutNode creates or replaces a node. The id and type are required.
func (m *Memory) PutNode(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == nil || n.ID == "" || n.Type == "" {
		return errors.New("graph: node id and type are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID] = n.Clone()
	return nil
}

// AddEdge connects two existing nodes. Adding an edge that already exists
// is a no-op.
func (m *Memory) AddEdge(ctx context.Context, e Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Label == "" {
		return errors.New("graph: edge label is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addEdge(e)
}

func (m *Memory) addEdge(e Edge) error {
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := m.nodes[id]; !ok {
			return graphbundle.NewNotFoundError(id)
		}
	}
	if !slices.Contains(m.edges, e) {
		m.edges = append(m.edges, e)
	}
	return nil
}

// RemoveNode deletes a node and every edge touching it.
func (m *Memory) RemoveNode(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[id]; !ok {
		return graphbundle.NewNotFoundError(id)
	}
	m.removeNode(id)
	return nil
}

func (m *Memory) removeNode(id string) {
	delete(m.nodes, id)
	m.edges = slices.DeleteFunc(m.edges, func(e Edge) bool {
		return e.Source == id || e.Target == id
	})
}

// Edges returns a copy of all edges in insertion order.
func (m *Memory) Edges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.edges)
}

// Len returns the number of nodes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}
