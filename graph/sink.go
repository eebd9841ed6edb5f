package graph

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/validate"
)

// Save stores a validated record and its dependent children, returning the
// id of the root. Records without an id get a new UUID. Saving a record
// that already exists replaces its properties and, for every relation the
// record carries, its edges; dependent children that are no longer
// referenced are removed. Non-dependent targets must already exist.
//
// Save is atomic: on error the graph is left as it was.
func (m *Memory) Save(ctx context.Context, rec *validate.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	nodes, edges := maps.Clone(m.nodes), slices.Clone(m.edges)
	id, err := m.save(rec)
	if err != nil {
		m.nodes, m.edges = nodes, edges
		return "", err
	}
	return id, nil
}

func (m *Memory) save(rec *validate.Record) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := m.checkUnique(id, rec); err != nil {
		return "", err
	}
	m.nodes[id] = &Node{ID: id, Type: rec.Type, Properties: maps.Clone(rec.Data)}

	replaced := make(map[string]bool)
	for _, t := range rec.Relations {
		if replaced[t.Name] {
			continue
		}
		replaced[t.Name] = true
		m.detach(id, t)
	}
	for _, t := range rec.Relations {
		childID := t.Record.ID
		if t.Dependent {
			var err error
			if childID, err = m.save(t.Record); err != nil {
				return "", err
			}
		} else if childID == "" {
			return "", fmt.Errorf("graph: relation %q of %s: target has no id", t.Name, rec.Type)
		}
		if err := m.addEdge(Orient(id, t.Label, childID, t.Direction)); err != nil {
			return "", err
		}
	}
	return id, nil
}

// detach removes the edges of one relation of id. Children of a dependent
// relation are deleted with their edges.
func (m *Memory) detach(id string, t validate.RelationTarget) {
	var orphans []string
	m.edges = slices.DeleteFunc(m.edges, func(e Edge) bool {
		if e.Label != t.Label {
			return false
		}
		var other string
		switch {
		case t.Direction == graphbundle.Outgoing && e.Source == id:
			other = e.Target
		case t.Direction == graphbundle.Incoming && e.Target == id:
			other = e.Source
		default:
			return false
		}
		if t.Dependent {
			orphans = append(orphans, other)
		}
		return true
	})
	for _, o := range orphans {
		m.removeNode(o)
	}
}

func (m *Memory) checkUnique(id string, rec *validate.Record) error {
	values := rec.UniqueValues()
	if len(values) == 0 {
		return nil
	}
	conflicts := make(map[string]string)
	for _, n := range m.nodes {
		if n.ID == id || n.Type != rec.Type {
			continue
		}
		for name, v := range values {
			if pv, ok := n.Properties[name]; ok && fmt.Sprint(pv) == v {
				conflicts[name] = v
			}
		}
	}
	if len(conflicts) > 0 {
		return graphbundle.NewIntegrityError(rec.Type, conflicts, nil)
	}
	return nil
}
