package graph_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/graph"
	"github.com/syssam/graphbundle/validate"
)

func unitRecord(id, identifier string, descs ...string) *validate.Record {
	rec := &validate.Record{
		Type:   "DocumentaryUnit",
		ID:     id,
		Data:   map[string]any{"identifier": identifier},
		Unique: []string{"identifier"},
	}
	for _, name := range descs {
		rec.Relations = append(rec.Relations, validate.RelationTarget{
			Name:      "describes",
			Label:     "describes",
			Direction: graphbundle.Incoming,
			Dependent: true,
			Record: &validate.Record{
				Type: "DocumentaryUnitDescription",
				Data: map[string]any{"name": name},
			},
		})
	}
	return rec
}

func TestMemorySave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := graph.NewMemory()

	id, err := g.Save(ctx, unitRecord("", "c1", "One", "Two"))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	descs, err := g.Related(ctx, id, "describes", graphbundle.Incoming)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "One", descs[0].Properties["name"])
	assert.Equal(t, "Two", descs[1].Properties["name"])
}

func TestMemorySaveReplacesDependents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := graph.NewMemory()

	id, err := g.Save(ctx, unitRecord("u1", "c1", "One", "Two"))
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = g.Save(ctx, unitRecord("u1", "c1-renamed", "Three"))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	n, err := g.Node(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1-renamed", n.Properties["identifier"])
	descs, err := g.Related(ctx, "u1", "describes", graphbundle.Incoming)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "Three", descs[0].Properties["name"])
}

func TestMemorySaveIntegrity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := graph.NewMemory()

	_, err := g.Save(ctx, unitRecord("u1", "c1"))
	require.NoError(t, err)

	_, err = g.Save(ctx, unitRecord("", "c1", "One"))
	require.Error(t, err)
	assert.True(t, graphbundle.IsIntegrityError(err))
	var ierr *graphbundle.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, graphbundle.EntityType("DocumentaryUnit"), ierr.Type)
	assert.Equal(t, map[string]string{"identifier": "c1"}, ierr.Fields)
	assert.Equal(t, 1, g.Len(), "failed save must not leave records behind")

	_, err = g.Save(ctx, unitRecord("u1", "c1"))
	assert.NoError(t, err, "a record does not collide with itself")
}

func TestMemorySaveNonDependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := graph.NewMemory()
	require.NoError(t, g.PutNode(ctx, &graph.Node{ID: "r1", Type: "Repository"}))

	held := func(identifier string, target *validate.Record) *validate.Record {
		rec := unitRecord("", identifier)
		rec.Relations = []validate.RelationTarget{{
			Name: "heldBy", Label: "heldBy", Direction: graphbundle.Outgoing, Record: target,
		}}
		return rec
	}

	id, err := g.Save(ctx, held("c1", &validate.Record{Type: "Repository", ID: "r1"}))
	require.NoError(t, err)
	repos, err := g.Related(ctx, id, "heldBy", graphbundle.Outgoing)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "r1", repos[0].ID)

	_, err = g.Save(ctx, held("c2", &validate.Record{Type: "Repository"}))
	assert.ErrorContains(t, err, "target has no id")

	_, err = g.Save(ctx, held("c3", &validate.Record{Type: "Repository", ID: "r9"}))
	assert.True(t, graphbundle.IsNotFound(err))
	assert.Equal(t, 2, g.Len())
}
