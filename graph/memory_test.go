package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/graph"
)

func seed(t *testing.T) *graph.Memory {
	t.Helper()
	ctx := context.Background()
	g := graph.NewMemory()
	for _, n := range []*graph.Node{
		{ID: "c1", Type: "DocumentaryUnit", Properties: map[string]any{"identifier": "c1"}},
		{ID: "cd1", Type: "DocumentaryUnitDescription", Properties: map[string]any{"name": "One", "languageCode": "eng"}},
		{ID: "cd2", Type: "DocumentaryUnitDescription", Properties: map[string]any{"name": "Een", "languageCode": "nld"}},
		{ID: "r1", Type: "Repository", Properties: map[string]any{"identifier": "r1"}},
	} {
		require.NoError(t, g.PutNode(ctx, n))
	}
	for _, e := range []graph.Edge{
		{Source: "cd2", Label: "describes", Target: "c1"},
		{Source: "cd1", Label: "describes", Target: "c1"},
		{Source: "c1", Label: "heldBy", Target: "r1"},
	} {
		require.NoError(t, g.AddEdge(ctx, e))
	}
	return g
}

func ids(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestMemoryNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := seed(t)

	n, err := g.Node(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, graphbundle.EntityType("DocumentaryUnit"), n.Type)
	v, ok := n.Property("identifier")
	assert.True(t, ok)
	assert.Equal(t, "c1", v)

	n.Properties["identifier"] = "changed"
	again, err := g.Node(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", again.Properties["identifier"])

	_, err = g.Node(ctx, "missing")
	require.Error(t, err)
	assert.True(t, graphbundle.IsNotFound(err))
}

func TestMemoryRelated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := seed(t)

	tests := []struct {
		name  string
		id    string
		label string
		dir   graphbundle.Direction
		want  []string
	}{
		{name: "incoming keeps edge order", id: "c1", label: "describes", dir: graphbundle.Incoming, want: []string{"cd2", "cd1"}},
		{name: "outgoing", id: "c1", label: "heldBy", dir: graphbundle.Outgoing, want: []string{"r1"}},
		{name: "reverse", id: "r1", label: "heldBy", dir: graphbundle.Incoming, want: []string{"c1"}},
		{name: "wrong direction", id: "c1", label: "describes", dir: graphbundle.Outgoing, want: []string{}},
		{name: "unknown label", id: "c1", label: "childOf", dir: graphbundle.Outgoing, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			nodes, err := g.Related(ctx, tt.id, tt.label, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(nodes))
		})
	}

	_, err := g.Related(ctx, "missing", "describes", graphbundle.Incoming)
	assert.True(t, graphbundle.IsNotFound(err))
}

func TestMemoryMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := seed(t)

	require.Error(t, g.PutNode(ctx, &graph.Node{ID: "x"}))
	require.Error(t, g.AddEdge(ctx, graph.Edge{Source: "c1", Target: "r1"}))
	err := g.AddEdge(ctx, graph.Edge{Source: "c1", Label: "heldBy", Target: "nope"})
	assert.True(t, graphbundle.IsNotFound(err))

	require.NoError(t, g.AddEdge(ctx, graph.Edge{Source: "c1", Label: "heldBy", Target: "r1"}))
	assert.Len(t, g.Edges(), 3)

	require.NoError(t, g.RemoveNode(ctx, "cd2"))
	assert.Equal(t, 3, g.Len())
	assert.Len(t, g.Edges(), 2)
	nodes, err := g.Related(ctx, "c1", "describes", graphbundle.Incoming)
	require.NoError(t, err)
	assert.Equal(t, []string{"cd1"}, ids(nodes))

	assert.True(t, graphbundle.IsNotFound(g.RemoveNode(ctx, "cd2")))
}

func TestMemoryCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := graph.NewMemory()
	_, err := g.Node(ctx, "c1")
	assert.ErrorIs(t, err, context.Canceled)
}
