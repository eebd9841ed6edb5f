package archival_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/schema/archival"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg, err := archival.Registry()
	require.NoError(t, err)
	assert.Equal(t, len(archival.Definitions()), reg.Len())

	again, err := archival.Registry()
	require.NoError(t, err)
	assert.Same(t, reg, again)
}

func TestDocumentaryUnit(t *testing.T) {
	t.Parallel()

	reg, err := archival.Registry()
	require.NoError(t, err)
	unit, err := reg.Lookup(archival.TypeDocumentaryUnit)
	require.NoError(t, err)

	assert.Equal(t, []string{"identifier"}, unit.MandatoryFields())

	describes, ok := unit.Edge("describes")
	require.True(t, ok)
	assert.Equal(t, graphbundle.EntityType(archival.TypeDocumentaryUnitDescription), describes.Type)
	assert.Equal(t, graphbundle.Incoming, describes.Direction)
	assert.True(t, describes.Dependent)

	heldBy, ok := unit.Edge("heldBy")
	require.True(t, ok)
	assert.True(t, heldBy.WhenNotLite)
	assert.True(t, heldBy.Unique)
	assert.False(t, heldBy.Dependent)

	childOf, ok := unit.Edge("childOf")
	require.True(t, ok)
	assert.Equal(t, 2, childOf.BelowDepth)
}

func TestDescriptions(t *testing.T) {
	t.Parallel()

	reg, err := archival.Registry()
	require.NoError(t, err)

	for _, name := range []graphbundle.EntityType{
		archival.TypeDocumentaryUnitDescription,
		archival.TypeRepositoryDescription,
		archival.TypeHistoricalAgentDescription,
	} {
		typ, err := reg.Lookup(name)
		require.NoError(t, err, name)
		assert.Subset(t, typ.MandatoryFields(), []string{"name", "languageCode"}, name)
		events, ok := typ.Edge("hasMaintenanceEvent")
		require.True(t, ok, name)
		assert.True(t, events.DependentOnly)
	}

	agent, err := reg.Lookup(archival.TypeHistoricalAgentDescription)
	require.NoError(t, err)
	entity, ok := agent.Field("typeOfEntity")
	require.True(t, ok)
	assert.True(t, entity.Mandatory())
	assert.Empty(t, entity.Check("corporateBody"))
}

func TestAddress(t *testing.T) {
	t.Parallel()

	reg, err := archival.Registry()
	require.NoError(t, err)
	addr, err := reg.Lookup(archival.TypeAddress)
	require.NoError(t, err)
	assert.Empty(t, addr.MandatoryFields())
	email, ok := addr.Field("email")
	require.True(t, ok)
	assert.Empty(t, email.Check([]any{"info@example.org"}))
}
