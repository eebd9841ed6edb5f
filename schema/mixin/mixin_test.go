package mixin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/field"
	"github.com/syssam/graphbundle/schema/mixin"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	var m mixin.Schema
	assert.Nil(t, m.Fields())
	assert.Nil(t, m.Edges())
}

func TestIdentified(t *testing.T) {
	t.Parallel()

	fields := mixin.Identified{}.Fields()
	require.Len(t, fields, 1)
	fd := fields[0].Descriptor()
	assert.Equal(t, "identifier", fd.Name)
	assert.True(t, fd.Unique)
	assert.True(t, fd.Mandatory())
	assert.Equal(t, []string{"must not be empty"}, fd.Check(""))
	assert.Empty(t, mixin.Identified{}.Edges())
}

func TestLocalized(t *testing.T) {
	t.Parallel()

	fields := mixin.Localized{}.Fields()
	require.Len(t, fields, 2)
	lang := fields[1].Descriptor()
	assert.Equal(t, "languageCode", lang.Name)
	assert.Empty(t, lang.Check("eng"))
	assert.NotEmpty(t, lang.Check("English"))
}

func TestRelationMixins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mixin         schema.Mixin
		name          string
		target        graphbundle.EntityType
		direction     graphbundle.Direction
		dependentOnly bool
	}{
		{mixin.Described{Description: "UnitDescription"}, "describes", "UnitDescription", graphbundle.Incoming, false},
		{mixin.Temporal{}, "hasDate", "DatePeriod", graphbundle.Outgoing, false},
		{mixin.Maintained{}, "hasMaintenanceEvent", "MaintenanceEvent", graphbundle.Outgoing, true},
		{mixin.AccessPoints{}, "relatesTo", "AccessPoint", graphbundle.Outgoing, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := tt.mixin.Edges()
			require.Len(t, edges, 1)
			d := edges[0].Descriptor()
			assert.Equal(t, tt.name, d.Name)
			assert.Equal(t, tt.target, d.Type)
			assert.Equal(t, tt.direction, d.Direction)
			assert.True(t, d.Dependent)
			assert.Equal(t, tt.dependentOnly, d.DependentOnly)
			assert.Empty(t, tt.mixin.Fields())
		})
	}
}

type required struct{ mixin.Schema }

func (required) Fields() []schema.Field {
	return []schema.Field{
		field.String("a"),
		field.Int("b"),
	}
}

func TestOptionalFields(t *testing.T) {
	t.Parallel()

	m := mixin.OptionalFields(required{})
	for _, f := range m.Fields() {
		assert.True(t, f.Descriptor().Optional, f.Descriptor().Name)
	}
	for _, f := range (required{}).Fields() {
		assert.False(t, f.Descriptor().Optional, "wrapped mixin is not modified")
	}
	assert.Empty(t, m.Edges())
}
