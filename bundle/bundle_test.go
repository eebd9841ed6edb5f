package bundle_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle/bundle"
)

func unit() *bundle.Bundle {
	return bundle.New("DocumentaryUnit").
		WithID("c1").
		WithDataValue("identifier", "c1").
		WithRelation("describes",
			bundle.New("DocumentaryUnitDescription").
				WithDataValue("name", "Papers").
				WithDataValue("languageCode", "eng").
				WithRelation("hasDate",
					bundle.New("DatePeriod").WithDataValue("startDate", "1939-01-01"),
				),
		)
}

func TestNew(t *testing.T) {
	t.Parallel()

	b := bundle.New("Repository")
	assert.Equal(t, "Repository", b.Type().String())
	assert.Empty(t, b.ID())
	assert.False(t, b.HasID())
	assert.Empty(t, b.Data())
	assert.Empty(t, b.RelationNames())
	assert.Equal(t, 0, b.Depth())
}

func TestBundleImmutability(t *testing.T) {
	t.Parallel()

	base := bundle.New("Repository").WithDataValue("name", "Archive")

	t.Run("WithDataValue", func(t *testing.T) {
		changed := base.WithDataValue("name", "Library")
		v, _ := base.DataValue("name")
		assert.Equal(t, "Archive", v)
		v, _ = changed.DataValue("name")
		assert.Equal(t, "Library", v)
	})

	t.Run("WithID", func(t *testing.T) {
		changed := base.WithID("r1")
		assert.Empty(t, base.ID())
		assert.Equal(t, "r1", changed.ID())
		assert.True(t, changed.HasID())
	})

	t.Run("Data_returns_copy", func(t *testing.T) {
		data := base.Data()
		data["name"] = "mutated"
		v, _ := base.DataValue("name")
		assert.Equal(t, "Archive", v)
	})

	t.Run("list_values_are_copied", func(t *testing.T) {
		b := base.WithDataValue("languages", []any{"eng", "nld"})

		v, err := b.Get("languages")
		require.NoError(t, err)
		v.([]any)[0] = "changed"

		v, _ = b.DataValue("languages")
		v.([]any)[1] = "changed"

		b.Data()["languages"].([]any)[0] = "changed"

		obj, _ := b.Object().Get("data")
		data := obj.(bundle.Object)
		require.Len(t, data, 2)
		data[1].Value.([]any)[1] = "changed"

		v, _ = b.DataValue("languages")
		assert.Equal(t, []any{"eng", "nld"}, v)
	})

	t.Run("Relation_returns_copy", func(t *testing.T) {
		b := base.WithRelation("hasAddress", bundle.New("Address"))
		rel := b.Relation("hasAddress")
		rel[0] = bundle.New("Other")
		assert.Equal(t, "Address", b.Relation("hasAddress")[0].Type().String())
	})

	t.Run("WithChild", func(t *testing.T) {
		b1 := base.WithChild("hasAddress", bundle.New("Address"))
		b2 := b1.WithChild("hasAddress", bundle.New("Address").WithDataValue("city", "Leiden"))
		assert.Len(t, b1.Relation("hasAddress"), 1)
		assert.Len(t, b2.Relation("hasAddress"), 2)
	})
}

func TestBundleDataOrder(t *testing.T) {
	t.Parallel()

	b := bundle.New("Repository").
		WithDataValue("zeta", "z").
		WithDataValue("alpha", "a").
		WithDataValue("mid", "m").
		WithDataValue("zeta", "z2")
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, b.DataKeys())

	b = b.WithoutDataValue("alpha")
	assert.Equal(t, []string{"zeta", "mid"}, b.DataKeys())

	b = b.WithDataValue("mid", nil)
	assert.Equal(t, []string{"zeta"}, b.DataKeys())

	b = bundle.New("Repository").WithDataValues(map[string]any{"b": 1, "a": 2})
	assert.Equal(t, []string{"a", "b"}, b.DataKeys())
}

func TestBundleNormalizesValues(t *testing.T) {
	t.Parallel()

	b := bundle.New("Repository").
		WithDataValue("count", 3).
		WithDataValue("ratio", float32(0.5)).
		WithDataValue("languages", []string{"eng", "fra"})

	v, _ := b.DataValue("count")
	assert.Equal(t, int64(3), v)
	v, _ = b.DataValue("ratio")
	assert.Equal(t, float64(0.5), v)
	v, _ = b.DataValue("languages")
	assert.Equal(t, []any{"eng", "fra"}, v)
}

func TestBundleRelations(t *testing.T) {
	t.Parallel()

	b := unit()
	assert.True(t, b.HasRelation("describes"))
	assert.False(t, b.HasRelation("heldBy"))
	assert.Equal(t, []string{"describes"}, b.RelationNames())
	assert.Len(t, b.Relations()["describes"], 1)

	empty := b.WithRelation("heldBy")
	assert.True(t, empty.HasRelation("heldBy"))
	assert.Empty(t, empty.Relation("heldBy"))
	assert.False(t, empty.Equal(b), "empty relation list differs from absent key")

	assert.False(t, b.WithoutRelation("describes").HasRelation("describes"))
	assert.Len(t, b.WithRelation("describes", nil, bundle.New("X")).Relation("describes"), 1)
}

func TestBundleDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, unit().Depth())
	assert.Equal(t, 0, bundle.New("X").Depth())

	b := bundle.New("X").WithRelation("a",
		bundle.New("Y"),
		bundle.New("Y").WithRelation("b", bundle.New("Z").WithRelation("c", bundle.New("W"))),
	)
	assert.Equal(t, 3, b.Depth())
}

func TestBundleEqual(t *testing.T) {
	t.Parallel()

	a := bundle.New("X").WithDataValue("a", 1).WithDataValue("b", "two")
	b := bundle.New("X").WithDataValue("b", "two").WithDataValue("a", float64(1))
	assert.True(t, a.Equal(b), "property order and numeric representation are ignored")

	assert.False(t, a.Equal(a.WithID("x")))
	assert.False(t, a.Equal(a.WithType("Y")))
	assert.False(t, a.Equal(a.WithDataValue("a", 2)))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*bundle.Bundle)(nil).Equal(nil))

	c1 := a.WithRelation("r", bundle.New("C").WithDataValue("n", 1), bundle.New("C").WithDataValue("n", 2))
	c2 := a.WithRelation("r", bundle.New("C").WithDataValue("n", 2), bundle.New("C").WithDataValue("n", 1))
	assert.False(t, c1.Equal(c2), "child order is significant")
	assert.True(t, c1.Equal(c1.WithDataValue("b", "two")))
}

func TestBundleWalk(t *testing.T) {
	t.Parallel()

	var paths []string
	err := unit().Walk(func(path string, b *bundle.Bundle) error {
		paths = append(paths, path+"="+b.Type().String())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"=DocumentaryUnit",
		"describes[0]=DocumentaryUnitDescription",
		"describes[0]/hasDate[0]=DatePeriod",
	}, paths)

	stop := errors.New("stop")
	count := 0
	err = unit().Walk(func(string, *bundle.Bundle) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		want    any
		wantErr bool
	}{
		{"string", "x", "x", false},
		{"bool", true, true, false},
		{"int", 7, int64(7), false},
		{"uint64_small", uint64(7), int64(7), false},
		{"uint64_large", uint64(1 << 63), float64(1 << 63), false},
		{"float32", float32(1.5), float64(1.5), false},
		{"list", []int{1, 2}, []any{int64(1), int64(2)}, false},
		{"nested_list", []any{[]any{1}}, nil, true},
		{"bytes", []byte("x"), nil, true},
		{"map", map[string]any{"a": 1}, nil, true},
		{"nil", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bundle.Normalize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "string", bundle.Kind("x"))
	assert.Equal(t, "number", bundle.Kind(int64(1)))
	assert.Equal(t, "number", bundle.Kind(1.5))
	assert.Equal(t, "boolean", bundle.Kind(false))
	assert.Equal(t, "list", bundle.Kind([]any{}))
	assert.Equal(t, "object", bundle.Kind(bundle.Object{}))
	assert.Equal(t, "null", bundle.Kind(nil))
}
