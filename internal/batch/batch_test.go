package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string
	Name string
}

func recordKey(r *record) string { return r.ID }

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	t.Run("all keys found", func(t *testing.T) {
		t.Parallel()
		values := []*record{{ID: "c", Name: "third"}, {ID: "a", Name: "first"}, {ID: "b", Name: "second"}}
		result, errs := OrderByKeys([]string{"a", "b", "c"}, values, recordKey)
		require.Len(t, result, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Equal(t, "second", result[1].Name)
		assert.Equal(t, "third", result[2].Name)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("some keys missing", func(t *testing.T) {
		t.Parallel()
		keys := []string{"a", "x", "b"}
		result, errs := OrderByKeys(keys, []*record{{ID: "b"}, {ID: "a"}}, recordKey)
		require.Len(t, result, 3)
		assert.Nil(t, result[1])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		missing, ok := FirstMissing(keys, errs)
		assert.True(t, ok)
		assert.Equal(t, "x", missing)
	})

	t.Run("repeated keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys([]string{"a", "a"}, []*record{{ID: "a", Name: "first"}}, recordKey)
		assert.Same(t, result[0], result[1])
		_, ok := FirstMissing([]string{"a", "a"}, errs)
		assert.False(t, ok)
	})
}

func TestDedup(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"b", "a", "c"}, Dedup([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, Dedup[string](nil))
}

func TestLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := map[string]*record{"a": {ID: "a"}, "b": {ID: "b"}, "c": {ID: "c"}}

	var calls [][]string
	fetch := func(_ context.Context, keys []string) ([]*record, error) {
		calls = append(calls, keys)
		var out []*record
		for i := len(keys) - 1; i >= 0; i-- {
			if r, ok := store[keys[i]]; ok {
				out = append(out, r)
			}
		}
		return out, nil
	}

	result, errs, err := Load(ctx, []string{"c", "a", "c", "x", "b"}, 2, fetch, recordKey)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c", "a"}, {"x", "b"}}, calls)
	require.Len(t, result, 5)
	assert.Equal(t, "c", result[0].ID)
	assert.Equal(t, "a", result[1].ID)
	assert.Equal(t, "c", result[2].ID)
	assert.ErrorIs(t, errs[3], ErrNotFound)
	assert.Equal(t, "b", result[4].ID)

	boom := errors.New("boom")
	_, _, err = Load(ctx, []string{"a"}, 0, func(context.Context, []string) ([]*record, error) {
		return nil, boom
	}, recordKey)
	assert.ErrorIs(t, err, boom)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = Load(cctx, []string{"a"}, 1, fetch, recordKey)
	assert.ErrorIs(t, err, context.Canceled)
}
