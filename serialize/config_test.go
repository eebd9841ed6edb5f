package serialize_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/bundle/codec"
	"github.com/syssam/graphbundle/serialize"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	for _, c := range []serialize.Config{{}, serialize.NewConfig()} {
		assert.False(t, c.LiteMode())
		assert.Empty(t, c.IncludedProperties())
		assert.Equal(t, serialize.DefaultMaxDepth, c.MaxDepth())
		assert.False(t, c.DependentOnly())
		assert.Nil(t, c.Cache())
	}
	assert.Equal(t, 0, serialize.NewConfig().WithMaxDepth(-3).MaxDepth())
}

func TestConfigDerivation(t *testing.T) {
	t.Parallel()

	base := serialize.NewConfig().
		WithLiteMode(true).
		WithIncludedProperties("scopeAndContent").
		WithMaxDepth(4).
		WithDependentOnly(true)

	derived := []serialize.Config{
		base.WithCache(serialize.NewMemoryCache()),
		base.WithCache(nil),
		base.WithLiteMode(true),
		base.WithMaxDepth(4),
	}
	for _, c := range derived {
		assert.True(t, c.LiteMode())
		assert.Equal(t, []string{"scopeAndContent"}, c.IncludedProperties())
		assert.Equal(t, 4, c.MaxDepth())
		assert.True(t, c.DependentOnly())
		assert.Equal(t, base.Fingerprint(), c.Fingerprint())
	}

	changed := base.WithIncludedProperties("notes", "scopeAndContent", "notes")
	assert.Equal(t, []string{"notes", "scopeAndContent"}, changed.IncludedProperties())
	assert.Equal(t, []string{"scopeAndContent"}, base.IncludedProperties())

	names := changed.IncludedProperties()
	names[0] = "mutated"
	assert.Equal(t, []string{"notes", "scopeAndContent"}, changed.IncludedProperties())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	base := serialize.NewConfig()
	variants := []serialize.Config{
		base.WithLiteMode(true),
		base.WithMaxDepth(3),
		base.WithDependentOnly(true),
		base.WithIncludedProperties("notes"),
	}
	seen := map[string]bool{base.Fingerprint(): true}
	for _, v := range variants {
		fp := v.Fingerprint()
		assert.False(t, seen[fp], fp)
		seen[fp] = true
	}
	assert.Equal(t,
		base.WithIncludedProperties("a", "b").Fingerprint(),
		base.WithIncludedProperties("b", "a").Fingerprint(),
	)
	assert.Equal(t, "lite=false;depth=10;dep=false;inc=", base.Fingerprint())
}

// mapCache is a byte-level cache backed by a map.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	return nil
}

var _ graphbundle.Cache = (*mapCache)(nil)

func TestByteCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := newMapCache()
	cache := serialize.NewByteCache(backend, serialize.WithTTL(time.Minute))

	key := graphbundle.CacheKey{RecordID: "c1", Fingerprint: "fp", Depth: 1}
	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)

	b := bundle.New("Unit").WithID("c1").WithDataValue("identifier", "c1").
		WithRelation("describes", bundle.New("Description").WithDataValue("name", "One"))
	cache.Set(ctx, key, b)
	assert.Equal(t, time.Minute, backend.ttls["c1:fp:1"])

	got, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.True(t, b.Equal(got))

	backend.data["c1:fp:2"] = []byte{0xc1}
	_, ok = cache.Get(ctx, graphbundle.CacheKey{RecordID: "c1", Fingerprint: "fp", Depth: 2})
	assert.False(t, ok, "undecodable entries are misses")

	other := graphbundle.CacheKey{RecordID: "c1:x", Fingerprint: "fp", Depth: 1}
	cache.Set(ctx, other, b)

	require.NoError(t, cache.Invalidate(ctx, "c1"))
	_, ok = cache.Get(ctx, key)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, other)
	assert.True(t, ok, "ids sharing a prefix are kept")
}

func TestByteCacheSerializer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := newMapCache()
	cache := serialize.NewByteCache(backend, serialize.WithCodec(codec.JSON{}))
	s := serialize.New(fixture(t), registry(t),
		serialize.WithConfig(serialize.NewConfig().WithMaxDepth(2).WithCache(cache)))

	first, err := s.ByID(ctx, "c1")
	require.NoError(t, err)
	second, err := s.ByID(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Contains(t, string(backend.data["c1:"+s.Config().Fingerprint()+":0"]), `"identifier":"c1"`)
}
