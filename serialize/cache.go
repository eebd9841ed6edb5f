package serialize

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/syssam/graphbundle"
	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/bundle/codec"
)

// BundleCache is an identity cache of serialized records. Implementations
// must be safe for concurrent use. Bundles are immutable, so a cached
// bundle may be returned to any number of callers.
type BundleCache interface {
	Get(ctx context.Context, key graphbundle.CacheKey) (*bundle.Bundle, bool)
	Set(ctx context.Context, key graphbundle.CacheKey, b *bundle.Bundle)
}

// MemoryCache is an in-process BundleCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[graphbundle.CacheKey]*bundle.Bundle
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[graphbundle.CacheKey]*bundle.Bundle)}
}

// Get implements BundleCache.
func (c *MemoryCache) Get(_ context.Context, key graphbundle.CacheKey) (*bundle.Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}

// Set implements BundleCache. The last write for a key wins.
func (c *MemoryCache) Set(_ context.Context, key graphbundle.CacheKey, b *bundle.Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = b
}

// Invalidate drops every entry of the given record.
func (c *MemoryCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.RecordID == id {
			delete(c.entries, k)
		}
	}
}

// Clear drops all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ByteCache stores bundles in a byte-level graphbundle.Cache, encoded with
// a codec (MessagePack by default). Backend and decoding failures are
// logged and treated as misses.
type ByteCache struct {
	backend graphbundle.Cache
	codec   codec.Codec
	ttl     time.Duration
	logger  *slog.Logger
}

// ByteCacheOption configures a ByteCache.
type ByteCacheOption func(*ByteCache)

// WithTTL sets the expiry of stored entries. Zero means no expiry.
func WithTTL(d time.Duration) ByteCacheOption {
	return func(c *ByteCache) {
		c.ttl = d
	}
}

// WithCodec sets the encoding of stored entries.
func WithCodec(cd codec.Codec) ByteCacheOption {
	return func(c *ByteCache) {
		c.codec = cd
	}
}

// WithCacheLogger sets the logger for backend failures.
func WithCacheLogger(l *slog.Logger) ByteCacheOption {
	return func(c *ByteCache) {
		c.logger = l
	}
}

// NewByteCache wraps a byte-level cache.
func NewByteCache(backend graphbundle.Cache, opts ...ByteCacheOption) *ByteCache {
	c := &ByteCache{
		backend: backend,
		codec:   codec.MsgPack{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements BundleCache.
func (c *ByteCache) Get(ctx context.Context, key graphbundle.CacheKey) (*bundle.Bundle, bool) {
	data, err := c.backend.Get(ctx, key.String())
	if err != nil {
		c.logger.WarnContext(ctx, "cache get failed", "key", key.String(), "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	b, err := c.codec.Unmarshal(data)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry undecodable", "key", key.String(), "error", err)
		return nil, false
	}
	return b, true
}

// Set implements BundleCache.
func (c *ByteCache) Set(ctx context.Context, key graphbundle.CacheKey, b *bundle.Bundle) {
	data, err := c.codec.Marshal(b)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry unencodable", "key", key.String(), "error", err)
		return
	}
	if err := c.backend.Set(ctx, key.String(), data, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", "key", key.String(), "error", err)
	}
}

// Invalidate drops every entry of the given record.
func (c *ByteCache) Invalidate(ctx context.Context, id string) error {
	return c.backend.DeletePrefix(ctx, graphbundle.RecordPrefix(id))
}
