package graphbundle

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Cache is a byte-level key/value cache that can back the serializer's
// identity cache. Implementations may be in-process or remote (e.g. Redis,
// Memcached) and must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies one serialized record: the record id, the fingerprint
// of the configuration that produced it, and the traversal depth it was
// reached at.
type CacheKey struct {
	RecordID    string
	Fingerprint string
	Depth       int
}

// String returns the string representation of the cache key. Keys for the
// same record share RecordPrefix(id) so they can be evicted together.
func (k CacheKey) String() string {
	return RecordPrefix(k.RecordID) + k.Fingerprint + ":" + strconv.Itoa(k.Depth)
}

// RecordPrefix returns the prefix shared by every cache key of the record.
// The id is escaped so that it never contains the ':' separator.
func RecordPrefix(id string) string {
	return url.QueryEscape(id) + ":"
}
