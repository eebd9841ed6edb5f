package serialize

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultMaxDepth is the traversal depth used when none is configured.
const DefaultMaxDepth = 10

// Config is an immutable serialization policy. Every With method returns
// a new Config and keeps all other settings of the receiver. The zero
// value is the default policy: full mode, no included properties, depth
// DefaultMaxDepth, default relations, no cache.
type Config struct {
	liteMode      bool
	included      []string
	maxDepth      int
	hasMaxDepth   bool
	dependentOnly bool
	cache         BundleCache
}

// NewConfig returns the default configuration.
func NewConfig() Config { return Config{} }

// WithLiteMode returns a copy of c with lite mode set. In lite mode
// records below the root carry only their mandatory and included
// properties, and relations declared WhenNotLite are not followed from
// them.
func (c Config) WithLiteMode(lite bool) Config {
	c.liteMode = lite
	return c
}

// WithIncludedProperties returns a copy of c whose included property set
// is exactly names. Included properties are emitted in lite mode too.
func (c Config) WithIncludedProperties(names ...string) Config {
	set := slices.Clone(names)
	slices.Sort(set)
	c.included = slices.Compact(set)
	return c
}

// WithMaxDepth returns a copy of c with the given maximum traversal
// depth. The root is at depth 0; a depth of 0 emits the root alone.
// Negative values are treated as 0.
func (c Config) WithMaxDepth(n int) Config {
	c.maxDepth = max(n, 0)
	c.hasMaxDepth = true
	return c
}

// WithDependentOnly returns a copy of c that, when set, follows only
// relations declared dependent. When unset, relations declared
// DependentOnly are skipped.
func (c Config) WithDependentOnly(only bool) Config {
	c.dependentOnly = only
	return c
}

// WithCache returns a copy of c using the given identity cache. A nil
// cache disables caching.
func (c Config) WithCache(cache BundleCache) Config {
	c.cache = cache
	return c
}

// LiteMode reports whether lite mode is enabled.
func (c Config) LiteMode() bool { return c.liteMode }

// IncludedProperties returns the sorted included property names.
func (c Config) IncludedProperties() []string { return slices.Clone(c.included) }

// MaxDepth returns the maximum traversal depth.
func (c Config) MaxDepth() int {
	if !c.hasMaxDepth {
		return DefaultMaxDepth
	}
	return c.maxDepth
}

// DependentOnly reports whether only dependent relations are followed.
func (c Config) DependentOnly() bool { return c.dependentOnly }

// Cache returns the identity cache, or nil.
func (c Config) Cache() BundleCache { return c.cache }

// Fingerprint identifies every setting that changes serializer output.
// The cache is not part of it.
func (c Config) Fingerprint() string {
	var b strings.Builder
	b.WriteString("lite=")
	b.WriteString(strconv.FormatBool(c.liteMode))
	b.WriteString(";depth=")
	b.WriteString(strconv.Itoa(c.MaxDepth()))
	b.WriteString(";dep=")
	b.WriteString(strconv.FormatBool(c.dependentOnly))
	b.WriteString(";inc=")
	b.WriteString(strings.Join(c.included, ","))
	return b.String()
}

func (c Config) includes(name string) bool {
	_, ok := slices.BinarySearch(c.included, name)
	return ok
}
