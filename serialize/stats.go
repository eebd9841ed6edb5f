package serialize

import (
	"fmt"
	"sync/atomic"
)

// WalkStats holds traversal statistics of a Serializer.
type WalkStats struct {
	// Visited is the number of records serialized by walking.
	Visited atomic.Int64
	// CacheHits is the number of records taken from the cache.
	CacheHits atomic.Int64
	// CacheMisses is the number of cacheable records not in the cache.
	CacheMisses atomic.Int64
	// PrunedByDepth is the number of relations dropped by the depth limit.
	PrunedByDepth atomic.Int64
	// Skipped is the number of relations dropped by relation policies.
	Skipped atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *WalkStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		Visited:       s.Visited.Load(),
		CacheHits:     s.CacheHits.Load(),
		CacheMisses:   s.CacheMisses.Load(),
		PrunedByDepth: s.PrunedByDepth.Load(),
		Skipped:       s.Skipped.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *WalkStats) Reset() {
	s.Visited.Store(0)
	s.CacheHits.Store(0)
	s.CacheMisses.Store(0)
	s.PrunedByDepth.Store(0)
	s.Skipped.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of traversal statistics.
type StatsSnapshot struct {
	Visited       int64
	CacheHits     int64
	CacheMisses   int64
	PrunedByDepth int64
	Skipped       int64
}

// HitRate returns the fraction of cacheable lookups served from the cache.
func (s StatsSnapshot) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"visited=%d hits=%d misses=%d hit_rate=%.2f pruned=%d skipped=%d",
		s.Visited, s.CacheHits, s.CacheMisses, s.HitRate(), s.PrunedByDepth, s.Skipped,
	)
}
