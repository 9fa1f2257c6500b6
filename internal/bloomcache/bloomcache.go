// Package bloomcache is a probabilistic fast path in front of an
// authoritative liveness check. It never replaces the authoritative
// check — only skips calling it when a negative answer is certain.
package bloomcache

import (
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/Vitaminas256/allocator2d/geom"
)

// Cache tracks which origins are believed live. A negative Test result
// is certain (the origin was never added); a positive result still
// needs the authoritative directory lookup, since false positives are
// possible by construction.
type Cache struct {
	filter *bloom.BloomFilter
}

// New builds a cache sized for expectedLive origins at the given false
// positive rate.
func New(expectedLive uint, falsePositiveRate float64) *Cache {
	return &Cache{filter: bloom.NewWithEstimates(expectedLive, falsePositiveRate)}
}

func key(origin geom.Point) []byte {
	return []byte(fmt.Sprintf("%d,%d", origin.X, origin.Y))
}

// Add records origin as live.
func (c *Cache) Add(origin geom.Point) {
	c.filter.Add(key(origin))
}

// MaybeLive reports whether origin might be live. false is a certain
// answer; true requires confirmation against the authoritative source.
func (c *Cache) MaybeLive(origin geom.Point) bool {
	return c.filter.Test(key(origin))
}

// Reset discards all recorded origins, re-sizing for a fresh estimate.
// Mirrors the periodic reset a long-running gossip filter needs once
// its false-positive rate drifts from accumulated inserts.
func (c *Cache) Reset(expectedLive uint, falsePositiveRate float64) {
	c.filter = bloom.NewWithEstimates(expectedLive, falsePositiveRate)
}
