// Package profilecache memoizes onset profiles per source identity.
//
// Spectral analysis over a full track is expensive, and callers tend to ask
// for a grid many times on the same source. The cache is bounded (LRU) and
// exposes Invalidate as the hook for source deletion. Concurrent misses on
// the same key share one computation.
package profilecache

import (
	"errors"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/cwbudde/algo-beatgrid/onset"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 64

// ErrNilCompute indicates New was called without a compute function.
var ErrNilCompute = errors.New("profilecache: compute function must not be nil")

// ComputeFunc produces the profile for a sample buffer.
type ComputeFunc func(samples []float32) onset.Profile

// Stats holds lookup counters. Evictions counts every dropped entry,
// whether pushed out by capacity, invalidated or purged.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Cache is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, onset.Profile]
	compute ComputeFunc
	group   singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New returns a cache holding at most capacity profiles.
func New(capacity int, compute ComputeFunc) (*Cache, error) {
	if compute == nil {
		return nil, ErrNilCompute
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{compute: compute}
	entries, err := lru.NewWithEvict(capacity, func(string, onset.Profile) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// GetOrCompute returns the cached profile for id, computing and storing it
// from samples on a miss. The id is opaque to the cache.
func (c *Cache) GetOrCompute(id string, samples []float32) onset.Profile {
	if p, ok := c.entries.Get(id); ok {
		c.hits.Add(1)
		return p
	}
	v, _, _ := c.group.Do(id, func() (any, error) {
		// Another caller may have finished while we queued.
		if p, ok := c.entries.Get(id); ok {
			c.hits.Add(1)
			return p, nil
		}
		c.misses.Add(1)
		p := c.compute(samples)
		c.entries.Add(id, p)
		return p, nil
	})
	return v.(onset.Profile)
}

// Peek returns the cached profile for id without computing or touching
// recency.
func (c *Cache) Peek(id string) (onset.Profile, bool) {
	return c.entries.Peek(id)
}

// Invalidate drops the profile for id. It reports whether one was cached.
func (c *Cache) Invalidate(id string) bool {
	return c.entries.Remove(id)
}

// Purge drops every cached profile.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached profiles.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
