package whitelist

import "go.uber.org/atomic"

// Stats is a snapshot of whitelist counters.
//
// Evictions counts entries removed for being expired, whether they were found
// by a lookup or by CleanUp.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Admissions uint64
	Refreshes  uint64
	Evictions  uint64
}

type stats struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	admissions atomic.Uint64
	refreshes  atomic.Uint64
	evictions  atomic.Uint64
}

// Stats returns the current counters. It does not take the cache lock, so the
// fields are individually consistent but may be read mid-operation.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       c.stats.hits.Load(),
		Misses:     c.stats.misses.Load(),
		Admissions: c.stats.admissions.Load(),
		Refreshes:  c.stats.refreshes.Load(),
		Evictions:  c.stats.evictions.Load(),
	}
}
