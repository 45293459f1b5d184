package whitelist

import (
	"bytes"
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultKeySize fits an IPv6 address, and IPv4 addresses padded to it.
	DefaultKeySize = 16
	// DefaultTimeout is how long an address stays allowed without being re-added.
	DefaultTimeout = 5 * time.Minute
)

var (
	ErrClosed     = errors.New("whitelist is closed")
	ErrInvalidKey = errors.New("invalid key length")
)

// Config fixes the whitelist policy for the lifetime of a Cache.
//
// Zero values pick defaults:
//   - KeySize <= 0 means DefaultKeySize
//   - Timeout <= 0 means DefaultTimeout
//   - CleanupInterval <= 0 disables background cleanup (lazy eviction still works,
//     and CleanUp can be driven by an outside scheduler)
//   - Clock == nil means time.Now
type Config struct {
	KeySize         int
	Timeout         time.Duration
	CleanupInterval time.Duration
	Clock           func() time.Time
}

// Cache is a concurrency-safe set of addresses that forgets each member once it
// has not been re-added for longer than the configured timeout.
//
// Entries live in a doubly-linked list, most recently admitted first. Every
// traversal evicts the expired entries it walks over, so lookups double as
// cleanup. A single mutex covers the whole walk of each call: the age check,
// the eviction decision, the unlink and the final insert. Two callers can never
// both decide to evict the same node.
//
// Ownership model:
// Cache owns its maintenance goroutine. Call Close to stop it.
type Cache struct {
	mu sync.Mutex

	keySize int
	timeout time.Duration
	now     func() time.Time
	entries *list.List // Front = most recently admitted

	stats stats

	// Goroutine ownership.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cleanupEvery time.Duration
	closed       bool
}

// entry is the value stored in the list elements.
type entry struct {
	key      []byte
	lastSeen time.Time
}

// New constructs an empty whitelist and starts background cleanup (if enabled).
//
// New never returns a nil Cache.
func New(cfg Config) *Cache {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Cache{
		keySize:      cfg.KeySize,
		timeout:      cfg.Timeout,
		now:          cfg.Clock,
		entries:      list.New(),
		ctx:          ctx,
		cancel:       cancel,
		cleanupEvery: cfg.CleanupInterval,
	}
	if c.keySize <= 0 {
		c.keySize = DefaultKeySize
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}

	if c.cleanupEvery > 0 {
		c.wg.Add(1)
		go c.expiryLoop()
	}

	return c
}

// Close stops background cleanup and rejects further Add calls.
//
// Close is safe to call multiple times.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	return nil
}

// KeySize reports the key length every call must use.
func (c *Cache) KeySize() int { return c.keySize }

// Timeout reports the inactivity window after which an entry expires.
func (c *Cache) Timeout() time.Duration { return c.timeout }

// Add admits key, or refreshes its timestamp if it is already allowed.
//
// An entry that expired before this call is evicted during the walk and the
// key is re-admitted as a new entry at the front.
func (c *Cache) Add(key []byte) error {
	if err := c.validate(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	now := c.now()
	if el := c.findLocked(key, now); el != nil {
		e := el.Value.(*entry)
		// lastSeen never moves backwards, even with a stepping clock.
		if now.After(e.lastSeen) {
			e.lastSeen = now
		}
		c.stats.refreshes.Inc()
		return nil
	}

	c.entries.PushFront(&entry{
		key:      cloneBytes(key),
		lastSeen: now,
	})
	c.stats.admissions.Inc()
	return nil
}

// Check reports whether key is currently allowed.
//
// Expired entries found on the way are evicted before they are compared, so
// an entry never counts as a match on the call that discovers it has expired.
func (c *Cache) Check(key []byte) (bool, error) {
	if err := c.validate(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findLocked(key, c.now()) == nil {
		c.stats.misses.Inc()
		return false, nil
	}
	c.stats.hits.Inc()
	return true, nil
}

// CleanUp evicts every expired entry and returns how many were removed.
//
// It is meant for a periodic scheduler, to bound memory when Add and Check
// are too rare to expire entries on their own.
func (c *Cache) CleanUp() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteExpiredLocked(c.now())
}

// Len returns the number of stored entries.
//
// Note: Len includes entries that have expired but haven't been walked over yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Keys returns copies of the stored keys, most recently admitted first.
//
// Like Len, it does not evict and may include expired entries.
func (c *Cache) Keys() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]byte, 0, c.entries.Len())
	for el := c.entries.Front(); el != nil; el = el.Next() {
		out = append(out, cloneBytes(el.Value.(*entry).key))
	}
	return out
}

func (c *Cache) validate(key []byte) error {
	if len(key) != c.keySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(key), c.keySize)
	}
	return nil
}

// expiredLocked uses a strict comparison: an entry exactly timeout old is
// still valid.
func (c *Cache) expiredLocked(e *entry, now time.Time) bool {
	return e.lastSeen.Before(now.Add(-c.timeout))
}

// findLocked walks from the front, evicting expired entries before comparing
// keys, and returns the first live match or nil.
func (c *Cache) findLocked(key []byte, now time.Time) *list.Element {
	for el := c.entries.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if c.expiredLocked(e, now) {
			c.removeLocked(el)
		} else if bytes.Equal(e.key, key) {
			return el
		}
		el = next
	}
	return nil
}

func (c *Cache) deleteExpiredLocked(now time.Time) int {
	removed := 0
	for el := c.entries.Front(); el != nil; {
		next := el.Next()
		if c.expiredLocked(el.Value.(*entry), now) {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

func (c *Cache) removeLocked(el *list.Element) {
	c.entries.Remove(el)
	c.stats.evictions.Inc()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
