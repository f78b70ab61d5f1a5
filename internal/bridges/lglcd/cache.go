package lglcd

import (
	"sync"
	"time"
)

// expiryGroups lists properties purged together when a command's cached
// value expires. A display that stops answering its network query has no
// trustworthy address quad at all, and a dead tile query invalidates every
// tile-derived reading.
var expiryGroups = map[string][]string{
	PropNetwork:      {PropIPAddress, PropSubnetMask, PropGateway, PropDNSServer},
	PropTileSettings: {PropTileColumns, PropTileRows, PropTileMode, PropTileID, PropNaturalMode, PropNaturalSize},
	PropNaturalMode:  {PropNaturalSize},
	PropDate:         {PropTime},
	PropTime:         {PropDate},
}

// propertyCache keeps the last good value per property alongside a
// consecutive-failure counter.
//
// A value survives up to lifetime consecutive failed polls (one poll per
// minute), after which it is purged, reported as N/A, and its expiry group
// is purged with it. Any success resets the counter to zero.
//
// Thread Safety: all methods are safe for concurrent use.
type propertyCache struct {
	mu       sync.Mutex
	lifetime int

	values    map[string]string
	updatedAt map[string]time.Time
	failures  map[string]int
}

func newPropertyCache(lifetime int) *propertyCache {
	if lifetime < 1 {
		lifetime = 1
	}
	return &propertyCache{
		lifetime:  lifetime,
		values:    make(map[string]string),
		updatedAt: make(map[string]time.Time),
		failures:  make(map[string]int),
	}
}

// RecordSuccess stores freshly decoded values for a command and resets its
// failure counter.
func (c *propertyCache) RecordSuccess(cmdProperty string, values map[string]string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures[cmdProperty] = 0
	for prop, v := range values {
		c.values[prop] = v
		c.updatedAt[prop] = now
	}
}

// RecordFailure increments the failure counter for a command. When the
// counter reaches the configured lifetime the cached value is purged, the
// property forced to N/A, the counter reset, and the command's expiry group
// purged with it. Returns true when expiry occurred.
func (c *propertyCache) RecordFailure(cmdProperty string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures[cmdProperty]++
	if c.failures[cmdProperty] < c.lifetime {
		return false
	}

	c.failures[cmdProperty] = 0
	c.expireLocked(cmdProperty)
	for _, dep := range expiryGroups[cmdProperty] {
		c.expireLocked(dep)
	}
	return true
}

// expireLocked forces a property to N/A. Caller holds c.mu.
func (c *propertyCache) expireLocked(prop string) {
	c.values[prop] = ValueNA
	c.updatedAt[prop] = time.Now()
}

// Value returns the cached value for a property and whether one exists.
func (c *propertyCache) Value(prop string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[prop]
	return v, ok
}

// Live reports whether a property has a usable (present, non-N/A) value.
func (c *propertyCache) Live(prop string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[prop]
	return ok && v != ValueNA
}

// UpdatedAt returns the timestamp of the last change to a property.
func (c *propertyCache) UpdatedAt(prop string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt[prop]
}

// Set overrides a single property value. Used after successful control
// writes so the snapshot reflects the new state before the next poll.
func (c *propertyCache) Set(prop, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[prop] = value
	c.updatedAt[prop] = time.Now()
}

// Remove deletes properties entirely (not N/A, gone). Used when a control
// action makes a property meaningless, e.g. disabling tile mode.
func (c *propertyCache) Remove(props ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range props {
		delete(c.values, p)
		delete(c.updatedAt, p)
		delete(c.failures, p)
	}
}

// FailureCount returns the current consecutive-failure count for a command.
func (c *propertyCache) FailureCount(cmdProperty string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[cmdProperty]
}

// Snapshot returns a copy of all cached values.
func (c *propertyCache) Snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Clear drops every cached value and failure counter. Used when the link
// has been dead longer than the caching lifetime.
func (c *propertyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]string)
	c.updatedAt = make(map[string]time.Time)
	c.failures = make(map[string]int)
}
