package rules

import (
	"sync"
	"time"
)

// InMemoryRuleSetCache is a thread-safe in-memory RuleSetCache
type InMemoryRuleSetCache struct {
	sets     []*RuleSet
	cachedAt time.Time
	config   CacheConfig
	mu       sync.RWMutex
	valid    bool
	now      func() time.Time
}

// NewInMemoryRuleSetCache creates a new in-memory rule set cache
func NewInMemoryRuleSetCache(config CacheConfig) *InMemoryRuleSetCache {
	return &InMemoryRuleSetCache{
		config: config,
		now:    time.Now,
	}
}

// Get returns a copy of the cached rule sets, or nil when invalid or expired
func (c *InMemoryRuleSetCache) Get() []*RuleSet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.fresh() {
		return nil
	}

	out := make([]*RuleSet, len(c.sets))
	copy(out, c.sets)
	return out
}

// Set stores a copy of the rule sets
func (c *InMemoryRuleSetCache) Set(sets []*RuleSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets = make([]*RuleSet, len(sets))
	copy(c.sets, sets)
	c.cachedAt = c.now()
	c.valid = true
}

// Invalidate clears the cache
func (c *InMemoryRuleSetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.sets = nil
}

// IsValid returns true if cache contains unexpired data
func (c *InMemoryRuleSetCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh()
}

// fresh must be called with mu held
func (c *InMemoryRuleSetCache) fresh() bool {
	if !c.valid {
		return false
	}
	if c.config.TTL > 0 {
		return c.now().Sub(c.cachedAt) <= c.config.TTL
	}
	return true
}
