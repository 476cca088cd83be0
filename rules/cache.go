package rules

import "time"

// RuleSetCache caches the list of active rule sets so validation does not
// hit the store on every request
type RuleSetCache interface {
	// Get retrieves cached rule sets, returns nil on miss or expiry
	Get() []*RuleSet

	// Set stores rule sets in cache
	Set(sets []*RuleSet)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached entries
	// 0 means entries only go away on Invalidate
	TTL time.Duration
}

// DefaultCacheConfig returns the config used by NewEngine
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}
