package formulas

import "time"

// FormulasCache provides an abstraction for caching the active formulas list.
// This allows swapping between in-memory, Redis, or other caching implementations.
type FormulasCache interface {
	// Get retrieves cached formulas, returns nil if cache miss or expired
	Get() []*Formula

	// Set stores formulas in cache
	Set(formulas []*Formula)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// Set to 0 for no expiration (manual invalidation only).
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults for formula caching
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 0, // No TTL - only invalidate on mutations
	}
}
