package formulas

import (
	"sync"
	"time"
)

// InMemoryFormulasCache is a simple in-memory implementation of FormulasCache.
// Thread-safe for concurrent access.
type InMemoryFormulasCache struct {
	formulas []*Formula
	cachedAt time.Time
	config   CacheConfig
	mu       sync.RWMutex
	isValid  bool
}

// NewInMemoryFormulasCache creates a new in-memory formulas cache
func NewInMemoryFormulasCache(config CacheConfig) *InMemoryFormulasCache {
	return &InMemoryFormulasCache{
		config:  config,
		isValid: false,
	}
}

// Get retrieves cached formulas.
// Returns nil if cache is invalid or expired.
func (c *InMemoryFormulasCache) Get() []*Formula {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return nil
	}

	if c.config.TTL > 0 {
		if time.Since(c.cachedAt) > c.config.TTL {
			return nil
		}
	}

	// Return copy to prevent external modifications
	out := make([]*Formula, len(c.formulas))
	copy(out, c.formulas)
	return out
}

// Set stores formulas in cache
func (c *InMemoryFormulasCache) Set(formulas []*Formula) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Store copy to prevent external modifications
	c.formulas = make([]*Formula, len(formulas))
	copy(c.formulas, formulas)
	c.cachedAt = time.Now()
	c.isValid = true
}

// Invalidate clears the cache
func (c *InMemoryFormulasCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.formulas = nil
}

// IsValid returns true if cache contains valid data
func (c *InMemoryFormulasCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return false
	}

	if c.config.TTL > 0 {
		return time.Since(c.cachedAt) <= c.config.TTL
	}

	return true
}
