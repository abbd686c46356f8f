package highlight

import "sync"

// ParseCache memoizes successful formula parses, keyed by the exact raw
// string (whitespace included). It is constructed once per process and
// shared across concurrent evaluation calls.
//
// Concurrent GetOrParse calls on the same new key may both parse and one
// overwrite the other's entry; parsing is a pure function of the input, so
// the race costs a cache hit, not correctness. Parse failures are not
// cached: entries are immutable successes only, which is what makes the
// overwrite benign.
type ParseCache struct {
	mu      sync.RWMutex
	entries map[string]*ParsedFormula
}

// NewParseCache creates an empty parse cache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		entries: make(map[string]*ParsedFormula),
	}
}

// GetOrParse returns the cached parse of raw, parsing and storing it on a
// miss. Repeated calls with the same string are O(1) after the first.
func (c *ParseCache) GetOrParse(raw string) (*ParsedFormula, error) {
	c.mu.RLock()
	pf, ok := c.entries[raw]
	c.mu.RUnlock()
	if ok {
		return pf, nil
	}

	pf, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[raw] = pf
	c.mu.Unlock()

	return pf, nil
}

// Clear empties the cache. Intended for tests and for the (unexpected)
// case where formula semantics change without the string changing.
func (c *ParseCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*ParsedFormula)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
