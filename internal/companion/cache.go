package companion

import "sync"

// memoCache is a bounded memo of completed requests, keyed on exact request
// content. Eviction is insertion order: once full, the oldest entry goes.
// Every distinct request still gets a fresh completion, so no staleness is
// visible to the user.
type memoCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]string
	order   []string
}

func newMemoCache(max int) *memoCache {
	return &memoCache{
		max:     max,
		entries: make(map[string]string),
	}
}

func (c *memoCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.entries[key]
	return text, ok
}

func (c *memoCache) put(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = text
		return
	}

	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = text
	c.order = append(c.order, key)
}
