package http

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// cacheKey derives the LRU key from the full parameter set, so changing any
// input is a distinct entry.
func cacheKey(p domain.SimulationParams) string {
	return fmt.Sprintf("%g|%g|%g|%g",
		p.InfrastructureQuality, p.Baseline, p.FundingDelta, p.Sensitivity)
}

// simulationCache is a thread-safe LRU cache for simulation results.
// Dashboard sliders replay the same parameter combinations constantly, so a
// small cache absorbs most of the load.
type simulationCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.SimulationResult
	prev  *entry
	next  *entry
}

func newSimulationCache(maxEntries int) *simulationCache {
	return &simulationCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *simulationCache) get(key string) (domain.SimulationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.SimulationResult{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *simulationCache) put(key string, value domain.SimulationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

func (c *simulationCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *simulationCache) moveToFront(e *entry) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *simulationCache) pushFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *simulationCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if c.head == e {
		c.head = e.next
	}
	if c.tail == e {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *simulationCache) evictOldest() {
	oldest := c.tail
	if oldest == nil {
		return
	}
	c.unlink(oldest)
	delete(c.entries, oldest.key)
}
