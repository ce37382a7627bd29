package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	amount    int64
	expiresAt time.Time
}

// MemoryOrderCache is a process-local OrderCache. Entries expire after ttl and
// a janitor goroutine evicts them.
type MemoryOrderCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewMemoryOrderCache starts a cache whose janitor runs every ttl/2 (at least once a second).
func NewMemoryOrderCache(ttl time.Duration) *MemoryOrderCache {
	c := &MemoryOrderCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go c.janitor(interval)

	return c
}

func (c *MemoryOrderCache) Put(_ context.Context, orderID string, amount int64) error {
	c.mu.Lock()
	c.entries[orderID] = memoryEntry{amount: amount, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryOrderCache) Get(_ context.Context, orderID string) (int64, error) {
	c.mu.RLock()
	e, ok := c.entries[orderID]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return 0, ErrOrderNotFound
	}
	return e.amount, nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryOrderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryOrderCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryOrderCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryOrderCache) evictExpired() {
	now := c.now()
	c.mu.Lock()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()
}
