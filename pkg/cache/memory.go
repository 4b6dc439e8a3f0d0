package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntriesPerRegion bounds each in-memory region.
const DefaultMaxEntriesPerRegion = 10000

// MemoryBackend keeps each region in its own bounded LRU. Every LRU carries
// its own lock, so mutations serialize per region while different regions
// proceed independently. Capacity eviction only ever produces a miss.
type MemoryBackend struct {
	mu         sync.RWMutex
	regions    map[Region]*lru.Cache[string, Entry]
	maxEntries int
}

// NewMemoryBackend creates a memory backend. Regions listed in preload are
// created up front; any other region is created on its first write.
// A non-positive maxEntries selects DefaultMaxEntriesPerRegion.
func NewMemoryBackend(maxEntries int, preload ...Region) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntriesPerRegion
	}
	b := &MemoryBackend{
		regions:    make(map[Region]*lru.Cache[string, Entry]),
		maxEntries: maxEntries,
	}
	for _, r := range preload {
		// Size is positive, so creation cannot fail
		_, _ = b.region(r, true)
	}
	return b
}

// region returns the LRU of r, creating it when create is set.
// Returns nil without error when r does not exist and create is false.
func (b *MemoryBackend) region(r Region, create bool) (*lru.Cache[string, Entry], error) {
	b.mu.RLock()
	c, ok := b.regions[r]
	b.mu.RUnlock()
	if ok || !create {
		return c, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.regions[r]; ok {
		return c, nil
	}
	c, err := lru.New[string, Entry](b.maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create region %s: %w", r, err)
	}
	b.regions[r] = c
	return c, nil
}

// Get returns the entry stored under key in region.
func (b *MemoryBackend) Get(ctx context.Context, region Region, key string) (Entry, bool, error) {
	c, _ := b.region(region, false)
	if c == nil {
		return Entry{}, false, nil
	}
	entry, ok := c.Get(key)
	return entry, ok, nil
}

// Set stores entry under key, creating the region when needed.
func (b *MemoryBackend) Set(ctx context.Context, region Region, key string, entry Entry) error {
	c, err := b.region(region, true)
	if err != nil {
		return err
	}
	c.Add(key, entry)
	return nil
}

// Delete removes key from region. Missing keys and regions are a no-op.
func (b *MemoryBackend) Delete(ctx context.Context, region Region, key string) error {
	if c, _ := b.region(region, false); c != nil {
		c.Remove(key)
	}
	return nil
}

// Clear removes every entry of region. The region itself is kept.
func (b *MemoryBackend) Clear(ctx context.Context, region Region) error {
	if c, _ := b.region(region, false); c != nil {
		c.Purge()
	}
	return nil
}

// ClearAll removes every entry of every region.
func (b *MemoryBackend) ClearAll(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, c := range b.regions {
		c.Purge()
	}
	return nil
}

// Len returns the number of entries in region.
func (b *MemoryBackend) Len(ctx context.Context, region Region) (int, error) {
	c, _ := b.region(region, false)
	if c == nil {
		return 0, nil
	}
	return c.Len(), nil
}
