// Package cache keeps recently fetched raw batches in memory so repeated
// fetch-raw calls for the same batch do not hit the upstream API.
// It uses patrickmn/go-cache for TTL-based expiry.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/docsync/pkg/records"
)

const batchPrefix = "batch:"

// Cache is a TTL cache of raw batches keyed by batch number.
type Cache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries expire after ttl. Expired entries
// are purged every cleanupInterval.
func New(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Batch returns the cached batch for key.
func (c *Cache) Batch(key string) (*records.Batch, bool) {
	v, ok := c.store.Get(batchPrefix + key)
	if !ok {
		return nil, false
	}
	b, ok := v.(*records.Batch)
	return b, ok
}

// PutBatch stores b under key with the default TTL.
func (c *Cache) PutBatch(key string, b *records.Batch) {
	if b == nil {
		return
	}
	c.store.Set(batchPrefix+key, b, gocache.DefaultExpiration)
}

// Invalidate drops the cached batch for key.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(batchPrefix + key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items in the cache, including expired
// items not yet purged.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats reports cache occupancy.
type Stats struct {
	ItemCount int    `json:"item_count"`
	TTL       string `json:"ttl"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
		TTL:       c.ttl.String(),
	}
}
