// cache.go - TTL cache in front of the client registry

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// ClientSource is anything that can list every client record
type ClientSource interface {
	All(ctx context.Context) ([]models.ClientRecord, error)
}

// ClientCache reloads the full registry at most once per TTL
type ClientCache struct {
	source ClientSource
	ttl    time.Duration

	mu       sync.RWMutex
	records  []models.ClientRecord
	byID     map[string]models.ClientRecord
	loadedAt time.Time
}

// NewClientCache wraps source with a TTL
func NewClientCache(source ClientSource, ttl time.Duration) *ClientCache {
	return &ClientCache{source: source, ttl: ttl}
}

// All returns the cached records, loading them if the cache expired
func (c *ClientCache) All(ctx context.Context) ([]models.ClientRecord, error) {
	c.mu.RLock()
	if c.byID != nil && time.Since(c.loadedAt) < c.ttl {
		records := c.records
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.byID != nil && time.Since(c.loadedAt) < c.ttl {
		return c.records, nil
	}

	records, err := c.source.All(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.ClientRecord, len(records))
	for _, rec := range records {
		if _, dup := byID[rec.ID]; !dup {
			byID[rec.ID] = rec
		}
	}
	c.records = records
	c.byID = byID
	c.loadedAt = time.Now()
	return records, nil
}

// FindByID looks an id up in the cached index
func (c *ClientCache) FindByID(ctx context.Context, id string) (models.ClientRecord, bool, error) {
	if _, err := c.All(ctx); err != nil {
		return models.ClientRecord{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.byID[id]
	return rec, ok, nil
}

// Invalidate forces the next call to reload
func (c *ClientCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = nil
	c.records = nil
}
