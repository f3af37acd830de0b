package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Well-known cache keys used by the pipeline. Per-user keys append
// ":<user_id>".
const (
	KeyOffers          = "offers"
	KeyFilteredOffers  = "filteredOffers"
	KeyCategories      = "categories"
	KeyUserPreferences = "userPreferences"
)

// DefaultTTL is the validity window for every entry.
const DefaultTTL = time.Hour

// Entry is a stored payload plus the time it was written. An entry is
// valid only while now-Timestamp < TTL; stale entries simply read as
// absent and stay on disk until overwritten.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store is a durable key-value backend. Implementations return ok=false
// for missing keys; they may return errors for I/O faults, which the
// Cache wrapper downgrades to misses.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
}

// Cache is a TTL read-through layer over a Store. It is a soft
// performance optimization, never a correctness boundary: every fault
// degrades to a miss and is only logged.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl, now: time.Now}
}

// GetJSON loads and unmarshals the entry for key into dest. It reports
// false when the key is absent, expired, unreadable or undecodable.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("[cache] read %q failed: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if c.now().Sub(e.Timestamp) >= c.ttl {
		return false
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		log.Printf("[cache] decode %q failed: %v", key, err)
		return false
	}
	return true
}

// PutJSON stores v under key with the current timestamp, unconditionally
// overwriting any prior entry. Failures are swallowed.
func (c *Cache) PutJSON(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[cache] encode %q failed: %v", key, err)
		return
	}
	if err := c.store.Put(ctx, key, Entry{Data: b, Timestamp: c.now()}); err != nil {
		log.Printf("[cache] write %q failed: %v", key, err)
	}
}
