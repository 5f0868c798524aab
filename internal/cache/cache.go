// internal/cache/cache.go
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/law-makers/encuestas/internal/engine"
	"github.com/law-makers/encuestas/pkg/models"
)

// Cache stores fetched documents by URL
type Cache interface {
	// Get returns the document for key unless it is missing or expired
	Get(key string) (*models.Document, bool)

	// Set stores doc under key for ttl
	Set(key string, doc *models.Document, ttl time.Duration)

	// Delete removes key. Missing keys are ignored.
	Delete(key string)

	// Clear removes every entry
	Clear()
}

type cacheEntry struct {
	doc       *models.Document
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Expired entries are dropped on access.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a cached document
func (mc *MemoryCache) Get(key string) (*models.Document, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[key]
	if !ok || !mc.now().Before(entry.expiresAt) {
		if ok {
			delete(mc.entries, key)
		}
		mc.misses++
		return nil, false
	}
	mc.hits++
	return entry.doc, true
}

// Set stores a document with ttl. A non-positive ttl is a no-op.
func (mc *MemoryCache) Set(key string, doc *models.Document, ttl time.Duration) {
	if ttl <= 0 || doc == nil {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries[key] = cacheEntry{doc: doc, expiresAt: mc.now().Add(ttl)}
}

// Delete removes a cached document
func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.entries, key)
}

// Clear removes all cached documents
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries = make(map[string]cacheEntry)
}

// Stats returns hit and miss counts
func (mc *MemoryCache) Stats() (hits, misses uint64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.hits, mc.misses
}

// Fetcher shares one fetch of a URL between concurrent callers and keeps
// successful documents for a short ttl, so both table variants of a run are
// extracted from the same page. Failures are never cached.
type Fetcher struct {
	next  engine.Fetcher
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewFetcher wraps next
func NewFetcher(next engine.Fetcher, c Cache, ttl time.Duration) *Fetcher {
	return &Fetcher{next: next, cache: c, ttl: ttl}
}

// Name returns the name of the wrapped fetcher
func (f *Fetcher) Name() string {
	return f.next.Name()
}

// Fetch returns a cached document or fetches it through the wrapped fetcher
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Document, error) {
	logger := zerolog.Ctx(ctx)

	if doc, ok := f.cache.Get(url); ok {
		logger.Debug().Str("url", url).Msg("Cache hit")
		return doc, nil
	}

	v, err, shared := f.group.Do(url, func() (interface{}, error) {
		doc, err := f.next.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		f.cache.Set(url, doc, f.ttl)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug().Str("url", url).Msg("Shared in-flight fetch")
	}
	return v.(*models.Document), nil
}
