package artistsite

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/artistsite/content"
)

// ContentFetcher is the one-shot read the public pages depend on. It never
// fails; on error it returns the default content.
type ContentFetcher interface {
	FetchOnce(ctx context.Context) content.SiteContent
}

// ContentCache is an in-memory cache of the merged site content with TTL.
// It is dropped by Invalidate, which is registered on the site-content tag.
type ContentCache struct {
	mu      sync.RWMutex
	content content.SiteContent
	loaded  bool
	fetched time.Time
	ttl     time.Duration
	src     ContentFetcher
	now     func() time.Time
}

// NewContentCache creates a ContentCache backed by src.
func NewContentCache(src ContentFetcher, ttl time.Duration) *ContentCache {
	return &ContentCache{src: src, ttl: ttl, now: time.Now}
}

func (c *ContentCache) valid() bool {
	return c.loaded && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// Get returns a copy of the cached content, loading it first when stale.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ContentCache) Get(ctx context.Context) content.SiteContent {
	c.mu.RLock()
	if c.valid() {
		sc := content.Clone(c.content)
		c.mu.RUnlock()
		return sc
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid() {
		c.content = c.src.FetchOnce(ctx)
		c.fetched = c.now()
		c.loaded = true
	}
	return content.Clone(c.content)
}
