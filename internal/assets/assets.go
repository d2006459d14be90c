// Package assets handles texture loading and caching.
package assets

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/engine/texture"
	"github.com/Faultbox/texbake/internal/logger"
)

// Manager loads texture maps from disk and keeps decoded copies so that
// repeated scene loads during auto sync only decode what changed.
type Manager struct {
	cache *Cache
	load  func(path string) (*image.NRGBA, error)
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		load:  texture.Load,
	}
}

// cacheKey is the absolute form of path, so relative loads and watcher
// events name the same entry.
func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Texture returns the decoded image at path.
func (m *Manager) Texture(path string) (*image.NRGBA, error) {
	key := cacheKey(path)
	if img, ok := m.cache.Get(key); ok {
		return img, nil
	}

	img, err := m.load(key)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	m.cache.Set(key, img)
	return img, nil
}

// Invalidate drops cached entries for paths. Paths that are not cached
// are ignored.
func (m *Manager) Invalidate(paths ...string) {
	for _, p := range paths {
		if m.cache.Delete(cacheKey(p)) {
			logger.Debug("texture invalidated", zap.String("path", p))
		}
	}
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close releases all cached textures.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for decoded textures.
type Cache struct {
	data map[string]*image.NRGBA
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*image.NRGBA),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*image.NRGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, img *image.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = img
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	delete(c.data, key)
	return ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*image.NRGBA)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
