package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/covercluster/pkg/cache"
	"github.com/matzehuels/covercluster/pkg/observability"
)

// Cache is a JSON view over a [cache.Cache] backend.
//
// Keys are built with the backend's [cache.Keyer] as HTTP keys, so a
// response cached by the CLI under a namespace is found again by any other
// process sharing the backend:
//
//	spotify := httputil.NewCache(backend, nil, "spotify", 24*time.Hour)
//	spotify.Set(ctx, "album:4aawyAB9vmqN3uQ7FjRGTy", album)
//
// Cache is safe for concurrent use when the backend is.
type Cache struct {
	backend   cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
}

// NewCache creates a JSON cache storing entries in backend under namespace.
// A nil backend disables caching; a nil keyer uses the default key scheme.
func NewCache(backend cache.Cache, keyer cache.Keyer, namespace string, ttl time.Duration) *Cache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cache{backend: backend, keyer: keyer, namespace: namespace, ttl: ttl}
}

// TTL returns the time-to-live applied by Set.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Namespace returns the key namespace.
func (c *Cache) Namespace() string { return c.namespace }

// Get looks up key and unmarshals the entry into v.
//
// Return values indicate three distinct outcomes:
//   - (true, nil): Cache hit. The value was found and unmarshaled into v.
//   - (false, nil): Cache miss. v is unchanged.
//   - (false, err): Backend or JSON error. v may be partially modified.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := c.backend.Get(ctx, c.keyer.HTTPKey(c.namespace, key))
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeHTTP)
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypeHTTP)
	return true, nil
}

// Set marshals v to JSON and stores it under key.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.backend.Set(ctx, c.keyer.HTTPKey(c.namespace, key), data, c.ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeHTTP, len(data))
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.keyer.HTTPKey(c.namespace, key))
}
