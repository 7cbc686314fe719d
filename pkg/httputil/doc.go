// Package httputil provides HTTP utilities for the music catalog clients.
//
// # Overview
//
//   - [Cache]: JSON response caching on top of any [cache.Cache] backend
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// Responses are cached per namespace (one per catalog) with a fixed TTL.
// The CLI backs the cache with files under ~/.cache/covercluster, the API
// server may back it with Redis.
//
//	c := httputil.NewCache(backend, nil, "spotify", 24*time.Hour)
//	var album Album
//	if ok, _ := c.Get(ctx, "album:"+id, &album); !ok {
//	    album = fetchAlbum(id)
//	    c.Set(ctx, "album:"+id, album)
//	}
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (honoring Retry-After)
//
// Any other error ends the loop immediately:
//
//	err := httputil.Retry(ctx, 4, 500*time.Millisecond, func() error {
//	    return download(ctx, url)
//	})
//
// The cache can be cleared via `covercluster cache clear` or by deleting
// the cache directory.
//
// [cache.Cache]: github.com/matzehuels/covercluster/pkg/cache.Cache
package httputil
