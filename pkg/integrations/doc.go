// Package integrations provides HTTP clients for music catalog APIs.
//
// # Overview
//
// Each catalog has its own subpackage:
//
//   - [spotify]: Spotify Web API (playlists, albums, cover art)
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing every catalog client needs:
//
//   - default headers (authorization, user agent)
//   - response caching through [httputil.Cache] on any [cache.Cache] backend
//   - retries with exponential backoff for network errors, 5xx and 429
//   - status mapping to [ErrNotFound], [ErrUnauthorized] and [ErrNetwork]
//   - request/response events for [observability.HTTPHooks]
//
// # Adding a New Catalog
//
//  1. Create a subpackage: pkg/integrations/<catalog>/
//  2. Define response structs matching the API schema
//  3. Implement a Client with PlaylistTracks, AlbumCoverURL and Download
//  4. Use [NewClient] for HTTP with caching
//  5. Wire it into [crawl.Catalog]
//
// [spotify]: github.com/matzehuels/covercluster/pkg/integrations/spotify
// [httputil.Cache]: github.com/matzehuels/covercluster/pkg/httputil.Cache
// [cache.Cache]: github.com/matzehuels/covercluster/pkg/cache.Cache
// [observability.HTTPHooks]: github.com/matzehuels/covercluster/pkg/observability.HTTPHooks
// [crawl.Catalog]: github.com/matzehuels/covercluster/pkg/crawl.Catalog
package integrations
