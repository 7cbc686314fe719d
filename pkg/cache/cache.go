// Package cache stores build intermediates and catalog responses.
//
// Three kinds of entries share one [Cache]:
//
//   - HTTP responses from the music catalog (playlist pages, album lookups)
//   - Layouts, keyed by the ordered list of (album, size) pairs
//   - Rendered artifacts, keyed by the layout plus everything that affects
//     pixels (format, background, cover file fingerprints)
//
// Keys are produced by a [Keyer] so that the CLI, which uses a [FileCache],
// and the API server, which may share a [RedisCache] between instances,
// agree on the layout of the key space.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as a miss (ok == false) rather than an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind.
const (
	HTTPTTL     = 24 * time.Hour
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Key type labels reported to observability hooks.
const (
	KeyTypeHTTP     = "http"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// LayoutKeyOpts holds everything besides the item list that changes a layout.
type LayoutKeyOpts struct {
	TightenPasses int `json:"tighten_passes"`
}

// ArtifactKeyOpts holds everything besides the layout that changes the
// rendered image.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Background string `json:"background"`
	// Fingerprints identify the cover files painted into the image, in
	// placement order.
	Fingerprints []string `json:"fingerprints"`
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey returns the key of a cached catalog response.
	HTTPKey(namespace, key string) string

	// LayoutKey returns the key of a layout computed from the items
	// identified by itemsHash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of an image rendered from the layout
	// identified by layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>". Catalog keys are short and
// readable so they are not hashed.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey hashes the items hash together with the layout options.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, itemsHash, opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}
