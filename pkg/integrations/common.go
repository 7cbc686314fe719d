package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 15 * time.Second

// MaxCoverBytes bounds a downloaded cover image.
const MaxCoverBytes = 10 << 20

var (
	// ErrNotFound is returned when a playlist, album or image doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the catalog rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Track is one playlist entry, reduced to what the crawler counts.
// Catalog clients convert their API responses into this shape.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	AlbumID string   `json:"album_id"`
	Album   string   `json:"album"`
	Artists []string `json:"artists,omitempty"`
}

// NewHTTPClient creates an HTTP client with a standard timeout for catalog requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
