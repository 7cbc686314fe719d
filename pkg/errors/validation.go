package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength bounds album and artist names accepted from untrusted input.
const MaxNameLength = 512

// ValidateName validates an album or artist name read from an index
// submitted over the API.
//
// Names end up as cover file names after sanitization, so the rules only
// guard against input that cannot be a real title:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of MaxNameLength bytes
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// playlistIDRegex matches Spotify base62 identifiers.
var playlistIDRegex = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// ValidatePlaylistID validates a Spotify playlist identifier. Full playlist
// URLs and spotify:playlist: URIs are accepted and reduced to the bare id.
func ValidatePlaylistID(ref string) (string, error) {
	id := strings.TrimSpace(ref)
	if id == "" {
		return "", New(ErrCodeInvalidInput, "playlist id cannot be empty")
	}

	if rest, ok := strings.CutPrefix(id, "spotify:playlist:"); ok {
		id = rest
	} else if i := strings.Index(id, "/playlist/"); i >= 0 {
		id = id[i+len("/playlist/"):]
		if j := strings.IndexAny(id, "?#/"); j >= 0 {
			id = id[:j]
		}
	}

	if !playlistIDRegex.MatchString(id) {
		return "", New(ErrCodeInvalidInput, "invalid playlist id: %q", ref)
	}

	return id, nil
}

// ValidateURL rejects image URLs that are not plain http or https, such as
// file: or data: references returned by a misbehaving catalog.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
