package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Abbey Road", false},
		{"punctuation", "Sgt. Pepper's Lonely Hearts Club Band", false},
		{"non-latin", "東京 (Tokyo)", false},
		{"colon inside", "Live: 1975-85", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"tab", "foo\tbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePlaylistID(t *testing.T) {
	const id = "37i9dQZF1DXcBWIGoYBM5M"

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare id", id, id, false},
		{"padded", "  " + id + "\n", id, false},
		{"uri", "spotify:playlist:" + id, id, false},
		{"url", "https://open.spotify.com/playlist/" + id, id, false},
		{"url with query", "https://open.spotify.com/playlist/" + id + "?si=abc", id, false},

		{"empty", "", "", true},
		{"too short", "37i9dQZF1DX", "", true},
		{"bad chars", "37i9dQZF1DXcBWIGoYBM5-", "", true},
		{"album uri", "spotify:album:" + id, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePlaylistID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePlaylistID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidatePlaylistID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://i.scdn.co/image/ab67616d0000b273", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
