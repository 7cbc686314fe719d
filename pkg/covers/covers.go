// Package covers maps album names to cover image files and decodes them.
//
// Covers live in a flat directory. The file name of an album's cover is its
// name with every character that is not a letter or digit replaced by an
// underscore, plus ".jpg":
//
//	Sgt. Pepper's Lonely Hearts Club Band -> Sgt__Pepper_s_Lonely_Hearts_Club_Band.jpg
//
// The crawler writes files with [Dir.Save] and the cluster builder reads
// them with [Dir.Resolve], so both sides agree on the scheme.
package covers

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/covercluster/pkg/errors"
)

// Ext is the extension of every cover file.
const Ext = ".jpg"

// Sanitize converts an album name into a file name stem.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, name)
}

// Dir is a directory of cover images.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) Dir {
	return Dir{Root: root}
}

// Path returns where the cover for name is stored.
func (d Dir) Path(name string) string {
	return filepath.Join(d.Root, Sanitize(name)+Ext)
}

// Exists reports whether a cover file for name is present.
func (d Dir) Exists(name string) bool {
	fi, err := os.Stat(d.Path(name))
	return err == nil && fi.Mode().IsRegular()
}

// Resolve decodes the cover for name and resizes it to size×size using a
// Lanczos filter. EXIF orientation is applied before resizing.
//
// A missing file yields a COVER_NOT_FOUND error and an undecodable one a
// DECODE_FAILED error.
func (d Dir) Resolve(ctx context.Context, name string, size int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "cover size must be positive, got %d", size)
	}

	path := d.Path(name)
	if !d.Exists(name) {
		return nil, errs.New(errs.ErrCodeCoverNotFound, "cover not found: %s", path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecodeFailed, err, "decode %s", path)
	}
	return imaging.Resize(img, size, size, imaging.Lanczos), nil
}

// Fingerprint identifies the current content of the cover file for name by
// its size and modification time. It is empty when the file is missing.
func (d Dir) Fingerprint(name string) string {
	fi, err := os.Stat(d.Path(name))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", fi.Size(), fi.ModTime().UnixNano())
}

// Save writes a downloaded cover for name, creating the directory if
// needed. The file is replaced atomically so readers never see a partial
// image.
func (d Dir) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return "", fmt.Errorf("create covers dir: %w", err)
	}

	path := d.Path(name)
	tmp, err := os.CreateTemp(d.Root, ".cover-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
