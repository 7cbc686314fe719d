package index

import (
	"bytes"
	"context"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/observability"
)

// Replacement is the encoding name reported when no configured encoding
// could decode the input.
const Replacement = "utf-8 (replacement)"

// DefaultEncodings is the order in which index files are decoded.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

var (
	utf8BOM     = []byte{0xEF, 0xBB, 0xBF}
	replacement = []byte("�")
)

// aliases covers common names that the IANA registry does not list.
var aliases = map[string]encoding.Encoding{
	"utf8":    unicode.UTF8,
	"cp1252":  charmap.Windows1252,
	"latin-1": charmap.ISO8859_1,
	"latin1":  charmap.ISO8859_1,
}

// LookupEncoding resolves an encoding name. It accepts IANA names and
// aliases as well as a few common spellings such as "cp1252" and "latin-1".
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := aliases[key]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "unknown encoding %q", name)
	}
	// The registry knows some names that x/text cannot decode.
	if enc == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "encoding %q is not supported", name)
	}
	return enc, nil
}

// Decode converts data to text using the first encoding in encodings that
// represents every byte. It returns the text and the name of the encoding
// used. Unknown encoding names are skipped.
//
// An encoding is rejected when its output holds more U+FFFD runes than the
// input spells in UTF-8, that is when the decoder had to substitute. If every encoding is
// rejected, the data is decoded as UTF-8 with invalid sequences replaced
// and [Replacement] is returned as the name.
func Decode(data []byte, encodings []string) (string, string) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	literal := bytes.Count(data, replacement)

	for _, name := range encodings {
		enc, err := LookupEncoding(name)
		if err != nil {
			continue
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if bytes.Count(out, replacement) > literal {
			continue
		}
		return strings.TrimPrefix(string(out), "\ufeff"), name
	}

	return strings.ToValidUTF8(string(bytes.TrimPrefix(data, utf8BOM)), "�"), Replacement
}

// ParseFile reads, decodes and parses the index file at path.
//
// A missing or unreadable file yields an empty Index together with a
// FILE_NOT_FOUND error; callers decide whether that is fatal.
func ParseFile(ctx context.Context, path string, encodings []string) (Index, error) {
	start := time.Now()
	idx, err := parseFile(path, encodings)
	observability.Pipeline().OnIndexLoaded(ctx, path, len(idx.Albums)+len(idx.Artists), time.Since(start), err)
	return idx, err
}

func parseFile(path string, encodings []string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Index{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "read index %s", path)
	}
	text, _ := Decode(data, encodings)
	return Parse(text), nil
}

// WriteFile writes idx to path, replacing any existing file.
func WriteFile(path string, idx Index) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, idx); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
