package index

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/covercluster/pkg/cluster"
)

// Section selects the part of an index that weights a cluster.
type Section string

const (
	SectionAlbums  Section = "albums"
	SectionArtists Section = "artists"
)

// Sections lists the valid section names.
var Sections = []Section{SectionAlbums, SectionArtists}

const (
	albumHeader  = "Album Index:"
	artistHeader = "Artist Index:"
)

var (
	entryLine = regexp.MustCompile(`^\s*(.+?):\s*(\d+)\s*songs`)
	totalLine = regexp.MustCompile(`^\s*Total songs:\s*(\d+)`)
)

// Entry is one named count.
type Entry struct {
	Name  string `json:"name"`
	Songs int    `json:"songs"`
}

// Index is a parsed index file.
type Index struct {
	Albums  []Entry `json:"albums"`
	Artists []Entry `json:"artists,omitempty"`
	// Total is the "Total songs" line. It is informational and not checked
	// against the entries.
	Total    int  `json:"total"`
	HasTotal bool `json:"has_total"`
}

// Parse reads index text. Malformed lines are skipped; Parse never fails.
//
// Entries keep the order in which names first appear. A name repeated
// within a section keeps its first position and takes the last count.
func Parse(text string) Index {
	var (
		idx     Index
		current *[]Entry
		seen    map[string]int
		albums  = map[string]int{}
		artists = map[string]int{}
	)

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == albumHeader:
			current, seen = &idx.Albums, albums
			continue
		case trimmed == artistHeader:
			current, seen = &idx.Artists, artists
			continue
		}

		if m := totalLine.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				idx.Total, idx.HasTotal = n, true
			}
			current = nil
			continue
		}
		if current == nil {
			continue
		}

		m := entryLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if i, ok := seen[m[1]]; ok {
			(*current)[i].Songs = n
			continue
		}
		seen[m[1]] = len(*current)
		*current = append(*current, Entry{Name: m[1], Songs: n})
	}
	return idx
}

// Write emits idx in the index file format. Entries are sorted by name so
// that repeated crawls of the same playlists produce identical files.
func Write(w io.Writer, idx Index) error {
	bw := bufio.NewWriter(w)

	writeSection(bw, albumHeader, idx.Albums)
	if len(idx.Artists) > 0 {
		writeSection(bw, artistHeader, idx.Artists)
	}
	if idx.HasTotal {
		fmt.Fprintf(bw, "\nTotal songs: %d\n", idx.Total)
	}
	return bw.Flush()
}

func writeSection(w io.Writer, header string, entries []Entry) {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })

	fmt.Fprintln(w, header)
	for _, e := range sorted {
		fmt.Fprintf(w, "  %s: %d songs\n", e.Name, e.Songs)
	}
}

// Entries returns the entries of section s, or nil for an unknown section.
func (idx Index) Entries(s Section) []Entry {
	switch s {
	case SectionAlbums:
		return idx.Albums
	case SectionArtists:
		return idx.Artists
	}
	return nil
}

// Weights converts section s into cluster input, in file order. Entries
// with no songs are dropped.
func (idx Index) Weights(s Section) []cluster.Weight {
	entries := idx.Entries(s)
	out := make([]cluster.Weight, 0, len(entries))
	for _, e := range entries {
		if e.Songs <= 0 {
			continue
		}
		out = append(out, cluster.Weight{ID: e.Name, Weight: e.Songs})
	}
	return out
}

// Empty reports whether the index has no entries at all.
func (idx Index) Empty() bool {
	return len(idx.Albums) == 0 && len(idx.Artists) == 0
}

// ParseSection converts a section name, accepting the singular form.
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "albums", "album", "":
		return SectionAlbums, nil
	case "artists", "artist":
		return SectionArtists, nil
	}
	return "", fmt.Errorf("unknown index section %q (want albums or artists)", s)
}
