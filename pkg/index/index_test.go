package index

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
)

const sample = `Album Index:
  Abbey Road: 12 songs
  Revolver: 3 songs
  Sgt. Pepper's: Reprise: 2 songs
Artist Index:
  The Beatles: 17 songs

Total songs: 17
`

func TestParse(t *testing.T) {
	idx := Parse(sample)

	wantAlbums := []Entry{
		{Name: "Abbey Road", Songs: 12},
		{Name: "Revolver", Songs: 3},
		{Name: "Sgt. Pepper's: Reprise", Songs: 2},
	}
	if !reflect.DeepEqual(idx.Albums, wantAlbums) {
		t.Errorf("Albums = %v, want %v", idx.Albums, wantAlbums)
	}
	wantArtists := []Entry{{Name: "The Beatles", Songs: 17}}
	if !reflect.DeepEqual(idx.Artists, wantArtists) {
		t.Errorf("Artists = %v, want %v", idx.Artists, wantArtists)
	}
	if !idx.HasTotal || idx.Total != 17 {
		t.Errorf("Total = %d (has %v), want 17", idx.Total, idx.HasTotal)
	}
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		albums []Entry
		total  bool
	}{
		{
			name: "empty",
			text: "",
		},
		{
			name: "lines before header ignored",
			text: "Help!: 4 songs\nAlbum Index:\n  Help!: 2 songs\n",
			albums: []Entry{{Name: "Help!", Songs: 2}},
		},
		{
			name:   "no total",
			text:   "Album Index:\n  A: 1 songs\n",
			albums: []Entry{{Name: "A", Songs: 1}},
		},
		{
			name:   "crlf line endings",
			text:   "Album Index:\r\n  A: 1 songs\r\n  B: 2 songs\r\n\r\nTotal songs: 3\r\n",
			albums: []Entry{{Name: "A", Songs: 1}, {Name: "B", Songs: 2}},
			total:  true,
		},
		{
			name:   "malformed lines skipped",
			text:   "Album Index:\n  A: many songs\n  B 3 songs\n  C: 4 songs\n",
			albums: []Entry{{Name: "C", Songs: 4}},
		},
		{
			name:   "duplicate keeps first position and last count",
			text:   "Album Index:\n  A: 1 songs\n  B: 2 songs\n  A: 5 songs\n",
			albums: []Entry{{Name: "A", Songs: 5}, {Name: "B", Songs: 2}},
		},
		{
			name:   "entries after total ignored",
			text:   "Album Index:\n  A: 1 songs\nTotal songs: 1\n  B: 2 songs\n",
			albums: []Entry{{Name: "A", Songs: 1}},
			total:  true,
		},
		{
			name:   "singular song count",
			text:   "Album Index:\n  Single: 1 songs\n  Other: 0 songs\n",
			albums: []Entry{{Name: "Single", Songs: 1}, {Name: "Other", Songs: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Parse(tt.text)
			if !reflect.DeepEqual(idx.Albums, tt.albums) {
				t.Errorf("Albums = %v, want %v", idx.Albums, tt.albums)
			}
			if idx.HasTotal != tt.total {
				t.Errorf("HasTotal = %v, want %v", idx.HasTotal, tt.total)
			}
		})
	}
}

func TestWriteParse(t *testing.T) {
	idx := Index{
		Albums:   []Entry{{Name: "Revolver", Songs: 3}, {Name: "Abbey Road", Songs: 12}},
		Total:    15,
		HasTotal: true,
	}

	var buf bytes.Buffer
	if err := Write(&buf, idx); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := "Album Index:\n  Abbey Road: 12 songs\n  Revolver: 3 songs\n\nTotal songs: 15\n"
	if buf.String() != want {
		t.Errorf("Write() =\n%s\nwant\n%s", buf.String(), want)
	}

	back := Parse(buf.String())
	if len(back.Albums) != 2 || back.Albums[0].Name != "Abbey Road" || back.Total != 15 {
		t.Errorf("Parse(Write()) = %+v", back)
	}
}

func TestWriteArtists(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, Parse(sample))
	if got := Parse(buf.String()); !reflect.DeepEqual(got.Artists, []Entry{{Name: "The Beatles", Songs: 17}}) {
		t.Errorf("artists lost in round trip: %+v", got.Artists)
	}
}

func TestWeights(t *testing.T) {
	idx := Index{
		Albums:  []Entry{{Name: "B", Songs: 2}, {Name: "Z", Songs: 0}, {Name: "A", Songs: 5}},
		Artists: []Entry{{Name: "X", Songs: 7}},
	}

	got := idx.Weights(SectionAlbums)
	want := []cluster.Weight{{ID: "B", Weight: 2}, {ID: "A", Weight: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Weights(albums) = %v, want %v", got, want)
	}
	if got := idx.Weights(SectionArtists); len(got) != 1 || got[0].ID != "X" {
		t.Errorf("Weights(artists) = %v", got)
	}
	if got := idx.Weights("genres"); len(got) != 0 {
		t.Errorf("Weights(unknown) = %v, want empty", got)
	}
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in      string
		want    Section
		wantErr bool
	}{
		{"", SectionAlbums, false},
		{"album", SectionAlbums, false},
		{"Artists", SectionArtists, false},
		{"genres", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSection(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSection(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		encodings []string
		want      string
		wantEnc   string
	}{
		{
			name:    "utf-8",
			data:    []byte("Café Tacvba: 2 songs"),
			want:    "Café Tacvba: 2 songs",
			wantEnc: "utf-8",
		},
		{
			name:    "utf-8 bom stripped",
			data:    append([]byte{0xEF, 0xBB, 0xBF}, "Album Index:"...),
			want:    "Album Index:",
			wantEnc: "utf-8",
		},
		{
			name:    "windows-1252 fallback",
			data:    []byte("Caf\xe9 \x93Live\x94"),
			want:    "Café “Live”",
			wantEnc: "windows-1252",
		},
		{
			name:    "literal replacement char does not hide invalid bytes",
			data:    []byte("Help\xef\xbf\xbd Caf\xe9"),
			want:    "Help\u00ef\u00bf\u00bd Caf\u00e9",
			wantEnc: "windows-1252",
		},
		{
			name:      "latin-1 alias",
			data:      []byte("Caf\xe9"),
			encodings: []string{"utf-8", "latin-1"},
			want:      "Café",
			wantEnc:   "latin-1",
		},
		{
			name:      "unknown names skipped",
			data:      []byte("plain"),
			encodings: []string{"no-such-encoding", "utf-8"},
			want:      "plain",
			wantEnc:   "utf-8",
		},
		{
			name:      "replacement fallback",
			data:      []byte("Caf\xe9"),
			encodings: []string{"utf-8"},
			want:      "Caf�",
			wantEnc:   Replacement,
		},
		{
			name:    "literal replacement char accepted",
			data:    []byte("broken � name"),
			want:    "broken � name",
			wantEnc: "utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc := Decode(tt.data, tt.encodings)
			if got != tt.want || enc != tt.wantEnc {
				t.Errorf("Decode() = %q, %q; want %q, %q", got, enc, tt.want, tt.wantEnc)
			}
		})
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf8", "windows-1252", "cp1252", "ISO-8859-1", "latin1"} {
		if _, err := LookupEncoding(name); err != nil {
			t.Errorf("LookupEncoding(%q) error: %v", name, err)
		}
	}
	if _, err := LookupEncoding("klingon"); err == nil {
		t.Error("LookupEncoding(klingon) should fail")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.txt")
	if err := os.WriteFile(path, []byte("Album Index:\n  Caf\xe9: 3 songs\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := ParseFile(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if len(idx.Albums) != 1 || idx.Albums[0].Name != "Café" {
		t.Errorf("Albums = %v", idx.Albums)
	}
}

func TestParseFileMissing(t *testing.T) {
	idx, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), nil)
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
	if !idx.Empty() {
		t.Errorf("index = %+v, want empty", idx)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.txt")
	in := Index{Albums: []Entry{{Name: "A", Songs: 1}}, Total: 1, HasTotal: true}
	if err := WriteFile(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ParseFile(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
