package crawl

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/covercluster/pkg/covers"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/integrations"
)

const (
	playlistA = "3vgCWrOBB1CCYzdNhHqQWh"
	playlistB = "1yEIaUIEegfO9Dcdwn8dye"
)

type fakeCatalog struct {
	playlists map[string][]integrations.Track
	noCover   map[string]bool

	mu        sync.Mutex
	downloads []string
}

func (f *fakeCatalog) PlaylistTracks(_ context.Context, id string, _ bool) ([]integrations.Track, error) {
	tracks, ok := f.playlists[id]
	if !ok {
		return nil, fmt.Errorf("%w: playlist %s", integrations.ErrNotFound, id)
	}
	return tracks, nil
}

func (f *fakeCatalog) AlbumCoverURL(_ context.Context, albumID string, _ bool) (string, error) {
	if f.noCover[albumID] {
		return "", fmt.Errorf("%w: album %s has no cover", integrations.ErrNotFound, albumID)
	}
	return "https://images.example/" + albumID, nil
}

func (f *fakeCatalog) Download(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, url)
	f.mu.Unlock()
	return []byte("cover:" + url), nil
}

func track(name, albumID, album string, artists ...string) integrations.Track {
	return integrations.Track{ID: name, Name: name, AlbumID: albumID, Album: album, Artists: artists}
}

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		playlists: map[string][]integrations.Track{
			playlistA: {
				track("Come Together", "a1", "Abbey Road", "The Beatles"),
				track("Something", "a1", "Abbey Road", "The Beatles"),
				track("Let It Be", "a2", "Let It Be", "The Beatles"),
			},
			playlistB: {
				track("Back in Black", "a3", "Back in Black", "AC/DC"),
				track("Here Comes the Sun", "a1", "Abbey Road", "The Beatles"),
			},
		},
		noCover: map[string]bool{},
	}
}

func TestCrawl(t *testing.T) {
	cat := newCatalog()
	c := &Crawler{Catalog: cat, Covers: covers.NewDir(t.TempDir())}

	res, err := c.Crawl(context.Background(), []string{
		playlistA,
		"https://open.spotify.com/playlist/" + playlistB + "?si=abc",
	})
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}

	wantAlbums := []index.Entry{
		{Name: "Abbey Road", Songs: 3},
		{Name: "Let It Be", Songs: 1},
		{Name: "Back in Black", Songs: 1},
	}
	if !reflect.DeepEqual(res.Index.Albums, wantAlbums) {
		t.Errorf("Albums = %v, want %v", res.Index.Albums, wantAlbums)
	}
	wantArtists := []index.Entry{{Name: "The Beatles", Songs: 4}, {Name: "AC/DC", Songs: 1}}
	if !reflect.DeepEqual(res.Index.Artists, wantArtists) {
		t.Errorf("Artists = %v, want %v", res.Index.Artists, wantArtists)
	}
	if res.Songs != 5 || res.Index.Total != 5 || !res.Index.HasTotal {
		t.Errorf("Songs = %d, Total = %d", res.Songs, res.Index.Total)
	}
	if res.Downloaded != 3 || res.Skipped != 0 || len(res.Failed) != 0 {
		t.Errorf("Downloaded/Skipped/Failed = %d/%d/%v", res.Downloaded, res.Skipped, res.Failed)
	}
	if len(cat.downloads) != 3 {
		t.Errorf("downloaded %d covers, want each album once", len(cat.downloads))
	}
	for _, name := range []string{"Abbey Road", "Let It Be", "Back in Black"} {
		if !c.Covers.Exists(name) {
			t.Errorf("cover for %q not saved", name)
		}
	}
}

func TestCrawlSkipsExisting(t *testing.T) {
	cat := newCatalog()
	c := &Crawler{Catalog: cat, Covers: covers.NewDir(t.TempDir())}
	if _, err := c.Covers.Save("Abbey Road", []byte("old")); err != nil {
		t.Fatal(err)
	}

	res, err := c.Crawl(context.Background(), []string{playlistA})
	if err != nil {
		t.Fatal(err)
	}
	if res.Downloaded != 1 || res.Skipped != 1 {
		t.Errorf("Downloaded/Skipped = %d/%d, want 1/1", res.Downloaded, res.Skipped)
	}

	c.Refresh = true
	res, err = c.Crawl(context.Background(), []string{playlistA})
	if err != nil {
		t.Fatal(err)
	}
	if res.Downloaded != 2 || res.Skipped != 0 {
		t.Errorf("refresh Downloaded/Skipped = %d/%d, want 2/0", res.Downloaded, res.Skipped)
	}
}

func TestCrawlDownloadFailure(t *testing.T) {
	cat := newCatalog()
	cat.noCover["a2"] = true
	var buf bytes.Buffer
	c := &Crawler{
		Catalog: cat,
		Covers:  covers.NewDir(t.TempDir()),
		Logger:  log.NewWithOptions(&buf, log.Options{}),
		Workers: 1,
	}

	res, err := c.Crawl(context.Background(), []string{playlistA})
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if !reflect.DeepEqual(res.Failed, []string{"Let It Be"}) {
		t.Errorf("Failed = %v", res.Failed)
	}
	if len(res.Index.Albums) != 2 {
		t.Error("album without cover should still be indexed")
	}
	if !strings.Contains(buf.String(), "cover download failed") {
		t.Errorf("no warning logged:\n%s", buf.String())
	}
}

func TestCrawlErrors(t *testing.T) {
	tests := []struct {
		name      string
		playlists []string
		code      errs.Code
	}{
		{"invalid reference", []string{"not a playlist"}, errs.ErrCodeInvalidInput},
		{"unknown playlist", []string{"0000000000000000000000"}, errs.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Crawler{Catalog: newCatalog(), Covers: covers.NewDir(t.TempDir())}
			_, err := c.Crawl(context.Background(), tt.playlists)
			if !errs.Is(err, tt.code) {
				t.Errorf("Crawl() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCrawlWritesParsableIndex(t *testing.T) {
	c := &Crawler{Catalog: newCatalog(), Covers: covers.NewDir(t.TempDir())}
	res, err := c.Crawl(context.Background(), []string{playlistA, playlistB})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := index.Write(&buf, res.Index); err != nil {
		t.Fatal(err)
	}
	back := index.Parse(buf.String())
	if len(back.Albums) != 3 || back.Total != 5 {
		t.Errorf("Parse(Write()) = %+v", back)
	}
	if back.Albums[0].Name != "Abbey Road" || back.Albums[1].Name != "Back in Black" {
		t.Errorf("written albums not sorted: %v", back.Albums)
	}
}
